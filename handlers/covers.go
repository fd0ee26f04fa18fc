package handlers

import (
	"bufio"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/logging"
	"github.com/kevinaaaquil/bookreview/response"
	"github.com/kevinaaaquil/bookreview/service"
)

var allowedCoverTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type CoversHandler struct {
	Books    BookService
	MaxBytes int64
	// BasePath is the API prefix used to build the public cover URL.
	BasePath string
}

// Upload serves POST /books/{id}/cover with the image in the multipart field "file".
func (h *CoversHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, err := identity(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Message(w, http.StatusRequestEntityTooLarge, "Cover image is too large")
			return
		}
		response.Error(w, r, apperr.Validation("failed to parse multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, r, apperr.Validation("missing file"))
		return
	}
	defer file.Close()

	// Trust the bytes, not the part header.
	body := bufio.NewReaderSize(file, 512)
	head, err := body.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		response.Error(w, r, apperr.Internal(err, "failed to read file"))
		return
	}
	contentType := http.DetectContentType(head)
	ext, ok := allowedCoverTypes[contentType]
	if !ok {
		response.Error(w, r, apperr.Validation("only jpeg, png, gif and webp images are allowed"))
		return
	}
	name := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)) + ext

	id := chi.URLParam(r, "id")
	book, err := h.Books.SetCover(r.Context(), id, service.CoverUpload{
		Filename:    name,
		ContentType: contentType,
		Body:        body,
		URL:         h.BasePath + "/books/" + id + "/cover",
	}, userID, isAdmin)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{
		"message": "Cover uploaded successfully",
		"book":    book,
	})
}

// Get streams the uploaded cover. It is public so an <img> tag can load it.
func (h *CoversHandler) Get(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.Books.Cover(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	defer body.Close()
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, body); err != nil {
		logging.Warn().Err(err).Str("book", chi.URLParam(r, "id")).Msg("cover stream interrupted")
	}
}
