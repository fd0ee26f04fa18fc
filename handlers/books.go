package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/middleware"
	"github.com/kevinaaaquil/bookreview/models"
	"github.com/kevinaaaquil/bookreview/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BooksHandler struct {
	Books    BookService
	Validate *Validator
}

// List serves GET /books?page=&limit=&genre=&author=&search=&sortBy=&sortOrder=.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryInt(q.Get("page"), "page", 1, 0)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	limit, err := queryInt(q.Get("limit"), "limit", 1, models.MaxLimit)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	sortBy := q.Get("sortBy")
	switch sortBy {
	case "", models.BookSortTitle, models.BookSortAuthor, models.BookSortPublicationYear, models.BookSortAverageRating:
	default:
		response.Error(w, r, apperr.ValidationWithDetails("Validation error", []string{"sortBy must be one of: title author publicationYear averageRating"}))
		return
	}
	if err := checkSortOrder(q.Get("sortOrder")); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.Books.GetAllBooks(r.Context(), models.BookQuery{
		Page:      page,
		Limit:     limit,
		Genre:     q.Get("genre"),
		Author:    q.Get("author"),
		Search:    q.Get("search"),
		SortBy:    sortBy,
		SortOrder: q.Get("sortOrder"),
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, result)
}

func (h *BooksHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.Books.SearchBooks(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{"results": results})
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.Books.GetBookByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{"book": book})
}

func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, err := identity(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req bookRequest
	if err := h.Validate.Decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	book, err := h.Books.CreateBook(r.Context(), req.input(), userID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, map[string]any{
		"message": "Book created successfully",
		"book":    book,
	})
}

func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, err := identity(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req bookPatchRequest
	if err := h.Validate.Decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	book, err := h.Books.UpdateBook(r.Context(), chi.URLParam(r, "id"), req.patch(), userID, isAdmin)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{
		"message": "Book updated successfully",
		"book":    book,
	})
}

func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, err := identity(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if _, err := h.Books.DeleteBook(r.Context(), chi.URLParam(r, "id"), userID, isAdmin); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, http.StatusOK, "Book deleted successfully")
}

// Lookup serves GET /books/lookup?isbn= with a draft the client can edit and submit.
func (h *BooksHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	draft, err := h.Books.LookupISBN(r.Context(), r.URL.Query().Get("isbn"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{"book": draft})
}

func (h *BooksHandler) Authors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.Books.Authors(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, authors)
}

// identity returns the caller's id and admin flag set by middleware.Auth.
func identity(r *http.Request) (primitive.ObjectID, bool, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, false, apperr.Unauthorized("Authentication required")
	}
	return userID, middleware.IsAdminFromContext(r.Context()), nil
}

// queryInt parses an optional integer parameter. max of 0 means unbounded.
func queryInt(raw, name string, min, max int) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.ValidationWithDetails("Validation error", []string{name + " must be a number"})
	}
	if n < min {
		return 0, apperr.ValidationWithDetails("Validation error", []string{name + " must be greater than or equal to " + strconv.Itoa(min)})
	}
	if max > 0 && n > max {
		return 0, apperr.ValidationWithDetails("Validation error", []string{name + " must be less than or equal to " + strconv.Itoa(max)})
	}
	return n, nil
}

func checkSortOrder(order string) error {
	switch order {
	case "", models.SortAsc, models.SortDesc:
		return nil
	}
	return apperr.ValidationWithDetails("Validation error", []string{"sortOrder must be one of: asc desc"})
}
