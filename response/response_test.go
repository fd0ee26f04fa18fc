package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   ErrorBody
	}{
		{"not found", apperr.NotFound("Book not found"), http.StatusNotFound, ErrorBody{Message: "Book not found"}},
		{"conflict", apperr.Conflict("You have already reviewed this book"), http.StatusConflict, ErrorBody{Message: "You have already reviewed this book"}},
		{
			"validation details",
			apperr.ValidationWithDetails("Validation error", []string{"rating must be less than or equal to 5"}),
			http.StatusBadRequest,
			ErrorBody{Message: "Validation error", Details: []string{"rating must be less than or equal to 5"}},
		},
		{"internal hides cause", apperr.Internal(errors.New("socket closed"), "failed to load book"), http.StatusInternalServerError, ErrorBody{Message: "failed to load book"}},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, ErrorBody{Message: "Internal server error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"message": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"ok"}`, rec.Body.String())
}
