package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/models"
	"github.com/kevinaaaquil/bookreview/response"
)

type ReviewsHandler struct {
	Reviews  ReviewService
	Validate *Validator
}

// ListForBook serves GET /books/{id}/reviews?page=&limit=&sortBy=&sortOrder=.
func (h *ReviewsHandler) ListForBook(w http.ResponseWriter, r *http.Request) {
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
	if sortBy != "" && sortBy != models.ReviewSortRating && sortBy != models.ReviewSortCreatedAt {
		response.Error(w, r, apperr.ValidationWithDetails("Validation error", []string{"sortBy must be one of: rating createdAt"}))
		return
	}
	if err := checkSortOrder(q.Get("sortOrder")); err != nil {
		response.Error(w, r, err)
		return
	}

	reviews, err := h.Reviews.GetReviewsByBookID(r.Context(), chi.URLParam(r, "id"), models.ReviewQuery{
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: q.Get("sortOrder"),
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{"reviews": reviews})
}

func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, err := identity(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req reviewRequest
	if err := h.Validate.Decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	review, err := h.Reviews.CreateReview(r.Context(), chi.URLParam(r, "id"), userID, req.Rating, req.Comment)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, map[string]any{
		"message": "Review created successfully",
		"review":  review,
	})
}

func (h *ReviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.Reviews.GetReviewByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{"review": review})
}

func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, err := identity(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	var req reviewPatchRequest
	if err := h.Validate.Decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	review, err := h.Reviews.UpdateReview(r.Context(), chi.URLParam(r, "id"), models.ReviewPatch{
		Rating:  req.Rating,
		Comment: req.Comment,
	}, userID, isAdmin)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{
		"message": "Review updated successfully",
		"review":  review,
	})
}

func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, err := identity(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if _, err := h.Reviews.DeleteReview(r.Context(), chi.URLParam(r, "id"), userID, isAdmin); err != nil {
		response.Error(w, r, err)
		return
	}
	response.Message(w, http.StatusOK, "Review deleted successfully")
}
