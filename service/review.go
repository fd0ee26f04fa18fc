package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/logging"
	"github.com/kevinaaaquil/bookreview/metrics"
	"github.com/kevinaaaquil/bookreview/models"
	"github.com/kevinaaaquil/bookreview/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgReviewNotFound  = "Review not found"
	msgAlreadyReviewed = "You have already reviewed this book"
)

// BookChecker reports whether a book exists. *BookService implements it.
type BookChecker interface {
	BookExists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// ReviewService enforces the review rules: one review per user and book,
// author-or-admin mutation.
type ReviewService struct {
	reviews ReviewStore
	books   BookChecker
	users   *UserResolver
	now     func() time.Time
}

func NewReviewService(reviews ReviewStore, books BookChecker, users UserStore) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		books:   books,
		users:   NewUserResolver(users),
		now:     time.Now,
	}
}

// CreateReview records userID's review of bookID. A second review of the same
// book by the same user fails with a conflict, including when two requests race.
func (s *ReviewService) CreateReview(ctx context.Context, bookID string, userID primitive.ObjectID, rating int, comment string) (*models.ReviewResponse, error) {
	comment = strings.TrimSpace(comment)
	if err := validateReview(&rating, &comment); err != nil {
		return nil, err
	}
	bid, err := s.requireBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	existing, err := s.reviews.FindByUserAndBook(ctx, userID, bid)
	if err != nil {
		return nil, storeFailure("find_review", err, "failed to create review")
	}
	if existing != nil {
		return nil, apperr.Conflict(msgAlreadyReviewed)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	review := &models.Review{
		BookID:    bid,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.reviews.InsertReview(ctx, review)
	if errors.Is(err, store.ErrDuplicate) {
		metrics.ReviewConflicts.Inc()
		logging.Debug().Str("book", bid.Hex()).Str("user", userID.Hex()).Msg("concurrent duplicate review rejected by index")
		return nil, apperr.Conflict(msgAlreadyReviewed)
	}
	if err != nil {
		return nil, storeFailure("insert_review", err, "failed to create review")
	}
	review.ID = id
	return s.shapeOne(ctx, review)
}

func (s *ReviewService) GetReviewByID(ctx context.Context, id string) (*models.ReviewResponse, error) {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.shapeOne(ctx, review)
}

// GetReviewsByBookID returns one page of a book's reviews, newest first by default.
func (s *ReviewService) GetReviewsByBookID(ctx context.Context, bookID string, q models.ReviewQuery) ([]models.ReviewResponse, error) {
	bid, err := s.requireBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ReviewsByBook(ctx, bid, q.Normalize())
	if err != nil {
		return nil, storeFailure("reviews_by_book", err, "failed to list reviews")
	}

	ids := make([]primitive.ObjectID, 0, len(reviews))
	for i := range reviews {
		ids = append(ids, reviews[i].UserID)
	}
	authors, err := s.users.Resolve(ctx, ids...)
	if err != nil {
		return nil, storeFailure("resolve_users", err, "failed to list reviews")
	}
	out := make([]models.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResponse(&reviews[i], authors.For(reviews[i].UserID)))
	}
	return out, nil
}

// UpdateReview applies patch when userID wrote the review or isAdmin is set.
func (s *ReviewService) UpdateReview(ctx context.Context, id string, patch models.ReviewPatch, userID primitive.ObjectID, isAdmin bool) (*models.ReviewResponse, error) {
	if patch.Comment != nil {
		trimmed := strings.TrimSpace(*patch.Comment)
		patch.Comment = &trimmed
	}
	if err := validateReview(patch.Rating, patch.Comment); err != nil {
		return nil, err
	}
	review, err := s.ownedReview(ctx, id, userID, isAdmin, "Unauthorized to update this review")
	if err != nil {
		return nil, err
	}
	if patch.Rating == nil && patch.Comment == nil {
		return s.shapeOne(ctx, review)
	}
	updated, err := s.reviews.UpdateReview(ctx, review.ID, patch)
	if err != nil {
		return nil, storeFailure("update_review", err, "failed to update review")
	}
	if updated == nil {
		return nil, apperr.NotFound(msgReviewNotFound)
	}
	return s.shapeOne(ctx, updated)
}

// DeleteReview removes the review when userID wrote it or isAdmin is set.
func (s *ReviewService) DeleteReview(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool) (bool, error) {
	review, err := s.ownedReview(ctx, id, userID, isAdmin, "Unauthorized to delete this review")
	if err != nil {
		return false, err
	}
	ok, err := s.reviews.DeleteReview(ctx, review.ID)
	if err != nil {
		return false, storeFailure("delete_review", err, "failed to delete review")
	}
	if !ok {
		return false, apperr.NotFound(msgReviewNotFound)
	}
	return true, nil
}

// AverageRating is the mean rating of a book, 0 when it has no reviews.
func (s *ReviewService) AverageRating(ctx context.Context, bookID string) (float64, error) {
	bid, err := s.requireBook(ctx, bookID)
	if err != nil {
		return 0, err
	}
	avg, err := s.reviews.AverageRatingForBook(ctx, bid)
	if err != nil {
		return 0, storeFailure("average_rating", err, "failed to compute rating")
	}
	return avg, nil
}

func (s *ReviewService) requireBook(ctx context.Context, bookID string) (primitive.ObjectID, error) {
	bid, err := parseID(bookID, msgBookNotFound)
	if err != nil {
		return primitive.NilObjectID, err
	}
	ok, err := s.books.BookExists(ctx, bid)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !ok {
		return primitive.NilObjectID, apperr.NotFound(msgBookNotFound)
	}
	return bid, nil
}

func (s *ReviewService) findReview(ctx context.Context, id string) (*models.Review, error) {
	oid, err := parseID(id, msgReviewNotFound)
	if err != nil {
		return nil, err
	}
	review, err := s.reviews.ReviewByID(ctx, oid)
	if err != nil {
		return nil, storeFailure("review_by_id", err, "failed to load review")
	}
	if review == nil {
		return nil, apperr.NotFound(msgReviewNotFound)
	}
	return review, nil
}

func (s *ReviewService) ownedReview(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool, forbidden string) (*models.Review, error) {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(review.UserID, userID, isAdmin) {
		return nil, apperr.Forbidden(forbidden)
	}
	return review, nil
}

func (s *ReviewService) shapeOne(ctx context.Context, review *models.Review) (*models.ReviewResponse, error) {
	authors, err := s.users.Resolve(ctx, review.UserID)
	if err != nil {
		return nil, storeFailure("resolve_users", err, "failed to load review")
	}
	resp := toReviewResponse(review, authors.For(review.UserID))
	return &resp, nil
}

// validateReview checks the fields that are present; nil means not supplied.
func validateReview(rating *int, comment *string) error {
	var details []string
	if rating != nil && (*rating < models.MinRating || *rating > models.MaxRating) {
		details = append(details, "rating must be between 1 and 5")
	}
	if comment != nil && *comment == "" {
		details = append(details, "comment is required")
	}
	if len(details) > 0 {
		return apperr.ValidationWithDetails("Validation error", details)
	}
	return nil
}
