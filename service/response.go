package service

import (
	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/logging"
	"github.com/kevinaaaquil/bookreview/metrics"
	"github.com/kevinaaaquil/bookreview/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func toBookResponse(b *models.BookWithStats, owner models.UserSummary) models.BookResponse {
	genre := b.Genre
	if genre == nil {
		genre = []string{}
	}
	return models.BookResponse{
		ID:              b.ID.Hex(),
		Title:           b.Title,
		Author:          b.Author,
		Description:     b.Description,
		Genre:           genre,
		CoverImage:      b.CoverImage,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Publisher:       b.Publisher,
		AverageRating:   b.AverageRating,
		ReviewCount:     b.ReviewCount,
		AddedBy:         owner,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func toReviewResponse(r *models.Review, user models.UserSummary) models.ReviewResponse {
	return models.ReviewResponse{
		ID:        r.ID.Hex(),
		BookID:    r.BookID.Hex(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		User:      user,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// parseID converts a path id; a malformed id cannot name an existing document.
func parseID(id, notFound string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(notFound)
	}
	return oid, nil
}

// canModify is the owner-or-admin rule shared by books and reviews.
func canModify(ownerID, userID primitive.ObjectID, isAdmin bool) bool {
	return isAdmin || ownerID == userID
}

// storeFailure logs an unexpected persistence error and wraps it as internal.
func storeFailure(op string, err error, msg string) error {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	logging.Error().Err(err).Str("op", op).Msg("store failure")
	return apperr.Internal(err, msg)
}
