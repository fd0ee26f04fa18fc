package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's rating and comment on one book. (bookId, userId) is unique.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	BookID    primitive.ObjectID `bson:"bookId"`
	UserID    primitive.ObjectID `bson:"userId"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// ReviewPatch is a partial update; nil fields are left unchanged.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

type ReviewResponse struct {
	ID        string      `json:"id"`
	BookID    string      `json:"bookId"`
	Rating    int         `json:"rating"`
	Comment   string      `json:"comment"`
	User      UserSummary `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

const (
	ReviewSortRating    = "rating"
	ReviewSortCreatedAt = "createdAt"
)

// ReviewQuery selects a page of a book's reviews.
type ReviewQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Normalize fills in defaults: page 1, limit 10 (max 100), newest first.
func (q ReviewQuery) Normalize() ReviewQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.SortBy != ReviewSortRating {
		q.SortBy = ReviewSortCreatedAt
	}
	if q.SortOrder != SortAsc {
		q.SortOrder = SortDesc
	}
	return q
}

func (q ReviewQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}
