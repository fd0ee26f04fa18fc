package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is the persisted catalogue record. Ratings are never stored on it.
type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Author          string             `bson:"author"`
	Description     string             `bson:"description"`
	Genre           []string           `bson:"genre"`
	CoverImage      string             `bson:"coverImage,omitempty"`
	CoverKey        string             `bson:"coverKey,omitempty"` // S3 object key of an uploaded cover
	ISBN            string             `bson:"isbn,omitempty"`
	PublicationYear int                `bson:"publicationYear,omitempty"`
	Publisher       string             `bson:"publisher,omitempty"`
	AddedBy         primitive.ObjectID `bson:"addedBy"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

// RatingStats is the per-book aggregate over the reviews collection.
type RatingStats struct {
	AverageRating float64 `bson:"averageRating" json:"averageRating"`
	ReviewCount   int     `bson:"reviewCount" json:"reviewCount"`
}

// BookWithStats is a book as read through the rating aggregation.
type BookWithStats struct {
	Book        `bson:",inline"`
	RatingStats `bson:",inline"`
}

// BookInput carries the fields a client supplies when creating a book.
type BookInput struct {
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	Description     string   `json:"description"`
	Genre           []string `json:"genre"`
	CoverImage      string   `json:"coverImage,omitempty"`
	ISBN            string   `json:"isbn,omitempty"`
	PublicationYear int      `json:"publicationYear,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
}

// BookPatch is a partial update; nil fields are left unchanged.
type BookPatch struct {
	Title           *string
	Author          *string
	Description     *string
	Genre           []string
	CoverImage      *string
	ISBN            *string
	PublicationYear *int
	Publisher       *string
}

// Empty reports whether the patch changes nothing.
func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Description == nil && p.Genre == nil &&
		p.CoverImage == nil && p.ISBN == nil && p.PublicationYear == nil && p.Publisher == nil
}

type BookResponse struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Author          string      `json:"author"`
	Description     string      `json:"description"`
	Genre           []string    `json:"genre"`
	CoverImage      string      `json:"coverImage,omitempty"`
	ISBN            string      `json:"isbn,omitempty"`
	PublicationYear int         `json:"publicationYear,omitempty"`
	Publisher       string      `json:"publisher,omitempty"`
	AverageRating   float64     `json:"averageRating"`
	ReviewCount     int         `json:"reviewCount"`
	AddedBy         UserSummary `json:"addedBy"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Sortable book fields.
const (
	BookSortTitle           = "title"
	BookSortAuthor          = "author"
	BookSortPublicationYear = "publicationYear"
	BookSortAverageRating   = "averageRating"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// BookQuery selects a page of the catalogue.
type BookQuery struct {
	Page      int
	Limit     int
	Genre     string
	Author    string
	Search    string
	SortBy    string
	SortOrder string
}

// Normalize fills in defaults: page 1, limit 10 (max 100), title ascending.
func (q BookQuery) Normalize() BookQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	switch q.SortBy {
	case BookSortTitle, BookSortAuthor, BookSortPublicationYear, BookSortAverageRating:
	default:
		q.SortBy = BookSortTitle
	}
	if q.SortOrder != SortDesc {
		q.SortOrder = SortAsc
	}
	return q
}

// Skip is the number of documents before the requested page.
func (q BookQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

// BookPage is one page of the catalogue.
type BookPage struct {
	Data        []BookResponse `json:"data"`
	TotalCount  int64          `json:"totalCount"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// TotalPages returns ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Author is one distinct author name in the catalogue.
type Author struct {
	Name string `bson:"name" json:"name"`
}
