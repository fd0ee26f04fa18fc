package service

import (
	"context"
	"io"

	"github.com/kevinaaaquil/bookreview/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the identity persistence used by the services. *store.DB implements it.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
}

// BookStore is the catalogue persistence. *store.DB implements it.
type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	FindBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.BookWithStats, error)
	ListBooks(ctx context.Context, q models.BookQuery) ([]models.BookWithStats, int64, error)
	SearchBooks(ctx context.Context, query string) ([]models.BookWithStats, error)
	UpdateBook(ctx context.Context, id primitive.ObjectID, patch models.BookPatch) (bool, error)
	SetBookCover(ctx context.Context, id primitive.ObjectID, coverImage, coverKey string) error
	DeleteBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	Authors(ctx context.Context) ([]models.Author, error)
}

// ReviewStore is the review persistence. *store.DB implements it.
// InsertReview must return store.ErrDuplicate when (bookId, userId) already exists.
type ReviewStore interface {
	InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error)
	ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindByUserAndBook(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Review, error)
	ReviewsByBook(ctx context.Context, bookID primitive.ObjectID, q models.ReviewQuery) ([]models.Review, error)
	UpdateReview(ctx context.Context, id primitive.ObjectID, patch models.ReviewPatch) (*models.Review, error)
	DeleteReview(ctx context.Context, id primitive.ObjectID) (bool, error)
	DeleteReviewsByBook(ctx context.Context, bookID primitive.ObjectID) (int64, error)
	AverageRatingForBook(ctx context.Context, bookID primitive.ObjectID) (float64, error)
}

// CoverStorage keeps uploaded cover images. *S3Service implements it.
type CoverStorage interface {
	Upload(ctx context.Context, prefix, originalFilename string, body io.Reader, contentType string) (string, error)
	GetObject(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}
