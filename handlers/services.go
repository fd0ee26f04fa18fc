package handlers

import (
	"context"
	"io"

	"github.com/kevinaaaquil/bookreview/models"
	"github.com/kevinaaaquil/bookreview/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthService is implemented by *service.AuthService.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.UserSummary, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserSummary, error)
	ParseToken(token string) (*service.Claims, error)
}

// BookService is implemented by *service.BookService.
type BookService interface {
	CreateBook(ctx context.Context, in models.BookInput, userID primitive.ObjectID) (*models.BookResponse, error)
	GetBookByID(ctx context.Context, id string) (*models.BookResponse, error)
	GetAllBooks(ctx context.Context, q models.BookQuery) (*models.BookPage, error)
	SearchBooks(ctx context.Context, query string) ([]models.BookResponse, error)
	UpdateBook(ctx context.Context, id string, patch models.BookPatch, userID primitive.ObjectID, isAdmin bool) (*models.BookResponse, error)
	DeleteBook(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool) (bool, error)
	Authors(ctx context.Context) ([]models.Author, error)
	SetCover(ctx context.Context, id string, upload service.CoverUpload, userID primitive.ObjectID, isAdmin bool) (*models.BookResponse, error)
	Cover(ctx context.Context, id string) (io.ReadCloser, string, error)
	LookupISBN(ctx context.Context, isbn string) (*models.BookInput, error)
}

// ReviewService is implemented by *service.ReviewService.
type ReviewService interface {
	CreateReview(ctx context.Context, bookID string, userID primitive.ObjectID, rating int, comment string) (*models.ReviewResponse, error)
	GetReviewByID(ctx context.Context, id string) (*models.ReviewResponse, error)
	GetReviewsByBookID(ctx context.Context, bookID string, q models.ReviewQuery) ([]models.ReviewResponse, error)
	UpdateReview(ctx context.Context, id string, patch models.ReviewPatch, userID primitive.ObjectID, isAdmin bool) (*models.ReviewResponse, error)
	DeleteReview(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool) (bool, error)
}
