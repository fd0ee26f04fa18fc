package handlers

import (
	"context"
	"io"
	"strings"

	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/models"
	"github.com/kevinaaaquil/bookreview/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	aliceID = primitive.NewObjectID()
	adminID = primitive.NewObjectID()
)

// stubAuth accepts the tokens "alice" and "admin".
type stubAuth struct {
	registered []service.RegisterInput
}

func (s *stubAuth) Register(_ context.Context, in service.RegisterInput) (*models.UserSummary, error) {
	if in.Email == "taken@example.com" {
		return nil, apperr.Conflict("Email already in use")
	}
	s.registered = append(s.registered, in)
	return &models.UserSummary{ID: aliceID.Hex(), Username: in.Username, Email: in.Email}, nil
}

func (s *stubAuth) Login(_ context.Context, email, password string) (*service.LoginResult, error) {
	if password != "secret123" {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return &service.LoginResult{
		User:  models.UserSummary{ID: aliceID.Hex(), Username: "alice", Email: email},
		Token: "alice",
	}, nil
}

func (s *stubAuth) Profile(_ context.Context, userID primitive.ObjectID) (*models.UserSummary, error) {
	return &models.UserSummary{ID: userID.Hex(), Username: "alice"}, nil
}

func (s *stubAuth) ParseToken(token string) (*service.Claims, error) {
	switch token {
	case "alice":
		return &service.Claims{ID: aliceID.Hex(), Username: "alice"}, nil
	case "admin":
		return &service.Claims{ID: adminID.Hex(), Username: "root", IsAdmin: true}, nil
	}
	return nil, apperr.Unauthorized("Invalid or expired token")
}

type updateCall struct {
	id      string
	userID  primitive.ObjectID
	isAdmin bool
	patch   models.BookPatch
}

// stubBooks records the arguments of the calls it receives.
type stubBooks struct {
	lastQuery  models.BookQuery
	lastCreate models.BookInput
	lastUpdate updateCall
	lastCover  service.CoverUpload
	coverBytes string
}

func (s *stubBooks) CreateBook(_ context.Context, in models.BookInput, userID primitive.ObjectID) (*models.BookResponse, error) {
	s.lastCreate = in
	return &models.BookResponse{ID: "b1", Title: in.Title, Author: in.Author, Genre: in.Genre, AddedBy: models.UserSummary{ID: userID.Hex()}}, nil
}

func (s *stubBooks) GetBookByID(_ context.Context, id string) (*models.BookResponse, error) {
	if id != "b1" {
		return nil, apperr.NotFound("Book not found")
	}
	return &models.BookResponse{ID: "b1", Title: "Dune", Genre: []string{}, AverageRating: 5, ReviewCount: 1}, nil
}

func (s *stubBooks) GetAllBooks(_ context.Context, q models.BookQuery) (*models.BookPage, error) {
	s.lastQuery = q
	return &models.BookPage{Data: []models.BookResponse{}, TotalCount: 15, TotalPages: 2, CurrentPage: 2}, nil
}

func (s *stubBooks) SearchBooks(_ context.Context, query string) ([]models.BookResponse, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return nil, apperr.Validation("Search query must be at least 2 characters long")
	}
	return []models.BookResponse{}, nil
}

func (s *stubBooks) UpdateBook(_ context.Context, id string, patch models.BookPatch, userID primitive.ObjectID, isAdmin bool) (*models.BookResponse, error) {
	s.lastUpdate = updateCall{id: id, userID: userID, isAdmin: isAdmin, patch: patch}
	if userID != aliceID && !isAdmin {
		return nil, apperr.Forbidden("Unauthorized to update this book")
	}
	return &models.BookResponse{ID: id, Title: "Dune"}, nil
}

func (s *stubBooks) DeleteBook(_ context.Context, id string, userID primitive.ObjectID, isAdmin bool) (bool, error) {
	if id != "b1" {
		return false, apperr.NotFound("Book not found")
	}
	return true, nil
}

func (s *stubBooks) Authors(context.Context) ([]models.Author, error) {
	return []models.Author{{Name: "Frank Herbert"}}, nil
}

func (s *stubBooks) SetCover(_ context.Context, id string, upload service.CoverUpload, _ primitive.ObjectID, _ bool) (*models.BookResponse, error) {
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return nil, err
	}
	s.lastCover = upload
	s.coverBytes = string(data)
	return &models.BookResponse{ID: id, CoverImage: upload.URL}, nil
}

func (s *stubBooks) Cover(_ context.Context, id string) (io.ReadCloser, string, error) {
	if id != "b1" {
		return nil, "", apperr.NotFound("no cover")
	}
	return io.NopCloser(strings.NewReader("png-bytes")), "image/png", nil
}

func (s *stubBooks) LookupISBN(_ context.Context, isbn string) (*models.BookInput, error) {
	return &models.BookInput{Title: "Dune", Author: "Frank Herbert", ISBN: isbn, Genre: []string{}}, nil
}

type stubReviews struct {
	reviewed map[string]bool
}

func (s *stubReviews) CreateReview(_ context.Context, bookID string, userID primitive.ObjectID, rating int, comment string) (*models.ReviewResponse, error) {
	key := bookID + userID.Hex()
	if s.reviewed[key] {
		return nil, apperr.Conflict("You have already reviewed this book")
	}
	if s.reviewed == nil {
		s.reviewed = map[string]bool{}
	}
	s.reviewed[key] = true
	return &models.ReviewResponse{ID: "r1", BookID: bookID, Rating: rating, Comment: comment, User: models.UserSummary{ID: userID.Hex()}}, nil
}

func (s *stubReviews) GetReviewByID(_ context.Context, id string) (*models.ReviewResponse, error) {
	if id != "r1" {
		return nil, apperr.NotFound("Review not found")
	}
	return &models.ReviewResponse{ID: "r1", Rating: 4}, nil
}

func (s *stubReviews) GetReviewsByBookID(_ context.Context, bookID string, q models.ReviewQuery) ([]models.ReviewResponse, error) {
	return []models.ReviewResponse{{ID: "r1", BookID: bookID, Rating: 4}}, nil
}

func (s *stubReviews) UpdateReview(_ context.Context, id string, patch models.ReviewPatch, userID primitive.ObjectID, isAdmin bool) (*models.ReviewResponse, error) {
	if userID != aliceID && !isAdmin {
		return nil, apperr.Forbidden("Unauthorized to update this review")
	}
	resp := &models.ReviewResponse{ID: id, Rating: 1, Comment: "old"}
	if patch.Rating != nil {
		resp.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		resp.Comment = *patch.Comment
	}
	return resp, nil
}

func (s *stubReviews) DeleteReview(_ context.Context, id string, userID primitive.ObjectID, isAdmin bool) (bool, error) {
	if userID != aliceID && !isAdmin {
		return false, apperr.Forbidden("Unauthorized to delete this review")
	}
	return true, nil
}
