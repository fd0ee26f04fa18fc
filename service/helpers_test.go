package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kevinaaaquil/bookreview/models"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	db      *memStore
	covers  *memCovers
	auth    *AuthService
	books   *BookService
	reviews *ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newMemStore()
	covers := newMemCovers()
	auth := NewAuthService(db, "test-secret", time.Hour)
	auth.cost = bcrypt.MinCost
	books := NewBookService(db, db, db, covers, nil)
	reviews := NewReviewService(db, books, db)

	// Strictly increasing timestamps keep createdAt ordering deterministic.
	var mu sync.Mutex
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	books.now = tick
	reviews.now = tick

	return &fixture{db: db, covers: covers, auth: auth, books: books, reviews: reviews}
}

func (f *fixture) register(t *testing.T, username string) primitive.ObjectID {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	id, err := primitive.ObjectIDFromHex(u.ID)
	require.NoError(t, err)
	return id
}

func (f *fixture) makeAdmin(t *testing.T, username string) primitive.ObjectID {
	t.Helper()
	require.NoError(t, f.auth.EnsureAdmin(context.Background(), username, username+"@example.com", "secret123"))
	u, err := f.db.UserByEmail(context.Background(), username+"@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.ID
}

func (f *fixture) addBook(t *testing.T, title string, owner primitive.ObjectID) *models.BookResponse {
	t.Helper()
	b, err := f.books.CreateBook(context.Background(), models.BookInput{
		Title:       title,
		Author:      "Frank Herbert",
		Description: "A novel",
		Genre:       []string{"Science Fiction"},
	}, owner)
	require.NoError(t, err)
	return b
}
