package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kevinaaaquil/bookreview/models"
	"github.com/kevinaaaquil/bookreview/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory UserStore, BookStore and ReviewStore. Like the
// Mongo indexes, it rejects a second review for the same (book, user).
type memStore struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]models.User
	books   map[primitive.ObjectID]models.Book
	reviews map[primitive.ObjectID]models.Review
	order   []primitive.ObjectID
	// skipExistenceCheck makes FindByUserAndBook always miss, to exercise the index path.
	skipExistenceCheck bool
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[primitive.ObjectID]models.User{},
		books:   map[primitive.ObjectID]models.Book{},
		reviews: map[primitive.ObjectID]models.Review{},
	}
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.Email == email }), nil
}

func (m *memStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.Username == username }), nil
}

func (m *memStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.ID == id }), nil
}

func (m *memStore) UsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}
	u := *user
	u.ID = primitive.NewObjectID()
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memStore) findUser(match func(models.User) bool) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			u := u
			return &u
		}
	}
	return nil
}

func (m *memStore) InsertBook(_ context.Context, book *models.Book) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := *book
	b.ID = primitive.NewObjectID()
	m.books[b.ID] = b
	m.order = append(m.order, b.ID)
	return b.ID, nil
}

func (m *memStore) FindBook(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memStore) BookByID(_ context.Context, id primitive.ObjectID) (*models.BookWithStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	return &models.BookWithStats{Book: b, RatingStats: m.statsLocked(id)}, nil
}

func (m *memStore) ListBooks(_ context.Context, q models.BookQuery) ([]models.BookWithStats, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.BookWithStats
	for _, id := range m.order {
		b, ok := m.books[id]
		if !ok {
			continue
		}
		if q.Genre != "" && !containsString(b.Genre, q.Genre) {
			continue
		}
		if q.Author != "" && !containsFold(b.Author, q.Author) {
			continue
		}
		if q.Search != "" && !containsFold(b.Title, q.Search) && !containsFold(b.Author, q.Search) {
			continue
		}
		all = append(all, models.BookWithStats{Book: b, RatingStats: m.statsLocked(id)})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if q.SortOrder == models.SortDesc {
			return bookLess(all[j], all[i], q.SortBy)
		}
		return bookLess(all[i], all[j], q.SortBy)
	})
	total := int64(len(all))
	start := int(q.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memStore) SearchBooks(_ context.Context, query string) ([]models.BookWithStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.BookWithStats{}
	for _, id := range m.order {
		b, ok := m.books[id]
		if !ok {
			continue
		}
		if containsFold(b.Title, query) || containsFold(b.Author, query) {
			out = append(out, models.BookWithStats{Book: b, RatingStats: m.statsLocked(id)})
		}
	}
	return out, nil
}

func (m *memStore) UpdateBook(_ context.Context, id primitive.ObjectID, p models.BookPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return false, nil
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Genre != nil {
		b.Genre = p.Genre
	}
	if p.CoverImage != nil {
		b.CoverImage = *p.CoverImage
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.PublicationYear != nil {
		b.PublicationYear = *p.PublicationYear
	}
	if p.Publisher != nil {
		b.Publisher = *p.Publisher
	}
	b.UpdatedAt = time.Now().UTC()
	m.books[id] = b
	return true, nil
}

func (m *memStore) SetBookCover(_ context.Context, id primitive.ObjectID, coverImage, coverKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.books[id]
	b.CoverImage = coverImage
	b.CoverKey = coverKey
	m.books[id] = b
	return nil
}

func (m *memStore) DeleteBook(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	delete(m.books, id)
	return &b, nil
}

func (m *memStore) Authors(_ context.Context) ([]models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var names []string
	for _, b := range m.books {
		if !seen[b.Author] {
			seen[b.Author] = true
			names = append(names, b.Author)
		}
	}
	sort.Strings(names)
	out := make([]models.Author, 0, len(names))
	for _, n := range names {
		out = append(out, models.Author{Name: n})
	}
	return out, nil
}

func (m *memStore) InsertReview(_ context.Context, review *models.Review) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.BookID == review.BookID && r.UserID == review.UserID {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}
	r := *review
	r.ID = primitive.NewObjectID()
	m.reviews[r.ID] = r
	return r.ID, nil
}

func (m *memStore) ReviewByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) FindByUserAndBook(_ context.Context, userID, bookID primitive.ObjectID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skipExistenceCheck {
		return nil, nil
	}
	for _, r := range m.reviews {
		if r.BookID == bookID && r.UserID == userID {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memStore) ReviewsByBook(_ context.Context, bookID primitive.ObjectID, q models.ReviewQuery) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Review
	for _, r := range m.reviews {
		if r.BookID == bookID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if q.SortOrder == models.SortDesc {
			a, b = b, a
		}
		if q.SortBy == models.ReviewSortRating {
			return a.Rating < b.Rating
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	start := int(q.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *memStore) UpdateReview(_ context.Context, id primitive.ObjectID, p models.ReviewPatch) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, nil
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
	r.UpdatedAt = time.Now().UTC()
	m.reviews[id] = r
	return &r, nil
}

func (m *memStore) DeleteReview(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return false, nil
	}
	delete(m.reviews, id)
	return true, nil
}

func (m *memStore) DeleteReviewsByBook(_ context.Context, bookID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.reviews {
		if r.BookID == bookID {
			delete(m.reviews, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) AverageRatingForBook(_ context.Context, bookID primitive.ObjectID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsLocked(bookID).AverageRating, nil
}

func (m *memStore) statsLocked(bookID primitive.ObjectID) models.RatingStats {
	var sum, n int
	for _, r := range m.reviews {
		if r.BookID == bookID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return models.RatingStats{}
	}
	return models.RatingStats{AverageRating: float64(sum) / float64(n), ReviewCount: n}
}

func bookLess(a, b models.BookWithStats, field string) bool {
	switch field {
	case models.BookSortAuthor:
		return a.Author < b.Author
	case models.BookSortPublicationYear:
		return a.PublicationYear < b.PublicationYear
	case models.BookSortAverageRating:
		return a.AverageRating < b.AverageRating
	default:
		return a.Title < b.Title
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// memCovers is an in-memory CoverStorage.
type memCovers struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newMemCovers() *memCovers {
	return &memCovers{objects: map[string][]byte{}, types: map[string]string{}}
}

func (c *memCovers) Upload(_ context.Context, prefix, originalFilename string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := coverKey(prefix, originalFilename)
	c.objects[key] = data
	c.types[key] = contentType
	return key, nil
}

func (c *memCovers) GetObject(_ context.Context, key string) (io.ReadCloser, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[key]
	if !ok {
		return nil, "", io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), c.types[key], nil
}

func (c *memCovers) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
	c.deleted = append(c.deleted, key)
	return nil
}
