package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/logging"
	"github.com/kevinaaaquil/bookreview/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgBookNotFound = "Book not found"
	minSearchLength = 2
	coverPrefix     = "books/covers/"
)

// BookService owns the catalogue rules: ownership checks on mutation and
// response shaping with rating aggregates and the owner's summary.
type BookService struct {
	books   BookStore
	reviews ReviewStore
	users   *UserResolver
	covers  CoverStorage
	lookup  *MetadataClient
	now     func() time.Time
}

// NewBookService wires the catalogue. covers and lookup may be nil, in which
// case cover uploads and ISBN lookups report the feature as unavailable.
func NewBookService(books BookStore, reviews ReviewStore, users UserStore, covers CoverStorage, lookup *MetadataClient) *BookService {
	return &BookService{
		books:   books,
		reviews: reviews,
		users:   NewUserResolver(users),
		covers:  covers,
		lookup:  lookup,
		now:     time.Now,
	}
}

// CreateBook stores a book owned by userID.
func (s *BookService) CreateBook(ctx context.Context, in models.BookInput, userID primitive.ObjectID) (*models.BookResponse, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
		return nil, apperr.Validation("title and author are required")
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	book := &models.Book{
		Title:           in.Title,
		Author:          in.Author,
		Description:     in.Description,
		Genre:           in.Genre,
		CoverImage:      in.CoverImage,
		ISBN:            in.ISBN,
		PublicationYear: in.PublicationYear,
		Publisher:       in.Publisher,
		AddedBy:         userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	id, err := s.books.InsertBook(ctx, book)
	if err != nil {
		return nil, storeFailure("insert_book", err, "failed to create book")
	}
	book.ID = id

	owners, err := s.users.Resolve(ctx, userID)
	if err != nil {
		return nil, storeFailure("resolve_users", err, "failed to create book")
	}
	resp := toBookResponse(&models.BookWithStats{Book: *book}, owners.For(userID))
	return &resp, nil
}

// BookExists reports whether id names a stored book.
func (s *BookService) BookExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	book, err := s.books.FindBook(ctx, id)
	if err != nil {
		return false, storeFailure("find_book", err, "failed to load book")
	}
	return book != nil, nil
}

func (s *BookService) GetBookByID(ctx context.Context, id string) (*models.BookResponse, error) {
	oid, err := parseID(id, msgBookNotFound)
	if err != nil {
		return nil, err
	}
	return s.bookResponse(ctx, oid)
}

// GetAllBooks returns one page of the catalogue.
func (s *BookService) GetAllBooks(ctx context.Context, q models.BookQuery) (*models.BookPage, error) {
	q = q.Normalize()
	books, total, err := s.books.ListBooks(ctx, q)
	if err != nil {
		return nil, storeFailure("list_books", err, "failed to list books")
	}
	data, err := s.shapeBooks(ctx, books)
	if err != nil {
		return nil, err
	}
	return &models.BookPage{
		Data:        data,
		TotalCount:  total,
		TotalPages:  models.TotalPages(total, q.Limit),
		CurrentPage: q.Page,
	}, nil
}

// SearchBooks runs a relevance-ranked search over title and author.
func (s *BookService) SearchBooks(ctx context.Context, query string) ([]models.BookResponse, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchLength {
		return nil, apperr.Validation("Search query must be at least 2 characters long")
	}
	books, err := s.books.SearchBooks(ctx, query)
	if err != nil {
		return nil, storeFailure("search_books", err, "failed to search books")
	}
	return s.shapeBooks(ctx, books)
}

// UpdateBook applies patch when userID created the book or isAdmin is set.
func (s *BookService) UpdateBook(ctx context.Context, id string, patch models.BookPatch, userID primitive.ObjectID, isAdmin bool) (*models.BookResponse, error) {
	book, err := s.ownedBook(ctx, id, userID, isAdmin, "Unauthorized to update this book")
	if err != nil {
		return nil, err
	}
	if !patch.Empty() {
		ok, err := s.books.UpdateBook(ctx, book.ID, patch)
		if err != nil {
			return nil, storeFailure("update_book", err, "failed to update book")
		}
		if !ok {
			return nil, apperr.NotFound(msgBookNotFound)
		}
	}
	return s.bookResponse(ctx, book.ID)
}

// DeleteBook removes the book, its reviews and its uploaded cover.
func (s *BookService) DeleteBook(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool) (bool, error) {
	book, err := s.ownedBook(ctx, id, userID, isAdmin, "Unauthorized to delete this book")
	if err != nil {
		return false, err
	}
	deleted, err := s.books.DeleteBook(ctx, book.ID)
	if err != nil {
		return false, storeFailure("delete_book", err, "failed to delete book")
	}
	if deleted == nil {
		return false, apperr.NotFound(msgBookNotFound)
	}

	if n, err := s.reviews.DeleteReviewsByBook(ctx, book.ID); err != nil {
		logging.Error().Err(err).Str("book", book.ID.Hex()).Msg("failed to delete reviews of deleted book")
	} else if n > 0 {
		logging.Debug().Str("book", book.ID.Hex()).Int64("reviews", n).Msg("deleted reviews of deleted book")
	}
	if deleted.CoverKey != "" && s.covers != nil {
		if err := s.covers.Delete(ctx, deleted.CoverKey); err != nil {
			logging.Error().Err(err).Str("key", deleted.CoverKey).Msg("failed to delete cover object")
		}
	}
	return true, nil
}

// Authors lists the distinct authors in the catalogue.
func (s *BookService) Authors(ctx context.Context) ([]models.Author, error) {
	authors, err := s.books.Authors(ctx)
	if err != nil {
		return nil, storeFailure("authors", err, "Failed to fetch authors")
	}
	return authors, nil
}

// CoverUpload is an image to store as a book's cover.
type CoverUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	// URL is where clients will fetch the stored cover.
	URL string
}

// SetCover stores an uploaded cover image and points the book at it.
func (s *BookService) SetCover(ctx context.Context, id string, upload CoverUpload, userID primitive.ObjectID, isAdmin bool) (*models.BookResponse, error) {
	book, err := s.ownedBook(ctx, id, userID, isAdmin, "Unauthorized to update this book")
	if err != nil {
		return nil, err
	}
	if s.covers == nil {
		return nil, apperr.Unavailable("cover uploads are not configured")
	}
	key, err := s.covers.Upload(ctx, coverPrefix, upload.Filename, upload.Body, upload.ContentType)
	if err != nil {
		logging.Error().Err(err).Str("book", book.ID.Hex()).Msg("cover upload failed")
		return nil, apperr.Internal(err, "failed to upload cover")
	}
	if err := s.books.SetBookCover(ctx, book.ID, upload.URL, key); err != nil {
		return nil, storeFailure("set_book_cover", err, "failed to update book")
	}
	if book.CoverKey != "" && book.CoverKey != key {
		if err := s.covers.Delete(ctx, book.CoverKey); err != nil {
			logging.Error().Err(err).Str("key", book.CoverKey).Msg("failed to delete previous cover")
		}
	}
	return s.bookResponse(ctx, book.ID)
}

// Cover opens the stored cover image of a book. The caller closes the reader.
func (s *BookService) Cover(ctx context.Context, id string) (io.ReadCloser, string, error) {
	oid, err := parseID(id, msgBookNotFound)
	if err != nil {
		return nil, "", err
	}
	book, err := s.books.FindBook(ctx, oid)
	if err != nil {
		return nil, "", storeFailure("find_book", err, "failed to load book")
	}
	if book == nil {
		return nil, "", apperr.NotFound(msgBookNotFound)
	}
	if book.CoverKey == "" || s.covers == nil {
		return nil, "", apperr.NotFound("no cover")
	}
	body, contentType, err := s.covers.GetObject(ctx, book.CoverKey)
	if err != nil {
		return nil, "", apperr.Internal(err, "failed to load cover")
	}
	return body, contentType, nil
}

// LookupISBN fetches a draft book from the metadata provider to prefill a new entry.
func (s *BookService) LookupISBN(ctx context.Context, isbn string) (*models.BookInput, error) {
	if s.lookup == nil {
		return nil, apperr.Unavailable("ISBN lookup is not configured")
	}
	if cleanISBN(isbn) == "" {
		return nil, apperr.Validation("isbn is required")
	}
	draft, err := s.lookup.LookupISBN(ctx, isbn)
	if errors.Is(err, ErrNoVolume) {
		return nil, apperr.NotFound("No book found for this ISBN")
	}
	if err != nil {
		logging.Warn().Err(err).Str("isbn", isbn).Msg("isbn lookup failed")
		return nil, apperr.Unavailable("ISBN lookup failed")
	}
	return draft, nil
}

// ownedBook loads a book and applies the owner-or-admin rule.
func (s *BookService) ownedBook(ctx context.Context, id string, userID primitive.ObjectID, isAdmin bool, forbidden string) (*models.Book, error) {
	oid, err := parseID(id, msgBookNotFound)
	if err != nil {
		return nil, err
	}
	book, err := s.books.FindBook(ctx, oid)
	if err != nil {
		return nil, storeFailure("find_book", err, "failed to load book")
	}
	if book == nil {
		return nil, apperr.NotFound(msgBookNotFound)
	}
	if !canModify(book.AddedBy, userID, isAdmin) {
		return nil, apperr.Forbidden(forbidden)
	}
	return book, nil
}

func (s *BookService) bookResponse(ctx context.Context, id primitive.ObjectID) (*models.BookResponse, error) {
	book, err := s.books.BookByID(ctx, id)
	if err != nil {
		return nil, storeFailure("book_by_id", err, "failed to load book")
	}
	if book == nil {
		return nil, apperr.NotFound(msgBookNotFound)
	}
	owners, err := s.users.Resolve(ctx, book.AddedBy)
	if err != nil {
		return nil, storeFailure("resolve_users", err, "failed to load book")
	}
	resp := toBookResponse(book, owners.For(book.AddedBy))
	return &resp, nil
}

func (s *BookService) shapeBooks(ctx context.Context, books []models.BookWithStats) ([]models.BookResponse, error) {
	ids := make([]primitive.ObjectID, 0, len(books))
	for i := range books {
		ids = append(ids, books[i].AddedBy)
	}
	owners, err := s.users.Resolve(ctx, ids...)
	if err != nil {
		return nil, storeFailure("resolve_users", err, "failed to load books")
	}
	out := make([]models.BookResponse, 0, len(books))
	for i := range books {
		out = append(out, toBookResponse(&books[i], owners.For(books[i].AddedBy)))
	}
	return out, nil
}
