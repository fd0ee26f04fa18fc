package store

import (
	"context"
	"regexp"
	"time"

	"github.com/kevinaaaquil/bookreview/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxSearchResults bounds a free-text search.
const maxSearchResults = 100

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// FindBook returns the stored book without aggregates, or nil if it does not exist.
func (db *DB) FindBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// BookByID returns the book with its rating aggregates, or nil if it does not exist.
func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.BookWithStats, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
	}, ratingStages()...)
	books, err := db.aggregateBooks(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, nil
	}
	return &books[0], nil
}

// ListBooks returns one page of books matching q and the total number of matches.
// q must already be normalized.
func (db *DB) ListBooks(ctx context.Context, q models.BookQuery) ([]models.BookWithStats, int64, error) {
	filter := bookFilter(q)
	total, err := db.Books().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.BookWithStats{}, 0, nil
	}
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: filter}},
	}, ratingStages()...)
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bookSort(q)}},
		bson.D{{Key: "$skip", Value: q.Skip()}},
		bson.D{{Key: "$limit", Value: int64(q.Limit)}},
	)
	books, err := db.aggregateBooks(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// SearchBooks runs a text search over title and author, best matches first.
func (db *DB) SearchBooks(ctx context.Context, query string) ([]models.BookWithStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: query}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}}},
		{{Key: "$limit", Value: int64(maxSearchResults)}},
	}
	pipeline = append(pipeline, ratingStages()...)
	return db.aggregateBooks(ctx, pipeline)
}

// UpdateBook applies a partial update. It reports false when no book has that id.
func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, patch models.BookPatch) (bool, error) {
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bookPatchSet(patch, time.Now().UTC())})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SetBookCover points the book at an uploaded cover image.
func (db *DB) SetBookCover(ctx context.Context, id primitive.ObjectID, coverImage, coverKey string) error {
	set := bson.M{
		"coverImage": coverImage,
		"coverKey":   coverKey,
		"updatedAt":  time.Now().UTC(),
	}
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// DeleteBook removes a book and returns the deleted document, or nil if it did not exist.
func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Authors lists the distinct author names in the catalogue, alphabetically.
func (db *DB) Authors(ctx context.Context) ([]models.Author, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$author"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}, {Key: "name", Value: "$_id"}}}},
	}
	cur, err := db.Books().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	authors := []models.Author{}
	if err := cur.All(ctx, &authors); err != nil {
		return nil, err
	}
	return authors, nil
}

func (db *DB) aggregateBooks(ctx context.Context, pipeline mongo.Pipeline) ([]models.BookWithStats, error) {
	cur, err := db.Books().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	books := []models.BookWithStats{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// bookFilter builds the $match document for a catalogue query: exact genre,
// case-insensitive substring on author, and a case-insensitive substring
// search over title or author.
func bookFilter(q models.BookQuery) bson.D {
	filter := bson.D{}
	if q.Genre != "" {
		filter = append(filter, bson.E{Key: "genre", Value: q.Genre})
	}
	if q.Author != "" {
		filter = append(filter, bson.E{Key: "author", Value: containsRegex(q.Author)})
	}
	if q.Search != "" {
		re := containsRegex(q.Search)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "author", Value: re}},
		}})
	}
	return filter
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// bookSort orders by the requested field with _id as a tiebreaker so pages are stable.
func bookSort(q models.BookQuery) bson.D {
	return bson.D{
		{Key: q.SortBy, Value: sortDirection(q.SortOrder)},
		{Key: "_id", Value: 1},
	}
}

func bookPatchSet(p models.BookPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Author != nil {
		set["author"] = *p.Author
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Genre != nil {
		set["genre"] = p.Genre
	}
	if p.CoverImage != nil {
		set["coverImage"] = *p.CoverImage
	}
	if p.ISBN != nil {
		set["isbn"] = *p.ISBN
	}
	if p.PublicationYear != nil {
		set["publicationYear"] = *p.PublicationYear
	}
	if p.Publisher != nil {
		set["publisher"] = *p.Publisher
	}
	return set
}

func sortDirection(order string) int {
	if order == models.SortDesc {
		return -1
	}
	return 1
}
