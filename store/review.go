package store

import (
	"context"
	"time"

	"github.com/kevinaaaquil/bookreview/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertReview stores a new review. It returns ErrDuplicate when the user has
// already reviewed the book, as enforced by the unique (bookId, userId) index.
func (db *DB) InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	res, err := db.Reviews().InsertOne(ctx, review, options.InsertOne())
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, ErrDuplicate
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return db.findReview(ctx, bson.M{"_id": id})
}

// FindByUserAndBook returns the user's review of the book, or nil if there is none.
func (db *DB) FindByUserAndBook(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Review, error) {
	return db.findReview(ctx, bson.M{"bookId": bookID, "userId": userID})
}

// ReviewsByBook returns one page of a book's reviews. q must already be normalized.
func (db *DB) ReviewsByBook(ctx context.Context, bookID primitive.ObjectID, q models.ReviewQuery) ([]models.Review, error) {
	opts := options.Find().
		SetSort(reviewSort(q)).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))
	cur, err := db.Reviews().Find(ctx, bson.M{"bookId": bookID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	reviews := []models.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// UpdateReview applies a partial update and returns the updated review, or nil if it does not exist.
func (db *DB) UpdateReview(ctx context.Context, id primitive.ObjectID, patch models.ReviewPatch) (*models.Review, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var review models.Review
	err := db.Reviews().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": reviewPatchSet(patch, time.Now().UTC())}, opts).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview reports whether a review was removed.
func (db *DB) DeleteReview(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Reviews().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteReviewsByBook removes every review of a book.
func (db *DB) DeleteReviewsByBook(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	res, err := db.Reviews().DeleteMany(ctx, bson.M{"bookId": bookID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (db *DB) findReview(ctx context.Context, filter bson.M) (*models.Review, error) {
	var review models.Review
	err := db.Reviews().FindOne(ctx, filter).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func reviewSort(q models.ReviewQuery) bson.D {
	return bson.D{
		{Key: q.SortBy, Value: sortDirection(q.SortOrder)},
		{Key: "_id", Value: sortDirection(q.SortOrder)},
	}
}

func reviewPatchSet(p models.ReviewPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.Comment != nil {
		set["comment"] = *p.Comment
	}
	return set
}
