package store

import (
	"context"

	"github.com/kevinaaaquil/bookreview/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ratingStages joins every book in the pipeline with the ratings of its reviews
// and adds averageRating and reviewCount. A book without reviews gets 0 and 0.
// All book read paths append these stages so the aggregate is computed the same way.
func ratingStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: reviewsCollection},
			{Key: "let", Value: bson.D{{Key: "bookId", Value: "$_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$eq", Value: bson.A{"$bookId", "$$bookId"}},
				}}}}},
				bson.D{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}, {Key: "rating", Value: 1}}}},
			}},
			{Key: "as", Value: "_ratings"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "averageRating", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$avg", Value: "$_ratings.rating"}}, 0,
			}}}},
			{Key: "reviewCount", Value: bson.D{{Key: "$size", Value: "$_ratings"}}},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "_ratings", Value: 0}}}},
	}
}

// RatingStats computes the mean rating and review count of one book.
func (db *DB) RatingStats(ctx context.Context, bookID primitive.ObjectID) (models.RatingStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "bookId", Value: bookID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "averageRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "reviewCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := db.Reviews().Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingStats{}, err
	}
	defer cur.Close(ctx)
	var out []models.RatingStats
	if err := cur.All(ctx, &out); err != nil {
		return models.RatingStats{}, err
	}
	if len(out) == 0 {
		return models.RatingStats{}, nil
	}
	return out[0], nil
}

// AverageRatingForBook returns the mean rating of a book, or 0 when it has no reviews.
func (db *DB) AverageRatingForBook(ctx context.Context, bookID primitive.ObjectID) (float64, error) {
	stats, err := db.RatingStats(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return stats.AverageRating, nil
}
