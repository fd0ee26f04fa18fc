package store

import (
	"testing"
	"time"

	"github.com/kevinaaaquil/bookreview/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBookFilter_Empty(t *testing.T) {
	assert.Empty(t, bookFilter(models.BookQuery{}))
}

func TestBookFilter_GenreAuthorSearch(t *testing.T) {
	f := bookFilter(models.BookQuery{Genre: "Science Fiction", Author: "herb.ert", Search: "du(ne"})
	require.Len(t, f, 3)

	assert.Equal(t, bson.E{Key: "genre", Value: "Science Fiction"}, f[0])

	assert.Equal(t, "author", f[1].Key)
	assert.Equal(t, primitive.Regex{Pattern: `herb\.ert`, Options: "i"}, f[1].Value)

	assert.Equal(t, "$or", f[2].Key)
	or, ok := f[2].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	re := primitive.Regex{Pattern: `du\(ne`, Options: "i"}
	assert.Equal(t, bson.D{{Key: "title", Value: re}}, or[0])
	assert.Equal(t, bson.D{{Key: "author", Value: re}}, or[1])
}

func TestBookSort(t *testing.T) {
	q := models.BookQuery{SortBy: models.BookSortAverageRating, SortOrder: models.SortDesc}.Normalize()
	assert.Equal(t, bson.D{{Key: "averageRating", Value: -1}, {Key: "_id", Value: 1}}, bookSort(q))

	q = models.BookQuery{}.Normalize()
	assert.Equal(t, bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}, bookSort(q))
}

func TestReviewSort_DefaultsToNewestFirst(t *testing.T) {
	q := models.ReviewQuery{}.Normalize()
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, reviewSort(q))

	q = models.ReviewQuery{SortBy: models.ReviewSortRating, SortOrder: models.SortAsc}.Normalize()
	assert.Equal(t, bson.D{{Key: "rating", Value: 1}, {Key: "_id", Value: 1}}, reviewSort(q))
}

func TestBookPatchSet_OnlyProvidedFields(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	title := "Dune Messiah"
	year := 1969

	set := bookPatchSet(models.BookPatch{Title: &title, PublicationYear: &year, Genre: []string{"sf"}}, now)

	assert.Equal(t, bson.M{
		"title":           "Dune Messiah",
		"publicationYear": 1969,
		"genre":           []string{"sf"},
		"updatedAt":       now,
	}, set)
}

func TestReviewPatchSet(t *testing.T) {
	now := time.Now().UTC()
	rating := 4

	assert.Equal(t, bson.M{"rating": 4, "updatedAt": now}, reviewPatchSet(models.ReviewPatch{Rating: &rating}, now))

	comment := "better on a reread"
	assert.Equal(t, bson.M{"comment": comment, "updatedAt": now}, reviewPatchSet(models.ReviewPatch{Comment: &comment}, now))
}

func TestRatingStages_DefaultToZero(t *testing.T) {
	stages := ratingStages()
	require.Len(t, stages, 3)

	assert.Equal(t, "$lookup", stages[0][0].Key)
	assert.Equal(t, "$addFields", stages[1][0].Key)

	fields, ok := stages[1][0].Value.(bson.D)
	require.True(t, ok)
	avg := fields[0]
	assert.Equal(t, "averageRating", avg.Key)
	ifNull := avg.Value.(bson.D)[0]
	assert.Equal(t, "$ifNull", ifNull.Key)
	assert.Equal(t, 0, ifNull.Value.(bson.A)[1])
}
