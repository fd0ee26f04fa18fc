package service

import (
	"context"

	"github.com/kevinaaaquil/bookreview/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserResolver turns stored user references into the summaries embedded in responses.
type UserResolver struct {
	users UserStore
}

func NewUserResolver(users UserStore) *UserResolver {
	return &UserResolver{users: users}
}

// Summaries maps user ids to summaries.
type Summaries map[primitive.ObjectID]models.UserSummary

// For returns the summary of id, or the Unknown placeholder when the user no longer exists.
func (s Summaries) For(id primitive.ObjectID) models.UserSummary {
	if u, ok := s[id]; ok {
		return u
	}
	return models.UnknownUser(id)
}

// Resolve loads every distinct id in one query.
func (r *UserResolver) Resolve(ctx context.Context, ids ...primitive.ObjectID) (Summaries, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	unique := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	users, err := r.users.UsersByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	out := make(Summaries, len(users))
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}
