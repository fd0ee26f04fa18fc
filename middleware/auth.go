package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kevinaaaquil/bookreview/response"
	"github.com/kevinaaaquil/bookreview/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	ClaimsKey contextKey = "claims"
)

// TokenVerifier validates bearer tokens. *service.AuthService implements it.
type TokenVerifier interface {
	ParseToken(token string) (*service.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the decoded
// identity in the request context.
func Auth(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				response.Message(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				response.Message(w, http.StatusUnauthorized, "Invalid authorization format")
				return
			}
			claims, err := verifier.ParseToken(parts[1])
			if err != nil {
				response.Error(w, r, err)
				return
			}
			// ParseToken has already checked the id is valid hex.
			userID, _ := primitive.ObjectIDFromHex(claims.ID)
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(UserIDKey).(primitive.ObjectID)
	return id, ok
}

func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*service.Claims)
	return c, ok && c != nil
}

// IsAdminFromContext reports the admin flag carried by the token.
func IsAdminFromContext(ctx context.Context) bool {
	c, ok := ClaimsFromContext(ctx)
	return ok && c.IsAdmin
}
