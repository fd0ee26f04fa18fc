package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/logging"
	"github.com/kevinaaaquil/bookreview/models"
	"github.com/kevinaaaquil/bookreview/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the access token payload.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func (c *Claims) Summary() models.UserSummary {
	return models.UserSummary{ID: c.ID, Username: c.Username, Email: c.Email, IsAdmin: c.IsAdmin}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User  models.UserSummary
	Token string
}

type AuthService struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
	cost     int
	now      func() time.Time
}

func NewAuthService(users UserStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Register creates a user after checking that neither the email nor the username is taken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.UserSummary, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	existing, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return nil, storeFailure("user_by_email", err, "failed to register user")
	}
	if existing != nil {
		return nil, apperr.Conflict("Email already in use")
	}
	existing, err = s.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, storeFailure("user_by_username", err, "failed to register user")
	}
	if existing != nil {
		return nil, apperr.Conflict("Username already in use")
	}

	user, err := s.createUser(ctx, username, email, in.Password, false)
	if err != nil {
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

// Login checks the credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, storeFailure("user_by_email", err, "login failed")
	}
	if user == nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	summary := user.Summary()
	token, err := s.IssueToken(summary)
	if err != nil {
		return nil, apperr.Internal(err, "could not create token")
	}
	return &LoginResult{User: summary, Token: token}, nil
}

// ParseToken verifies a bearer token and returns its claims.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	if _, err := primitive.ObjectIDFromHex(claims.ID); err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	return claims, nil
}

// Profile returns the current summary of the user behind a token.
func (s *AuthService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserSummary, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, storeFailure("user_by_id", err, "failed to load profile")
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	summary := user.Summary()
	return &summary, nil
}

// EnsureAdmin creates an admin account with the given credentials unless the email is already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if !existing.IsAdmin {
			logging.Warn().Str("email", email).Msg("admin seed email belongs to a non-admin user")
		}
		return nil
	}
	if strings.TrimSpace(username) == "" {
		username = "admin"
	}
	user, err := s.createUser(ctx, strings.TrimSpace(username), email, password, true)
	if err != nil {
		return err
	}
	logging.Info().Str("user", user.ID.Hex()).Msg("seeded admin account")
	return nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password string, isAdmin bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.users.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race with a concurrent registration.
		return nil, apperr.Conflict("Email or username already in use")
	}
	if err != nil {
		return nil, storeFailure("create_user", err, "failed to register user")
	}
	user.ID = id
	return user, nil
}

// IssueToken signs an access token for user.
func (s *AuthService) IssueToken(user models.UserSummary) (string, error) {
	now := s.now()
	claims := &Claims{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
