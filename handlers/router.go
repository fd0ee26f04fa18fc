package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kevinaaaquil/bookreview/middleware"
	"github.com/kevinaaaquil/bookreview/response"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const APIPrefix = "/api/v1"

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Auth    AuthService
	Books   BookService
	Reviews ReviewService
	// Ping reports whether the database is reachable; nil skips the check.
	Ping func(ctx context.Context) error

	CORSOrigins   []string
	AuthRateLimit int
	MaxCoverBytes int64
}

// NewRouter builds the chi router with every route mounted under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	validate := NewValidator()
	authH := &AuthHandler{Auth: cfg.Auth, Validate: validate}
	booksH := &BooksHandler{Books: cfg.Books, Validate: validate}
	reviewsH := &ReviewsHandler{Reviews: cfg.Reviews, Validate: validate}
	coversH := &CoversHandler{Books: cfg.Books, MaxBytes: cfg.MaxCoverBytes, BasePath: APIPrefix}
	requireAuth := middleware.Auth(cfg.Auth)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog())
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", health(cfg.Ping))
	r.Handle("/metrics", promhttp.Handler())

	r.Route(APIPrefix, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.AuthRateLimit, time.Minute))
			r.Post("/signup", authH.Signup)
			r.Post("/login", authH.Login)
			r.With(requireAuth).Get("/profile", authH.Profile)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", booksH.List)
			r.Get("/search", booksH.Search)
			r.With(requireAuth).Get("/lookup", booksH.Lookup)
			r.With(requireAuth).Post("/", booksH.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", booksH.Get)
				r.With(requireAuth).Put("/", booksH.Update)
				r.With(requireAuth).Delete("/", booksH.Delete)
				r.Get("/cover", coversH.Get)
				r.With(requireAuth).Post("/cover", coversH.Upload)
				r.Get("/reviews", reviewsH.ListForBook)
				r.With(requireAuth).Post("/reviews", reviewsH.Create)
			})
		})

		r.Route("/reviews/{id}", func(r chi.Router) {
			r.Get("/", reviewsH.Get)
			r.With(requireAuth).Put("/", reviewsH.Update)
			r.With(requireAuth).Delete("/", reviewsH.Delete)
		})

		r.Get("/authors", booksH.Authors)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Message(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
