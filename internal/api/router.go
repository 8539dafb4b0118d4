package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sungwon/newsletter/internal/auth"
)

// RouterConfig holds the dependencies of the HTTP surface.
type RouterConfig struct {
	Newsletters   NewsletterService
	Recipients    RecipientStore
	Admins        AdminLookup
	Tokens        TokenIssuer
	Verifier      auth.Verifier
	RateLimiter   *auth.RateLimiter
	DB            Pinger
	Log           zerolog.Logger
	CORSOrigins   []string
	MaxUploadSize int64
	// UploadsDir, when set, is served under /uploads for locally stored images.
	UploadsDir string
}

// NewRouter creates a chi.Mux with all routes, middleware, and handlers configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(CorrelationIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID", auth.TokenHeader},
		ExposedHeaders: []string{"X-Correlation-ID", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(RecoverMiddleware(cfg.Log))

	r.Get("/healthz", HealthzHandler())
	r.Get("/readyz", ReadyzHandler(cfg.DB))
	r.Handle("/metrics", promhttp.Handler())

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", LoginHandler(cfg.Admins, cfg.Tokens, cfg.RateLimiter))
		r.Post("/subscribe", SubscribeHandler(cfg.Recipients))
		r.Get("/newsletters", ListNewslettersHandler(cfg.Newsletters))
		r.Get("/newsletters/{id}", GetNewsletterHandler(cfg.Newsletters))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(cfg.Verifier))

			r.Post("/newsletters", CreateNewsletterHandler(cfg.Newsletters, cfg.RateLimiter, cfg.MaxUploadSize))
			r.Delete("/newsletters/{id}", DeleteNewsletterHandler(cfg.Newsletters))
			r.Get("/recipients", ListRecipientsHandler(cfg.Recipients))
			r.Delete("/recipients/{id}", DeleteRecipientHandler(cfg.Recipients))
		})
	})

	return r
}
