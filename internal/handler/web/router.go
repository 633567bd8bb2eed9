package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anderovsky/ITStep-zrucnosti/internal/service"
	"github.com/anderovsky/ITStep-zrucnosti/internal/session"
	"github.com/anderovsky/ITStep-zrucnosti/pkg/health"
	"github.com/anderovsky/ITStep-zrucnosti/pkg/middleware"
)

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(
	accounts *service.AccountService,
	listings *service.ListingService,
	reviews *service.ReviewService,
	sessions *session.Manager,
	sessionTTL time.Duration,
	render *Renderer,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("marketplace"))
	r.Use(LoadSession(sessions))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	accountHandler := NewAccountHandler(accounts, sessions, render, sessionTTL)
	listingHandler := NewListingHandler(listings, reviews, render)

	// Public pages
	r.Get("/", listingHandler.Index)
	r.Get("/about", listingHandler.About)
	r.Get("/register", accountHandler.RegisterForm)
	r.Post("/register", accountHandler.Register)
	r.Get("/login", accountHandler.LoginForm)
	r.Post("/login", accountHandler.Login)
	r.Get("/logout", accountHandler.Logout)

	// Listing detail; the review form posts back to the same path and
	// redirects anonymous users to the login page itself.
	r.Get("/service/{id}", listingHandler.Detail)
	r.Post("/service/{id}", listingHandler.CreateReview)

	// Listing creation requires a session.
	r.Group(func(r chi.Router) {
		r.Use(RequireSession)
		r.Get("/add", listingHandler.AddForm)
		r.Post("/add", listingHandler.Add)
	})

	return r
}
