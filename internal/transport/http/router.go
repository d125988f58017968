package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rentpal/rentpal-api/internal/application/auth"
	"github.com/rentpal/rentpal-api/internal/application/listing"
	"github.com/rentpal/rentpal-api/internal/config"
	"github.com/rentpal/rentpal-api/internal/infrastructure/google"
	"github.com/rentpal/rentpal-api/internal/infrastructure/postgres"
	s3infra "github.com/rentpal/rentpal-api/internal/infrastructure/s3"
	"github.com/rentpal/rentpal-api/internal/infrastructure/smtp"
	"github.com/rentpal/rentpal-api/internal/infrastructure/token"
	"github.com/rentpal/rentpal-api/internal/transport/http/handler"
	appmiddleware "github.com/rentpal/rentpal-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *postgres.UserRepo
	OTPRepo     *postgres.OTPRepo
	StateRepo   *postgres.OAuthStateRepo
	ListingRepo *postgres.ListingRepo
	PhotoStore  *s3infra.Store
	Mailer      smtp.Mailer
	Tokens      *token.Provider
	Identity    *google.Adapter
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.Tokens)

	// 5 requests/second, burst of 10, applied to the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:  deps.UserRepo,
		OTPRepo:   deps.OTPRepo,
		StateRepo: deps.StateRepo,
		Mailer:    deps.Mailer,
		Tokens:    deps.Tokens,
		Identity:  deps.Identity,
	})
	listingSvc := listing.NewService(deps.ListingRepo, deps.PhotoStore)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(authSvc)
	listingH := handler.NewListingHandler(listingSvc, authSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/signup", authH.Signup)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/auth/reset-password", authH.ResetPassword)
		r.With(sensitiveRL.Limit).Get("/auth/google/start", authH.GoogleStart)
		r.With(sensitiveRL.Limit).Get("/auth/google/callback", authH.GoogleCallback)
		r.Get("/listings", listingH.List)
		r.Get("/listings/{id}/photo", listingH.PhotoURL)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me/phone", userH.UpdatePhone)

			r.Post("/listings", listingH.Create)
			r.Post("/listings/{id}/save", listingH.Save)
			r.Get("/listings/saved", listingH.ListSaved)
			r.Post("/listings/{id}/photo", listingH.UploadPhoto)
		})
	})

	return r
}
