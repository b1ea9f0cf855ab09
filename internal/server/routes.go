package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apsx/clinic-api/internal/auth"
	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/middleware"
	"github.com/apsx/clinic-api/internal/utils"
)

// setupRoutes builds the route tree. Three kinds of guard protect the
// surface: the access token guard for staff routes, the refresh guard for
// token renewal, and the static API key guards for machine-to-machine
// listings.
func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(&s.Config.CORS))
	if s.Config.Logging.RequestLog {
		r.Use(middleware.Logging())
	}

	guard := s.authProviders.Middleware

	r.Get(constants.HealthPath, s.Handlers.HealthHandler.Check)

	r.Route(constants.AuthBasePath, func(r chi.Router) {
		r.Post("/login", s.Handlers.AuthHandler.Login)
		r.Post("/logout", s.Handlers.AuthHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAccessToken)
			r.Get("/verify", s.Handlers.AuthHandler.Verify)
			r.Post("/password", s.Handlers.AuthHandler.ChangePassword)
			r.Post("/otp", s.Handlers.AuthHandler.EnrollOTP)
			r.Delete("/otp", s.Handlers.AuthHandler.DisableOTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireRefreshToken)
			r.Post("/refresh", s.Handlers.AuthHandler.Refresh)
		})
	})

	r.Route(constants.UserBasePath, func(r chi.Router) {
		r.Use(guard.RequireAccessToken)
		r.Get("/me", s.Handlers.UserHandler.Me)
		r.Get("/list", s.Handlers.UserHandler.List)
		r.Get("/logins", s.Handlers.UserHandler.Logins)
		r.Get("/{id}", s.Handlers.UserHandler.Get)
		r.Put("/", s.Handlers.UserHandler.Update)
	})

	r.Route(constants.OrderBasePath, func(r chi.Router) {
		r.Use(guard.RequireAccessToken)
		r.Post("/search", s.Handlers.OrderHandler.Search)
		r.Post("/", s.Handlers.OrderHandler.Create)
		r.Get("/{id}", s.Handlers.OrderHandler.Get)
		r.Put("/{id}", s.Handlers.OrderHandler.Update)
		r.Delete("/{id}", s.Handlers.OrderHandler.Delete)
	})

	r.Route(constants.PublicBasePath, func(r chi.Router) {
		r.Use(auth.RequireAPIKey(s.Config.APIKeys.PublicKey))
		r.Get("/shops/{id}", s.Handlers.CatalogHandler.GetShop)
		r.Get("/categories", s.Handlers.CatalogHandler.ListCategories)
	})

	r.Route(constants.TelemedBasePath, func(r chi.Router) {
		r.Use(auth.RequireAPIKey(s.Config.APIKeys.TelePublicKey))
		r.Get("/products", s.Handlers.CatalogHandler.ListProducts)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.NotFound(w, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.router = r
}
