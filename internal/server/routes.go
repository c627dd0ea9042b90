package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/auth"
	"github.com/skout-hq/skout/internal/config"
	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/middleware"
	"github.com/skout-hq/skout/internal/utils"
)

// SetupRoutes configures the routes for the application.
//
// Every request passes through SessionAuth, which attaches the caller's
// identity when a session cookie or bearer token is present. The JSON API
// lives under /api; everything else is a server-rendered page. Dashboard
// pages redirect anonymous visitors to /login, API routes answer 401.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	// Base middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(s.Config.Logging.RequestLog))
	r.Use(middleware.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(corsMiddleware(s.Config.CORS))
	r.Use(chimiddleware.RequestSize(constants.MaxRequestBodySize))
	r.Use(middleware.RateLimit(s.Limiter, constants.RateCategoryDefault))
	r.Use(auth.SessionAuth(s.Sessions, s.tokenVerifier(), s.Config.Session.CookieSecure))

	r.Method(http.MethodGet, constants.MetricsPath, promhttp.Handler())

	r.Route(constants.APIBasePath, func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiMethodNotAllowed)

		r.Get(constants.HealthPath, s.Handlers.HealthHandler.Health)
		r.Get("/routes", s.GetAPIRoutes)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(s.Limiter, constants.RateCategoryAuth))
				r.Post("/signup", s.Handlers.AuthHandler.SignUp)
				r.Post("/login", s.Handlers.AuthHandler.Login)
			})
			r.Post("/logout", s.Handlers.AuthHandler.Logout)
			r.Post("/refresh", s.Handlers.AuthHandler.Refresh)
			r.Get("/session", s.Handlers.AuthHandler.Session)
			r.Get("/events", s.Handlers.AuthHandler.Events)
		})

		// Protected API routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAPIAuth)

			r.Get("/profile", s.Handlers.ProfileHandler.GetProfile)
			r.Put("/profile", s.Handlers.ProfileHandler.UpdateProfile)

			r.Route("/monitor", func(r chi.Router) {
				r.Route("/credentials", func(r chi.Router) {
					r.Get("/", s.Handlers.MonitorHandler.GetCredentials)
					r.Patch("/", s.Handlers.MonitorHandler.PatchCredentials)
					r.Put("/", s.Handlers.MonitorHandler.PutCredentials)
					r.Post("/save", s.Handlers.MonitorHandler.SaveCredentials)
				})
				r.Route("/moderation", func(r chi.Router) {
					r.Get("/", s.Handlers.MonitorHandler.GetModeration)
					r.Patch("/", s.Handlers.MonitorHandler.PatchModeration)
					r.Put("/", s.Handlers.MonitorHandler.PutModeration)
					r.Post("/save", s.Handlers.MonitorHandler.SaveModeration)
					r.Post("/keywords", s.Handlers.MonitorHandler.AddKeyword)
					r.Delete("/keywords/{"+constants.ParamKeyword+"}", s.Handlers.MonitorHandler.RemoveKeyword)
				})
			})
		})
	})

	// Public pages
	r.Get(constants.PageHome, s.Pages.Page("home", "AI moderation for Skool communities"))
	r.Get(constants.PageFeatures, s.Pages.Page("features", "Features"))
	r.Get(constants.PagePricing, s.Pages.Pricing)
	r.Get(constants.PageAbout, s.Pages.Page("about", "About"))
	r.Get(constants.PagePrivacy, s.Pages.Page("privacy", "Privacy Policy"))
	r.Get(constants.PageTerms, s.Pages.Page("terms", "Terms of Service"))
	r.Get(constants.PageDocs, s.Pages.Page("docs", "Documentation"))
	r.Get(constants.PageDocsQuickStart, s.Pages.Page("docs_quick_start", "Quick start"))
	r.Get(constants.PageDocsAPIAuth, s.Pages.Page("docs_api_auth", "API authentication"))
	r.Get(constants.PageDocsAutoMod, s.Pages.Page("docs_auto_mod", "Auto moderation"))
	r.Get(constants.PageDocsBestPractices, s.Pages.Page("docs_best_practices", "Best practices"))

	// Login and sign-up are only for visitors without a session
	r.Group(func(r chi.Router) {
		r.Use(auth.RedirectIfAuthenticated)
		r.Use(middleware.NoStore)
		r.Get(constants.PageLogin, s.Pages.LoginPage)
		r.Get(constants.PageSignup, s.Pages.SignupPage)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.Limiter, constants.RateCategoryAuth))
			r.Post(constants.PageLogin, s.Pages.Login)
			r.Post(constants.PageSignup, s.Pages.Signup)
		})
	})
	r.With(middleware.NoStore).Get(constants.PageAuthCallback, s.Pages.AuthCallback)
	r.Post(constants.PageLogout, s.Pages.Logout)

	r.Route(constants.PageDashboard, func(r chi.Router) {
		r.Use(auth.RequirePageAuth)
		r.Use(middleware.NoStore)

		r.Get("/", s.Pages.Overview)
		r.Get("/overview", s.Pages.Overview)
		r.Get("/punishments", s.Pages.Punishments)
		r.Get("/history", s.Pages.History)
		r.Get("/moderation", s.Pages.Moderation)
		r.Post("/moderation", s.Pages.UpdateModeration)
		r.Get("/config", s.Pages.Config)
		r.Post("/config", s.Pages.UpdateConfig)
	})

	r.NotFound(s.Pages.NotFound)

	s.router = r
}

// tokenVerifier checks bearer tokens locally when a JWT secret is configured
// and asks the hosted auth service otherwise.
func (s *Server) tokenVerifier() auth.TokenVerifier {
	if s.Config.Supabase.JWTSecret == "" {
		log.Info().Msg("No JWT secret configured, bearer tokens are verified by the hosted auth service")
		return auth.NewRemoteVerifier(s.backend)
	}
	return auth.NewTokenValidator(s.Config.Supabase.JWTSecret)
}

// corsMiddleware allows the configured origins to call the API with
// credentials.
func corsMiddleware(settings config.CORSSettings) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   settings.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", constants.HeaderAuthorization, constants.HeaderContentType, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: settings.AllowCredentials,
		MaxAge:           300,
	})
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	utils.NotFound(w, "Route not found")
}

func apiMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.Error(w, http.StatusMethodNotAllowed, constants.CodeMethodNotAllowed, "Method not allowed", nil)
}

// apiRoute is one entry of GET /api/routes.
type apiRoute struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// GetAPIRoutes lists the JSON API routes the router serves.
func (s *Server) GetAPIRoutes(w http.ResponseWriter, r *http.Request) {
	var routes []apiRoute
	walk := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, constants.APIBasePath+"/") {
			return nil
		}
		routes = append(routes, apiRoute{Method: method, Path: strings.TrimSuffix(route, "/")})
		return nil
	}
	if err := chi.Walk(s.router, walk); err != nil {
		utils.InternalServerError(w, err)
		return
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	utils.JSON(w, http.StatusOK, routes)
}
