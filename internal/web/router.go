package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/services/feedback"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/web/flash"
	"github.com/mcoot/feedbackboard/internal/web/handler"
	"github.com/mcoot/feedbackboard/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	FeedbackService *feedback.Service
	Sessions        *session.Manager
	FlashStore      flash.Store
	StaticDir       string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	metricsMiddleware := middleware.Metrics()
	flashMiddleware := middleware.Flash(cfg.FlashStore, cfg.Logger)
	sessionMiddleware := middleware.Session(cfg.Sessions, cfg.AuthService, cfg.Logger)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.AuthService, cfg.FeedbackService, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Sessions, cfg.Logger)
	userHandler := handler.NewUserHandler(cfg.AuthService, cfg.Sessions, cfg.Logger)
	feedbackHandler := handler.NewFeedbackHandler(cfg.FeedbackService, cfg.Logger)

	// Operational endpoints
	r.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Public routes (session read for the nav)
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(sessionMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)

	// Login and registration (logged-in users are sent to their profile)
	guest := r.NewRoute().Subrouter()
	guest.Use(flashMiddleware)
	guest.Use(sessionMiddleware)
	guest.Use(middleware.GuestOnly())
	guest.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	guest.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	guest.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	guest.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// Protected routes (require login; ownership is checked by the handlers)
	protected := r.NewRoute().Subrouter()
	protected.Use(flashMiddleware)
	protected.Use(sessionMiddleware)
	protected.Use(middleware.RequireLogin())

	protected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)
	protected.HandleFunc("/secret", homeHandler.Secret).Methods(http.MethodGet)

	// User routes
	protected.HandleFunc("/users/{username}", userHandler.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/users/{username}/delete", userHandler.Delete).Methods(http.MethodPost)

	// Feedback routes
	protected.HandleFunc("/users/{username}/feedback/add", feedbackHandler.AddPage).Methods(http.MethodGet)
	protected.HandleFunc("/users/{username}/feedback/add", feedbackHandler.Add).Methods(http.MethodPost)
	protected.HandleFunc("/feedback/{id:[0-9]+}/update", feedbackHandler.EditPage).Methods(http.MethodGet)
	protected.HandleFunc("/feedback/{id:[0-9]+}/update", feedbackHandler.Update).Methods(http.MethodPost)
	protected.HandleFunc("/feedback/{id:[0-9]+}/delete", feedbackHandler.Delete).Methods(http.MethodPost)

	// Router middleware only runs on matched routes, so the 404 page gets its own chain
	r.NotFoundHandler = recoveryMiddleware(loggingMiddleware(metricsMiddleware(
		flashMiddleware(sessionMiddleware(handler.NotFound(cfg.Logger))),
	)))

	return r
}
