package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/feedbackboard/internal/gate"
	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/web/flash"
	"github.com/mcoot/feedbackboard/internal/web/form"
	"github.com/mcoot/feedbackboard/internal/web/templates/pages"
)

// User-facing form errors
const (
	msgUsernameTaken      = "Uh oh! That username is taken. Please pick another!"
	msgInvalidCredentials = "Invalid username or password. Please try again."
	msgPasswordTooLong    = "Must be at most 72 bytes."
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	authService *auth.Service
	sessions    *session.Manager
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// RegisterPage renders the registration page
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, form.Register{}, nil)
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	f, err := form.ParseRegister(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if fieldErrors := form.Validate(f); fieldErrors != nil {
		h.renderRegister(w, r, f, fieldErrors)
		return
	}

	user, err := h.authService.Register(r.Context(), auth.RegisterParams{
		Username:  f.Username,
		Password:  f.Password,
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			h.renderRegister(w, r, f, form.FieldErrors{"username": msgUsernameTaken})
			return
		}
		if errors.Is(err, auth.ErrPasswordTooLong) {
			h.renderRegister(w, r, f, form.FieldErrors{"password": msgPasswordTooLong})
			return
		}
		serverError(w, r, h.logger, "failed to register user", err)
		return
	}

	if err := h.sessions.Issue(w, user.Username); err != nil {
		serverError(w, r, h.logger, "failed to issue session", err)
		return
	}

	flash.FromContext(r.Context()).Add(flash.Success, "Welcome, "+user.FullName()+"! Your account has been created.")
	http.Redirect(w, r, gate.ProfilePath(user.Username), http.StatusSeeOther)
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, "", nil)
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	f, err := form.ParseLogin(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if fieldErrors := form.Validate(f); fieldErrors != nil {
		h.renderLogin(w, r, f.Username, fieldErrors)
		return
	}

	user, err := h.authService.Authenticate(r.Context(), f.Username, f.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.renderLogin(w, r, f.Username, form.FieldErrors{"username": msgInvalidCredentials})
			return
		}
		serverError(w, r, h.logger, "failed to authenticate user", err)
		return
	}

	if err := h.sessions.Issue(w, user.Username); err != nil {
		serverError(w, r, h.logger, "failed to issue session", err)
		return
	}

	flash.FromContext(r.Context()).Add(flash.Success, "Welcome back, "+user.FirstName+"!")
	http.Redirect(w, r, gate.ProfilePath(user.Username), http.StatusSeeOther)
}

// Logout clears the session. Login is enforced by the router.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	flash.FromContext(r.Context()).Add(flash.Success, "Goodbye!")
	http.Redirect(w, r, gate.HomePath, http.StatusSeeOther)
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, f form.Register, fieldErrors form.FieldErrors) {
	render(w, r, h.logger, http.StatusOK, pages.Register(pages.RegisterData{
		PageData:    pageData(r, "Register"),
		Form:        f,
		FieldErrors: fieldErrors,
	}))
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, username string, fieldErrors form.FieldErrors) {
	render(w, r, h.logger, http.StatusOK, pages.Login(pages.LoginData{
		PageData:    pageData(r, "Login"),
		Username:    username,
		FieldErrors: fieldErrors,
	}))
}
