package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/feedbackboard/internal/gate"
	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/web/flash"
	"github.com/mcoot/feedbackboard/internal/web/middleware"
	"github.com/mcoot/feedbackboard/internal/web/templates/pages"
)

// UserHandler handles profile pages and account deletion
type UserHandler struct {
	authService *auth.Service
	sessions    *session.Manager
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *auth.Service, sessions *session.Manager, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Profile renders a user's profile and their feedback
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	user, err := h.authService.GetUser(r.Context(), username)
	if err != nil {
		lookupError(w, r, h.logger, "failed to load user", err)
		return
	}

	s := session.FromContext(r.Context())
	render(w, r, h.logger, http.StatusOK, pages.User(pages.UserData{
		PageData: pageData(r, user.Username),
		User:     user,
		IsOwner:  gate.IsOwner(s, user.Username),
	}))
}

// Delete removes the account and all of its feedback, then logs the owner out
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if d := gate.RequireOwner(session.FromContext(r.Context()), model.Username(username)); !d.Allowed() {
		middleware.Deny(w, r, d)
		return
	}

	if err := h.authService.DeleteAccount(r.Context(), username); err != nil {
		lookupError(w, r, h.logger, "failed to delete user", err)
		return
	}

	h.sessions.Clear(w)
	flash.FromContext(r.Context()).Add(flash.Success, "Successfully deleted "+username+"!")
	http.Redirect(w, r, gate.HomePath, http.StatusSeeOther)
}
