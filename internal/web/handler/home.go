package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/services/feedback"
	"github.com/mcoot/feedbackboard/internal/web/flash"
	"github.com/mcoot/feedbackboard/internal/web/templates/pages"
)

// HomeListLimit is how many feedback entries and users the home page shows
const HomeListLimit = 5

// HomeHandler handles the home page and the members-only page
type HomeHandler struct {
	authService     *auth.Service
	feedbackService *feedback.Service
	logger          *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(authService *auth.Service, feedbackService *feedback.Service, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		authService:     authService,
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	entries, err := h.feedbackService.ListRecent(r.Context(), HomeListLimit)
	if err != nil {
		serverError(w, r, h.logger, "failed to list feedback", err)
		return
	}

	users, err := h.authService.ListUsers(r.Context(), HomeListLimit)
	if err != nil {
		serverError(w, r, h.logger, "failed to list users", err)
		return
	}

	render(w, r, h.logger, http.StatusOK, pages.Home(pages.HomeData{
		PageData: pageData(r, "Home"),
		Feedback: entries,
		Users:    users,
	}))
}

// Secret renders the members-only page. Login is enforced by the router.
func (h *HomeHandler) Secret(w http.ResponseWriter, r *http.Request) {
	flash.FromContext(r.Context()).Add(flash.Success, "You made it!")

	render(w, r, h.logger, http.StatusOK, pages.Secret(pages.SecretData{
		PageData: pageData(r, "Secret"),
	}))
}
