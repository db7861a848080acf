package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/feedbackboard/internal/gate"
	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/services/feedback"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/web/flash"
	"github.com/mcoot/feedbackboard/internal/web/form"
	"github.com/mcoot/feedbackboard/internal/web/middleware"
	"github.com/mcoot/feedbackboard/internal/web/templates/pages"
)

// FeedbackHandler handles adding, editing and deleting feedback.
// Login is enforced by the router; ownership is checked here once the
// feedback has been loaded.
type FeedbackHandler struct {
	feedbackService *feedback.Service
	logger          *slog.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(feedbackService *feedback.Service, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// AddPage renders the new feedback form on the owner's behalf
func (h *FeedbackHandler) AddPage(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["username"]
	if d := gate.RequireOwner(session.FromContext(r.Context()), model.Username(owner)); !d.Allowed() {
		middleware.Deny(w, r, d)
		return
	}

	h.renderAdd(w, r, owner, form.Feedback{}, nil)
}

// Add handles new feedback form submission
func (h *FeedbackHandler) Add(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["username"]
	if d := gate.RequireOwner(session.FromContext(r.Context()), model.Username(owner)); !d.Allowed() {
		middleware.Deny(w, r, d)
		return
	}

	f, err := form.ParseFeedback(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if fieldErrors := form.Validate(f); fieldErrors != nil {
		h.renderAdd(w, r, owner, f, fieldErrors)
		return
	}

	if _, err := h.feedbackService.Create(r.Context(), owner, f.Title, f.Content); err != nil {
		lookupError(w, r, h.logger, "failed to create feedback", err)
		return
	}

	flash.FromContext(r.Context()).Add(flash.Success, "Feedback posted!")
	http.Redirect(w, r, gate.ProfilePath(owner), http.StatusSeeOther)
}

// EditPage renders the edit form prefilled with the current values
func (h *FeedbackHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	fb, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	h.renderEdit(w, r, fb, form.Feedback{Title: fb.Title, Content: fb.Content}, nil)
}

// Update handles edit form submission
func (h *FeedbackHandler) Update(w http.ResponseWriter, r *http.Request) {
	fb, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	f, err := form.ParseFeedback(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if fieldErrors := form.Validate(f); fieldErrors != nil {
		h.renderEdit(w, r, fb, f, fieldErrors)
		return
	}

	if err := h.feedbackService.Update(r.Context(), fb, f.Title, f.Content); err != nil {
		lookupError(w, r, h.logger, "failed to update feedback", err)
		return
	}

	flash.FromContext(r.Context()).Add(flash.Success, "Successfully updated feedback!")
	http.Redirect(w, r, gate.ProfilePath(fb.Username), http.StatusSeeOther)
}

// Delete permanently removes a feedback entry
func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fb, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.feedbackService.Delete(r.Context(), fb); err != nil {
		lookupError(w, r, h.logger, "failed to delete feedback", err)
		return
	}

	flash.FromContext(r.Context()).Add(flash.Success, "Successfully deleted feedback!")
	http.Redirect(w, r, gate.ProfilePath(fb.Username), http.StatusSeeOther)
}

// loadOwned fetches the feedback named in the path and checks the session owns it.
// On failure the response has been written and ok is false.
func (h *FeedbackHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*model.Feedback, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		notFound(w, r, h.logger)
		return nil, false
	}

	fb, err := h.feedbackService.Get(r.Context(), model.FeedbackID(id))
	if err != nil {
		lookupError(w, r, h.logger, "failed to load feedback", err)
		return nil, false
	}

	if d := gate.RequireOwner(session.FromContext(r.Context()), fb); !d.Allowed() {
		middleware.Deny(w, r, d)
		return nil, false
	}
	return fb, true
}

func (h *FeedbackHandler) renderAdd(w http.ResponseWriter, r *http.Request, owner string, f form.Feedback, fieldErrors form.FieldErrors) {
	render(w, r, h.logger, http.StatusOK, pages.FeedbackForm(pages.FeedbackFormData{
		PageData:    pageData(r, "Add feedback"),
		Heading:     "Add feedback",
		Action:      gate.ProfilePath(owner) + "/feedback/add",
		Submit:      "Post",
		Owner:       owner,
		Form:        f,
		FieldErrors: fieldErrors,
	}))
}

func (h *FeedbackHandler) renderEdit(w http.ResponseWriter, r *http.Request, fb *model.Feedback, f form.Feedback, fieldErrors form.FieldErrors) {
	render(w, r, h.logger, http.StatusOK, pages.FeedbackForm(pages.FeedbackFormData{
		PageData:    pageData(r, "Edit feedback"),
		Heading:     "Edit feedback",
		Action:      "/feedback/" + strconv.FormatUint(uint64(fb.ID), 10) + "/update",
		Submit:      "Save",
		Owner:       fb.Username,
		Form:        f,
		FieldErrors: fieldErrors,
	}))
}
