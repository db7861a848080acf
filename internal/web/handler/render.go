package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/feedbackboard/internal/middleware"
	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/web/flash"
	"github.com/mcoot/feedbackboard/internal/web/templates/layout"
	"github.com/mcoot/feedbackboard/internal/web/templates/pages"
)

// pageData builds the shared layout data and drains the pending flash messages
func pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title:       title,
		CurrentUser: session.FromContext(r.Context()).Username,
		Flashes:     flash.FromContext(r.Context()).Drain(),
	}
}

// render buffers the page so a template failure never leaves a half-written response
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logger.Error("failed to render page",
			slog.String("request_id", middleware.RequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func notFound(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	render(w, r, logger, http.StatusNotFound, pages.Error(pages.ErrorData{
		PageData: pageData(r, "Not Found"),
		Status:   http.StatusNotFound,
		Message:  "Sorry, we couldn't find that page.",
	}))
}

func serverError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.Error(msg,
		slog.String("request_id", middleware.RequestID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	render(w, r, logger, http.StatusInternalServerError, pages.Error(pages.ErrorData{
		PageData: pageData(r, "Error"),
		Status:   http.StatusInternalServerError,
		Message:  "Something went wrong. Please try again later.",
	}))
}

// lookupError answers a failed lookup: missing records are a 404, anything else a 500
func lookupError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	if errors.Is(err, model.ErrUserNotFound) || errors.Is(err, model.ErrFeedbackNotFound) {
		notFound(w, r, logger)
		return
	}
	serverError(w, r, logger, msg, err)
}

// NotFound renders the HTML 404 page for unmatched routes
func NotFound(logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notFound(w, r, logger)
	})
}
