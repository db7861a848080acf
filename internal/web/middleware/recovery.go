package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/feedbackboard/internal/middleware"
	"github.com/mcoot/feedbackboard/internal/web/templates/layout"
	"github.com/mcoot/feedbackboard/internal/web/templates/pages"
)

// Recovery creates panic recovery middleware for the web interface
// Returns an HTML error page on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	writeServerError(w)
}

// writeServerError renders the generic 500 page without session or flash data
func writeServerError(w http.ResponseWriter) {
	var buf bytes.Buffer
	err := pages.Error(pages.ErrorData{
		PageData: layout.PageData{Title: "Error"},
		Status:   http.StatusInternalServerError,
		Message:  "Something went wrong. Please try again later.",
	}).Render(context.Background(), &buf)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(buf.Bytes())
}
