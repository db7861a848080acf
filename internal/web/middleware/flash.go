package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/feedbackboard/internal/web/flash"
)

// Flash creates flash message middleware for the web interface
func Flash(store flash.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return flash.Middleware(store, logger)
}
