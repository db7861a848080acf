package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/feedbackboard/internal/gate"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/web/flash"
)

// AccountChecker confirms that a verified token still belongs to a live account
type AccountChecker interface {
	SessionValid(ctx context.Context, username string, issuedAt time.Time) (bool, error)
}

// Session returns middleware that loads the session cookie and places the
// result in the request context. Invalid tokens, and tokens whose account has
// been deleted or replaced, yield an anonymous session and clear the cookie.
func Session(manager *session.Manager, accounts AccountChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := manager.Load(r)
			if !s.IsAnonymous() {
				ok, err := accounts.SessionValid(r.Context(), s.Username, s.IssuedAt)
				if err != nil {
					logger.Error("failed to check session account",
						slog.String("username", s.Username),
						slog.String("error", err.Error()),
					)
					writeServerError(w)
					return
				}
				if !ok {
					manager.Clear(w)
					s = session.Anonymous()
				}
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// RequireLogin returns middleware that sends anonymous requests home with a
// flash message. Requires Session and Flash to be applied first.
func RequireLogin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d := gate.RequireLogin(session.FromContext(r.Context())); !d.Allowed() {
				Deny(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GuestOnly returns middleware that sends logged-in requests to their own
// profile. Used for the login and register pages.
func GuestOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d := gate.RedirectIfAuthenticated(session.FromContext(r.Context())); !d.Allowed() {
				Deny(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Deny flashes the decision's notice and redirects to its target
func Deny(w http.ResponseWriter, r *http.Request, d gate.Decision) {
	flash.FromContext(r.Context()).Add(d.Notice.Category, d.Notice.Text)
	http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
}
