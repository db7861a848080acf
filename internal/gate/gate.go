// Package gate decides whether a request may proceed based on its session.
// The functions are pure: they never touch the response, the store or the
// flash queue. Route handlers act on the returned Decision.
package gate

import (
	"net/url"

	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/session"
)

// Flash categories used for denials
const (
	CategoryDanger = "danger"
	CategoryInfo   = "info"
)

// User-facing denial messages
const (
	MsgLoginRequired   = "Uh oh! Looks like you need to either log in or register."
	MsgNotAuthorized   = "Uh oh! You aren't authorized to do that."
	MsgAlreadyLoggedIn = "You're already logged in!"
)

// Reason explains a Decision
type Reason int

const (
	ReasonAllowed Reason = iota
	ReasonUnauthenticated
	ReasonNotOwner
	ReasonAlreadyAuthenticated
)

func (r Reason) String() string {
	switch r {
	case ReasonAllowed:
		return "allowed"
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonNotOwner:
		return "not_owner"
	case ReasonAlreadyAuthenticated:
		return "already_authenticated"
	default:
		return "unknown"
	}
}

// Notice is the flash message a denial should produce
type Notice struct {
	Category string
	Text     string
}

// Decision is the outcome of a gate check. Denied decisions carry the
// redirect target and the notice to flash.
type Decision struct {
	Reason   Reason
	Redirect string
	Notice   Notice
}

// Allowed reports whether the request may proceed
func (d Decision) Allowed() bool {
	return d.Reason == ReasonAllowed
}

var allow = Decision{Reason: ReasonAllowed}

// HomePath is where unauthenticated requests are sent
const HomePath = "/"

// ProfilePath returns the profile URL of username
func ProfilePath(username string) string {
	return "/users/" + url.PathEscape(username)
}

// IsAnonymous reports whether no user is logged in
func IsAnonymous(s session.Session) bool {
	return s.IsAnonymous()
}

// IsOwner reports whether s is authenticated as candidate
func IsOwner(s session.Session, candidate string) bool {
	return s.IsOwner(candidate)
}

// RequireLogin denies anonymous sessions, sending them home
func RequireLogin(s session.Session) Decision {
	if IsAnonymous(s) {
		return Decision{
			Reason:   ReasonUnauthenticated,
			Redirect: HomePath,
			Notice:   Notice{Category: CategoryDanger, Text: MsgLoginRequired},
		}
	}
	return allow
}

// RequireOwner applies RequireLogin and then denies sessions that do not own
// the resource, sending them to their own profile
func RequireOwner(s session.Session, owned model.Owned) Decision {
	if d := RequireLogin(s); !d.Allowed() {
		return d
	}
	if !IsOwner(s, owned.OwnerUsername()) {
		return Decision{
			Reason:   ReasonNotOwner,
			Redirect: ProfilePath(s.Username),
			Notice:   Notice{Category: CategoryDanger, Text: MsgNotAuthorized},
		}
	}
	return allow
}

// RedirectIfAuthenticated is the inverse guard for the login and register
// pages: a logged-in session is sent to its own profile
func RedirectIfAuthenticated(s session.Session) Decision {
	if IsAnonymous(s) {
		return allow
	}
	return Decision{
		Reason:   ReasonAlreadyAuthenticated,
		Redirect: ProfilePath(s.Username),
		Notice:   Notice{Category: CategoryInfo, Text: MsgAlreadyLoggedIn},
	}
}
