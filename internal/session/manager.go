package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mcoot/feedbackboard/internal/dependencies/clock"
)

// Config holds configuration for session tokens and the session cookie
type Config struct {
	// Secret signs session tokens (HS256). Required.
	Secret string
	// TTL is how long a login lasts
	TTL time.Duration
	// CookieName is the name of the session cookie
	CookieName string
	// Secure marks the cookie as HTTPS-only
	Secure bool
	// Issuer is written to and required in every token
	Issuer string
}

// DefaultConfig returns default session configuration. The secret must still be set.
func DefaultConfig() Config {
	return Config{
		TTL:        7 * 24 * time.Hour,
		CookieName: "session",
		Issuer:     "feedbackboard",
	}
}

// Manager issues, reads and clears signed session cookies
type Manager struct {
	cfg    Config
	secret []byte
	clock  clock.Clock
}

// NewManager creates a Manager. Zero-valued config fields fall back to DefaultConfig.
func NewManager(cfg Config, clock clock.Clock) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaults.CookieName
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	return &Manager{
		cfg:    cfg,
		secret: []byte(cfg.Secret),
		clock:  clock,
	}, nil
}

// Issue signs a token for username and sets it as the session cookie
func (m *Manager) Issue(w http.ResponseWriter, username string) error {
	token, err := m.Sign(username)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Sign returns a signed token for username without touching any response
func (m *Manager) Sign(username string) (string, error) {
	now := m.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    m.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Clear expires the session cookie
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Load reads the session from the request cookie. A missing, malformed,
// tampered or expired token yields an anonymous session.
func (m *Manager) Load(r *http.Request) Session {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return Anonymous()
	}

	s, err := m.Verify(cookie.Value)
	if err != nil {
		return Anonymous()
	}
	return s
}

// Verify checks a token and returns the session it was issued for
func (m *Manager) Verify(token string) (Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(m.cfg.Issuer),
	)
	if err != nil {
		return Session{}, err
	}
	if claims.Subject == "" {
		return Session{}, errors.New("session token has no subject")
	}
	if claims.IssuedAt == nil {
		return Session{}, errors.New("session token has no issue time")
	}
	return Session{Username: claims.Subject, IssuedAt: claims.IssuedAt.Time}, nil
}

// CookieName returns the name of the session cookie
func (m *Manager) CookieName() string {
	return m.cfg.CookieName
}
