package flash

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CookieStore keeps pending messages in a short-lived cookie on the client
type CookieStore struct {
	name   string
	maxAge int
	secure bool
}

// NewCookieStore creates a CookieStore. The cookie expires after a minute.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{
		name:   "flash",
		maxAge: 60,
		secure: secure,
	}
}

var _ Store = (*CookieStore)(nil)

func (s *CookieStore) Name() string {
	return "cookie"
}

func (s *CookieStore) Load(r *http.Request) ([]Message, error) {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("decode flash cookie: %w", err)
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("parse flash cookie: %w", err)
	}
	return msgs, nil
}

func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, msgs []Message) error {
	if len(msgs) == 0 {
		if _, err := r.Cookie(s.name); err == nil {
			http.SetCookie(w, &http.Cookie{
				Name:     s.name,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				Expires:  time.Unix(0, 0),
				HttpOnly: true,
				Secure:   s.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		return nil
	}

	raw, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode flash cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   s.maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
