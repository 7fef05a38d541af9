package auth

import (
	"net/http"
	"strings"
	"time"
)

const DefaultCookieName = "session"

// SessionCookies writes, reads and clears the http-only session cookie
type SessionCookies struct {
	name   string
	secure bool
}

func NewSessionCookies(name string, secure bool) *SessionCookies {
	if name == "" {
		name = DefaultCookieName
	}
	return &SessionCookies{name: name, secure: secure}
}

func (s *SessionCookies) Name() string {
	return s.name
}

// Read returns the session token carried by r, if any
func (s *SessionCookies) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.name)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(c.Value)
	return token, token != ""
}

// Set stores token until expiresAt
func (s *SessionCookies) Set(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the cookie with one that has already expired
func (s *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
