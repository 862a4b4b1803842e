package httpx

import (
	"net/http"
	"time"
)

// SessionCookieName is the only cookie this service reads or writes.
const SessionCookieName = "token"

// CookieSettings carries the deployment-dependent cookie attributes.
// Everything else (name, httpOnly, path) is fixed by contract.
type CookieSettings struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, cfg CookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// ClearSessionCookie overwrites the session cookie with an already-expired
// one. There is no server-side revocation list; this is the whole logout.
func ClearSessionCookie(w http.ResponseWriter, cfg CookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

func ParseSameSite(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
