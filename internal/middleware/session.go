package middleware

import (
	"net/http"

	"storefront/internal/session"

	"github.com/rs/zerolog"
)

const (
	// SessionCookie names the cookie carrying the session id.
	SessionCookie = "sid"
	// SessionHeader carries the session id for clients without cookies.
	SessionHeader = "X-Session-ID"
)

// Session attaches the visitor's session to the request context, creating one
// when the request carries no live session id. The id is echoed in the
// session cookie and header.
func Session(registry *session.Registry, secureCookie bool, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "session").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = c.Value
				}
			}

			s, created := registry.GetOrCreate(id)
			if created {
				logger.Debug().
					Str("session_id", s.ID).
					Bool("replaced", id != "").
					Msg("new session")
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(SessionHeader, s.ID)

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
		})
	}
}
