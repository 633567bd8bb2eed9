package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anderovsky/ITStep-zrucnosti/internal/session"
	"github.com/anderovsky/ITStep-zrucnosti/pkg/logger"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext returns the authenticated session, or nil for anonymous
// requests.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// LoadSession resolves the session cookie on every request. Requests without
// a valid session proceed anonymously; authenticated requests carry the
// session and an account-enriched logger in context.
func LoadSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := manager.Get(r.Context(), cookie.Value)
			if err != nil {
				// Invalid or expired token: clear the stale cookie and
				// continue anonymously.
				clearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			ctx = logger.WithAccountID(ctx, strconv.FormatInt(sess.AccountID, 10))
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, logger.FromContext(ctx)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession redirects anonymous requests to the login page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setSessionCookie writes the signed session token as an HTTP-only cookie.
func setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
