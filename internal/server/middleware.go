package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"visionaid/internal"
	"visionaid/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeySession contextKey = "session"
	contextKeyUserID  contextKey = "user_id"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireSession gates the HTML pages: no session cookie means a redirect to
// the login page, remembering where the visitor was headed.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessionFromRequest(r)
		if err != nil {
			s.logger.WithError(err).Debug("no session cookie found")

			s.setRedirectCookie(w, r.URL.Path, time.Minute*5)

			http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
			return
		}

		next.ServeHTTP(w, r.WithContext(s.contextWithSession(r.Context(), session)))
	})
}

// RequireSessionJSON gates the action endpoints: no session means a 401
// envelope rather than a redirect.
func (s *Service) RequireSessionJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessionFromRequest(r)
		if err != nil {
			s.respondJSON(w, http.StatusUnauthorized, envelope{
				"success": false,
				"message": "Please login first",
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(s.contextWithSession(r.Context(), session)))
	})
}

// RequireIDToken authenticates API clients by their identity-provider ID
// token. Tokens are verified against the provider's JWKS; in dev mode (no
// JWKS configured) the in-memory provider's dev tokens are accepted.
func (s *Service) RequireIDToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		rawToken := strings.TrimPrefix(header, "Bearer ")
		if rawToken == "" || rawToken == header {
			s.respondJSON(w, http.StatusUnauthorized, envelope{
				"success": false,
				"message": "Missing bearer token",
			})
			return
		}

		userID, err := s.verifyIDToken(r.Context(), rawToken)
		if err != nil {
			s.logger.WithError(err).Debug("rejected bearer token")
			s.respondJSON(w, http.StatusUnauthorized, envelope{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) verifyIDToken(ctx context.Context, rawToken string) (string, error) {
	if s.jwksCache == nil {
		if userID, ok := strings.CutPrefix(rawToken, "dev-token-"); ok {
			return userID, nil
		}
		return "", types.ErrUnauthenticated
	}

	set, err := s.jwksCache.Lookup(ctx, s.jwksURL)
	if err != nil {
		return "", err
	}

	token, err := jwt.Parse(
		[]byte(rawToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer("https://securetoken.google.com/"+s.config.FirebaseProjectID),
	)
	if err != nil {
		return "", err
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return "", types.ErrUnauthenticated
	}

	return userID, nil
}

func (s *Service) contextWithSession(ctx context.Context, session types.Session) context.Context {
	return context.WithValue(ctx, contextKeySession, session)
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    path,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
