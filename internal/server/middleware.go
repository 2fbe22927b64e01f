package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/shipway/shipway/internal/auth"
	"github.com/shipway/shipway/internal/metrics"
)

type contextKey string

const identityKey contextKey = "identity"

// requireRole is the access-control gate: it extracts the bearer token from
// the auth cookie, verifies it and checks the decoded role against the
// allow-list before any handler runs. On success the decoded claims travel in
// the request context.
func (s *Server) requireRole(allowedRoles ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(authCookieName)
			if err != nil {
				respondMessage(w, http.StatusUnauthorized, "Access token is missing")
				return
			}

			claims, err := s.tokens.Verify(cookie.Value)
			if err != nil {
				s.logger.Warn("token verification failed", zap.Error(err))
				respondMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			allowed := false
			for _, role := range allowedRoles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				respondMessage(w, http.StatusForbidden, "Access denied: no permission")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(identityKey).(*auth.Claims)
	return claims, ok
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrw := newResponseWriterWrapper(w)
		next.ServeHTTP(wrw, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrw.StatusCode())).Inc()
	})
}
