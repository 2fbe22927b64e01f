package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// auditMiddleware records every request as an audit entry. Multipart bodies
// (spreadsheet uploads) are not copied into the trail.
func (s *Server) auditMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := AuditLogEntry{
			Timestamp: time.Now().UTC(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Route:     r.URL.Path,
		}

		// The role gate runs downstream and its context never propagates
		// back up, so the identity is decoded from the cookie here.
		if cookie, err := r.Cookie(authCookieName); err == nil {
			if claims, err := s.tokens.Verify(cookie.Value); err == nil {
				entry.OrganizationID = claims.OrganizationID
			}
		}

		skipBody := strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data")
		if !skipBody && r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			entry.Request = string(body)
		}

		wrw := newResponseWriterWrapper(w)
		next.ServeHTTP(wrw, r)

		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				entry.Route = tpl
			}
		}
		if orderID, ok := mux.Vars(r)["orderId"]; ok {
			entry.OrderID = orderID
		}
		entry.StatusCode = wrw.StatusCode()
		entry.Response = string(wrw.Body())

		s.audit.Log(entry)
	})
}
