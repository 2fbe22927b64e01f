package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"github.com/shipway/shipway/internal/auth"
	"github.com/shipway/shipway/internal/repository"
)

func authCookieFor(t *testing.T, s *Server, orgID primitive.ObjectID, role string) *http.Cookie {
	t.Helper()
	token, err := s.tokens.Issue(orgID.Hex(), role)
	require.NoError(t, err)
	return &http.Cookie{Name: authCookieName, Value: token}
}

func TestRequireRole(t *testing.T) {
	t.Run("no cookie", func(t *testing.T) {
		s, _, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/order/orders", nil)
		rec := doRequest(s, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Access token is missing", responseMessage(t, rec))
	})

	t.Run("bad token", func(t *testing.T) {
		s, _, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/order/orders", nil)
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: "not.a.token"})
		rec := doRequest(s, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired token", responseMessage(t, rec))
	})

	t.Run("role not allowed", func(t *testing.T) {
		s, _, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/order/orders", nil)
		req.AddCookie(authCookieFor(t, s, primitive.NewObjectID(), "courier"))
		rec := doRequest(s, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Access denied: no permission", responseMessage(t, rec))
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		s, _, orderSvc := newTestServer(t)
		orgID := primitive.NewObjectID()

		orderSvc.EXPECT().List(gomock.Any(), orgID, "").
			Return([]*repository.Order{{OrderID: "ORD-AAAAAAAAAAAA"}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/order/orders", nil)
		req.AddCookie(authCookieFor(t, s, orgID, auth.RoleOrganization))
		rec := doRequest(s, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("public routes stay open", func(t *testing.T) {
		s, _, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := doRequest(s, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
