package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/domain/entity"
)

func newGatedRouter(t *testing.T, gate *Gate, role entity.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Middleware(gate, role, zap.NewNop()), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user": p.UserID})
	})
	r.GET("/download/:token", TokenParamMiddleware(gate, role, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestMiddleware_HeaderCredential(t *testing.T) {
	gate := NewGate(testSecret)
	router := newGatedRouter(t, gate, entity.RoleManager)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid manager token passes",
			authHeader: "Bearer " + signToken(t, testSecret, "u42", "manager", future),
			wantStatus: http.StatusOK,
			wantBody:   `{"user":"u42"}`,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Access token required"}`,
		},
		{
			name:       "schemeless header counts as missing",
			authHeader: signToken(t, testSecret, "u42", "manager", future),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Access token required"}`,
		},
		{
			name:       "bearer scheme with no token",
			authHeader: "Bearer ",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Access token required"}`,
		},
		{
			name:       "malformed token",
			authHeader: "Bearer not-a-jwt",
			wantStatus: http.StatusForbidden,
			wantBody:   `{"message":"Invalid token"}`,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + signToken(t, testSecret, "u42", "manager", time.Now().Add(-time.Hour)),
			wantStatus: http.StatusForbidden,
			wantBody:   `{"message":"Invalid token"}`,
		},
		{
			name:       "employee hits manager resource",
			authHeader: "Bearer " + signToken(t, testSecret, "u7", "employee", future),
			wantStatus: http.StatusForbidden,
			wantBody:   `{"message":"Only manager can access this resource"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestMiddleware_AuthOnlyWithoutRole(t *testing.T) {
	gate := NewGate(testSecret)
	router := newGatedRouter(t, gate, "")
	future := time.Now().Add(time.Hour)

	// Any valid token passes when no role is demanded
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "u7", "employee", future))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// But a credential is still required
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenParamMiddleware(t *testing.T) {
	gate := NewGate(testSecret)
	router := newGatedRouter(t, gate, entity.RoleManager)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{
			name:       "valid token in path",
			token:      signToken(t, testSecret, "u42", "manager", future),
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid token in path",
			token:      "not-a-jwt",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wrong role in path token",
			token:      signToken(t, testSecret, "u7", "employee", future),
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/download/"+tt.token, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
