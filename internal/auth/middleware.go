package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expensehub/expense-workflow/internal/domain/entity"
)

// principalKey is the gin context key holding the authenticated principal
const principalKey = "auth_principal"

// Caller-facing gate messages. The bodies are part of the API contract.
const (
	msgTokenRequired = "Access token required"
	msgInvalidToken  = "Invalid token"
)

// Middleware authenticates the Authorization header and, when role is
// non-empty, enforces it. Both failures short-circuit before any handler
// logic runs.
func Middleware(gate *Gate, role entity.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		gateRequest(c, gate, bearerToken(c.GetHeader("Authorization")), role, logger)
	}
}

// bearerToken extracts the credential from an Authorization header. A header
// without the Bearer scheme carries no credential and fails the same way a
// missing header does.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

// TokenParamMiddleware authenticates a credential carried as the :token path
// segment. Used for link-based downloads where the consumer cannot set
// headers; verification is identical to the header variant.
func TokenParamMiddleware(gate *Gate, role entity.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		gateRequest(c, gate, c.Param("token"), role, logger)
	}
}

// gateRequest applies the three-outcome gate: missing credential, invalid
// credential, wrong role.
func gateRequest(c *gin.Context, gate *Gate, credential string, role entity.Role, logger *zap.Logger) {
	principal, err := gate.Verify(credential)
	if err != nil {
		if err == ErrTokenMissing {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgTokenRequired})
			return
		}
		logger.Warn("Rejected credential", zap.Error(err), zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": msgInvalidToken})
		return
	}

	if role != "" {
		if err := gate.RequireRole(principal, role); err != nil {
			logger.Warn("Rejected role",
				zap.String("user_id", principal.UserID),
				zap.String("role", principal.Role.String()),
				zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": fmt.Sprintf("Only %s can access this resource", role),
			})
			return
		}
	}

	c.Set(principalKey, principal)
	c.Next()
}

// PrincipalFrom returns the authenticated principal stored by the middleware
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
