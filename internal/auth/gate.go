// Package auth implements the authorization gate: stateless verification of
// signed bearer credentials and the role check in front of manager views.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/expensehub/expense-workflow/internal/domain/entity"
)

var (
	// ErrTokenMissing means no credential was presented at all
	ErrTokenMissing = errors.New("access token required")

	// ErrTokenInvalid covers malformed, expired and wrongly-signed tokens,
	// and tokens carrying a role outside the closed enum
	ErrTokenInvalid = errors.New("invalid token")

	// ErrRoleForbidden means the credential is valid but the role does not
	// match the one the operation requires
	ErrRoleForbidden = errors.New("role not permitted for this resource")
)

// Principal is the authenticated identity extracted from a credential
type Principal struct {
	UserID string
	Role   entity.Role
}

// Claims is the token payload. Field names match the tokens issued by the
// account service.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Gate verifies HS256 bearer tokens. The signing secret is injected at
// construction; there is no refresh or revocation, a token is valid until
// its embedded expiry.
type Gate struct {
	secret []byte
}

// NewGate creates a Gate with the given signing secret
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Verify checks a raw credential and returns the authenticated principal.
// Transports extract the token first (Bearer header, path segment). An empty
// credential fails with ErrTokenMissing; anything unverifiable fails with
// ErrTokenInvalid. Verification is synchronous and stateless.
func (g *Gate) Verify(tokenStr string) (Principal, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return Principal{}, ErrTokenMissing
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Principal{}, ErrTokenInvalid
	}

	role, err := entity.ParseRole(claims.Role)
	if err != nil {
		return Principal{}, ErrTokenInvalid
	}

	return Principal{UserID: claims.UserID, Role: role}, nil
}

// RequireRole checks the principal against the role an operation demands
func (g *Gate) RequireRole(p Principal, role entity.Role) error {
	if p.Role != role {
		return ErrRoleForbidden
	}
	return nil
}
