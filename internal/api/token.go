package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the client can learn from a bearer token without the
// signing key.
type TokenClaims struct {
	UserID    string
	Role      domain.Role
	ExpiresAt time.Time
}

// InspectToken decodes a JWT without verifying its signature. The server
// remains the only authority; this is used to fail fast on expired tokens.
func InspectToken(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("parsing token: %w", err)
	}

	var out TokenClaims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		out.UserID = sub
	}
	for _, key := range []string{"id", "userId", "_id"} {
		if out.UserID != "" {
			break
		}
		if s, ok := claims[key].(string); ok {
			out.UserID = s
		}
	}
	if r, ok := claims["role"].(string); ok {
		out.Role = domain.Role(strings.ToLower(r))
	} else if admin, ok := claims["isAdmin"].(bool); ok && admin {
		out.Role = domain.RoleAdmin
	}
	return out, nil
}

// CheckCredential rejects a missing or expired token, and a token whose role
// claim says it is not an admin when requireAdmin is set. Tokens that are not
// JWTs are passed through for the server to judge.
func CheckCredential(cred domain.Credential, requireAdmin bool, now time.Time) error {
	if cred.Empty() {
		return domain.ErrAuth
	}
	claims, err := InspectToken(cred.Token)
	if err != nil {
		return nil
	}
	if !claims.ExpiresAt.IsZero() && !now.Before(claims.ExpiresAt) {
		return fmt.Errorf("%w: token expired", domain.ErrAuth)
	}
	if requireAdmin && claims.Role != "" && claims.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: admin role required", domain.ErrAuth)
	}
	return nil
}
