package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims names the workspace a bearer token belongs to.
type Claims struct {
	WorkspaceID string `json:"workspace_id"`
	gojwt.RegisteredClaims
}

// CreateToken issues an HS256 token for the workspace.
func CreateToken(workspaceID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		WorkspaceID: workspaceID,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   workspaceID,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a token and returns its claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	parsed, err := gojwt.ParseWithClaims(tokenStr, &Claims{}, func(token *gojwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.WorkspaceID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractWorkspaceIDFromToken returns the workspace id of a valid token.
func ExtractWorkspaceIDFromToken(tokenStr, secret string) (string, error) {
	claims, err := ParseToken(tokenStr, secret)
	if err != nil {
		return "", err
	}
	return claims.WorkspaceID, nil
}
