package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token fails verification
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by operator tokens
type Claims struct {
	jwt.RegisteredClaims
	TenantID   string `json:"tenant_id,omitempty"`
	SuperAdmin bool   `json:"super_admin,omitempty"`
}

// TokenVerifier verifies HMAC-signed operator tokens issued by the
// authentication service (an external collaborator of this core).
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a token verifier
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify parses and validates tokenString and returns the caller's principal
func (v *TokenVerifier) Verify(tokenString string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	principal := Principal{
		Subject:    claims.Subject,
		SuperAdmin: claims.SuperAdmin,
	}
	if claims.TenantID != "" {
		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil {
			return Principal{}, fmt.Errorf("%w: malformed tenant_id claim", ErrInvalidToken)
		}
		principal.TenantID = tenantID
	}

	return principal, nil
}

// Issue signs a token for the given principal, used by tests and local
// tooling; production tokens come from the authentication service.
func (v *TokenVerifier) Issue(principal Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SuperAdmin: principal.SuperAdmin,
	}
	if principal.TenantID != uuid.Nil {
		claims.TenantID = principal.TenantID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
