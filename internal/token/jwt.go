// Package token issues and parses the signed principal assertions that bind a
// request to an Admin or FamilyHead. Revocation is layered on top by the auth
// service; this package only deals with signatures and expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "locality/pkg/domain-errors"
	"locality/pkg/requestcontext"
)

// Claims is the signed payload: subject is the principal ID, jti identifies
// the token for revocation.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// PrincipalID parses the subject claim.
func (c *Claims) PrincipalID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Service signs and verifies principal tokens.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewService(signingKey, issuer string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// TTL reports the configured token lifetime; the revocation store uses it to
// bound how long a revoked jti must be remembered.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the principal. The returned claims carry the jti
// and expiry the caller may need for cookies and revocation bookkeeping.
func (s *Service) Issue(principalID uuid.UUID, role requestcontext.Role, email string, now time.Time) (string, *Claims, error) {
	claims := &Claims{
		Role:  string(role),
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies the signature and expiry and returns the claims.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
