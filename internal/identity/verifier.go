// Package identity validates bearer credentials and answers role questions.
// It is the leaf dependency every access-controlled component builds on.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "veriflow/pkg/domain-errors"
)

// RoleAdmin is the role claim value granting administrator privilege.
const RoleAdmin = "admin"

// Claims is the verified identity extracted from a bearer credential.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the owning subject's identifier.
func (c *Claims) SubjectID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// Verifier validates bearer credentials against the issuing authority's
// signing key. Verification is pure; it has no side effects.
type Verifier struct {
	signingKey []byte
	issuer     string
}

func NewVerifier(signingKey, issuer string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey), issuer: issuer}
}

// Verify parses and validates a bearer credential, returning the verified
// identity or CodeUnauthenticated. Every failure mode collapses to the same
// code so callers cannot probe for token internals.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	}, jwt.WithIssuer(v.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "token carries no subject")
	}

	return claims, nil
}

// IsAdmin reports whether the identity carries administrator privilege.
// Missing claims, nil identities, and anything short of an exact role match
// resolve to false rather than an error; admin checks are a boolean gate so
// handlers can respond with a uniform forbidden.
func (v *Verifier) IsAdmin(claims *Claims) bool {
	return claims != nil && claims.Role == RoleAdmin
}

// Mint issues a signed credential. The production issuer lives outside this
// service; Mint exists for development tooling and tests.
func (v *Verifier) Mint(subjectID, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(v.signingKey)
}
