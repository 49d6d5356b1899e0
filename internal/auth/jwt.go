package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/policy"
)

// Claims represents the JWT claims.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the caller identity carried by the token.
func (c *Claims) Identity() policy.Identity {
	return policy.Identity{UserID: c.UserID, Username: c.Username, Role: c.Role}
}

// DefaultTokenExpiry is the token lifetime used when none is configured.
const DefaultTokenExpiry = 7 * 24 * time.Hour

// Issuer signs and verifies session tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. A non-positive expiry means DefaultTokenExpiry.
func NewIssuer(secret string, expiry time.Duration) *Issuer {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &Issuer{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Expiry returns the lifetime of issued tokens.
func (i *Issuer) Expiry() time.Duration {
	return i.expiry
}

// Issue creates a signed token for user with a fresh JTI.
func (i *Issuer) Issue(user *model.User) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ID == "" || !model.ValidRole(claims.Role) {
		return nil, fmt.Errorf("incomplete token claims")
	}
	return claims, nil
}
