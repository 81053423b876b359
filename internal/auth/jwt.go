package auth

import (
	"errors"
	"fmt"
	"time"

	"asset-angel-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret ValidateConfig accepts
const MinSecretLength = 32

// Claims represents the JWT claims structure. The registered jti claim
// carries the session id and sub carries the user id.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionID returns the id of the session the token was issued for
func (c *Claims) SessionID() string { return c.ID }

// UserID returns the id of the principal the token was issued to
func (c *Claims) UserID() string { return c.Subject }

// HasRole checks if the token's role is any of the required roles
func (c *Claims) HasRole(requiredRoles ...models.Role) bool {
	for _, required := range requiredRoles {
		if c.Role == required {
			return true
		}
	}
	return false
}

// IsExpiringSoon reports whether the token expires within d. Tokens
// without an expiry never do.
func (c *Claims) IsExpiringSoon(d time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Until(c.ExpiresAt.Time) <= d
}

// JWTManager handles JWT operations
type JWTManager struct {
	secret   string
	issuer   string
	audience string
	expiry   time.Duration
	now      func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret, issuer, audience string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		expiry:   expiry,
		now:      time.Now,
	}
}

// WithClock replaces time.Now for issuing and validating tokens
func (j *JWTManager) WithClock(now func() time.Time) *JWTManager {
	if now != nil {
		j.now = now
	}
	return j
}

// Expiry returns the lifetime of issued tokens
func (j *JWTManager) Expiry() time.Duration { return j.expiry }

// ValidateConfig checks the manager's settings before any token is issued
func (j *JWTManager) ValidateConfig() error {
	if j.secret == "" {
		return errors.New("jwt secret is required")
	}
	if len(j.secret) < MinSecretLength {
		return fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if j.issuer == "" {
		return errors.New("jwt issuer is required")
	}
	if j.audience == "" {
		return errors.New("jwt audience is required")
	}
	if j.expiry <= 0 {
		return errors.New("jwt expiry must be positive")
	}
	return nil
}

// GenerateToken creates a signed token for a session and returns it with
// its expiry time.
func (j *JWTManager) GenerateToken(sessionID, userID string, role models.Role) (string, time.Time, error) {
	if sessionID == "" {
		return "", time.Time{}, errors.New("session id is required")
	}
	if userID == "" {
		return "", time.Time{}, errors.New("user id is required")
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("invalid role %q", role)
	}

	now := j.now()
	expiresAt := now.Add(j.expiry)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Audience:  []string{j.audience},
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates and parses a JWT token
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secret), nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.SessionID() == "" || claims.UserID() == "" {
			return nil, errors.New("token is missing session or subject")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
