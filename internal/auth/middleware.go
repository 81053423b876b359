package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"asset-angel-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the resolved session
	SessionKey contextKey = "session"
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Redirect string `json:"redirect,omitempty"`
}

// SessionFromContext extracts the session from the request context
func SessionFromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(SessionKey).(*Session); ok {
		return s
	}
	return nil
}

// ClaimsFromContext extracts the JWT claims from the request context
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*Claims); ok {
		return claims
	}
	return nil
}

// WithSession returns ctx carrying s and its claims
func WithSession(ctx context.Context, s *Session, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, SessionKey, s)
	if claims != nil {
		ctx = context.WithValue(ctx, ClaimsKey, claims)
	}
	return ctx
}

// Public paths that don't require authentication
var publicPaths = map[string]bool{
	"/health":      true,
	"/auth/login":  true,
	"/auth/access": true,
}

// isPublicPath checks if the given path is public (no auth required)
func isPublicPath(path string) bool {
	return publicPaths[path]
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, message, code, redirect string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := ErrorResponse{
		Error:    message,
		Code:     code,
		Redirect: redirect,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// sendTokenExpirationWarning adds a warning header when token expires soon
func sendTokenExpirationWarning(w http.ResponseWriter, claims *Claims) {
	if !claims.IsExpiringSoon(time.Hour) {
		return
	}
	expiresAt := claims.ExpiresAt.Time
	if timeUntilExpiry := time.Until(expiresAt); timeUntilExpiry > 0 {
		w.Header().Set("X-Token-Expires-At", expiresAt.Format(time.RFC3339))
		w.Header().Set("X-Token-Expires-In", timeUntilExpiry.String())
	}
}

// validateTokenFormat performs basic token format validation
func validateTokenFormat(tokenString string) error {
	if len(tokenString) == 0 {
		return errors.New("token cannot be empty")
	}
	if len(tokenString) > 8192 { // 8KB limit
		return errors.New("token size exceeds maximum allowed")
	}
	// Basic JWT format validation (3 parts separated by dots)
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return errors.New("invalid JWT token format")
	}
	return nil
}

// bearerToken extracts the token from an Authorization header. The returned
// code names the failure when the header is present but unusable.
func bearerToken(r *http.Request) (token, code, message string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "MISSING_AUTH_HEADER", "Authorization header required"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>"
	}
	token = strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "MISSING_TOKEN", "Token is required"
	}
	if err := validateTokenFormat(token); err != nil {
		return "", "INVALID_TOKEN_FORMAT", "Invalid token format: " + err.Error()
	}
	return token, "", ""
}

// classifyTokenError maps a validation failure to an error code and message
func classifyTokenError(err error) (code, message string) {
	switch {
	case errors.Is(err, ErrNoSession):
		return "SESSION_ENDED", "Session has ended, please sign in again"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "INVALID_SIGNING_METHOD", "Invalid token signing method"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "MALFORMED_TOKEN", "Token is malformed"
	default:
		return "INVALID_TOKEN", "Invalid or expired token"
	}
}

// AuthMiddleware validates bearer tokens, resolves the live session they
// reference and stores it in the request context.
func AuthMiddleware(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, code, message := bearerToken(r)
			if code != "" {
				sendErrorResponse(w, message, code, LoginPath, http.StatusUnauthorized)
				return
			}

			session, claims, err := gate.ResolveToken(token)
			if err != nil {
				code, message := classifyTokenError(err)
				sendErrorResponse(w, message, code, LoginPath, http.StatusUnauthorized)
				return
			}

			sendTokenExpirationWarning(w, claims)

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session, claims)))
		})
	}
}

// OptionalAuth resolves a bearer token when one is present and valid, and
// otherwise passes the request on as anonymous.
func OptionalAuth(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, code, _ := bearerToken(r); code == "" {
				if session, claims, err := gate.ResolveToken(token); err == nil {
					r = r.WithContext(WithSession(r.Context(), session, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MustRole creates middleware that requires one of the given roles. Denials
// carry the path the caller should be sent to.
func MustRole(requiredRoles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(requiredRoles) == 0 {
				sendErrorResponse(w, "No roles specified for this endpoint", "NO_ROLES_SPECIFIED", "", http.StatusInternalServerError)
				return
			}

			session := SessionFromContext(r.Context())
			decision := Authorize(requiredRoles, session)
			switch {
			case decision.Allowed():
				next.ServeHTTP(w, r)
			case !session.Authenticated():
				sendErrorResponse(w, "Authentication required", "AUTHENTICATION_REQUIRED", decision.To, http.StatusUnauthorized)
			default:
				sendErrorResponse(w, "Insufficient permissions", "INSUFFICIENT_PERMISSIONS", decision.To, http.StatusForbidden)
			}
		})
	}
}
