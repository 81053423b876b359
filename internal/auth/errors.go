package auth

import "errors"

// AuthErrorKind classifies a failed login
type AuthErrorKind string

const (
	UserNotFound       AuthErrorKind = "USER_NOT_FOUND"
	InvalidPassword    AuthErrorKind = "INVALID_PASSWORD"
	AccountDeactivated AuthErrorKind = "ACCOUNT_DEACTIVATED"
)

var kindMessages = map[AuthErrorKind]string{
	UserNotFound:       "User not found",
	InvalidPassword:    "Invalid password",
	AccountDeactivated: "Account is deactivated",
}

// AuthError is returned by Gate.Login when credentials are rejected.
// Error() is the message shown inline on the login form.
type AuthError struct {
	Kind AuthErrorKind
}

func (e *AuthError) Error() string {
	if msg, ok := kindMessages[e.Kind]; ok {
		return msg
	}
	return "Authentication failed"
}

// Is matches another *AuthError of the same kind, so callers can write
// errors.Is(err, &AuthError{Kind: InvalidPassword}).
func (e *AuthError) Is(target error) bool {
	var other *AuthError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// ErrNoSession is returned for operations that need an authenticated session
var ErrNoSession = errors.New("auth: no active session")

// KindOf returns the kind of an *AuthError in err's chain, or ""
func KindOf(err error) AuthErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// Sentinels for errors.Is against a login failure
var (
	ErrUserNotFound       error = &AuthError{Kind: UserNotFound}
	ErrInvalidPassword    error = &AuthError{Kind: InvalidPassword}
	ErrAccountDeactivated error = &AuthError{Kind: AccountDeactivated}
)
