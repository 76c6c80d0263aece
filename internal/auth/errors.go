package auth

import "errors"

var (
	// ErrInvalidToken indicates the token failed verification: bad
	// signature, malformed, or expired.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrUnauthenticated indicates a protected action was attempted
	// without a verifiable identity.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	// ErrForbidden indicates the identity is known but not permitted.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrAccountNotActivated blocks sign-in for pending accounts.
	ErrAccountNotActivated = errors.New("auth: account not activated")
	// ErrDuplicateAccount signals a unique-email conflict on registration.
	ErrDuplicateAccount = errors.New("auth: account already exists")
	// ErrCreationFailed wraps unexpected persistence faults so callers can
	// distinguish "you're not allowed" from "the system failed".
	ErrCreationFailed = errors.New("auth: creation failed")
	// ErrNotFound indicates the target record does not exist.
	ErrNotFound = errors.New("auth: not found")
	// ErrInvalidInput indicates caller-supplied data failed validation.
	ErrInvalidInput = errors.New("auth: invalid input")
)
