package session

import "fmt"

// MinPasswordLength matches the server's registration rule.
const MinPasswordLength = 6

type AuthErrorKind int

const (
	InvalidCredentials AuthErrorKind = iota + 1
	RegistrationFailed
	DuplicateEmail
)

// AuthError is a refusal from the remote API. Err keeps the transport detail.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case InvalidCredentials:
		return "Invalid email or password"
	case DuplicateEmail:
		return "Email already registered"
	default:
		return "Registration failed"
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is matches any AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidCredentials = &AuthError{Kind: InvalidCredentials}
	ErrRegistrationFailed = &AuthError{Kind: RegistrationFailed}
	ErrDuplicateEmail     = &AuthError{Kind: DuplicateEmail}
)

type ValidationKind int

const (
	MissingField ValidationKind = iota + 1
	WeakPassword
)

// ValidationError is raised before any request leaves the process.
type ValidationError struct {
	Kind  ValidationKind
	Field string
}

func (e *ValidationError) Error() string {
	if e.Kind == WeakPassword {
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}
	if e.Field == "" {
		return "all fields are required"
	}
	return e.Field + " is required"
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingField = &ValidationError{Kind: MissingField}
	ErrWeakPassword = &ValidationError{Kind: WeakPassword, Field: "password"}
)
