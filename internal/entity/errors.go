package entity

import "errors"

// Kind classifies an expected failure. Errors without a kind are
// infrastructure failures.
type Kind uint8

const (
	KindInfrastructure Kind = iota
	KindInput
	KindNotFound
	KindAccess
	KindExpired
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNotFound:
		return "not found"
	case KindAccess:
		return "access"
	case KindExpired:
		return "expired"
	case KindConflict:
		return "conflict"
	default:
		return "infrastructure"
	}
}

// Error is an expected, classified failure.
type Error struct {
	kind Kind
	msg  string
}

func newError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

// Kind returns the classification of the error.
func (e *Error) Kind() Kind {
	return e.kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return KindInfrastructure
}

var (
	// ErrCodeMissing is returned when a short code is required but empty.
	ErrCodeMissing = newError(KindInput, "short code is required")
	// ErrURLRequired is returned when the target URL is missing.
	ErrURLRequired = newError(KindInput, "original url is required")
	// ErrCustomCodeEmpty is returned when a custom code is present but empty.
	ErrCustomCodeEmpty = newError(KindInput, "custom code is empty")
	// ErrPasswordEmpty is returned when a password is present but empty.
	ErrPasswordEmpty = newError(KindInput, "password is empty")

	// ErrURLNotFound is returned when a URL with the specified short code cannot be found for the caller.
	ErrURLNotFound = newError(KindNotFound, "url not found")
	// ErrAccountNotFound is returned when no account matches the API key.
	ErrAccountNotFound = newError(KindNotFound, "account not found")

	// ErrAPIKeyRequired is returned when the request carries no API key.
	ErrAPIKeyRequired = newError(KindAccess, "api key is required")
	// ErrAccessDenied is returned when the account tier does not allow the operation.
	ErrAccessDenied = newError(KindAccess, "access denied")
	// ErrPasswordRequired is returned when a protected URL is resolved without a password.
	ErrPasswordRequired = newError(KindAccess, "password required")
	// ErrPasswordIncorrect is returned when the supplied password does not match.
	ErrPasswordIncorrect = newError(KindAccess, "password incorrect")

	// ErrURLExpired is returned when the URL has expired.
	ErrURLExpired = newError(KindExpired, "url expired")

	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = newError(KindConflict, "short code exists")
)
