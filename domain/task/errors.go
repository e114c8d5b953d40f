package task

import "errors"

var (
	// ErrInvalidID is returned when a task identifier is malformed.
	ErrInvalidID = errors.New("invalid task id")
	// ErrValidation is returned when task input fails validation.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when a non-owner attempts to mutate a task.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when no task exists under the actor's scope.
	ErrNotFound = errors.New("task not found")
	// ErrStoreUnavailable is returned when the backing store fails.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error codes carried across module boundaries.
const (
	CodeInvalidID        = "invalid_id"
	CodeValidation       = "validation_error"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeStoreUnavailable = "store_unavailable"
)

// Error is a task failure with a user-facing message.
// Kind is one of the sentinel errors above and is matched by errors.Is.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NewError creates an Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Code returns the wire code for err, or an empty string for unknown errors.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidID):
		return CodeInvalidID
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	}
	return ""
}

// FromCode rebuilds an Error from its wire code and message.
// Unknown codes are treated as store failures.
func FromCode(code, message string) *Error {
	kind := ErrStoreUnavailable
	switch code {
	case CodeInvalidID:
		kind = ErrInvalidID
	case CodeValidation:
		kind = ErrValidation
	case CodeForbidden:
		kind = ErrForbidden
	case CodeNotFound:
		kind = ErrNotFound
	}
	return &Error{Kind: kind, Message: message}
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}
