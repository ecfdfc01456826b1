package domain

import (
	"errors"
	"strings"
)

// Kind classifies a domain failure so the transport layer can map it to a
// response without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindInvalidIdentifier
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInvalidIdentifier:
		return "invalid_identifier"
	default:
		return "internal"
	}
}

// Error is a typed domain failure. Sentinels are compared by identity with
// errors.Is.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrUnauthenticated    = newError(KindUnauthenticated, "token is not valid")
	ErrInvalidCredentials = newError(KindUnauthenticated, "invalid credentials")
	ErrForbidden          = newError(KindForbidden, "user not authorized")

	ErrUserNotFound       = newError(KindNotFound, "user not found")
	ErrProfileNotFound    = newError(KindNotFound, "there is no profile for this user")
	ErrExperienceNotFound = newError(KindNotFound, "experience not found")
	ErrEducationNotFound  = newError(KindNotFound, "education not found")
	ErrPostNotFound       = newError(KindNotFound, "post not found")
	ErrCommentNotFound    = newError(KindNotFound, "comment does not exist")
	ErrGitHubNotFound     = newError(KindNotFound, "no github profile found")

	ErrUserExists        = newError(KindConflict, "user already exists")
	ErrAlreadyLiked      = newError(KindConflict, "post already liked")
	ErrNotLiked          = newError(KindConflict, "post has not yet been liked")
	ErrConcurrentUpdate  = newError(KindConflict, "concurrent modification, please retry")
	ErrInvalidIdentifier = newError(KindInvalidIdentifier, "invalid identifier")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors carries every field failure of a request at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Required builds a single-field validation failure.
func Required(field string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: field + " is required"}}
}

// KindOf reports the classification of err. Anything unknown is internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return KindValidation
	}
	return KindInternal
}
