package question

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation. Each kind renders as one fixed response.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnprocessable
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnprocessable:
		return "unprocessable"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

var (
	ErrBlankSearchTerm  = errors.New("search term is blank")
	ErrCategoryNotFound = errors.New("category not found")
	ErrMissingField     = errors.New("required field missing")
	ErrEmptyPool        = errors.New("no questions available for quiz category")
	ErrPoolExhausted    = errors.New("every question in the quiz category was already played")
)

// Error is a classified operation failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the classification of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
