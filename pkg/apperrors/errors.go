package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the HTTP boundary.
type Kind string

const (
	KindArticleNotFound Kind = "ARTICLE_NOT_FOUND"
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindUnexpected      Kind = "UNEXPECTED"
)

// Error carries a Kind, a message and the underlying cause. Message is shown
// to API clients for every kind except KindUnexpected.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func ArticleNotFound(message string, err error) *Error {
	return New(KindArticleNotFound, message, err)
}

func InvalidInput(message string, err error) *Error {
	return New(KindInvalidInput, message, err)
}

func Unexpected(message string, err error) *Error {
	return New(KindUnexpected, message, err)
}

// KindOf reports the Kind of err, treating anything that is not an *Error as
// KindUnexpected.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// As unwraps err into an *Error.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
