package errs

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/withstack"
)

// PublicError carries a message that is safe to return to API callers.
type PublicError struct {
	err     error
	message string
	code    string
}

func (p PublicError) Error() string {
	return p.err.Error()
}

func (p PublicError) Message() string {
	return p.message
}

// Code is the kind of the wrapped error, or empty when it has none.
func (p PublicError) Code() string {
	return p.code
}

func (p PublicError) Unwrap() error {
	return p.err
}

// NewPublicError returns an InvalidArgument error exposing message.
func NewPublicError(message string) error {
	return withstack.WithStackDepth(&PublicError{
		err:     errors.Wrap(InvalidArgument, message),
		message: message,
		code:    string(InvalidArgument),
	}, 1)
}

// WithPublicMessage exposes err to callers, prefixed with prefix when it is not empty.
func WithPublicMessage(err error, prefix string) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	if prefix != "" {
		message = prefix + ": " + message
	}
	return withstack.WithStackDepth(&PublicError{err: err, message: message, code: kindOf(err)}, 1)
}

func kindOf(err error) string {
	var kind ErrorKind
	if errors.As(err, &kind) {
		return string(kind)
	}
	return ""
}
