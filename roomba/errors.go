package roomba

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies every error the encoders and the Session return.
type ErrorKind int

// The known error kinds.
const (
	AllocationFailure ErrorKind = iota + 1
	ParseError
	RangeError
	UnknownToken
	IOError
	NoDeviceConfigured
)

func (k ErrorKind) String() string {
	switch k {
	case AllocationFailure:
		return "allocation failure"
	case ParseError:
		return "parse error"
	case RangeError:
		return "value out of range"
	case UnknownToken:
		return "unknown token"
	case IOError:
		return "i/o error"
	case NoDeviceConfigured:
		return "no device configured"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Error carries the kind of failure and, for encoder errors, the offending token.
type Error struct {
	Kind  ErrorKind
	Token string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Token != "" && e.Err != nil:
		return fmt.Sprintf("%s in %q: %v", e.Kind, e.Token, e.Err)
	case e.Token != "":
		return fmt.Sprintf("%s %q", e.Kind, e.Token)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause returns the underlying error for github.com/pkg/errors.Cause.
func (e *Error) Cause() error {
	return e.Err
}

// ErrNoDevice is returned when a command is sent on a Session without a channel.
var ErrNoDevice = &Error{Kind: NoDeviceConfigured, Err: errors.New("no device specified")}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func newError(kind ErrorKind, token string, err error) *Error {
	return &Error{Kind: kind, Token: token, Err: err}
}

// withToken attaches token to err if it is an *Error that does not name one yet.
func withToken(err error, token string) error {
	var e *Error
	if !errors.As(err, &e) || e.Token != "" {
		return err
	}
	return newError(e.Kind, token, e.Err)
}
