package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Error marks a request as rejected by validation. Gateways map it to a 4xx
// response and clients must not retry it automatically.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Errorf builds a validation Error.
func Errorf(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a validation Error.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// Rules holds the configurable limits applied to message sends.
type Rules struct {
	// MaxBodyBytes caps the UTF-8 byte length of a message body. Zero means
	// the default cap.
	MaxBodyBytes int
}

const defaultMaxBodyBytes = 4096

var rules Rules

// SetRules installs the global validation rules (built from config at startup).
func SetRules(r Rules) { rules = r }

// ValidateSend checks a send request before it reaches the store: both
// participants must be set and distinct, and the body must contain at least
// one non-whitespace character.
func ValidateSend(sender, receiver int64, body string) error {
	if sender <= 0 {
		return Errorf("sender id required")
	}
	if receiver <= 0 {
		return Errorf("receiver id required")
	}
	if sender == receiver {
		return Errorf("sender and receiver must differ")
	}
	if strings.TrimSpace(body) == "" {
		return Errorf("body is required")
	}
	max := rules.MaxBodyBytes
	if max <= 0 {
		max = defaultMaxBodyBytes
	}
	if len(body) > max {
		return Errorf("body too long: %d > %d bytes", len(body), max)
	}
	return nil
}
