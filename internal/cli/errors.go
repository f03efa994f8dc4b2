package cli

import (
	"errors"
	"fmt"

	"github.com/mark3labs/openapi-validator/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

// ErrChecksFailed is returned when at least one response or object did not meet its
// expectation.
var ErrChecksFailed = errors.New("checks failed")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// specUsageError turns loader failures into a friendly usage error naming where the
// problem is.
func specUsageError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec (%s): %s", se.Code, se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}
