package cli

import (
	"errors"
	"fmt"
)

// ErrUsage marks errors caused by bad invocations (missing flags, unknown
// values). main maps it to exit code 2 so scripts can tell usage mistakes
// apart from pipeline failures.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func newUsageErrorf(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
