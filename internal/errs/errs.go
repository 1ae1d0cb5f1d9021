// Package errs defines the error taxonomy shared across the CLI and the
// process exit codes each category maps to.
package errs

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitUser      = 1
	ExitInternal  = 2
	ExitInterrupt = 130
)

// ErrViolationsFound signals that unpinned references were found during
// the run. The command has already reported (or fixed) them; main maps
// this to exit code 1 without printing anything further.
var ErrViolationsFound = errors.New("unpinned references found")

// User is an error the user can act on: bad input, a missing directory,
// an unreachable remote. Printed as "Error: <msg>" with exit code 1.
type User struct {
	msg string
}

func (e *User) Error() string { return e.msg }

// Userf builds a User error from a format string.
func Userf(format string, args ...any) error {
	return &User{msg: fmt.Sprintf(format, args...)}
}

// Resolution reports that no tag in the remote repository matched a
// requested version. It is user-actionable like User.
type Resolution struct {
	Requested string
}

func (e *Resolution) Error() string {
	return "could not find any tag matching " + e.Requested
}

// Internal marks failures that are not user-actionable: I/O faults
// mid-write or programming defects. They exit with code 2 and ask the
// user to file a bug.
type Internal struct {
	err error
}

func (e *Internal) Error() string { return e.err.Error() }

func (e *Internal) Unwrap() error { return e.err }

// Internalf builds an Internal error from a format string. The %w verb
// is supported.
func Internalf(format string, args ...any) error {
	return &Internal{err: fmt.Errorf(format, args...)}
}

// IsUser reports whether err is (or wraps) a user-actionable error.
func IsUser(err error) bool {
	var u *User
	var r *Resolution
	return errors.As(err, &u) || errors.As(err, &r)
}

// IsInternal reports whether err is (or wraps) an internal failure.
func IsInternal(err error) bool {
	var i *Internal
	return errors.As(err, &i)
}
