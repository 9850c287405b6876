// internal/app/system/result/result.go

// Package result defines the two-variant outcome type used at the boundary
// between units of work and the action cache. A unit of work either succeeds
// with a value or fails with a human-readable message; anything else (a raw
// error, a panic) is normalized into the failure variant before it reaches
// cached state.
package result

import "fmt"

// GenericFailureMessage is stored when a unit of work fails in a way that
// did not produce its own message.
const GenericFailureMessage = "An unexpected error occurred"

// Result is the outcome of a unit of work: exactly one of the success value
// or the error message is meaningful, discriminated by OK.
type Result[T any] struct {
	OK    bool
	Data  T
	Error string
}

// Ok returns a successful result carrying v.
func Ok[T any](v T) Result[T] {
	return Result[T]{OK: true, Data: v}
}

// Err returns a failed result carrying a display-ready message.
func Err[T any](msg string) Result[T] {
	if msg == "" {
		msg = GenericFailureMessage
	}
	return Result[T]{Error: msg}
}

// Errf returns a failed result with a formatted message.
func Errf[T any](format string, args ...any) Result[T] {
	return Err[T](fmt.Sprintf(format, args...))
}

// Wrap converts a Go error into the failure variant. A nil error yields the
// generic message; callers should not pass nil, but the result must still be
// a failure if they do.
func Wrap[T any](err error) Result[T] {
	if err == nil {
		return Err[T](GenericFailureMessage)
	}
	return Err[T](err.Error())
}
