package rop

import (
	"context"
	"errors"
)

// GetErrors flattens an errors.Join result; a plain error comes back as a
// single-element slice and nil as an empty one.
func GetErrors(err error) []error {
	if err == nil {
		return []error{}
	}

	e, ok := err.(interface{ Unwrap() []error })
	if ok {
		return e.Unwrap()
	}

	return []error{err}
}

func IsCancellationError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
