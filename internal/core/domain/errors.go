package domain

import "errors"

// ErrInvalidArgument is wrapped by every input validation failure.
// Use errors.Is to detect it.
var ErrInvalidArgument = errors.New("invalid argument")
