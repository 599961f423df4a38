package models

import "errors"

// ErrInvalid marks input that fails model validation.
var ErrInvalid = errors.New("invalid")
