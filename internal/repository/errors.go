package repository

import "errors"

// ErrDuplicate is returned when an insert hits a unique constraint and the
// row was left untouched.
var ErrDuplicate = errors.New("duplicate record")
