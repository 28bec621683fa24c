package errors

import "errors"

var (
	ErrNotFound = errors.New("calendar override not found")
)
