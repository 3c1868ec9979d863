package service

import "errors"

// The download path deliberately collapses "token never existed" and
// "token exists but is unusable" into the same ErrNotFound so probing
// clients learn nothing about link state.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("storage temporarily unavailable")
	ErrInvalid          = errors.New("invalid request")
)
