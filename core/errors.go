package core

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrNotFound also covers records owned by someone else, so existence is not leaked.
	ErrNotFound   = errors.New("file not found")
	ErrBadRequest = errors.New("bad request")
	ErrUnknown    = errors.New("unknown error")
)
