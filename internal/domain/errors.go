package domain

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrOutOfRange   = errors.New("index out of range")
	ErrNotFound     = errors.New("not found")
	ErrLockHeld     = errors.New("lock already held")
)
