package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("course not found")
	ErrIndexOutOfRange = errors.New("record index out of range")
	ErrInvalidRecord   = errors.New("record has no integer courseId")
)
