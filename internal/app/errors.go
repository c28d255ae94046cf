package service

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrCourseExists   = errors.New("course id already exists")
	ErrCourseNotFound = errors.New("course id does not exist")
	ErrInvalidCourse  = errors.New("course has no valid courseId")
)
