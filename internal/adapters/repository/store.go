// Package repository defines the course record store and its in-memory implementation.
package repository

import (
	"context"

	"github.com/okian/courses/internal/domain/course"
)

// Store is an ordered sequence of course records. Positions returned by Find
// are only meaningful until the next mutation; callers that find and then
// mutate must serialise those steps themselves.
type Store interface {
	// Find returns the position and record of the first entry with courseID.
	// Returns ErrNotFound if no record matches.
	Find(ctx context.Context, courseID int) (int, course.Course, error)

	// List returns a snapshot of all records in insertion order.
	List(ctx context.Context) []course.Course

	// Insert appends c. Uniqueness of courseId is the caller's concern.
	Insert(ctx context.Context, c course.Course) error

	// Update replaces the record at index with the shallow merge of the
	// existing record and patch, and returns the result.
	Update(ctx context.Context, index int, patch course.Course) (course.Course, error)

	// RemoveAt deletes the record at index, shifting later records down.
	RemoveAt(ctx context.Context, index int) error

	// Count returns the number of stored records.
	Count(ctx context.Context) int
}
