package repository

import "github.com/okian/courses/internal/domain/course"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithSeed preloads records in the given order. Records without an integer
// courseId are skipped.
func WithSeed(records ...course.Course) Option {
	return func(s *MemoryStore) {
		for _, r := range records {
			if _, ok := r.ID(); ok {
				s.records = append(s.records, r.Clone())
			}
		}
	}
}

// WithCapacity presizes the backing slice.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 && cap(s.records) < n {
			grown := make([]course.Course, len(s.records), n)
			copy(grown, s.records)
			s.records = grown
		}
	}
}
