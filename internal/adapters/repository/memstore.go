package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/courses/internal/domain/course"
	"github.com/okian/courses/pkg/metrics"
)

// Store operation labels for latency metrics.
const (
	opFind   = "find"
	opList   = "list"
	opInsert = "insert"
	opUpdate = "update"
	opRemove = "remove"
)

// MemoryStore is a slice-backed Store. The RWMutex keeps individual calls
// memory-safe; it does not make a Find followed by Update atomic.
type MemoryStore struct {
	mu      sync.RWMutex
	records []course.Course
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store, then applies opts.
func NewMemoryStore(_ context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateCoursesTotal(len(s.records))
	return s
}

// Find implements Store.Find with a linear scan.
func (s *MemoryStore) Find(_ context.Context, courseID int) (int, course.Course, error) {
	defer observe(opFind, time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, r := range s.records {
		if id, ok := r.ID(); ok && id == courseID {
			return i, r.Clone(), nil
		}
	}
	return -1, nil, ErrNotFound
}

// List implements Store.List. The returned slice is a copy; records replaced
// later by Update are new maps, so the snapshot's entries do not change.
func (s *MemoryStore) List(_ context.Context) []course.Course {
	defer observe(opList, time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]course.Course, len(s.records))
	copy(out, s.records)
	return out
}

// Insert implements Store.Insert.
func (s *MemoryStore) Insert(_ context.Context, c course.Course) error {
	defer observe(opInsert, time.Now())

	if _, ok := c.ID(); !ok {
		return ErrInvalidRecord
	}
	s.mu.Lock()
	s.records = append(s.records, c.Clone())
	n := len(s.records)
	s.mu.Unlock()

	metrics.UpdateCoursesTotal(n)
	return nil
}

// Update implements Store.Update.
func (s *MemoryStore) Update(_ context.Context, index int, patch course.Course) (course.Course, error) {
	defer observe(opUpdate, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return nil, ErrIndexOutOfRange
	}
	merged := course.Merge(s.records[index], patch)
	s.records[index] = merged
	return merged.Clone(), nil
}

// RemoveAt implements Store.RemoveAt.
func (s *MemoryStore) RemoveAt(_ context.Context, index int) error {
	defer observe(opRemove, time.Now())

	s.mu.Lock()
	if index < 0 || index >= len(s.records) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	s.records = slices.Delete(s.records, index, index+1)
	n := len(s.records)
	s.mu.Unlock()

	metrics.UpdateCoursesTotal(n)
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
