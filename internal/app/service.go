// Package service provides the course catalog service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/courses/internal/adapters/repository"
	"github.com/okian/courses/internal/domain/course"
	"github.com/okian/courses/pkg/logger"
	"github.com/okian/courses/pkg/metrics"
)

// Mutation labels for metrics and logs.
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"

	outcomeOK       = "ok"
	outcomeConflict = "conflict"
	outcomeMissing  = "not_found"
	outcomeError    = "error"
)

// Service owns the record store. Every find-then-mutate sequence runs under
// writeMu, so at most one writer touches the catalog at a time.
type Service struct {
	writeMu sync.Mutex
	mu      sync.RWMutex

	store repository.Store
	seeds []map[string]any

	// State
	started bool
	created int
	updated int
	deleted int
	skipped int

	// Logging
	logger  logger.Logger
	logOnce sync.Once
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the default in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSeedCourses sets records loaded on Start. Each is checked against the
// create schema; invalid or duplicate records are logged and skipped.
func WithSeedCourses(seeds []map[string]any) Option {
	return func(s *Service) {
		s.seeds = append(s.seeds, seeds...)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(context.Background())
	}
	return s
}

// Start loads the configured seed records. Calling it twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	s.log().Info(ctx, "starting course catalog service...")

	for i, raw := range s.seeds {
		c, issues := course.ValidatePost(raw)
		if len(issues) > 0 {
			s.markSkipped()
			s.log().Warn(ctx, "skipping invalid seed course",
				logger.Int("index", i),
				logger.String("reason", issues.First()),
			)
			continue
		}
		if _, err := s.Create(ctx, c); err != nil {
			if !errors.Is(err, ErrCourseExists) {
				return fmt.Errorf("seed course %d: %w", i, err)
			}
			s.markSkipped()
			s.log().Warn(ctx, "skipping duplicate seed course", logger.Int("index", i))
		}
	}

	s.log().Info(ctx, "course catalog service started",
		logger.Int("courses", s.store.Count(ctx)),
		logger.Int("seedsSkipped", s.skippedCount()),
	)
	return nil
}

// Stop marks the service as stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.log().Info(context.Background(), "course catalog service stopped")
}

// List returns every course in insertion order.
func (s *Service) List(ctx context.Context) []course.Course {
	return s.store.List(ctx)
}

// Get returns the course with id.
func (s *Service) Get(ctx context.Context, id int) (course.Course, error) {
	_, c, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return c, nil
}

// Create inserts c unless a course with the same id already exists.
func (s *Service) Create(ctx context.Context, c course.Course) (course.Course, error) {
	id, ok := c.ID()
	if !ok {
		metrics.RecordCourseMutation(opCreate, outcomeError)
		return nil, ErrInvalidCourse
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, _, err := s.store.Find(ctx, id); err == nil {
		metrics.RecordCourseMutation(opCreate, outcomeConflict)
		return nil, ErrCourseExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordCourseMutation(opCreate, outcomeError)
		return nil, err
	}

	if err := s.store.Insert(ctx, c); err != nil {
		metrics.RecordCourseMutation(opCreate, outcomeError)
		return nil, mapStoreErr(err)
	}

	s.count(opCreate)
	metrics.RecordCourseMutation(opCreate, outcomeOK)
	s.log().Info(ctx, "course created", logger.Int("courseId", id))
	return c.Clone(), nil
}

// Update merges patch into the course named by patch's courseId.
func (s *Service) Update(ctx context.Context, patch course.Course) (course.Course, error) {
	id, ok := patch.ID()
	if !ok {
		metrics.RecordCourseMutation(opUpdate, outcomeError)
		return nil, ErrInvalidCourse
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	idx, _, err := s.store.Find(ctx, id)
	if err != nil {
		metrics.RecordCourseMutation(opUpdate, outcomeFor(err))
		return nil, mapStoreErr(err)
	}
	merged, err := s.store.Update(ctx, idx, patch)
	if err != nil {
		metrics.RecordCourseMutation(opUpdate, outcomeError)
		return nil, err
	}

	s.count(opUpdate)
	metrics.RecordCourseMutation(opUpdate, outcomeOK)
	s.log().Info(ctx, "course updated", logger.Int("courseId", id), logger.Int("fields", len(patch)))
	return merged, nil
}

// Delete removes the course with id and returns the remaining courses.
func (s *Service) Delete(ctx context.Context, id int) ([]course.Course, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	idx, _, err := s.store.Find(ctx, id)
	if err != nil {
		metrics.RecordCourseMutation(opDelete, outcomeFor(err))
		return nil, mapStoreErr(err)
	}
	if err := s.store.RemoveAt(ctx, idx); err != nil {
		metrics.RecordCourseMutation(opDelete, outcomeError)
		return nil, err
	}

	s.count(opDelete)
	metrics.RecordCourseMutation(opDelete, outcomeOK)
	s.log().Info(ctx, "course deleted", logger.Int("courseId", id))
	return s.store.List(ctx), nil
}

// Count returns the number of stored courses.
func (s *Service) Count(ctx context.Context) int {
	return s.store.Count(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.store.Count(context.Background())
	metrics.UpdateCoursesTotal(total)

	return map[string]interface{}{
		"started":      s.started,
		"totalCourses": total,
		"created":      s.created,
		"updated":      s.updated,
		"deleted":      s.deleted,
		"seedsSkipped": s.skipped,
	}
}

func (s *Service) count(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch op {
	case opCreate:
		s.created++
	case opUpdate:
		s.updated++
	case opDelete:
		s.deleted++
	}
}

func (s *Service) markSkipped() {
	s.mu.Lock()
	s.skipped++
	s.mu.Unlock()
}

func (s *Service) skippedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skipped
}

func (s *Service) log() logger.Logger {
	s.logOnce.Do(func() {
		if s.logger == nil {
			s.logger = logger.Named("catalog")
		}
	})
	return s.logger
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCourseNotFound
	}
	if errors.Is(err, repository.ErrInvalidRecord) {
		return ErrInvalidCourse
	}
	return err
}

func outcomeFor(err error) string {
	if errors.Is(err, repository.ErrNotFound) {
		return outcomeMissing
	}
	return outcomeError
}
