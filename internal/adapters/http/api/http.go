// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/okian/courses/internal/domain/course"
	"github.com/okian/courses/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	List(ctx context.Context) []course.Course
	Get(ctx context.Context, id int) (course.Course, error)
	Create(ctx context.Context, c course.Course) (course.Course, error)
	Update(ctx context.Context, patch course.Course) (course.Course, error)
	Delete(ctx context.Context, id int) ([]course.Course, error)
	Count(ctx context.Context) int
}

// Identity is the static owner record served on /me.
type Identity struct {
	StudentID string `json:"studentId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Program   string `json:"program"`
	Section   string `json:"section"`
}

const (
	defaultAPIPrefix    = "/api/v2"
	defaultServiceName  = "lab 15"
	defaultMaxBodyBytes = 1 << 20
)

// Server wires HTTP routes for the business API.
type Server struct {
	apiPrefix      string
	serviceName    string
	identity       Identity
	allowedOrigins []string
	maxBodyBytes   int64
	log            logger.Logger

	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	infoHandler    *InfoHandler
	coursesHandler *CoursesHandler
}

// Option configures a Server.
type Option func(*Server)

// WithAPIPrefix sets the path prefix for the course routes.
func WithAPIPrefix(prefix string) Option {
	return func(s *Server) {
		p := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
		if p != "" && !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		s.apiPrefix = p
	}
}

// WithServiceName sets the name reported by GET /.
func WithServiceName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.serviceName = name
		}
	}
}

// WithIdentity sets the record served by GET /me.
func WithIdentity(id Identity) Option {
	return func(s *Server) { s.identity = id }
}

// WithAllowedOrigins sets the CORS allow list. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithMaxBodyBytes caps the size of course request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for request and failure logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		apiPrefix:      defaultAPIPrefix,
		serviceName:    defaultServiceName,
		allowedOrigins: []string{"*"},
		maxBodyBytes:   defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("http")
	}

	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.infoHandler = NewInfoHandler(s.serviceName, s.identity)
	s.coursesHandler = NewCoursesHandler(deps, s.coursesBase(), s.maxBodyBytes, s.log)
	return s
}

func (s *Server) coursesBase() string {
	return s.apiPrefix + "/courses"
}

// Router returns a chi router with the middleware stack and every API route.
// Further routes (e.g. API docs) may be added by the caller.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(s.log))
	r.Use(Recover(s.log))
	r.Use(CORS(s.allowedOrigins))
	s.Register(r)
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get("/", MetricsMiddleware(s.infoHandler.HandleRoot, "root"))
	r.Get("/me", MetricsMiddleware(s.infoHandler.HandleMe, "me"))
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Method(http.MethodGet, "/metrics", MetricsHandler())

	r.Route(s.coursesBase(), func(r chi.Router) {
		h := s.coursesHandler
		r.Get("/", MetricsMiddleware(h.HandleList, "courses.list"))
		r.Get("/{courseId}", MetricsMiddleware(h.HandleGet, "courses.get"))
		r.Post("/", MetricsMiddleware(h.HandleCreate, "courses.create"))
		r.Put("/", MetricsMiddleware(h.HandleUpdate, "courses.update"))
		r.Delete("/", MetricsMiddleware(h.HandleDelete, "courses.delete"))
	})
}

// envelope is the response shape shared by every course and info route.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	msgValidationFailed = "Validation failed"
	msgInternal         = "Something is wrong, please try again"
)

// Body errors surface verbatim as the validation message.
var (
	errBodyNotObject = errors.New("request body must be a JSON object")
	errBodyNotJSON   = errors.New("request body must be valid JSON")
	errBodyTooLarge  = errors.New("request body is too large")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func writeValidation(w http.ResponseWriter, first string) {
	writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: msgValidationFailed, Errors: first})
}

func writeInternal(w http.ResponseWriter, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: msgInternal, Error: detail})
}

// decodeObject reads a JSON object body of at most limit bytes. Numbers are
// kept as json.Number so integer checks see the literal the client sent.
func decodeObject(w http.ResponseWriter, r *http.Request, limit int64) (map[string]any, error) {
	if r.Body == nil {
		return nil, errBodyNotObject
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, errBodyTooLarge
		case errors.Is(err, io.EOF):
			return nil, errBodyNotObject
		}
		return nil, errBodyNotJSON
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errBodyNotObject
	}
	return obj, nil
}
