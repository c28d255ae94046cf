package api

import (
	"context"
	"net/http"

	"github.com/okian/courses/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CourseCounter reports how many courses are stored.
type CourseCounter interface {
	Count(ctx context.Context) int
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	counter CourseCounter
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(counter CourseCounter) *HealthHandler {
	return &HealthHandler{counter: counter}
}

type healthResponse struct {
	Status  string `json:"status"`
	Courses int    `json:"courses"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.counter != nil {
		resp.Courses = h.counter.Count(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

// MetricsHandler serves the custom Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
