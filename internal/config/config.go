// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers an optional YAML file and COURSES_* env vars on top.
// - Errors returned by Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

// Identity is the fixed payload served by GET /me.
type Identity struct {
	StudentID string `koanf:"student_id" json:"studentId"`
	FirstName string `koanf:"first_name" json:"firstName"`
	LastName  string `koanf:"last_name" json:"lastName"`
	Program   string `koanf:"program" json:"program"`
	Section   string `koanf:"section" json:"section"`
}

// Metrics configures the Prometheus collectors served on /metrics.
type Metrics struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
	// Prefix is prepended to every metric name.
	Prefix string `koanf:"prefix"`
	// RefreshIntervalMS is how often gauges are recomputed.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`
	// BucketsMS overrides the latency histogram buckets.
	BucketsMS []float64 `koanf:"buckets_ms"`
	// Labels are attached to every metric as constant labels.
	Labels map[string]string `koanf:"labels"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`
	// APIPrefix is the versioned mount point of the courses router.
	APIPrefix string `koanf:"api_prefix"`
	// ServiceName appears in the root health message.
	ServiceName string `koanf:"service_name"`
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string `koanf:"allowed_origins"`
	// Server timeouts in milliseconds.
	ReadTimeoutMS     int `koanf:"read_timeout_ms"`
	WriteTimeoutMS    int `koanf:"write_timeout_ms"`
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
	// MaxBodyBytes caps course request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
	// Metrics configures /metrics.
	Metrics Metrics `koanf:"metrics"`
	// Identity is returned by GET /me.
	Identity Identity `koanf:"identity"`
	// SeedCourses are validated and loaded into the store at startup.
	SeedCourses []map[string]any `koanf:"seed_courses"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":5000",
		APIPrefix:         "/api/v2",
		ServiceName:       "lab 15",
		AllowedOrigins:    []string{"*"},
		ReadTimeoutMS:     10_000,
		WriteTimeoutMS:    10_000,
		ShutdownTimeoutMS: 30_000,
		MaxBodyBytes:      1 << 20,
		Metrics: Metrics{
			Enabled:           true,
			Namespace:         "courses",
			Subsystem:         "catalog",
			RefreshIntervalMS: 5_000,
		},
		Identity: Identity{
			StudentID: "670612122",
			FirstName: "Thanaphon",
			LastName:  "Chunlahawanit",
			Program:   "CPE",
			Section:   "801",
		},
	}
}
