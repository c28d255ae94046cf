package smoke

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/courses/pkg/logger"
)

// SetupLogging initialises the global logger for the smoke tool.
func SetupLogging(verbose bool, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Course API Smoke Tool
=====================

Drives the full course lifecycle and a concurrent create load against a
running course API, then removes everything it created.

Usage:
  go run ./cmd/course-smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:5000")
  -prefix string
        API prefix of the courses router (default "/api/v2")
  -creates int
        Number of courses created concurrently (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -base-id int
        First courseId owned by the run (default 900000)
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/course-smoke -creates 1000 -workers 32
  go run ./cmd/course-smoke -url http://localhost:8080 -prefix /api/v3
`)
}
