package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/courses/internal/smoke"
)

// Default configuration constants.
const (
	defaultCreates     = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:5000", "Base URL of the service")
		prefix  = flag.String("prefix", "/api/v2", "API prefix of the courses router")
		creates = flag.Int("creates", defaultCreates, "Number of courses created concurrently")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		baseID  = flag.Int("base-id", smoke.DefaultBaseID, "First courseId owned by the run")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp(os.Stdout)
		return
	}

	if err := smoke.SetupLogging(*verbose, os.Stdout); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	if *workers < 1 {
		*workers = 1
	}
	cfg := &smoke.Config{
		BaseURL: *baseURL,
		Prefix:  *prefix,
		Creates: *creates,
		Workers: *workers,
		BaseID:  *baseID,
		Timeout: *timeout,
		Verbose: *verbose,
	}

	if _, err := smoke.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
