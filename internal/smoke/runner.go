package smoke

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/courses/pkg/logger"
)

// Run executes the complete smoke test and returns the collected stats.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.Timeout)

	logger.Get().Info(ctx, "starting course smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("prefix", cfg.Prefix),
		logger.Int("creates", cfg.Creates),
		logger.Int("workers", cfg.Workers),
		logger.Int("baseID", cfg.BaseID),
		logger.Duration("timeout", cfg.Timeout),
	)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, cfg, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Single-course lifecycle
	if err := runScenario(ctx, cfg, client, stats); err != nil {
		return stats, fmt.Errorf("scenario failed: %w", err)
	}

	// Step 3: Concurrent creates, then the same ids again
	if err := runLoad(ctx, cfg, client, stats); err != nil {
		return stats, fmt.Errorf("load phase failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "smoke test completed successfully")
	return stats, nil
}

func checkServiceHealth(ctx context.Context, cfg *Config, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func runLoad(ctx context.Context, cfg *Config, client *HTTPClient, stats *Stats) error {
	if cfg.Creates <= 0 {
		return nil
	}
	ids := make([]int, cfg.Creates)
	for i := range ids {
		ids[i] = cfg.BaseID + 1 + i
	}
	url := cfg.coursesURL()

	create := func(ctx context.Context, id int) outcome {
		env, err := client.Do(ctx, http.MethodPost, url, map[string]any{
			"courseId": id,
			"name":     fmt.Sprintf("Smoke Course %d", id),
			"credits":  id % 13,
		})
		switch {
		case err != nil:
			return outcomeFailed
		case env.Status == http.StatusCreated:
			return outcomeOK
		case env.Status == http.StatusConflict:
			return outcomeConflict
		default:
			return outcomeFailed
		}
	}

	logger.Get().Info(ctx, "submitting creates", logger.Int("count", len(ids)), logger.Int("workers", cfg.Workers))
	ok, conflict, failed := fanOut(ctx, cfg, ids, create)
	stats.CreatesSubmitted = ok + conflict + failed
	stats.CreatesOK = ok
	stats.CreatesFailed = conflict + failed

	logger.Get().Info(ctx, "submitting duplicate creates", logger.Int("count", len(ids)))
	dupOK, dupConflict, dupFailed := fanOut(ctx, cfg, ids, create)
	stats.DuplicatesOK = dupConflict
	stats.DuplicatesWrong = dupOK + dupFailed

	remove := func(ctx context.Context, id int) outcome {
		env, err := client.Do(ctx, http.MethodDelete, url, map[string]any{"courseId": id})
		if err != nil || env.Status != http.StatusOK {
			return outcomeFailed
		}
		return outcomeOK
	}
	deleted, _, _ := fanOut(ctx, cfg, ids, remove)
	stats.Deleted = deleted

	return verifyLoad(stats, len(ids))
}

func verifyLoad(stats *Stats, want int) error {
	switch {
	case stats.CreatesOK != want:
		return fmt.Errorf("%w: %d of %d creates succeeded", ErrUnexpected, stats.CreatesOK, want)
	case stats.DuplicatesOK != want:
		return fmt.Errorf("%w: %d of %d duplicate creates returned 409", ErrUnexpected, stats.DuplicatesOK, want)
	case stats.Deleted != want:
		return fmt.Errorf("%w: %d of %d deletes succeeded", ErrUnexpected, stats.Deleted, want)
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, createsPerSecond float64
	if stats.CreatesSubmitted > 0 {
		successRate = float64(stats.CreatesOK) / float64(stats.CreatesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		createsPerSecond = float64(stats.CreatesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("scenarioSteps", stats.ScenarioSteps),
		logger.Int("createsSubmitted", stats.CreatesSubmitted),
		logger.Int("createsOK", stats.CreatesOK),
		logger.Int("createsFailed", stats.CreatesFailed),
		logger.Int("duplicatesRejected", stats.DuplicatesOK),
		logger.Int("duplicatesWrong", stats.DuplicatesWrong),
		logger.Int("deleted", stats.Deleted),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("createsPerSecond", createsPerSecond),
	)
}
