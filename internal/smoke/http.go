package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/courses/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Do sends method to url with an optional JSON body and decodes the envelope.
func (c *HTTPClient) Do(ctx context.Context, method, url string, body any) (*Envelope, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	env := &Envelope{Status: resp.StatusCode, Link: resp.Header.Get("Link")}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			return nil, fmt.Errorf("%s %s: response is not JSON: %w", method, url, err)
		}
	}
	if list, ok := env.Data.([]any); ok {
		env.Courses = make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				env.Courses = append(env.Courses, m)
			}
		}
	}
	return env, nil
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeConflict
	outcomeFailed
)

// fanOut runs fn for each id on cfg.Workers goroutines and tallies outcomes.
func fanOut(ctx context.Context, cfg *Config, ids []int, fn func(context.Context, int) outcome) (ok, conflict, failed int) {
	workers := max(cfg.Workers, 1)
	var okN, conflictN, failedN, done int64
	idChan := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idChan {
				switch fn(ctx, id) {
				case outcomeOK:
					atomic.AddInt64(&okN, 1)
				case outcomeConflict:
					atomic.AddInt64(&conflictN, 1)
				default:
					atomic.AddInt64(&failedN, 1)
				}
				if n := atomic.AddInt64(&done, 1); cfg.Verbose && n%100 == 0 {
					logger.Get().Debug(ctx, "progress", logger.Int("done", int(n)), logger.Int("total", len(ids)))
				}
			}
		}()
	}

	go func() {
		defer close(idChan)
		for _, id := range ids {
			select {
			case <-ctx.Done():
				return
			case idChan <- id:
			}
		}
	}()

	wg.Wait()
	return int(okN), int(conflictN), int(failedN)
}
