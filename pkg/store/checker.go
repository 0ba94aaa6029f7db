package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Checker periodically pings the statistics source URL and records whether
// it answered.
type Checker struct {
	store    *Store
	url      string
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

// NewChecker creates a Checker that pings url every interval.
func NewChecker(store *Store, url string, logger *slog.Logger, interval time.Duration) *Checker {
	return &Checker{
		store:    store,
		url:      url,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start runs an immediate check then repeats every interval until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckOnce(ctx)
		}
	}
}

// CheckOnce pings the source and persists the outcome.
func (c *Checker) CheckOnce(ctx context.Context) SourceCheck {
	status, err := c.ping(ctx)
	check := SourceCheck{URL: c.url, CheckedAt: time.Now(), Status: status}
	if err != nil {
		check.Error = err.Error()
	}
	if ctx.Err() != nil {
		return check
	}

	if err := c.store.RecordCheck(ctx, check); err != nil {
		c.logger.Error("source check: record failed", "error", err)
	}
	if check.OK() {
		c.logger.Info("source check complete", "url", c.url, "status", status)
	} else {
		c.logger.Warn("statistics source unreachable", "url", c.url, "status", status, "error", check.Error)
	}
	return check
}

// ping performs a single GET. The table endpoint answers GET with its
// metadata, which is enough to tell it is up. On network error, status is 0.
func (c *Checker) ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", c.url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
