package testevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/stemmap/internal/domain/dashboard"
	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a JSON body into out when out is non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// requestReload asks the service to reload its sources.
func (c *HTTPClient) requestReload(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/reload", StatusAccepted, nil)
}

// loadedEvents returns the event count of the published snapshot, or -1
// while no snapshot is available.
func (c *HTTPClient) loadedEvents(ctx context.Context) (int, error) {
	var stats struct {
		DataAvailable bool `json:"dataAvailable"`
		Events        int  `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, "/stats", StatusOK, &stats); err != nil {
		return 0, err
	}
	if !stats.DataAvailable {
		return -1, nil
	}
	return stats.Events, nil
}

// view fetches the rendered view for sel.
func (c *HTTPClient) view(ctx context.Context, sel model.Selection) (dashboard.View, error) {
	q := url.Values{}
	for key, value := range map[string]string{
		"year":        sel.Year,
		"region":      sel.Region,
		"institution": sel.Institution,
		"scope":       sel.Scope,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	var v dashboard.View
	err := c.do(ctx, http.MethodGet, "/api/view?"+q.Encode(), StatusOK, &v)
	return v, err
}

// checkSelections renders every selection remotely with a worker pool and
// compares each against the local rendering of events.
func checkSelections(ctx context.Context, config *Config, events []model.Event, selections []model.Selection, stats *Stats) error {
	logger.Get().Info(ctx, "checking selections",
		logger.Int("selections", len(selections)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	var (
		checked    int64
		failed     int64
		mismatches int64
	)

	selChan := make(chan model.Selection, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < max(1, config.Workers); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for sel := range selChan {
				remote, err := client.view(ctx, sel)
				atomic.AddInt64(&checked, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "view request failed", logger.Any("selection", sel), logger.Error(err))
					}
					continue
				}
				if err := verifyView(expectedView(events, sel), remote); err != nil {
					atomic.AddInt64(&mismatches, 1)
					logger.Get().Warn(ctx, "view mismatch", logger.Any("selection", sel), logger.Error(err))
				}
			}
		}()
	}

	go func() {
		defer close(selChan)
		for _, sel := range selections {
			select {
			case <-ctx.Done():
				return
			case selChan <- sel:
			}
		}
	}()

	wg.Wait()

	stats.SelectionsChecked = int(atomic.LoadInt64(&checked))
	stats.SelectionsFailed = int(atomic.LoadInt64(&failed))
	stats.Mismatches = int(atomic.LoadInt64(&mismatches))

	logger.Get().Info(ctx, "selection check completed",
		logger.Int("checked", stats.SelectionsChecked),
		logger.Int("failed", stats.SelectionsFailed),
		logger.Int("mismatches", stats.Mismatches))

	if err := ctx.Err(); err != nil {
		return err
	}
	if stats.Mismatches > 0 || stats.SelectionsFailed > 0 {
		return fmt.Errorf("%d mismatched and %d failed of %d selections",
			stats.Mismatches, stats.SelectionsFailed, stats.SelectionsChecked)
	}
	return nil
}
