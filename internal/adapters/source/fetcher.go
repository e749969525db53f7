package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// maxPayloadBytes bounds any single payload read into memory.
const maxPayloadBytes = 64 << 20

// readPayload reads all of r, failing with ErrFetch when it holds more than
// limit bytes.
func readPayload(r io.Reader, limit int64, name string) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrFetch, name, err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: %s: payload too large (over %d bytes)", ErrFetch, name, limit)
	}
	return b, nil
}

// HTTPFetcher GETs a URL.
type HTTPFetcher struct {
	url    string
	client *http.Client
	limit  int64
}

// NewHTTPFetcher returns a fetcher for url. A nil client uses http.DefaultClient.
func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{url: url, client: client, limit: maxPayloadBytes}
}

func (f *HTTPFetcher) Name() string { return f.url }

// Fetch returns the response body of a 2xx response.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, f.url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, f.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, f.url, resp.StatusCode)
	}
	return readPayload(resp.Body, f.limit, f.url)
}

// FileFetcher reads a local file.
type FileFetcher struct {
	path string
}

// NewFileFetcher returns a fetcher for path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

func (f *FileFetcher) Name() string { return f.path }

// Fetch returns the file contents.
func (f *FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, f.path, err)
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return b, nil
}
