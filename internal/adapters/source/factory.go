package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/stemmap/internal/config"
	"github.com/okian/stemmap/pkg/logger"
)

// Bundle is the configured pair of sources plus what must be closed with them.
type Bundle struct {
	Events EventSource
	// Shapes is nil when no shapes location is configured.
	Shapes  ShapeSource
	closers []io.Closer
}

// Close releases resources held by the sources.
func (b *Bundle) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Option applies a configuration option to New.
type Option func(*factory)

type factory struct {
	httpClient *http.Client
	cache      CacheClient
	log        logger.Logger
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(c *http.Client) Option {
	return func(f *factory) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithCache puts a Redis payload cache in front of byte-oriented sources.
func WithCache(c CacheClient) Option {
	return func(f *factory) {
		f.cache = c
	}
}

// New builds the sources named by cfg.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Bundle, error) {
	f := &factory{httpClient: &http.Client{Timeout: cfg.FetchTimeout()}, log: log}
	for _, opt := range opts {
		opt(f)
	}

	b := &Bundle{}
	events, err := f.events(ctx, cfg, b)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Events = events

	switch {
	case cfg.ShapesPath != "":
		b.Shapes = NewGeoJSONSource(NewFileFetcher(cfg.ShapesPath), cfg.RegionProperty)
	case cfg.ShapesURL != "":
		b.Shapes = NewGeoJSONSource(f.cached(NewHTTPFetcher(cfg.ShapesURL, f.httpClient), cfg), cfg.RegionProperty)
	}
	return b, nil
}

func (f *factory) events(ctx context.Context, cfg *config.Config, b *Bundle) (EventSource, error) {
	switch cfg.SourceKind {
	case config.SourceGviz:
		u := cfg.SourceURL
		if u == "" {
			u = GvizURL(cfg.SheetID)
		}
		return NewPayloadSource(config.SourceGviz, f.cached(NewHTTPFetcher(u, f.httpClient), cfg), DecodeGviz), nil
	case config.SourceJSON:
		return NewPayloadSource(config.SourceJSON, f.location(cfg), DecodeJSON), nil
	case config.SourceXLSX:
		return NewPayloadSource(config.SourceXLSX, f.location(cfg), DecodeXLSX), nil
	case config.SourceS3:
		fetcher, err := NewS3Fetcher(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Key:       cfg.S3Key,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,

			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		kind, decode := DecoderForKey(cfg.S3Key)
		return NewPayloadSource(config.SourceS3+"+"+kind, f.cached(fetcher, cfg), decode), nil
	case config.SourceSQL:
		s, err := OpenSQLSource(cfg.SQLDriver, cfg.SQLDSN, cfg.SQLTable)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s)
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, cfg.SourceKind)
	}
}

// location prefers a local path over a URL.
func (f *factory) location(cfg *config.Config) Fetcher {
	if cfg.SourcePath != "" {
		return NewFileFetcher(cfg.SourcePath)
	}
	return f.cached(NewHTTPFetcher(cfg.SourceURL, f.httpClient), cfg)
}

// cached wraps remote fetchers when a cache is configured.
func (f *factory) cached(next Fetcher, cfg *config.Config) Fetcher {
	if f.cache == nil || cfg.CacheTTLSeconds <= 0 {
		return next
	}
	return NewCachedFetcher(next, f.cache, cfg.CacheTTL(), f.log)
}
