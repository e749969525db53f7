// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat and match the koanf tags below.
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/stemmap/internal/domain/colorscale"
)

// Source kinds accepted in source_kind.
const (
	SourceGviz = "gviz"
	SourceJSON = "json"
	SourceXLSX = "xlsx"
	SourceS3   = "s3"
	SourceSQL  = "sql"
)

// DefaultSheetID is the public events sheet.
const DefaultSheetID = "1KXmB725GOfa-ROh7L9MHNcgAT9KqXDFrwNGOZmAJe1s"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SourceKind selects the event source: gviz, json, xlsx, s3 or sql.
	SourceKind string `koanf:"source_kind"`
	// SourceURL overrides the gviz endpoint or points json/xlsx at a URL.
	SourceURL string `koanf:"source_url"`
	// SourcePath points json/xlsx at a local file.
	SourcePath string `koanf:"source_path"`
	// SheetID identifies the spreadsheet read through the gviz endpoint.
	SheetID string `koanf:"sheet_id"`

	S3Bucket    string `koanf:"s3_bucket"`
	S3Key       string `koanf:"s3_key"`
	S3Region    string `koanf:"s3_region"`
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3PathStyle bool   `koanf:"s3_path_style"`
	// S3AccessKeyID and S3SecretAccessKey pin static credentials; empty uses
	// the default AWS chain.
	S3AccessKeyID     string `koanf:"s3_access_key_id"`
	S3SecretAccessKey string `koanf:"s3_secret_access_key"`

	// SQLDriver is "sqlite" or "pgx".
	SQLDriver string `koanf:"sql_driver"`
	SQLDSN    string `koanf:"sql_dsn"`
	SQLTable  string `koanf:"sql_table"`

	// ShapesPath / ShapesURL locate the region GeoJSON. Both empty disables
	// the map layer.
	ShapesPath string `koanf:"shapes_path"`
	ShapesURL  string `koanf:"shapes_url"`
	// RegionProperty is the feature property holding the region name.
	RegionProperty string `koanf:"region_property"`

	// ColorScale selects the map palette: continuous or discrete.
	ColorScale string `koanf:"color_scale"`

	// FetchTimeoutMS bounds each source fetch.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// RedisAddr enables the source payload cache when set.
	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`

	// RefreshIntervalSeconds reloads the snapshot periodically; 0 disables.
	RefreshIntervalSeconds int `koanf:"refresh_interval_seconds"`

	// MaxListItems caps the event list in a view; 0 means unlimited.
	MaxListItems int `koanf:"max_list_items"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		SourceKind:      SourceGviz,
		SheetID:         DefaultSheetID,
		S3Region:        "us-east-1",
		SQLDriver:       "sqlite",
		SQLTable:        "events",
		RegionProperty:  "NOMBDEP",
		ColorScale:      colorscale.NameContinuous,
		FetchTimeoutMS:  10_000,
		CacheTTLSeconds: 300,
		MaxListItems:    500,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// RefreshInterval returns RefreshIntervalSeconds as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.FetchTimeoutMS <= 0 {
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.RefreshIntervalSeconds < 0 {
		return fmt.Errorf("%w: refresh_interval_seconds must not be negative", ErrInvalidConfig)
	}
	if c.MaxListItems < 0 {
		return fmt.Errorf("%w: max_list_items must not be negative", ErrInvalidConfig)
	}
	if _, err := colorscale.Parse(c.ColorScale); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.SourceKind {
	case SourceGviz:
		if c.SheetID == "" && c.SourceURL == "" {
			return fmt.Errorf("%w: gviz source needs sheet_id or source_url", ErrInvalidConfig)
		}
	case SourceJSON, SourceXLSX:
		if c.SourcePath == "" && c.SourceURL == "" {
			return fmt.Errorf("%w: %s source needs source_path or source_url", ErrInvalidConfig, c.SourceKind)
		}
	case SourceS3:
		if c.S3Bucket == "" || c.S3Key == "" {
			return fmt.Errorf("%w: s3 source needs s3_bucket and s3_key", ErrInvalidConfig)
		}
		if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
			return fmt.Errorf("%w: s3 static credentials need both key id and secret", ErrInvalidConfig)
		}
	case SourceSQL:
		if c.SQLDSN == "" {
			return fmt.Errorf("%w: sql source needs sql_dsn", ErrInvalidConfig)
		}
		if c.SQLDriver != "sqlite" && c.SQLDriver != "pgx" {
			return fmt.Errorf("%w: unknown sql_driver %q", ErrInvalidConfig, c.SQLDriver)
		}
	default:
		return fmt.Errorf("%w: unknown source_kind %q", ErrInvalidConfig, c.SourceKind)
	}
	return nil
}
