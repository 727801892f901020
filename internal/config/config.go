// Package config loads the deployment configuration from the environment.
//
// Configuration is read once per cold start. Problems with required values are
// not fatal at load time: Validate reports them as typed errors so the request
// router can answer every request with a server error instead of crashing.
package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmorgan81/imagegen/internal/param"
)

const (
	EnvBucket          = "S3_BUCKET_NAME"
	EnvPublicHost      = "PUBLIC_HOST"
	EnvPublicHostParam = "PUBLIC_HOST_PARAM"
	EnvYourName        = "YOUR_NAME"
	EnvPublicDomain    = "PUBLIC_DOMAIN"
	EnvPublicScheme    = "PUBLIC_SCHEME"
	EnvS3Endpoint      = "S3_ENDPOINT"
	EnvS3UsePathStyle  = "S3_USE_PATH_STYLE"
	EnvStorageClass    = "S3_STORAGE_CLASS"
	EnvModelID         = "MODEL_ID"
	EnvImageWidth      = "IMAGE_WIDTH"
	EnvImageHeight     = "IMAGE_HEIGHT"
	EnvImageCfgScale   = "IMAGE_CFG_SCALE"
	EnvImageSeed       = "IMAGE_SEED"
	EnvImageQuality    = "IMAGE_QUALITY"
	EnvListFailureMode = "LIST_FAILURE_MODE"
	EnvFeedTitle       = "FEED_TITLE"
	EnvFeedLink        = "FEED_LINK"
	EnvLogLevel        = "LOG_LEVEL"
)

const DefaultModelID = "amazon.titan-image-generator-v2:0"

type ListFailureMode string

const (
	// ListDegrade answers a failed listing with an empty result.
	ListDegrade ListFailureMode = "degrade"
	// ListStrict answers a failed listing with a server error.
	ListStrict ListFailureMode = "strict"
)

type Image struct {
	Width    int
	Height   int
	CfgScale float64
	Seed     int64
	Quality  string
}

type Config struct {
	Bucket          string
	PublicHost      string
	PublicScheme    string
	S3Endpoint      string
	S3UsePathStyle  bool
	StorageClass    string
	ModelID         string
	Image           Image
	ListFailureMode ListFailureMode
	FeedTitle       string
	FeedLink        string
	LogLevel        string
}

// MissingError reports a required setting that is absent.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return e.Name + " environment variable is not set."
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(string) (string, bool)

func Load(ctx context.Context, lookup LookupFunc, fetcher param.Fetcher) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		Bucket:          get(EnvBucket, ""),
		PublicHost:      get(EnvPublicHost, ""),
		PublicScheme:    get(EnvPublicScheme, "https"),
		S3Endpoint:      get(EnvS3Endpoint, ""),
		StorageClass:    get(EnvStorageClass, ""),
		ModelID:         get(EnvModelID, DefaultModelID),
		ListFailureMode: ListFailureMode(strings.ToLower(get(EnvListFailureMode, string(ListDegrade)))),
		FeedTitle:       get(EnvFeedTitle, "Generated Images"),
		FeedLink:        get(EnvFeedLink, ""),
		LogLevel:        get(EnvLogLevel, "info"),
		Image: Image{
			Quality: get(EnvImageQuality, "standard"),
		},
	}

	var err error
	if cfg.S3UsePathStyle, err = strconv.ParseBool(get(EnvS3UsePathStyle, "false")); err != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvS3UsePathStyle, err)
	}
	if cfg.Image.Width, err = strconv.Atoi(get(EnvImageWidth, "1024")); err != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvImageWidth, err)
	}
	if cfg.Image.Height, err = strconv.Atoi(get(EnvImageHeight, "1024")); err != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvImageHeight, err)
	}
	if cfg.Image.CfgScale, err = strconv.ParseFloat(get(EnvImageCfgScale, "8.0"), 64); err != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvImageCfgScale, err)
	}
	if cfg.Image.Seed, err = strconv.ParseInt(get(EnvImageSeed, "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("parse %s: %w", EnvImageSeed, err)
	}

	switch cfg.ListFailureMode {
	case ListDegrade, ListStrict:
	default:
		return nil, fmt.Errorf("parse %s: unknown mode %q", EnvListFailureMode, cfg.ListFailureMode)
	}
	if cfg.Image.Width <= 0 || cfg.Image.Height <= 0 {
		return nil, fmt.Errorf("image dimensions must be positive, got %dx%d", cfg.Image.Width, cfg.Image.Height)
	}

	if cfg.PublicHost == "" {
		if path := get(EnvPublicHostParam, ""); path != "" {
			if fetcher == nil {
				return nil, fmt.Errorf("%s is set but no parameter fetcher is available", EnvPublicHostParam)
			}
			host, err := fetcher.Fetch(ctx, path)
			if err != nil {
				return nil, err
			}
			cfg.PublicHost = strings.TrimSpace(host)
		}
	}
	if cfg.PublicHost == "" {
		name, domain := get(EnvYourName, ""), get(EnvPublicDomain, "")
		if name != "" && domain != "" {
			cfg.PublicHost = name + "." + strings.TrimPrefix(domain, ".")
		}
	}

	return cfg, nil
}

// Validate reports the first missing required setting. The bucket is checked
// before the public host.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return &MissingError{Name: EnvBucket}
	}
	if c.PublicHost == "" {
		return &MissingError{Name: EnvPublicHost}
	}
	return nil
}

// BaseURL is the public root that object keys are appended to.
func (c *Config) BaseURL() string {
	return c.PublicScheme + "://" + c.PublicHost + "/"
}
