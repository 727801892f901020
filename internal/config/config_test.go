package config

import (
	"context"
	"errors"
	"testing"

	"github.com/dmorgan81/imagegen/internal/param"
)

func env(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), env(map[string]string{
		EnvBucket:     "bucket",
		EnvPublicHost: "images.example.com",
	}), nil)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate returned error: %v", err)
	}

	want := Image{Width: 1024, Height: 1024, CfgScale: 8.0, Seed: 0, Quality: "standard"}
	if cfg.Image != want {
		t.Fatalf("unexpected image defaults: %#v", cfg.Image)
	}
	if cfg.ModelID != DefaultModelID {
		t.Fatalf("unexpected model id %q", cfg.ModelID)
	}
	if cfg.ListFailureMode != ListDegrade {
		t.Fatalf("unexpected list mode %q", cfg.ListFailureMode)
	}
	if cfg.BaseURL() != "https://images.example.com/" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL())
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(context.Background(), env(map[string]string{
		EnvBucket:          "bucket",
		EnvPublicHost:      "cdn.example.com",
		EnvPublicScheme:    "http",
		EnvS3Endpoint:      "http://localhost:9000",
		EnvS3UsePathStyle:  "true",
		EnvImageWidth:      "512",
		EnvImageHeight:     "768",
		EnvImageCfgScale:   "6.5",
		EnvImageSeed:       "42",
		EnvImageQuality:    "premium",
		EnvListFailureMode: "STRICT",
		EnvModelID:         "amazon.titan-image-generator-v1",
	}), nil)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	want := Image{Width: 512, Height: 768, CfgScale: 6.5, Seed: 42, Quality: "premium"}
	if cfg.Image != want {
		t.Fatalf("unexpected image config: %#v", cfg.Image)
	}
	if !cfg.S3UsePathStyle || cfg.S3Endpoint != "http://localhost:9000" {
		t.Fatalf("unexpected s3 config: %#v", cfg)
	}
	if cfg.ListFailureMode != ListStrict {
		t.Fatalf("unexpected list mode %q", cfg.ListFailureMode)
	}
	if cfg.BaseURL() != "http://cdn.example.com/" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL())
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := map[string]map[string]string{
		"width":      {EnvImageWidth: "wide"},
		"zero width": {EnvImageWidth: "0"},
		"height":     {EnvImageHeight: "-1"},
		"cfg scale":  {EnvImageCfgScale: "high"},
		"seed":       {EnvImageSeed: "1.5"},
		"path style": {EnvS3UsePathStyle: "maybe"},
		"list mode":  {EnvListFailureMode: "ignore"},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(context.Background(), env(values), nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidateOrder(t *testing.T) {
	cfg, err := Load(context.Background(), env(nil), nil)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	var missing *MissingError
	if err := cfg.Validate(); !errors.As(err, &missing) || missing.Name != EnvBucket {
		t.Fatalf("expected missing bucket first, got %v", err)
	}
	if got := cfg.Validate().Error(); got != "S3_BUCKET_NAME environment variable is not set." {
		t.Fatalf("unexpected message %q", got)
	}

	cfg.Bucket = "bucket"
	if err := cfg.Validate(); !errors.As(err, &missing) || missing.Name != EnvPublicHost {
		t.Fatalf("expected missing host, got %v", err)
	}
}

func TestLoadHostFromParameter(t *testing.T) {
	fetcher := param.FetcherFunc(func(_ context.Context, path string) (string, error) {
		if path != "/imagegen/host" {
			t.Fatalf("unexpected path %q", path)
		}
		return " images.example.com\n", nil
	})
	cfg, err := Load(context.Background(), env(map[string]string{
		EnvBucket:          "bucket",
		EnvPublicHostParam: "/imagegen/host",
	}), fetcher)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.PublicHost != "images.example.com" {
		t.Fatalf("unexpected host %q", cfg.PublicHost)
	}
}

func TestLoadHostParameterSkippedWhenHostSet(t *testing.T) {
	fetcher := param.FetcherFunc(func(context.Context, string) (string, error) {
		t.Fatal("fetcher should not be called")
		return "", nil
	})
	cfg, err := Load(context.Background(), env(map[string]string{
		EnvPublicHost:      "direct.example.com",
		EnvPublicHostParam: "/imagegen/host",
	}), fetcher)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.PublicHost != "direct.example.com" {
		t.Fatalf("unexpected host %q", cfg.PublicHost)
	}
}

func TestLoadHostParameterError(t *testing.T) {
	boom := errors.New("boom")
	fetcher := param.FetcherFunc(func(context.Context, string) (string, error) { return "", boom })
	_, err := Load(context.Background(), env(map[string]string{EnvPublicHostParam: "/x"}), fetcher)
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, err := Load(context.Background(), env(map[string]string{EnvPublicHostParam: "/x"}), nil); err == nil {
		t.Fatal("expected error without fetcher")
	}
}

func TestLoadHostFromNameAndDomain(t *testing.T) {
	cfg, err := Load(context.Background(), env(map[string]string{
		EnvYourName:     "alice",
		EnvPublicDomain: ".mixtli.cloud",
	}), nil)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.PublicHost != "alice.mixtli.cloud" {
		t.Fatalf("unexpected host %q", cfg.PublicHost)
	}

	cfg, err = Load(context.Background(), env(map[string]string{EnvYourName: "alice"}), nil)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.PublicHost != "" {
		t.Fatalf("name alone should not compose a host, got %q", cfg.PublicHost)
	}
}
