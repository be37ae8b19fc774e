package aws

import (
	"context"
	"os"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	sdkconfig "github.com/aws/aws-sdk-go-v2/config"
)

// DefaultRegion is used when neither the caller, the environment nor the
// configuration name a region.
const DefaultRegion = "us-east-1"

// Options configure how the shared session is loaded.
type Options struct {
	Region      string
	Profile     string
	MaxAttempts int
}

// ResolveRegion picks the explicit region, then AWS_REGION, then
// AWS_DEFAULT_REGION. It returns "" when none is set.
func ResolveRegion(region string) string {
	region = strings.TrimSpace(region)
	if region == "" {
		region = strings.TrimSpace(os.Getenv("AWS_REGION"))
	}
	if region == "" {
		region = strings.TrimSpace(os.Getenv("AWS_DEFAULT_REGION"))
	}
	return region
}

// ResolveProfile picks the configured profile, then AWS_PROFILE, then
// AWS_DEFAULT_PROFILE.
func ResolveProfile(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = strings.TrimSpace(os.Getenv("AWS_PROFILE"))
	}
	if profile == "" {
		profile = strings.TrimSpace(os.Getenv("AWS_DEFAULT_PROFILE"))
	}
	return profile
}

func LoadConfig(ctx context.Context, opts Options) (sdkaws.Config, error) {
	loadOpts := []func(*sdkconfig.LoadOptions) error{}
	if profile := ResolveProfile(opts.Profile); profile != "" {
		loadOpts = append(loadOpts, sdkconfig.WithSharedConfigProfile(profile))
	}
	if region := regionOrDefault("", opts.Region); region != "" {
		loadOpts = append(loadOpts, sdkconfig.WithRegion(region))
	}
	if opts.MaxAttempts > 0 {
		loadOpts = append(loadOpts, sdkconfig.WithRetryMaxAttempts(opts.MaxAttempts))
	}
	cfg, err := sdkconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return cfg, err
	}
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = DefaultRegion
	}
	return cfg, nil
}

// regionOrDefault picks the explicit region, then the configured default,
// then the environment.
func regionOrDefault(region, fallback string) string {
	if region = strings.TrimSpace(region); region != "" {
		return region
	}
	return ResolveRegion(fallback)
}
