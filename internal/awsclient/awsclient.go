// Package awsclient loads AWS SDK configuration and identity information for
// the CLI's service clients.
package awsclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// options holds optional overrides for AWS config loading.
type options struct {
	profile   string
	region    string
	accessKey string
	secretKey string
}

// Option customizes how AWS config is loaded.
// Default behavior (no options) inherits the shell environment and shared
// config chain (AWS_PROFILE, ~/.aws/config, ~/.aws/credentials, IMDS, etc.).
type Option func(*options)

// WithProfile sets the shared config profile. Defaults to AWS_PROFILE/env chain.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override. Defaults to env/profile/metadata chain.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithStaticCredentials bypasses the credential chain with an explicit key
// pair. The CLI itself stays on the default chain; this is the seam for
// embedding and tests.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(o *options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// Load loads AWS SDK v2 config. By default it inherits the shell's AWS setup
// (AWS_PROFILE, shared config, env, IMDS). Options can override profile,
// region, and credentials without changing callers.
func Load(ctx context.Context, opts ...Option) (aws.Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.region))
	}
	if o.accessKey != "" && o.secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	slog.Debug("AWS configuration loaded", "region", cfg.Region, "profile", o.profile)

	return cfg, nil
}
