package cmd

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/fotogram/stackup/internal/awsclient"
	"github.com/fotogram/stackup/internal/bucket"
	"github.com/fotogram/stackup/internal/config"
	apperrors "github.com/fotogram/stackup/internal/errors"
	"github.com/fotogram/stackup/internal/orchestrator"
	"github.com/fotogram/stackup/internal/output"
	"github.com/fotogram/stackup/internal/provisioner"
	"github.com/fotogram/stackup/internal/uploader"
)

// loadAWSConfig resolves credentials and region once per command; every
// service client is built from the same configuration.
func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []awsclient.Option{awsclient.WithRegion(cfg.Region)}
	if profileFlag != "" {
		opts = append(opts, awsclient.WithProfile(profileFlag))
	}
	awsCfg, err := awsclient.Load(ctx, opts...)
	if err != nil {
		return aws.Config{}, apperrors.ErrInternalError("failed to initialize AWS clients", err)
	}
	return awsCfg, nil
}

// newOrchestrator wires the real AWS-backed implementations behind the
// orchestrator's capability interfaces.
func newOrchestrator(
	cfg *config.Config,
	awsCfg aws.Config,
	confirm orchestrator.Confirmer,
) *orchestrator.Orchestrator {
	stacks := provisioner.New(cloudformation.NewFromConfig(awsCfg), provisioner.Options{
		PollInterval: cfg.Poll.Interval,
		MaxAttempts:  cfg.Poll.MaxAttempts,
		Tags:         cfg.Tags(),
		OnPoll:       reportPoll,
	})
	buckets := bucket.New(s3.NewFromConfig(awsCfg))
	assets := uploader.New(s3.NewFromConfig(awsCfg))

	return orchestrator.New(cfg, stacks, buckets, assets, confirm)
}

// reportCallerIdentity prints which AWS principal the run acts as. Purely
// informational: a failed lookup warns and the run continues, since the
// stack operations themselves will surface real credential problems.
func reportCallerIdentity(ctx context.Context, awsCfg aws.Config) {
	identity, err := awsclient.GetCallerIdentity(ctx, sts.NewFromConfig(awsCfg))
	if err != nil {
		output.Warningf("Unable to verify AWS credentials: %v", err)
		return
	}
	output.Infof("Acting as %s (account %s)", identity.ARN, identity.Account)
}

// reportPoll prints one progress line per status check during waits.
func reportPoll(stackName, status string, attempt, maxAttempts int) {
	output.Infof("[%d/%d] %s: %s", attempt, maxAttempts, stackName, output.StatusBadge(status))
}
