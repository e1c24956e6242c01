package awsclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSAPI is the subset of the STS client used for identity lookups.
type STSAPI interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

var _ STSAPI = (*sts.Client)(nil)

// CallerIdentity identifies the credentials a command runs under.
type CallerIdentity struct {
	Account string
	ARN     string
}

// GetCallerIdentity retrieves the AWS account ID and principal ARN using STS
// GetCallerIdentity.
func GetCallerIdentity(ctx context.Context, client STSAPI) (*CallerIdentity, error) {
	slog.Debug("calling external service", "operation", "STS.GetCallerIdentity")

	output, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("STS GetCallerIdentity failed: %w", err)
	}

	if output.Account == nil || *output.Account == "" {
		return nil, fmt.Errorf("STS returned empty account ID")
	}

	return &CallerIdentity{
		Account: aws.ToString(output.Account),
		ARN:     aws.ToString(output.Arn),
	}, nil
}
