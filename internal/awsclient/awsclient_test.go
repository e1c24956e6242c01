package awsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithRegion(t *testing.T) {
	cfg, err := Load(context.Background(), WithRegion("eu-central-1"))

	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", cfg.Region)
}

func TestLoadWithStaticCredentials(t *testing.T) {
	cfg, err := Load(context.Background(),
		WithRegion("us-east-1"),
		WithStaticCredentials("AKIDEXAMPLE", "secretexample"),
	)
	require.NoError(t, err)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "secretexample", creds.SecretAccessKey)
}

type mockSTSClient struct {
	getCallerIdentityFunc func(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

func (m *mockSTSClient) GetCallerIdentity(
	ctx context.Context,
	params *sts.GetCallerIdentityInput,
	optFns ...func(*sts.Options),
) (*sts.GetCallerIdentityOutput, error) {
	if m.getCallerIdentityFunc != nil {
		return m.getCallerIdentityFunc(ctx, params, optFns...)
	}
	return nil, errors.New("not implemented")
}

func TestGetCallerIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("returns account and ARN", func(t *testing.T) {
		client := &mockSTSClient{
			getCallerIdentityFunc: func(
				_ context.Context,
				_ *sts.GetCallerIdentityInput,
				_ ...func(*sts.Options),
			) (*sts.GetCallerIdentityOutput, error) {
				return &sts.GetCallerIdentityOutput{
					Account: aws.String("123456789012"),
					Arn:     aws.String("arn:aws:iam::123456789012:user/deployer"),
				}, nil
			},
		}

		identity, err := GetCallerIdentity(ctx, client)

		require.NoError(t, err)
		assert.Equal(t, "123456789012", identity.Account)
		assert.Equal(t, "arn:aws:iam::123456789012:user/deployer", identity.ARN)
	})

	t.Run("propagates API errors", func(t *testing.T) {
		client := &mockSTSClient{
			getCallerIdentityFunc: func(
				_ context.Context,
				_ *sts.GetCallerIdentityInput,
				_ ...func(*sts.Options),
			) (*sts.GetCallerIdentityOutput, error) {
				return nil, errors.New("ExpiredToken: security token expired")
			},
		}

		identity, err := GetCallerIdentity(ctx, client)

		require.Error(t, err)
		assert.Nil(t, identity)
		assert.Contains(t, err.Error(), "ExpiredToken")
	})

	t.Run("rejects empty account", func(t *testing.T) {
		client := &mockSTSClient{
			getCallerIdentityFunc: func(
				_ context.Context,
				_ *sts.GetCallerIdentityInput,
				_ ...func(*sts.Options),
			) (*sts.GetCallerIdentityOutput, error) {
				return &sts.GetCallerIdentityOutput{Account: aws.String("")}, nil
			},
		}

		_, err := GetCallerIdentity(ctx, client)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty account ID")
	})
}
