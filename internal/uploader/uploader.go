// Package uploader publishes static assets to S3.
package uploader

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"

	apperrors "github.com/fotogram/stackup/internal/errors"
)

// S3API captures the S3 operations needed to publish an asset.
type S3API interface {
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// Uploader publishes local files to S3 buckets.
type Uploader struct {
	client S3API
}

// New builds an Uploader around an S3 client.
func New(client S3API) *Uploader {
	return &Uploader{client: client}
}

// UploadFile uploads a local file to the bucket under the given key and
// content type. It returns the number of bytes uploaded.
func (u *Uploader) UploadFile(
	ctx context.Context,
	bucket, localPath, key, contentType string,
) (int64, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return 0, apperrors.ErrMissingInputFile(localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, apperrors.ErrUploadFailed(key, bucket, err)
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return 0, apperrors.ErrUploadFailed(key, bucket, err)
	}

	slog.Debug("uploaded asset",
		"bucket", bucket,
		"key", key,
		"size", humanize.Bytes(uint64(info.Size())))

	return info.Size(), nil
}
