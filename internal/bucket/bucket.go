// Package bucket empties S3 buckets so their stacks can be deleted.
// CloudFormation refuses to remove a bucket that still holds objects,
// versions, or delete markers, so everything goes first.
package bucket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/fotogram/stackup/internal/errors"
)

// deleteBatchSize is the S3 DeleteObjects request ceiling.
const deleteBatchSize = 1000

// S3API captures the S3 operations needed to empty a bucket.
type S3API interface {
	ListObjectsV2(
		ctx context.Context,
		params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
	ListObjectVersions(
		ctx context.Context,
		params *s3.ListObjectVersionsInput,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectVersionsOutput, error)
	DeleteObjects(
		ctx context.Context,
		params *s3.DeleteObjectsInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// Reclaimer deletes every object, version, and delete marker from a bucket.
type Reclaimer struct {
	client S3API
}

// New builds a Reclaimer around an S3 client.
func New(client S3API) *Reclaimer {
	return &Reclaimer{client: client}
}

// Empty removes all current objects, then all versions and delete markers.
// A bucket that no longer exists counts as already empty.
func (r *Reclaimer) Empty(ctx context.Context, bucketName string) error {
	slog.Debug("emptying bucket", "bucket", bucketName)

	if err := r.deleteAllObjects(ctx, bucketName); err != nil {
		if isBucketNotFound(err) {
			slog.Debug("bucket does not exist, nothing to empty", "bucket", bucketName)
			return nil
		}
		return apperrors.ErrBucketReclaim(bucketName, err)
	}

	if err := r.deleteAllVersions(ctx, bucketName); err != nil {
		if isBucketNotFound(err) {
			return nil
		}
		return apperrors.ErrBucketReclaim(bucketName, err)
	}

	return nil
}

func (r *Reclaimer) deleteAllObjects(ctx context.Context, bucketName string) error {
	var continuationToken *string

	for {
		listOutput, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucketName),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}

		objectsToDelete := buildIdentifiersFromContents(listOutput.Contents)
		if err := r.deleteInBatches(ctx, bucketName, objectsToDelete); err != nil {
			return err
		}

		if listOutput.IsTruncated == nil || !*listOutput.IsTruncated {
			break
		}
		continuationToken = listOutput.NextContinuationToken
	}

	return nil
}

func (r *Reclaimer) deleteAllVersions(ctx context.Context, bucketName string) error {
	var keyMarker *string
	var versionIDMarker *string

loop:
	for {
		listOutput, err := r.client.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{
			Bucket:          aws.String(bucketName),
			KeyMarker:       keyMarker,
			VersionIdMarker: versionIDMarker,
		})
		if err != nil {
			return fmt.Errorf("failed to list object versions: %w", err)
		}

		objectsToDelete := buildIdentifiersFromVersions(listOutput.Versions)
		objectsToDelete = append(objectsToDelete, buildIdentifiersFromDeleteMarkers(listOutput.DeleteMarkers)...)

		if err := r.deleteInBatches(ctx, bucketName, objectsToDelete); err != nil {
			return err
		}

		if listOutput.IsTruncated == nil || !*listOutput.IsTruncated {
			break
		}
		switch {
		case len(listOutput.DeleteMarkers) > 0:
			lastMarker := listOutput.DeleteMarkers[len(listOutput.DeleteMarkers)-1]
			keyMarker = lastMarker.Key
			versionIDMarker = lastMarker.VersionId
		case len(listOutput.Versions) > 0:
			lastVersion := listOutput.Versions[len(listOutput.Versions)-1]
			keyMarker = lastVersion.Key
			versionIDMarker = lastVersion.VersionId
		default:
			break loop
		}
	}

	return nil
}

func (r *Reclaimer) deleteInBatches(
	ctx context.Context,
	bucketName string,
	objectsToDelete []types.ObjectIdentifier,
) error {
	if len(objectsToDelete) == 0 {
		return nil
	}

	slog.Debug("deleting keys", "bucket", bucketName, "count", len(objectsToDelete))

	for i := 0; i < len(objectsToDelete); i += deleteBatchSize {
		end := min(i+deleteBatchSize, len(objectsToDelete))
		if err := r.deleteBatch(ctx, bucketName, objectsToDelete[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reclaimer) deleteBatch(
	ctx context.Context,
	bucketName string,
	batch []types.ObjectIdentifier,
) error {
	deleteOutput, err := r.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucketName),
		Delete: &types.Delete{
			Objects: batch,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects batch: %w", err)
	}

	// Any key the service refused leaves the bucket non-empty, which
	// would make the subsequent stack deletion fail.
	if len(deleteOutput.Errors) > 0 {
		first := deleteOutput.Errors[0]
		return fmt.Errorf("failed to delete %d of %d keys (first: %s: %s)",
			len(deleteOutput.Errors), len(batch),
			aws.ToString(first.Key), aws.ToString(first.Message))
	}

	return nil
}

func buildIdentifiersFromContents(contents []types.Object) []types.ObjectIdentifier {
	var objectsToDelete []types.ObjectIdentifier
	for i := range contents {
		obj := &contents[i]
		if obj.Key != nil {
			objectsToDelete = append(objectsToDelete, types.ObjectIdentifier{
				Key: obj.Key,
			})
		}
	}
	return objectsToDelete
}

func buildIdentifiersFromVersions(versions []types.ObjectVersion) []types.ObjectIdentifier {
	var objectsToDelete []types.ObjectIdentifier
	for i := range versions {
		version := &versions[i]
		if version.Key != nil && version.VersionId != nil {
			objectsToDelete = append(objectsToDelete, types.ObjectIdentifier{
				Key:       version.Key,
				VersionId: version.VersionId,
			})
		}
	}
	return objectsToDelete
}

func buildIdentifiersFromDeleteMarkers(markers []types.DeleteMarkerEntry) []types.ObjectIdentifier {
	var objectsToDelete []types.ObjectIdentifier
	for i := range markers {
		marker := &markers[i]
		if marker.Key != nil && marker.VersionId != nil {
			objectsToDelete = append(objectsToDelete, types.ObjectIdentifier{
				Key:       marker.Key,
				VersionId: marker.VersionId,
			})
		}
	}
	return objectsToDelete
}

func isBucketNotFound(err error) bool {
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
		return true
	}
	return strings.Contains(err.Error(), "NoSuchBucket")
}
