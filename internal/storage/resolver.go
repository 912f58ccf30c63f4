package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// API is the slice of the S3 client the resolver needs.
type API interface {
	GetObjectAttributes(ctx context.Context, params *s3.GetObjectAttributesInput, optFns ...func(*s3.Options)) (*s3.GetObjectAttributesOutput, error)
}

// LookupError reports an object that does not exist or cannot be reached,
// including the bucket living in a different region than the service.
type LookupError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("object %s/%s not found or not accessible (check that it exists and that the bucket is in this region): %v", e.Bucket, e.Key, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Resolver pins an uploaded object to its exact stored version so the
// analysis service reads the same bytes the trigger referred to.
type Resolver struct {
	api API
	log *zap.Logger
}

func NewResolver(api API, log *zap.Logger) *Resolver {
	return &Resolver{api: api, log: log}
}

// Resolve queries the object's ETag-bearing attributes and returns its
// version identifier. A failed lookup is fatal; there is no retry. Buckets
// without versioning yield an empty version.
func (r *Resolver) Resolve(ctx context.Context, bucket, key string) (string, error) {
	out, err := r.api.GetObjectAttributes(ctx, &s3.GetObjectAttributesInput{
		Bucket:           aws.String(bucket),
		Key:              aws.String(key),
		ObjectAttributes: []types.ObjectAttributes{types.ObjectAttributesEtag},
	})
	if err != nil {
		r.log.Error("object attributes lookup failed",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err))
		return "", &LookupError{Bucket: bucket, Key: key, Err: err}
	}

	version := aws.ToString(out.VersionId)
	r.log.Info("resolved object version",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("version", version))
	return version, nil
}
