package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

type stubS3 struct {
	out   *s3.GetObjectAttributesOutput
	err   error
	input *s3.GetObjectAttributesInput
}

func (s *stubS3) GetObjectAttributes(ctx context.Context, params *s3.GetObjectAttributesInput, optFns ...func(*s3.Options)) (*s3.GetObjectAttributesOutput, error) {
	s.input = params
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func TestResolveReturnsVersion(t *testing.T) {
	t.Parallel()

	stub := &stubS3{out: &s3.GetObjectAttributesOutput{VersionId: aws.String("v1")}}
	r := NewResolver(stub, zap.NewNop())

	version, err := r.Resolve(context.Background(), "labs", "report+1.pdf")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if version != "v1" {
		t.Fatalf("expected version v1, got %q", version)
	}

	if aws.ToString(stub.input.Bucket) != "labs" || aws.ToString(stub.input.Key) != "report+1.pdf" {
		t.Fatalf("unexpected request: %+v", stub.input)
	}
	if len(stub.input.ObjectAttributes) != 1 || stub.input.ObjectAttributes[0] != types.ObjectAttributesEtag {
		t.Fatalf("expected ETag attribute request, got %v", stub.input.ObjectAttributes)
	}
}

func TestResolveUnversionedBucket(t *testing.T) {
	t.Parallel()

	stub := &stubS3{out: &s3.GetObjectAttributesOutput{}}
	r := NewResolver(stub, zap.NewNop())

	version, err := r.Resolve(context.Background(), "labs", "report.pdf")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if version != "" {
		t.Fatalf("expected empty version, got %q", version)
	}
}

func TestResolveWrapsFailureAsLookupError(t *testing.T) {
	t.Parallel()

	cause := errors.New("api error NoSuchKey")
	stub := &stubS3{err: cause}
	r := NewResolver(stub, zap.NewNop())

	_, err := r.Resolve(context.Background(), "labs", "missing.pdf")
	var lookup *LookupError
	if !errors.As(err, &lookup) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if lookup.Bucket != "labs" || lookup.Key != "missing.pdf" {
		t.Fatalf("unexpected error fields: %+v", lookup)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped")
	}
}
