package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	textracttypes "github.com/aws/aws-sdk-go-v2/service/textract/types"
	"go.uber.org/zap"

	"github.com/medrecio/blood-result-service/internal/analysis"
	"github.com/medrecio/blood-result-service/internal/extract"
	"github.com/medrecio/blood-result-service/internal/sink"
	"github.com/medrecio/blood-result-service/internal/storage"
)

type stubS3 struct {
	version string
	err     error
	input   *s3.GetObjectAttributesInput
}

func (s *stubS3) GetObjectAttributes(ctx context.Context, params *s3.GetObjectAttributesInput, optFns ...func(*s3.Options)) (*s3.GetObjectAttributesOutput, error) {
	s.input = params
	if s.err != nil {
		return nil, s.err
	}
	return &s3.GetObjectAttributesOutput{VersionId: aws.String(s.version)}, nil
}

type stubTextract struct {
	texts []string
	err   error
	input *textract.AnalyzeDocumentInput
}

func (s *stubTextract) AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error) {
	s.input = params
	if s.err != nil {
		return nil, s.err
	}
	out := &textract.AnalyzeDocumentOutput{}
	for _, text := range s.texts {
		out.Blocks = append(out.Blocks, textracttypes.Block{Text: aws.String(text)})
	}
	return out, nil
}

type recordingSink struct {
	got map[string]string
	err error
}

func (r *recordingSink) Name() string { return "recording" }
func (r *recordingSink) Submit(ctx context.Context, result map[string]string) error {
	r.got = result
	return r.err
}

func triggerEvent(bucket, key string) events.S3Event {
	return events.S3Event{
		Records: []events.S3EventRecord{
			{
				S3: events.S3Entity{
					Bucket: events.S3Bucket{Name: bucket},
					Object: events.S3Object{Key: key},
				},
			},
		},
	}
}

func newTestPipeline(s3stub *stubS3, txstub *stubTextract, catalog extract.Catalog, s sink.Sink) *Pipeline {
	log := zap.NewNop()
	return NewPipeline(
		storage.NewResolver(s3stub, log),
		analysis.NewClient(txstub, log),
		extract.New(catalog, false),
		s,
		log,
	)
}

func TestHandleS3EventEndToEnd(t *testing.T) {
	t.Parallel()

	s3stub := &stubS3{version: "v1"}
	txstub := &stubTextract{texts: []string{"WBC", "5.2", "NEU%", "60 10^9/L"}}
	rec := &recordingSink{}
	catalog := extract.Catalog{Tests: []string{"WBC", "NEU%"}, PercentStyle: []string{"NEU%"}}

	p := newTestPipeline(s3stub, txstub, catalog, rec)
	res, err := p.HandleS3Event(context.Background(), triggerEvent("labs", "report%2B1.pdf"))
	if err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	if aws.ToString(s3stub.input.Key) != "report+1.pdf" {
		t.Fatalf("expected decoded key, got %q", aws.ToString(s3stub.input.Key))
	}
	if aws.ToString(txstub.input.Document.S3Object.Version) != "v1" {
		t.Fatalf("expected analysis pinned to v1")
	}

	var body responseBody
	if err := json.Unmarshal([]byte(res.Body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	var result map[string]string
	if err := json.Unmarshal([]byte(body.BloodResult), &result); err != nil {
		t.Fatalf("decode bloodResult: %v", err)
	}
	if result["WBC"] != "5.2" || result["NEU%"] != "60" {
		t.Fatalf("unexpected result: %v", result)
	}

	if rec.got["WBC"] != "5.2" || rec.got["NEU%"] != "60" {
		t.Fatalf("sink received %v", rec.got)
	}
}

func TestResolverFailureAbortsBeforeAnalysis(t *testing.T) {
	t.Parallel()

	s3stub := &stubS3{err: errors.New("NoSuchKey")}
	txstub := &stubTextract{}

	p := newTestPipeline(s3stub, txstub, extract.Catalog{Tests: []string{"WBC"}}, nil)
	_, err := p.HandleS3Event(context.Background(), triggerEvent("labs", "missing.pdf"))
	var lookup *storage.LookupError
	if !errors.As(err, &lookup) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if txstub.input != nil {
		t.Fatalf("analysis must not run after a failed lookup")
	}
}

func TestMissingTestAbortsWithoutSubmission(t *testing.T) {
	t.Parallel()

	s3stub := &stubS3{version: "v1"}
	txstub := &stubTextract{texts: []string{"WBC", "5.2"}}
	rec := &recordingSink{}

	p := newTestPipeline(s3stub, txstub, extract.Catalog{Tests: []string{"WBC", "PLT"}}, rec)
	_, err := p.HandleS3Event(context.Background(), triggerEvent("labs", "report.pdf"))
	var missing *extract.MissingTestError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingTestError, got %v", err)
	}
	if rec.got != nil {
		t.Fatalf("sink must not run after a failed extraction")
	}
}

func TestSinkFailureAborts(t *testing.T) {
	t.Parallel()

	s3stub := &stubS3{version: "v1"}
	txstub := &stubTextract{texts: []string{"WBC", "5.2"}}
	rec := &recordingSink{err: errors.New("store down")}

	p := newTestPipeline(s3stub, txstub, extract.Catalog{Tests: []string{"WBC"}}, rec)
	_, err := p.HandleS3Event(context.Background(), triggerEvent("labs", "report.pdf"))
	if err == nil {
		t.Fatalf("expected submission failure to propagate")
	}
}

func TestHandleDocumentSkipsResolver(t *testing.T) {
	t.Parallel()

	s3stub := &stubS3{}
	txstub := &stubTextract{texts: []string{"WBC", "5.2"}}

	p := newTestPipeline(s3stub, txstub, extract.Catalog{Tests: []string{"WBC"}}, nil)
	res, err := p.HandleDocument(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if s3stub.input != nil {
		t.Fatalf("resolver must not run for direct documents")
	}
	if string(txstub.input.Document.Bytes) != "%PDF-1.4" {
		t.Fatalf("expected document bytes to reach analysis")
	}
}
