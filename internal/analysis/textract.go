package analysis

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"go.uber.org/zap"

	"github.com/medrecio/blood-result-service/internal/extract"
)

// API is the slice of the Textract client the analyzer needs.
type API interface {
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
}

// AnalyzeError reports a failed document analysis call.
type AnalyzeError struct {
	Err error
}

func (e *AnalyzeError) Error() string {
	return fmt.Sprintf("document analysis: %v", e.Err)
}

func (e *AnalyzeError) Unwrap() error { return e.Err }

// Client wraps the document analysis service and flattens its output into
// the ordered block sequence the extractor consumes.
type Client struct {
	api API
	log *zap.Logger
}

func NewClient(api API, log *zap.Logger) *Client {
	return &Client{api: api, log: log}
}

// AnalyzeStored runs table-aware analysis on an object already in storage,
// pinned to the version the resolver produced. An empty version leaves the
// reference unpinned (unversioned bucket).
func (c *Client) AnalyzeStored(ctx context.Context, bucket, key, version string) ([]extract.Block, error) {
	obj := &types.S3Object{
		Bucket: aws.String(bucket),
		Name:   aws.String(key),
	}
	if version != "" {
		obj.Version = aws.String(version)
	}
	return c.analyze(ctx, &types.Document{S3Object: obj})
}

// AnalyzeBytes runs the same analysis on a document body handed to the
// service directly.
func (c *Client) AnalyzeBytes(ctx context.Context, body []byte) ([]extract.Block, error) {
	return c.analyze(ctx, &types.Document{Bytes: body})
}

func (c *Client) analyze(ctx context.Context, doc *types.Document) ([]extract.Block, error) {
	out, err := c.api.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document:     doc,
		FeatureTypes: []types.FeatureType{types.FeatureTypeTables},
	})
	if err != nil {
		c.log.Error("document analysis failed", zap.Error(err))
		return nil, &AnalyzeError{Err: err}
	}

	// Blocks without a text payload stay in the sequence: downstream lookup
	// is positional and must see the same indices the service returned.
	blocks := make([]extract.Block, 0, len(out.Blocks))
	for _, b := range out.Blocks {
		blocks = append(blocks, extract.Block{Text: aws.ToString(b.Text)})
	}

	c.log.Info("document analyzed", zap.Int("blocks", len(blocks)))
	return blocks, nil
}
