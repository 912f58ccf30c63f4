package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/medrecio/blood-result-service/internal/analysis"
	"github.com/medrecio/blood-result-service/internal/event"
	"github.com/medrecio/blood-result-service/internal/extract"
	"github.com/medrecio/blood-result-service/internal/sink"
	"github.com/medrecio/blood-result-service/internal/storage"
)

// Response is the envelope handed back to the event source. Body is a JSON
// string holding the extracted mapping under "bloodResult".
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type responseBody struct {
	BloodResult string `json:"bloodResult"`
}

// Pipeline runs one invocation end to end: resolve the uploaded document,
// analyze it, extract the result, then submit or respond. Every step is
// sequential and every failure aborts the invocation with no partial result.
type Pipeline struct {
	resolver  *storage.Resolver
	analyzer  *analysis.Client
	extractor *extract.Extractor
	sink      sink.Sink
	log       *zap.Logger
}

// NewPipeline wires the pipeline. A nil sink means respond-only.
func NewPipeline(resolver *storage.Resolver, analyzer *analysis.Client, extractor *extract.Extractor, s sink.Sink, log *zap.Logger) *Pipeline {
	return &Pipeline{resolver: resolver, analyzer: analyzer, extractor: extractor, sink: s, log: log}
}

// HandleS3Event processes the first record of an upload notification.
func (p *Pipeline) HandleS3Event(ctx context.Context, ev events.S3Event) (Response, error) {
	bucket, key, err := event.ObjectRef(ev)
	if err != nil {
		p.log.Error("bad trigger payload", zap.Error(err))
		return Response{}, err
	}
	p.log.Info("processing uploaded document",
		zap.String("bucket", bucket),
		zap.String("key", key))

	version, err := p.resolver.Resolve(ctx, bucket, key)
	if err != nil {
		return Response{}, err
	}

	blocks, err := p.analyzer.AnalyzeStored(ctx, bucket, key, version)
	if err != nil {
		return Response{}, err
	}

	return p.finish(ctx, blocks)
}

// HandleDocument runs the same pipeline on a document body handed to the
// service directly instead of via a bucket notification.
func (p *Pipeline) HandleDocument(ctx context.Context, body []byte) (Response, error) {
	blocks, err := p.analyzer.AnalyzeBytes(ctx, body)
	if err != nil {
		return Response{}, err
	}
	return p.finish(ctx, blocks)
}

func (p *Pipeline) finish(ctx context.Context, blocks []extract.Block) (Response, error) {
	result, err := p.extractor.Extract(blocks)
	if err != nil {
		p.log.Error("extraction failed", zap.Error(err))
		return Response{}, err
	}
	p.log.Info("blood result extracted", zap.Int("tests", len(result)))

	if p.sink != nil {
		if err := p.sink.Submit(ctx, result); err != nil {
			p.log.Error("submission failed",
				zap.String("sink", p.sink.Name()),
				zap.Error(err))
			return Response{}, err
		}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return Response{}, fmt.Errorf("encode result: %w", err)
	}
	body, err := json.Marshal(responseBody{BloodResult: string(resultJSON)})
	if err != nil {
		return Response{}, fmt.Errorf("encode response: %w", err)
	}
	return Response{StatusCode: http.StatusOK, Body: string(body)}, nil
}
