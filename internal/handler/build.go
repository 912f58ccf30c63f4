package handler

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"go.uber.org/zap"

	"github.com/medrecio/blood-result-service/internal/analysis"
	"github.com/medrecio/blood-result-service/internal/config"
	"github.com/medrecio/blood-result-service/internal/extract"
	"github.com/medrecio/blood-result-service/internal/sink"
	"github.com/medrecio/blood-result-service/internal/storage"
)

// Build assembles a pipeline from configuration: AWS clients from the
// ambient credential chain, the catalog (built-in unless CATALOG_PATH is
// set) and the configured sink.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*Pipeline, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	catalog := extract.DefaultCatalog()
	if cfg.CatalogPath != "" {
		catalog, err = extract.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
	}

	var s sink.Sink
	switch cfg.Sink {
	case config.SinkRespond:
		// respond-only: the extraction result goes back in the envelope
	case config.SinkAirtable:
		s = sink.NewAirtable(cfg.AirtableAPIURL, cfg.AirtableToken, cfg.AirtableBase, cfg.AirtableTable, cfg.SubmitTimeout, log)
	case config.SinkXLSX:
		s = sink.NewWorkbook(cfg.XLSXPath, cfg.XLSXSheet, catalog.Tests, log)
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}

	resolver := storage.NewResolver(s3.NewFromConfig(awsCfg), log)
	analyzer := analysis.NewClient(textract.NewFromConfig(awsCfg), log)
	extractor := extract.New(catalog, cfg.MissingTestPolicy == config.PolicySkip)

	return NewPipeline(resolver, analyzer, extractor, s, log), nil
}
