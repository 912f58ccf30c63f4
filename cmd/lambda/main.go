package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/medrecio/blood-result-service/internal/config"
	"github.com/medrecio/blood-result-service/internal/handler"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	pipeline, err := handler.Build(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("pipeline setup failed", zap.Error(err))
	}

	lambda.Start(pipeline.HandleS3Event)
}
