package main

import (
	"context"

	"go-supplychain-router/internal/app"
	"go-supplychain-router/internal/config"
	"go-supplychain-router/internal/handler"
	"go-supplychain-router/internal/logger"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	log := logger.NewLogger("lambda")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.SetLevel(cfg.LogLevel)

	// Built once per container and reused across invocations.
	a, err := app.New(context.Background(), cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize router")
	}
	defer a.Close()

	lambda.Start(handler.LambdaHandler(a.Router))
}
