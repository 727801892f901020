package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/handler"
	"github.com/dmorgan81/imagegen/internal/inject"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/samber/do"
)

func main() {
	level := log.ParseLevel(os.Getenv(config.EnvLogLevel))
	logger := log.New(os.Stderr, level).With("function", os.Getenv("AWS_LAMBDA_FUNCTION_NAME"))
	ctx := log.NewContext(context.Background(), logger)

	injector := inject.Setup(ctx)
	router := do.MustInvoke[*handler.Handler](injector)
	logger.Info("image api starting", "level", level.String())

	lambda.StartWithOptions(router.Handle,
		lambda.WithContext(ctx),
		lambda.WithEnableSIGTERM(func() {
			logger.Info("shutting down")
			if err := injector.Shutdown(); err != nil {
				logger.Error("shutdown failed", "error", err)
			}
		}),
	)
}
