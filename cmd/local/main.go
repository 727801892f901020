package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmorgan81/imagegen/internal/handler"
	"github.com/dmorgan81/imagegen/internal/inject"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/dmorgan81/imagegen/internal/server"
	"github.com/joho/godotenv"
	"github.com/samber/do"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	envErr := godotenv.Load()

	logger := log.New(os.Stderr, log.ParseLevel(os.Getenv("LOG_LEVEL")))
	if envErr != nil {
		logger.Info("no .env file loaded, using process environment", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.NewContext(ctx, logger)

	injector := inject.Setup(ctx)
	h := do.MustInvoke[*handler.Handler](injector)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.NewRouter(ctx, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = injector.Shutdown()
	}()

	logger.Info("listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
