// Command giftplanner runs the HTTP server exposing the planning API and
// the /chat bridge to the agent.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"giftplanner/internal/amqp"
	"giftplanner/internal/assistant"
	"giftplanner/internal/cli"
	"giftplanner/internal/dates"
	apphttp "giftplanner/internal/http"
	"giftplanner/internal/log"
	"giftplanner/internal/session"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(bootLogger)

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentApp})

	clock := dates.RealClock{}
	sessions := session.NewManager(cfg.SessionTTL, clock)

	var publisher *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		publisher, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP_URL not set, reminder events disabled")
	}

	var asst *assistant.Assistant
	if cfg.GeminiAPIKey != "" {
		ctx := context.Background()
		model, err := assistant.NewModel(ctx, cfg)
		if err != nil {
			logger.Error("Failed to create model", log.FieldError, err)
			os.Exit(1)
		}
		toolset := assistant.NewToolset(sessions, clock, publisher, logger)
		rootAgent, err := assistant.NewAgent(model, toolset)
		if err != nil {
			logger.Error("Failed to create agent", log.FieldError, err)
			os.Exit(1)
		}
		asst, err = assistant.New(rootAgent, logger)
		if err != nil {
			logger.Error("Failed to create assistant", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Assistant ready", "model", cfg.ModelName)
	} else {
		logger.Warn("GEMINI_API_KEY not set, /chat will respond 503")
	}

	srv := apphttp.NewServer(":"+cfg.Port, sessions, asst, publisher, clock, cfg.RequestsPerMinute, logger)
	srv.ReadTimeout = 10 * time.Second
	// Chat requests wait on the model, so writes get a generous timeout.
	srv.WriteTimeout = 120 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		sessions.Shutdown()
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close AMQP connection", log.FieldError, err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
