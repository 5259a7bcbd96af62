package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"headliner/internal/config"
	"headliner/internal/extract"
	"headliner/internal/llm"
	"headliner/internal/logger"
	"headliner/internal/pipeline"
	"headliner/internal/server"
	"headliner/internal/store"
	"headliner/internal/summarize"
	"headliner/internal/usage"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the article summarizer HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.Logging.Level)
	log := logger.Get()

	ctx := context.Background()

	// Completion providers, routed by model name.
	var openaiClient, geminiClient llm.Completer
	if cfg.LLM.OpenAIAPIKey != "" {
		client, err := llm.NewOpenAIClient(cfg.LLM.OpenAIAPIKey)
		if err != nil {
			return err
		}
		openaiClient = client
	}
	if cfg.LLM.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey)
		if err != nil {
			return err
		}
		geminiClient = client
	}
	completer := llm.NewRouter(openaiClient, geminiClient)

	accountant := usage.NewAccountant(usage.NewTokenizer(), usage.NewLedger(cfg.Usage.LedgerPath))

	graph, err := store.New(cfg.Neo4j)
	if err != nil {
		return err
	}
	defer graph.Close(ctx)

	// A degraded graph store must not block summarization.
	if err := graph.Connect(ctx); err != nil {
		log.Warn("graph store unreachable, persistence degraded", "error", err.Error())
	} else if err := graph.EnsureSchema(ctx); err != nil {
		log.Warn("could not create graph constraints and indexes", "error", err.Error())
	}

	orchestratorOpts := summarize.Options{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		MaxRetries:  cfg.LLM.MaxRetries,
		RetryDelay:  cfg.LLM.RetryDelay,
	}
	controller := pipeline.New(
		extract.New(cfg.Pipeline.FetchTimeout),
		summarize.New(completer, accountant, orchestratorOpts),
		graph,
	)

	srv := server.New(controller, graph, *cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
