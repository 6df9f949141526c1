// Package app provides the assist server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/camos-io/camos-assist/cmd/assist/app/options"
	"github.com/camos-io/camos-assist/pkg/infra/app"
)

const (
	// Name is the name of the application.
	Name = "camos-assist"

	// commandDesc is the description of the command.
	commandDesc = `Camos AI Assistant

Knowledge-base question answering service for the Camos machine vision platform.

This server provides:
  - Document ingestion with vector embeddings (PDF, Markdown, plain text)
  - Semantic similarity search with query enhancement
  - Grounded question answering and code debugging with LLM
  - A community FAQ hub with experience-gated answering`
)

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	application := app.NewApp(
		app.WithName(Name),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)

	return application
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
