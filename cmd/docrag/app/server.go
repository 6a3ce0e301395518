// Package app provides the document RAG server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nichiki/markitdown-rag-sample/cmd/docrag/app/options"
	"github.com/nichiki/markitdown-rag-sample/pkg/app"
)

const (
	// Name is the name of the application.
	Name = "docrag"

	// commandDesc is the description of the command.
	commandDesc = `Document RAG Server

A knowledge base service that converts uploaded documents to Markdown,
indexes them in a vector database, and answers questions against the
indexed content.

This server provides:
  - Document upload with conversion to Markdown (PDF, Office, HTML, CSV and more)
  - Chunking and vector embedding of converted documents
  - Semantic similarity search over indexed chunks
  - RAG-based question answering with source attribution`
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
