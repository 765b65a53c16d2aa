package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServeOptions contains all the configuration for the serve command.
type ServeOptions struct {
	DefinitionPath string
	AgentPath      string
	Subtrees       SubtreeOptions
	// CommandsPath is a commands file whose entries become action functions.
	CommandsPath string
	Addr           string
	Seed           uint64
}

// NewServeHandler compiles the definition and wraps it in the HTTP API, with
// metrics and a state change stream wired in.
func NewServeHandler(ctx context.Context, opts ServeOptions, logger *slog.Logger) (http.Handler, error) {
	reg, err := LoadRegistry(ctx, opts.Subtrees, logger)
	if err != nil {
		return nil, err
	}
	if err := BindCommands(ctx, reg, opts.CommandsPath, logger); err != nil {
		return nil, err
	}
	agent, err := LoadAgent(opts.AgentPath, logger)
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	streams := arborhttp.NewStreamManager()

	compileOpts := []arbor.Option{
		arbor.WithRegistry(reg),
		arbor.WithLogger(logger),
		arbor.WithMetrics(observability.NewMetrics(promReg)),
		arbor.WithStateObserver(streams.Publish),
	}
	if opts.Seed != 0 {
		compileOpts = append(compileOpts, arbor.WithRandom(arbor.SeededRandom(opts.Seed)))
	}

	tree, err := arbor.CompileFile(opts.DefinitionPath, agent, compileOpts...)
	if err != nil {
		return nil, err
	}

	return arborhttp.NewHandler(tree,
		arborhttp.WithStreams(streams),
		arborhttp.WithGatherer(promReg),
		arborhttp.WithLogger(logger),
	), nil
}

// Serve runs the HTTP API until ctx is done.
func Serve(ctx context.Context, opts ServeOptions, logger *slog.Logger) error {
	handler, err := NewServeHandler(ctx, opts, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP Server listening", "address", opts.Addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
