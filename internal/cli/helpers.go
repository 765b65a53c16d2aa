package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/adapters/process"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger from a --log-level value.
// "off" disables logging.
func NewLogger(level string) (*slog.Logger, error) {
	if level == "off" {
		return logging.NewNop(), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// printSystemMessage prints a standardized system message to w.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// SubtreeOptions selects where shared subtrees are loaded from. At most one
// source is expected; both may be empty.
type SubtreeOptions struct {
	// Dir is a folder of Markdown definition documents.
	Dir string
	// RedisAddr is the address of a Redis server holding definitions.
	RedisAddr string
	// RedisPrefix overrides the Redis key prefix.
	RedisPrefix string
}

// LoadRegistry builds a registry holding every subtree of the configured source.
func LoadRegistry(ctx context.Context, opts SubtreeOptions, logger *slog.Logger) (*registry.Registry, error) {
	reg := registry.New()

	var source ports.DefinitionSource
	switch {
	case opts.Dir != "" && opts.RedisAddr != "":
		return nil, errors.New("subtrees can be loaded from a directory or from redis, not both")
	case opts.Dir != "":
		src, err := loam.Open(opts.Dir)
		if err != nil {
			return nil, err
		}
		source = src
	case opts.RedisAddr != "":
		var redisOpts []redis.Option
		if opts.RedisPrefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(opts.RedisPrefix))
		}
		src := redis.New(opts.RedisAddr, "", 0, redisOpts...)
		defer src.Close()
		source = src
	default:
		return reg, nil
	}

	if err := reg.LoadSubtrees(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to load subtrees: %w", err)
	}
	logger.Info("Subtrees loaded", "count", len(reg.SubtreeNames()))
	return reg, nil
}

// BindCommands registers the allow-listed commands of the file at path as
// functions of reg. An empty path registers nothing. Processes are killed
// when ctx is done.
func BindCommands(ctx context.Context, reg *registry.Registry, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	commands, err := process.LoadCommands(path)
	if err != nil {
		return err
	}
	runner := process.NewRunner(
		process.WithCommands(commands),
		process.WithLogger(logger),
	)
	if err := runner.Bind(ctx, reg); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	logger.Info("Commands registered", "count", len(commands))
	return nil
}

// LoadAgent returns the scripted agent at path, or an empty agent when path
// is empty. The empty agent defines no functions, so only definitions calling
// registered functions can run against it.
func LoadAgent(path string, logger *slog.Logger) (*ScriptAgent, error) {
	script := &Script{}
	if path != "" {
		var err error
		if script, err = LoadScript(path); err != nil {
			return nil, err
		}
	}
	return NewScriptAgent(script, logger)
}
