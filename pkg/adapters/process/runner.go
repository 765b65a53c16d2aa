package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sort"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
)

// ArgPrefix prefixes the environment variables holding call arguments:
// ARBOR_ARG_0, ARBOR_ARG_1 and so on. Arguments are never passed as flags.
const ArgPrefix = "ARBOR_ARG_"

// waitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren once the process was killed.
const waitDelay = 500 * time.Millisecond

// Runner starts allow-listed commands on behalf of action nodes.
// Each call returns a promise settled when the process exits: exit code zero
// succeeds the action, any other exit code fails it.
type Runner struct {
	commands map[string]Command
	baseDir  string
	logger   *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithCommands populates the allow-list from a loaded commands file.
func WithCommands(commands map[string]Command) RunnerOption {
	return func(r *Runner) {
		for name, cmd := range commands {
			r.commands[name] = cmd
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithLogger sets the logger. Process output is logged at debug level.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		commands: make(map[string]Command),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.commands[name] = Command{Name: name, Command: command, Args: args}
}

// Names returns the allow-listed command names, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bind registers every allow-listed command as a function of reg. Processes
// started through reg are killed when ctx is done.
func (r *Runner) Bind(ctx context.Context, reg *registry.Registry) error {
	for _, name := range r.Names() {
		if err := reg.RegisterFunction(name, r.Func(ctx, name)); err != nil {
			return err
		}
	}
	return nil
}

// Func returns the registry function that starts the command called name.
func (r *Runner) Func(ctx context.Context, name string) registry.Func {
	return func(_ any, args ...any) (any, error) {
		cmd, ok := r.commands[name]
		if !ok {
			return nil, fmt.Errorf("process command not registered: %s", name)
		}
		return r.Start(ctx, cmd, args...), nil
	}
}

// Start runs cmd in the background and returns its pending result.
func (r *Runner) Start(ctx context.Context, cmd Command, args ...any) *domain.Promise {
	promise := domain.NewPromise()

	proc := exec.CommandContext(ctx, cmd.Command, cmd.Args...)
	proc.Dir = r.baseDir
	proc.WaitDelay = waitDelay
	proc.Env = append(proc.Environ(), environment(cmd.Env, args)...)

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	if err := proc.Start(); err != nil {
		promise.Reject(fmt.Errorf("failed to start %s: %w", cmd.Name, err))
		return promise
	}
	r.logger.Debug("process started", "command", cmd.Name, "pid", proc.Process.Pid)

	go func() {
		err := proc.Wait()
		r.logger.Debug("process exited",
			"command", cmd.Name,
			"stdout", stdout.String(),
			"stderr", stderr.String(),
		)

		var exitErr *exec.ExitError
		switch {
		case err == nil:
			promise.Resolve(domain.Succeeded)
		case ctx.Err() != nil:
			promise.Reject(fmt.Errorf("%s: %w", cmd.Name, ctx.Err()))
		case errors.As(err, &exitErr):
			r.logger.Info("process failed", "command", cmd.Name, "exit_code", exitErr.ExitCode())
			promise.Resolve(domain.Failed)
		default:
			promise.Reject(fmt.Errorf("execution of %s failed: %w", cmd.Name, err))
		}
	}()

	return promise
}

func environment(fixed map[string]string, args []any) []string {
	env := make([]string, 0, len(fixed)+len(args))
	keys := make([]string, 0, len(fixed))
	for k := range fixed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, fixed[k]))
	}

	for i, arg := range args {
		env = append(env, fmt.Sprintf("%s%d=%s", ArgPrefix, i, argValue(arg)))
	}
	return env
}

func argValue(arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
