// Package runner starts autostart commands in the background through the
// user's shell.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Guliveer/dsbautostart/internal/autostart"
)

const (
	DefaultShell    = "/bin/sh"
	DefaultTerminal = "xterm -e"
)

// Job is one command to start.
type Job struct {
	Exec     string
	Terminal bool
}

// Jobs returns the commands of the live entries that are shown in the
// current desktop environment, in order.
func Jobs(entries []*autostart.Entry) []Job {
	var out []Job
	for _, e := range entries {
		if e.Deleted || e.Exclude || !e.Desktop.IsReal() {
			continue
		}
		out = append(out, Job{Exec: e.Exec(), Terminal: e.Desktop.Terminal})
	}
	return out
}

// Runner starts jobs detached from the calling process.
type Runner struct {
	shell       string
	terminal    string
	skipRunning bool
	probeTime   time.Duration
	logger      *zap.Logger

	start   func(name string, args ...string) error
	running func(ctx context.Context) (map[string]bool, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithShell sets the shell commands are passed to with -c.
func WithShell(shell string) Option {
	return func(r *Runner) {
		if shell != "" {
			r.shell = shell
		}
	}
}

// WithTerminal sets the command prefix used for Terminal=true entries.
func WithTerminal(prefix string) Option {
	return func(r *Runner) {
		if prefix != "" {
			r.terminal = prefix
		}
	}
}

// WithSkipRunning makes the runner skip commands that already run under
// the current user.
func WithSkipRunning(skip bool) Option {
	return func(r *Runner) { r.skipRunning = skip }
}

// WithProbeTimeout bounds the process listing done for WithSkipRunning.
func WithProbeTimeout(d time.Duration) Option {
	return func(r *Runner) { r.probeTime = d }
}

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		shell:    DefaultShell,
		terminal: DefaultTerminal,
		logger:   zap.NewNop(),
		start:    startDetached,
		running:  runningCommands,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("runner")
	return r
}

// CommandLine returns the shell command line for j.
func (r *Runner) CommandLine(j Job) string {
	if j.Terminal {
		return r.terminal + " " + j.Exec
	}
	return j.Exec
}

// Run starts every job and does not wait for them. All jobs are attempted;
// the returned error combines the failures.
func (r *Runner) Run(ctx context.Context, jobs []Job) error {
	var skip map[string]bool
	if r.skipRunning {
		pctx, cancel := ctx, context.CancelFunc(func() {})
		if r.probeTime > 0 {
			pctx, cancel = context.WithTimeout(ctx, r.probeTime)
		}
		var err error
		skip, err = r.running(pctx)
		cancel()
		if err != nil {
			r.logger.Warn("Cannot list running processes, starting everything", zap.Error(err))
		}
	}

	var errs error
	started := 0
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if skip[strings.TrimSpace(j.Exec)] {
			r.logger.Info("Already running, skipping", zap.String("exec", j.Exec))
			continue
		}
		line := r.CommandLine(j)
		if err := r.start(r.shell, "-c", line); err != nil {
			r.logger.Error("Failed to start command", zap.String("cmd", line), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("starting %q: %w", line, err))
			continue
		}
		r.logger.Debug("Started command", zap.String("cmd", line))
		started++
	}

	r.logger.Info("Autostart complete",
		zap.Int("started", started),
		zap.Int("failed", len(multierr.Errors(errs))))
	return errs
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
