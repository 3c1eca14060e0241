// Package dispatch launches deployment scripts as detached child processes.
// The HTTP handler never waits on a deployment; completion is observed only
// through log lines.
package dispatch

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"hookdeploy/internal/config"
	"hookdeploy/internal/hook"
	"hookdeploy/pkg/cmdutil"
	"hookdeploy/pkg/fileutil"
)

// Environment variable names exported to the deployment script.
const (
	EnvRepository     = "HOOK_REPOSITORY"
	EnvRepositoryName = "HOOK_REPOSITORY_NAME"
	EnvOwner          = "HOOK_OWNER"
	EnvBranch         = "HOOK_BRANCH"
	EnvCommit         = "HOOK_COMMIT"
	EnvPusher         = "HOOK_PUSHER"
)

// Dispatcher runs deployment scripts through bash with a derived environment.
type Dispatcher struct {
	Logger    *slog.Logger
	Serialize bool

	locks *LockManager
	wg    sync.WaitGroup
}

// NewDispatcher creates a dispatcher. When serialize is true, deployments
// for the same repository run one at a time; the HTTP path is unaffected
// either way.
func NewDispatcher(logger *slog.Logger, serialize bool) *Dispatcher {
	return &Dispatcher{
		Logger:    logger,
		Serialize: serialize,
		locks:     NewLockManager(),
	}
}

// CheckScript re-checks that the target's script still exists on disk. The
// script may have been removed since startup validation; callers must report
// a server error and skip dispatch when this fails.
func (d *Dispatcher) CheckScript(target *config.Target) error {
	if !fileutil.FileExists(target.Script()) {
		return fmt.Errorf("deployment script missing: %s", target.Script())
	}
	return nil
}

// Dispatch launches the deployment for one accepted delivery and returns
// immediately. The child process keeps running after the HTTP response is
// flushed; its output and exit status are logged, never surfaced.
func (d *Dispatcher) Dispatch(target *config.Target, ctx hook.Context, delivery string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if d.Serialize {
			d.locks.Lock(ctx.Repository)
			defer d.locks.Unlock(ctx.Repository)
		}

		d.run(target, ctx, delivery)
	}()
}

// Wait blocks until all in-flight deployments have finished. Used by tests
// and graceful shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Environ builds the child environment: the current process environment plus
// the six derived context fields.
func Environ(ctx hook.Context) []string {
	return append(os.Environ(),
		EnvRepository+"="+ctx.Repository,
		EnvRepositoryName+"="+ctx.RepositoryName,
		EnvOwner+"="+ctx.Owner,
		EnvBranch+"="+ctx.Branch,
		EnvCommit+"="+ctx.Commit,
		EnvPusher+"="+ctx.Pusher,
	)
}

func (d *Dispatcher) run(target *config.Target, ctx hook.Context, delivery string) {
	logger := d.Logger.With("repository", ctx.Repository, "delivery", delivery)

	// The script path was validated at startup and re-checked by the
	// handler; arguments come from config, not from the payload.
	args := append([]string{target.Script()}, target.Command[1:]...)
	cmd := exec.Command("bash", args...)
	cmd.Env = Environ(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		logger.Error("failed to open stdout pipe", "error", err)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		logger.Error("failed to open stderr pipe", "error", err)
		return
	}

	start := time.Now()
	logger.Info("deployment starting",
		"command", cmdutil.FormatCommand(target.Command),
		"branch", ctx.Branch,
		"commit", ctx.Commit)

	if err := cmd.Start(); err != nil {
		logger.Error("failed to start deployment script", "error", err)
		return
	}

	// Drain both pipes before Wait; lines are logged as they arrive.
	var pipes sync.WaitGroup
	pipes.Add(2)
	go d.logOutput(&pipes, logger, "stdout", stdout)
	go d.logOutput(&pipes, logger, "stderr", stderr)
	pipes.Wait()

	err = cmd.Wait()
	duration := time.Since(start)

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		logger.Error("deployment failed",
			"exit_code", exitCode,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return
	}

	logger.Info("deployment completed", "duration_ms", duration.Milliseconds())
}

// logOutput copies one child pipe into the log, line by line.
func (d *Dispatcher) logOutput(wg *sync.WaitGroup, logger *slog.Logger, stream string, r io.Reader) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		logger.Info("deployment output", "stream", stream, "line", scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("deployment output truncated", "stream", stream, "error", err)
	}
}
