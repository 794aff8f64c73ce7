package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"vmcp/internal/config"
	"vmcp/internal/domain"
)

// Outcome is the captured result of one runner process
type Outcome struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Invoker spawns the external runner with a hard timeout. Exactly one
// attempt is made per call; retry policy belongs to the caller.
type Invoker struct {
	cfg *config.Config
}

// NewInvoker creates an Invoker using the configured timeout
func NewInvoker(cfg *config.Config) *Invoker {
	return &Invoker{cfg: cfg}
}

// Invoke runs the invocation to completion or until the timeout expires.
// The deadline context kills the process and tears down its pipes on every
// exit path. A non-zero exit is a normal outcome (failing tests exit 1);
// only spawn failures and timeouts are errors.
func (inv *Invoker) Invoke(ctx context.Context, call Invocation) (*Outcome, error) {
	timeout := time.Duration(inv.cfg.TestDefaults.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultTimeoutMs) * time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, call.Runner, call.Args...)
	cmd.Dir = call.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, domain.NewRunnerError(
			fmt.Sprintf("Test run timed out after %dms and was killed", inv.cfg.TestDefaults.TimeoutMs),
			runCtx.Err())
	}

	outcome := &Outcome{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: elapsed,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			return outcome, nil
		}
		return nil, domain.NewRunnerError(
			fmt.Sprintf("Failed to start runner %q", call.Runner), err)
	}
	return outcome, nil
}
