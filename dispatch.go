package stagehand

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ExitStatusError reports a dispatched binary that terminated on its own
// with a nonzero exit code. This is the binary's intentional result, not a
// launcher failure; callers pass the code through instead of wrapping it.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// dispatcher holds the stream and environment wiring for one invocation.
type dispatcher struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    []string
}

// DispatchOpt allows customizing the wiring of a dispatched process.
type DispatchOpt func(d *dispatcher)

// WithStdout sets up the stdout writer; mostly useful in tests, the default
// is the inherited stream.
func WithStdout(w io.Writer) DispatchOpt {
	return func(d *dispatcher) {
		d.stdout = w
	}
}

// WithStderr sets up the stderr writer.
func WithStderr(w io.Writer) DispatchOpt {
	return func(d *dispatcher) {
		d.stderr = w
	}
}

// WithStdin sets up the stdin reader.
func WithStdin(r io.Reader) DispatchOpt {
	return func(d *dispatcher) {
		d.stdin = r
	}
}

// WithProcessEnv replaces the environment passed to the child process.
func WithProcessEnv(vars []string) DispatchOpt {
	return func(d *dispatcher) {
		d.env = vars
	}
}

// Dispatch runs the binary with the action and phase names as its only
// arguments. Standard streams are inherited by default so the child's output
// appears in the job log exactly as produced, unbuffered and interleaved.
//
// A clean exit returns nil. A nonzero exit code returns [ExitStatusError]
// with that code. A child that terminates without an obtainable exit code,
// e.g. killed by a signal, or that cannot be spawned at all, returns a
// regular error.
func Dispatch(ctx context.Context, binary, action, phase string, opts ...DispatchOpt) error {
	d := dispatcher{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(&d)
	}

	cmd := exec.CommandContext(ctx, binary, action, phase)
	cmd.Stdin = d.stdin
	cmd.Stdout = d.stdout
	cmd.Stderr = d.stderr
	if d.env != nil {
		cmd.Env = d.env
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exit *exec.ExitError
	if errors.As(err, &exit) {
		if code := exit.ExitCode(); code >= 0 {
			return &ExitStatusError{Code: code}
		}
		return fmt.Errorf("%s terminated abnormally: %w", binary, err)
	}

	return fmt.Errorf("failed to run %s: %w", binary, err)
}
