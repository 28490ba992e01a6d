package stagehand

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/stagehand-ci/stagehand/artifact"
	"github.com/stagehand-ci/stagehand/ghactions"
)

// annotationTitle is the fixed title bootstrap failures are reported under
// in the workflow log UI.
const annotationTitle = "stagehand"

// Launcher ties resolution, cache population and dispatch together behind a
// single error boundary.
type Launcher struct {
	ref string
	env artifact.Environment

	annotations io.Writer
	dispatch    []DispatchOpt
}

// LauncherOption allows customizing a launcher, mostly for tests.
type LauncherOption func(l *Launcher)

// WithEnvironment substitutes the host environment snapshot.
func WithEnvironment(env artifact.Environment) LauncherOption {
	return func(l *Launcher) {
		l.env = env
	}
}

// WithAnnotationOutput redirects the error annotation stream.
// The default is stdout, where the automation platform scans for workflow
// commands.
func WithAnnotationOutput(w io.Writer) LauncherOption {
	return func(l *Launcher) {
		l.annotations = w
	}
}

// WithDispatchOpts forwards options to the dispatched process.
func WithDispatchOpts(opts ...DispatchOpt) LauncherOption {
	return func(l *Launcher) {
		l.dispatch = opts
	}
}

// NewLauncher constructs a launcher for the release reference the bundle was
// packaged with.
func NewLauncher(ref string, opts ...LauncherOption) *Launcher {
	l := Launcher{
		ref:         ref,
		env:         artifact.FromSystem(),
		annotations: os.Stdout,
	}

	for _, opt := range opts {
		opt(&l)
	}

	return &l
}

// Launch runs the named action phase and returns the exit code this process
// should terminate with.
//
// A clean child exit, even a nonzero one, is passed through untouched; it is
// the dispatched tool's own result. Every other failure, missing environment,
// fetch, decompression, install or spawn, is reported as exactly one error
// annotation line and mapped to exit code 1. Launch never lets an internal
// error escape unformatted.
func (l *Launcher) Launch(ctx context.Context, action, phase string) int {
	err := l.run(ctx, action, phase)
	if err == nil {
		return 0
	}

	var exit *ExitStatusError
	if errors.As(err, &exit) {
		return exit.Code
	}

	ghactions.Error(l.annotations, annotationTitle, err.Error())
	return 1
}

func (l *Launcher) run(ctx context.Context, action, phase string) error {
	resolver, err := artifact.NewResolver(l.env, l.ref)
	if err != nil {
		return err
	}

	if err := artifact.NewInstaller(resolver).Ensure(); err != nil {
		return err
	}

	return Dispatch(ctx, resolver.BinaryPath(), action, phase, l.dispatch...)
}
