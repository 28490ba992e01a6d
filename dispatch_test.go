package stagehand

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script writes an executable shell script into a temp dir and returns its
// path.
func script(t *testing.T, content string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures are not portable to windows")
	}

	path := filepath.Join(t.TempDir(), "fixture")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+content), 0o755))

	return path
}

func TestDispatch_PassesIdentityArguments(t *testing.T) {
	var out bytes.Buffer
	bin := script(t, `echo "$1 $2"`)

	err := Dispatch(context.Background(), bin, "deploy", "setup", WithStdout(&out))

	require.NoError(t, err)
	assert.Equal(t, "deploy setup\n", out.String())
}

func TestDispatch_CleanExit(t *testing.T) {
	bin := script(t, "exit 0")

	err := Dispatch(context.Background(), bin, "deploy", "setup")

	assert.NoError(t, err)
}

func TestDispatch_NonzeroExit(t *testing.T) {
	bin := script(t, "exit 3")

	err := Dispatch(context.Background(), bin, "deploy", "setup")

	var exit *ExitStatusError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 3, exit.Code)
}

func TestDispatch_SignalKill(t *testing.T) {
	bin := script(t, "kill -9 $$")

	err := Dispatch(context.Background(), bin, "deploy", "setup")

	require.Error(t, err)

	var exit *ExitStatusError
	assert.False(t, errors.As(err, &exit), "signal death must not look like a clean exit")
	assert.Contains(t, err.Error(), "terminated abnormally")
}

func TestDispatch_SpawnFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	err := Dispatch(context.Background(), missing, "deploy", "setup")

	require.Error(t, err)

	var exit *ExitStatusError
	assert.False(t, errors.As(err, &exit))
}

func TestDispatch_Stderr(t *testing.T) {
	var errout bytes.Buffer
	bin := script(t, `echo oops >&2`)

	err := Dispatch(context.Background(), bin, "deploy", "setup", WithStderr(&errout))

	require.NoError(t, err)
	assert.Equal(t, "oops\n", errout.String())
}
