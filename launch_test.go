package stagehand

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand-ci/stagehand/artifact"
)

var annotationPattern = regexp.MustCompile(`^::error title=stagehand::[^\r\n]+\n$`)

// launcherFixture wires a launcher against a test artifact server and a
// fresh cache, returning the launcher and the annotation buffer.
func launcherFixture(t *testing.T, payload string) (*Launcher, *bytes.Buffer) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures are not portable to windows")
	}

	encoder, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := encoder.EncodeAll([]byte("#!/bin/sh\n"+payload), nil)

	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.Write(compressed)
			},
		),
	)
	t.Cleanup(server.Close)

	env := artifact.Environment{
		OS:   "Linux",
		Arch: "X64",
		Home: t.TempDir(),
		Repo: "acme/native-actions",
		PID:  os.Getpid(),
	}

	var annotations bytes.Buffer
	launcher := NewLauncher(
		server.URL,
		WithEnvironment(env),
		WithAnnotationOutput(&annotations),
	)

	return launcher, &annotations
}

func TestLauncher_Launch(t *testing.T) {
	launcher, annotations := launcherFixture(t, "exit 0")

	code := launcher.Launch(context.Background(), "deploy", "setup")

	assert.Equal(t, 0, code)
	assert.Empty(t, annotations.String())
}

func TestLauncher_Launch_PassesThroughExitStatus(t *testing.T) {
	launcher, annotations := launcherFixture(t, "exit 3")

	code := launcher.Launch(context.Background(), "deploy", "setup")

	// the dispatched binary's own result, relayed without an annotation
	assert.Equal(t, 3, code)
	assert.Empty(t, annotations.String())
}

func TestLauncher_Launch_FetchFailure(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		),
	)
	defer server.Close()

	env := artifact.Environment{
		OS:   "Linux",
		Arch: "X64",
		Home: t.TempDir(),
		Repo: "acme/native-actions",
		PID:  os.Getpid(),
	}

	var annotations bytes.Buffer
	launcher := NewLauncher(server.URL, WithEnvironment(env), WithAnnotationOutput(&annotations))

	code := launcher.Launch(context.Background(), "deploy", "setup")

	assert.Equal(t, 1, code)
	assert.Regexp(t, annotationPattern, annotations.String())
	assert.Equal(t, 1, strings.Count(annotations.String(), "::error"))
}

func TestLauncher_Launch_MissingEnvironment(t *testing.T) {
	home := t.TempDir()
	env := artifact.Environment{Home: home} // os, arch and repo missing

	var annotations bytes.Buffer
	launcher := NewLauncher("abc123", WithEnvironment(env), WithAnnotationOutput(&annotations))

	code := launcher.Launch(context.Background(), "deploy", "setup")

	assert.Equal(t, 1, code)
	assert.Regexp(t, annotationPattern, annotations.String())

	// resolution failed before any filesystem activity
	assert.NoDirExists(t, home+"/.cache/stagehand")
}

func TestLauncher_Launch_UsesCachedBinary(t *testing.T) {
	launcher, annotations := launcherFixture(t, "exit 0")

	require.Equal(t, 0, launcher.Launch(context.Background(), "deploy", "setup"))
	require.Equal(t, 0, launcher.Launch(context.Background(), "deploy", "teardown"))

	assert.Empty(t, annotations.String())
}
