package artifact

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSystem(t *testing.T) {
	t.Setenv("RUNNER_OS", "Linux")
	t.Setenv("RUNNER_ARCH", "ARM64")
	t.Setenv("HOME", "/home/runner")
	t.Setenv("GITHUB_REPOSITORY", "acme/native-actions")

	env := FromSystem()

	assert.Equal(t, "Linux", env.OS)
	assert.Equal(t, "ARM64", env.Arch)
	assert.Equal(t, "/home/runner", env.Home)
	assert.Equal(t, "acme/native-actions", env.Repo)
	assert.Equal(t, os.Getpid(), env.PID)
}

func TestEnvironment_Validate(t *testing.T) {
	require.NoError(t, testenv().Validate())
}

func TestEnvironment_Validate_ReportsFirstMissing(t *testing.T) {
	env := testenv()
	env.OS = ""
	env.Repo = ""

	err := env.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUNNER_OS")
}
