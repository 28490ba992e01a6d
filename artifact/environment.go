package artifact

import (
	"fmt"
	"os"
)

// Environment is the snapshot of host values that resolution and
// installation depend on. Collecting them into one struct keeps the rest of
// the package a pure function of this data plus filesystem state.
type Environment struct {
	// OS is the host operating system identifier, e.g. "Linux".
	OS string
	// Arch is the host cpu architecture identifier, e.g. "X64".
	Arch string
	// Home is the user profile directory the cache lives under.
	Home string
	// Repo is the upstream repository artifacts are published from,
	// in "owner/name" form.
	Repo string
	// PID uniquifies temporary file names between racing invocations.
	PID int
}

// FromSystem captures the environment the automation platform provides to
// every job step.
func FromSystem() Environment {
	return Environment{
		OS:   os.Getenv("RUNNER_OS"),
		Arch: os.Getenv("RUNNER_ARCH"),
		Home: os.Getenv("HOME"),
		Repo: os.Getenv("GITHUB_REPOSITORY"),
		PID:  os.Getpid(),
	}
}

// Validate fails on the first missing value. A missing value means the URL
// or cache path would be meaningless, so this never defaults silently.
func (e Environment) Validate() error {
	checks := []struct {
		name  string
		value string
	}{
		{"RUNNER_OS", e.OS},
		{"RUNNER_ARCH", e.Arch},
		{"HOME", e.Home},
		{"GITHUB_REPOSITORY", e.Repo},
	}

	for _, check := range checks {
		if check.value == "" {
			return fmt.Errorf("required environment value %s is not set", check.name)
		}
	}

	return nil
}
