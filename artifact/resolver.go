package artifact

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	// ToolName is the name the binary has after installation, and also the
	// cache directory it is installed into.
	ToolName = "stagehand"

	// artifactSuffix is the asset name tail shared by every platform
	// variant; the full asset name is "<platform-tag>-<artifactSuffix>".
	artifactSuffix = "stagehand.zst"
)

// Resolver computes the download URL and cache location for the current
// host. It has no side effects; both outputs are fully determined by the
// environment snapshot and the release reference.
type Resolver struct {
	env Environment
	ref string
}

// NewResolver validates the environment and builds a resolver for the given
// release reference. The reference is baked in when the launcher bundle is
// packaged; it is either a literal base URL under which the assets are
// hosted, a version, or a revision identifying the release tag.
func NewResolver(env Environment, ref string) (*Resolver, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}

	if ref == "" {
		return nil, fmt.Errorf("release reference must be set")
	}

	return &Resolver{env: env, ref: ref}, nil
}

// PlatformTag returns the lowercase "os-arch" string that selects the
// artifact variant built for this host.
func (r *Resolver) PlatformTag() string {
	return strings.ToLower(r.env.OS) + "-" + strings.ToLower(r.env.Arch)
}

// URL returns the address the compressed artifact is fetched from.
func (r *Resolver) URL() string {
	asset := r.PlatformTag() + "-" + artifactSuffix

	if strings.HasPrefix(r.ref, "https://") || strings.HasPrefix(r.ref, "http://") {
		return strings.TrimSuffix(r.ref, "/") + "/" + asset
	}

	return fmt.Sprintf(
		"https://github.com/%s/releases/download/%s/%s",
		r.env.Repo, releaseTag(r.ref), asset,
	)
}

// CacheDir returns the per-host directory the binary is installed into.
func (r *Resolver) CacheDir() string {
	return filepath.Join(r.env.Home, ".cache", ToolName)
}

// BinaryPath returns the final installed location of the binary. The name
// carries no platform or version suffix; only one binary is ever resident
// per host, so a reference bump needs a fresh host cache to take effect.
func (r *Resolver) BinaryPath() string {
	return filepath.Join(r.CacheDir(), ToolName)
}

// releaseTag maps a non-URL release reference to the git tag the bundle was
// published under. Version-style references resolve to a canonical "vX.Y.Z"
// tag; anything else is treated as a revision published under "bin-<ref>".
// The dot requirement keeps all-numeric revisions from parsing as a bare
// major version.
func releaseTag(ref string) string {
	if v := "v" + strings.TrimPrefix(ref, "v"); strings.Contains(ref, ".") && semver.IsValid(v) {
		return semver.Canonical(v)
	}

	return "bin-" + ref
}
