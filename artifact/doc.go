// Package artifact resolves and provisions the platform-specific launcher
// binary for the current host.
//
// Resolution is a pure computation over an [Environment] snapshot and a
// release reference: it yields the download URL for the host's artifact
// variant and the cache location where the installed binary lives. The
// release reference is fixed when the launcher bundle is packaged; it can be
// a literal base URL, a version, or a bare revision.
//
// Installation is idempotent per host. The first invocation downloads the
// compressed artifact, decompresses it and renames it into place; every
// later invocation hits the fast path and touches neither the network nor
// the cache. Concurrent invocations racing on a cold cache are tolerated
// without locking: each racer stages its work under process-unique temporary
// names and the atomic rename onto the final path is the only publication
// point, so no caller ever observes a partially-written binary.
//
// example usage
//
//	resolver, err := artifact.NewResolver(artifact.FromSystem(), releaseRef)
//	if err != nil {
//		return err
//	}
//
//	if err := artifact.NewInstaller(resolver).Ensure(); err != nil {
//		return fmt.Errorf("failed to provision launcher binary: %w", err)
//	}
//
//	exec.Command(resolver.BinaryPath(), "deploy", "setup").Run()
package artifact
