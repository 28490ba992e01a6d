package artifact

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// staleAfter is the age past which leftover intermediates from losing
// racers are swept. Anything younger may belong to an in-flight install.
const staleAfter = time.Hour

// Installer populates the binary cache for a resolver.
// Population follows the atomic-install pattern: fetch and decompression
// happen under process-unique temporary names and the rename onto the final
// path is the sole publication point. Racing installers each do the full
// work independently and the last rename wins, which is acceptable because
// every racer fetches the identical artifact.
type Installer struct {
	resolver *Resolver
}

// NewInstaller builds an installer on top of a resolver.
func NewInstaller(resolver *Resolver) *Installer {
	return &Installer{resolver: resolver}
}

// Ensure guarantees a complete, executable binary at the resolver's
// BinaryPath. If the binary is already installed this is a cheap stat and
// nothing else happens; otherwise the artifact is fetched, decompressed and
// renamed into place. No retries are attempted here, the outer automation
// platform owns timeout and retry policy.
func (i *Installer) Ensure() error {
	target := i.resolver.BinaryPath()

	if _, err := os.Stat(target); err == nil {
		return nil
	}

	logstep(fmt.Sprintf("installing %s", ToolName))

	if err := os.MkdirAll(i.resolver.CacheDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", i.resolver.CacheDir(), err)
	}

	compressed := fmt.Sprintf("%s.%d.zst", target, i.resolver.env.PID)
	staged := fmt.Sprintf("%s.%d.tmp", target, i.resolver.env.PID)

	if err := download(i.resolver.URL(), compressed); err != nil {
		return fmt.Errorf("failed to fetch artifact: %w", err)
	}

	if err := decompress(compressed, staged); err != nil {
		return fmt.Errorf("failed to decompress artifact: %w", err)
	}

	if err := os.Remove(compressed); err != nil {
		return fmt.Errorf("failed to remove compressed artifact: %w", err)
	}

	if err := os.Chmod(staged, 0o755); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", staged, err)
	}

	if err := os.Rename(staged, target); err != nil {
		return fmt.Errorf("failed to install binary at %s: %w", target, err)
	}

	i.sweep()

	return nil
}

// download fetches a remote file to a local destination.
// Any non-success response is an error.
func download(url, destination string) (err error) {
	logdetail(fmt.Sprintf("downloading %s to %s", url, destination))

	start := time.Now()
	defer func() {
		logresult(time.Since(start).Round(time.Millisecond), err)
	}()

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("received unexpected response when downloading artifact: http%d", resp.StatusCode)
	}

	data, finish := progress(resp.Body, resp.ContentLength)
	defer finish()

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destination, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, data); err != nil {
		return fmt.Errorf("failed to copy data to file %s: %w", destination, err)
	}

	return nil
}

// decompress expands a zstd-compressed file into a destination file.
func decompress(compressed, destination string) (err error) {
	logdetail(fmt.Sprintf("decompressing %s", compressed))

	start := time.Now()
	defer func() {
		logresult(time.Since(start).Round(time.Millisecond), err)
	}()

	file, err := os.Open(compressed)
	if err != nil {
		return fmt.Errorf("failed to open compressed file: %w", err)
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer decoder.Close()

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destination, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, decoder); err != nil {
		return fmt.Errorf("failed to copy data to file %s: %w", destination, err)
	}

	return nil
}

// sweep removes stale intermediates orphaned by invocations that lost the
// install race. Only files old enough to not belong to an in-flight install
// are touched; the published binary never matches the patterns. Best effort,
// errors are ignored.
func (i *Installer) sweep() {
	for _, pattern := range []string{"*.zst", "*.tmp"} {
		leftovers, err := filepath.Glob(i.resolver.BinaryPath() + "." + pattern)
		if err != nil {
			continue
		}

		for _, leftover := range leftovers {
			info, err := os.Stat(leftover)
			if err != nil || time.Since(info.ModTime()) < staleAfter {
				continue
			}
			_ = os.Remove(leftover)
		}
	}
}
