// Package doctor provides environment preflight checks for quicktoken.
package doctor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// Table describes one vocabulary table to check in the local cache.
type Table struct {
	Name   string
	SHA256 string
}

// CachedFunc reports whether a verified copy of a table checksum exists and
// where it lives.
type CachedFunc func(cacheDir, sum string) (string, bool)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// CacheDir is the vocabulary cache directory to probe.
	CacheDir string
	// Tables are the vocabulary tables whose cache state is reported.
	Tables []Table
	// Cached checks the cache for a verified table copy.
	Cached CachedFunc
	// Offline marks missing tables as failures instead of advisories,
	// since they cannot be fetched on demand.
	Offline bool
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	if err := checkCacheDirWritable(cfg.CacheDir); err != nil {
		res.fail(fmt.Sprintf("cache dir %q: %v", cfg.CacheDir, err))
		fmt.Fprintf(w, "%s cache dir %s: %v\n", FailMark, cfg.CacheDir, err)
	} else {
		fmt.Fprintf(w, "%s cache dir %s: writable\n", PassMark, cfg.CacheDir)
	}

	for _, table := range cfg.Tables {
		path, ok := cfg.Cached(cfg.CacheDir, table.SHA256)
		switch {
		case ok:
			fmt.Fprintf(w, "%s table %s: cached (%s)\n", PassMark, table.Name, path)
		case cfg.Offline:
			res.fail(fmt.Sprintf("table %s: not cached and offline mode is set", table.Name))
			fmt.Fprintf(w, "%s table %s: not cached (offline)\n", FailMark, table.Name)
		default:
			fmt.Fprintf(w, "%s table %s: not cached; will be fetched on first use\n", PassMark, table.Name)
		}
	}

	return res
}

func checkCacheDirWritable(dir string) error {
	if dir == "" {
		return fmt.Errorf("not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	probe, err := os.CreateTemp(dir, "doctor-*")
	if err != nil {
		return fmt.Errorf("write probe: %w", err)
	}
	name := probe.Name()
	if err := probe.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("close probe: %w", err)
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("remove probe %s: %w", filepath.Base(name), err)
	}
	return nil
}
