// Package vocab acquires BPE rank tables: content-verified HTTP fetch,
// atomic local caching, and parsing of the .tiktoken line format.
package vocab

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FetchOptions pins down one rank table: its URL and the expected sha256 of
// its contents. A table that fails verification is rejected.
type FetchOptions struct {
	URL      string
	SHA256   string
	CacheDir string
	Client   *http.Client
	Offline  bool
	Logger   *slog.Logger
}

// DefaultCacheDir returns the per-user cache directory for rank tables.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("user cache dir: %w", err)
	}
	return filepath.Join(base, "quicktoken"), nil
}

// CachePath returns the content-addressed location for a table with the
// given checksum.
func CachePath(cacheDir, sum string) string {
	return filepath.Join(cacheDir, strings.ToLower(sum)+".tiktoken")
}

// Cached reports whether a verified copy of the table exists locally. The
// file is re-hashed; a corrupted cache entry does not count as present.
func Cached(cacheDir, sum string) (string, bool) {
	path := CachePath(cacheDir, sum)
	actual, err := fileSHA256(path)
	if err != nil {
		return path, false
	}
	return path, actual == strings.ToLower(sum)
}

// Fetch ensures a verified copy of the table is cached locally and returns
// its path. The cache write is atomic (write to a temp file, then rename),
// so a failed or interrupted fetch never corrupts a previously valid entry.
func Fetch(ctx context.Context, opts FetchOptions) (string, error) {
	if opts.URL == "" {
		return "", fmt.Errorf("table url is required")
	}
	if !isSHA256Hex(opts.SHA256) {
		return "", fmt.Errorf("pinned sha256 for %s is malformed", opts.URL)
	}
	if opts.CacheDir == "" {
		return "", fmt.Errorf("cache dir is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	expected := strings.ToLower(opts.SHA256)
	path, ok := Cached(opts.CacheDir, expected)
	if ok {
		logger.Debug("vocabulary cache hit", "path", path)
		return path, nil
	}

	if opts.Offline {
		return "", fmt.Errorf("table %s not cached and offline mode is set", filepath.Base(path))
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	logger.Info("fetching vocabulary table", "url", opts.URL)
	actual, err := download(ctx, client, opts.URL, path, expected)
	if err != nil {
		return "", err
	}
	logger.Info("vocabulary table verified", "sha256", actual, "path", path)
	return path, nil
}

// Ranks fetches (or reuses) the table and parses it into a byte-string to
// rank mapping.
func Ranks(ctx context.Context, opts FetchOptions) (map[string]int, error) {
	path, err := Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cached table: %w", err)
	}
	ranks, err := ParseRanks(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return ranks, nil
}

func download(ctx context.Context, client *http.Client, url, outPath, expected string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch table %s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), filepath.Base(outPath)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	h := sha256.New()
	_, err = io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("download table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if actual != expected {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("checksum mismatch for %s: expected %s got %s", url, expected, actual)
	}

	if err := os.Rename(tmpName, outPath); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("move table into place: %w", err)
	}
	return actual, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file for checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func isSHA256Hex(v string) bool {
	if len(v) != 64 {
		return false
	}
	for _, c := range v {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
