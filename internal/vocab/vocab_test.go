package vocab

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// tableBytes renders tokens into the .tiktoken line format with ranks
// assigned in order.
func tableBytes(tokens ...string) []byte {
	var sb strings.Builder
	for i, tok := range tokens {
		fmt.Fprintf(&sb, "%s %d\n", base64.StdEncoding.EncodeToString([]byte(tok)), i)
	}
	return []byte(sb.String())
}

func sumOf(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ---------------------------------------------------------------------------
// ParseRanks
// ---------------------------------------------------------------------------

func TestParseRanks_Valid(t *testing.T) {
	ranks, err := ParseRanks(tableBytes("a", "b", "ab"))
	if err != nil {
		t.Fatalf("ParseRanks: %v", err)
	}
	if len(ranks) != 3 {
		t.Fatalf("got %d ranks, want 3", len(ranks))
	}
	if ranks["ab"] != 2 {
		t.Fatalf("rank(ab) = %d, want 2", ranks["ab"])
	}
}

func TestParseRanks_Invalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing rank", "YQ==\n"},
		{"bad base64", "!!! 0\n"},
		{"bad rank", "YQ== zero\n"},
		{"negative rank", "YQ== -1\n"},
		{"duplicate token", "YQ== 0\nYQ== 1\n"},
		{"duplicate rank", "YQ== 0\nYg== 0\n"},
		{"empty token", " 0\n"},
		{"empty table", ""},
	}

	for _, tc := range cases {
		if _, err := ParseRanks([]byte(tc.data)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

// ---------------------------------------------------------------------------
// Fetch
// ---------------------------------------------------------------------------

func TestFetch_DownloadsVerifiesAndCaches(t *testing.T) {
	table := tableBytes("a", "b", "ab")
	sum := sumOf(table)

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = w.Write(table)
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	opts := FetchOptions{URL: srv.URL, SHA256: sum, CacheDir: cacheDir, Client: srv.Client()}

	path, err := Fetch(context.Background(), opts)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != CachePath(cacheDir, sum) {
		t.Fatalf("cached at %q, want %q", path, CachePath(cacheDir, sum))
	}
	if _, ok := Cached(cacheDir, sum); !ok {
		t.Fatal("expected verified cache entry after fetch")
	}

	// Second fetch is served from the cache.
	if _, err := Fetch(context.Background(), opts); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if requests != 1 {
		t.Fatalf("server hit %d times, want 1", requests)
	}
}

func TestFetch_ChecksumMismatchRejectsTable(t *testing.T) {
	table := tableBytes("a")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tampered content"))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	_, err := Fetch(context.Background(), FetchOptions{
		URL: srv.URL, SHA256: sumOf(table), CacheDir: cacheDir, Client: srv.Client(),
	})
	if err == nil {
		t.Fatal("expected checksum mismatch error")
	}

	// Nothing may be published into the cache, not even a temp leftover.
	entries, readErr := os.ReadDir(cacheDir)
	if readErr != nil {
		t.Fatalf("read cache dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("cache dir not clean after failed fetch: %v", entries)
	}
}

func TestFetch_OfflineWithoutCache(t *testing.T) {
	_, err := Fetch(context.Background(), FetchOptions{
		URL:      "https://example.invalid/table.tiktoken",
		SHA256:   sumOf([]byte("x")),
		CacheDir: t.TempDir(),
		Offline:  true,
	})
	if err == nil {
		t.Fatal("expected error in offline mode with an empty cache")
	}
}

func TestFetch_OfflineWithVerifiedCache(t *testing.T) {
	table := tableBytes("a", "b")
	sum := sumOf(table)
	cacheDir := t.TempDir()
	if err := os.WriteFile(CachePath(cacheDir, sum), table, 0o644); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	path, err := Fetch(context.Background(), FetchOptions{
		URL:      "https://example.invalid/table.tiktoken",
		SHA256:   sum,
		CacheDir: cacheDir,
		Offline:  true,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if filepath.Dir(path) != cacheDir {
		t.Fatalf("path %q outside cache dir", path)
	}
}

func TestFetch_CorruptedCacheEntryIsRefetched(t *testing.T) {
	table := tableBytes("a", "b")
	sum := sumOf(table)

	cacheDir := t.TempDir()
	if err := os.WriteFile(CachePath(cacheDir, sum), []byte("rotten"), 0o644); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(table)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), FetchOptions{
		URL: srv.URL, SHA256: sum, CacheDir: cacheDir, Client: srv.Client(),
	}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, ok := Cached(cacheDir, sum); !ok {
		t.Fatal("corrupted entry was not replaced by a verified copy")
	}
}

func TestFetch_RejectsMalformedPin(t *testing.T) {
	_, err := Fetch(context.Background(), FetchOptions{
		URL: "https://example.invalid/t", SHA256: "short", CacheDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for malformed pinned checksum")
	}
}

func TestRanks_EndToEnd(t *testing.T) {
	table := tableBytes("a", "b", "ab")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(table)
	}))
	defer srv.Close()

	ranks, err := Ranks(context.Background(), FetchOptions{
		URL: srv.URL, SHA256: sumOf(table), CacheDir: t.TempDir(), Client: srv.Client(),
	})
	if err != nil {
		t.Fatalf("Ranks: %v", err)
	}
	if ranks["a"] != 0 || ranks["b"] != 1 || ranks["ab"] != 2 {
		t.Fatalf("unexpected ranks: %v", ranks)
	}
}

func TestHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), FetchOptions{
		URL: srv.URL, SHA256: sumOf([]byte("x")), CacheDir: t.TempDir(), Client: srv.Client(),
	})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
