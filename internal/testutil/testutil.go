// Package testutil provides shared skip helpers for integration tests.
//
// Each helper calls t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    testutil.RequireVocabHost(t)
//	    ...
//	}
package testutil

import (
	"net"
	"testing"
	"time"
)

// vocabHost is the host serving the published vocabulary tables.
const vocabHost = "openaipublic.blob.core.windows.net:443"

// RequireVocabHost skips the test if the vocabulary table host is not
// reachable, so table-fetching integration tests pass over cleanly in
// offline environments.
func RequireVocabHost(tb testing.TB) {
	tb.Helper()

	conn, err := net.DialTimeout("tcp", vocabHost, 5*time.Second)
	if err != nil {
		tb.Skipf("vocabulary host %s not reachable: %v", vocabHost, err)
	}
	_ = conn.Close()
}
