package trace

import (
	"os"
	"testing"
)

// TestStartEndNoopWithoutTrace checks that spans are safe to open/close when
// TRACE is unset (the default for `go test`), matching trace.rs's behavior
// of being a true no-op absent the env var.
func TestStartEndNoopWithoutTrace(t *testing.T) {
	if os.Getenv("TRACE") != "" {
		t.Skip("TRACE is set in this environment; the no-op path isn't exercised")
	}
	h := Start("unit_test_span")
	if h != nil {
		t.Fatalf("Start returned a non-nil handle with TRACE unset")
	}
	h.End() // must not panic on a nil handle
}

func TestExportProfileNoopWithoutPprofMode(t *testing.T) {
	if os.Getenv("TRACE") == "pprof" {
		t.Skip("TRACE=pprof is set in this environment; the no-op path isn't exercised")
	}
	path := t.TempDir() + "/mirage.pprof"
	if err := ExportProfile(path); err != nil {
		t.Fatalf("ExportProfile: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("ExportProfile wrote a file when TRACE != pprof")
	}
}
