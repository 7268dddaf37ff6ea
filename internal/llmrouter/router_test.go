package llmrouter

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func writeFakeBackend(t *testing.T, dir, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake backend scripts are POSIX shell only")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake backend: %v", err)
	}
}

func withFakeBackendsOnPath(t *testing.T, dir string) {
	t.Helper()
	old := os.Getenv("PATH")
	os.Setenv("PATH", dir+string(os.PathListSeparator)+old)
	t.Cleanup(func() { os.Setenv("PATH", old) })
}

func TestBestBackendFailsWhenNoneAvailable(t *testing.T) {
	dir := t.TempDir()
	// PATH holds only the empty temp dir, so no real backend can resolve.
	t.Setenv("PATH", dir)

	r := New()
	_, err := r.BestBackend(context.Background())
	if err == nil {
		t.Fatal("expected ErrBackendUnavailable")
	}
}

func TestAnalyzeReturnsEmptyFindingsOnNonJSONReply(t *testing.T) {
	dir := t.TempDir()
	writeFakeBackend(t, dir, "claude", `cat >/dev/null; echo "just some prose, no json here"`)
	withFakeBackendsOnPath(t, dir)

	r := New()
	resp, err := r.Analyze(context.Background(), "analyze this", "analysis", "claude", 2*time.Second)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !resp.Success {
		t.Errorf("non-JSON reply should still report success=true, got error=%q", resp.Error)
	}
	if len(resp.Findings) != 0 || resp.Done {
		t.Errorf("expected empty findings and done=false for unparseable reply")
	}
}

func TestAnalyzeParsesCodeFencedJSON(t *testing.T) {
	dir := t.TempDir()
	writeFakeBackend(t, dir, "claude", `cat >/dev/null
cat <<'EOF'
`+"```json"+`
{"findings": [{"file": "a.py", "line": 1, "category": "dead_code", "description": "d", "severity": "low", "suggestion": "s"}], "done": true}
`+"```"+`
EOF
`)
	withFakeBackendsOnPath(t, dir)

	r := New()
	resp, err := r.Analyze(context.Background(), "analyze this", "analysis", "claude", 2*time.Second)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !resp.Success || !resp.Done || len(resp.Findings) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Findings[0].File != "a.py" {
		t.Errorf("file = %s, want a.py", resp.Findings[0].File)
	}
}

func TestAnalyzeTimesOutAndKillsProcess(t *testing.T) {
	dir := t.TempDir()
	writeFakeBackend(t, dir, "claude", `if [ "$1" = "--version" ]; then exit 0; fi
cat >/dev/null; sleep 10`)
	withFakeBackendsOnPath(t, dir)

	r := New()
	start := time.Now()
	resp, err := r.Analyze(context.Background(), "x", "analysis", "claude", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false on timeout")
	}
	if time.Since(start) > 3*time.Second {
		t.Error("Analyze took too long to return after a short timeout")
	}
}

func TestAnalyzeSurfacesStderrOnNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	writeFakeBackend(t, dir, "claude", `if [ "$1" = "--version" ]; then exit 0; fi
cat >/dev/null; echo "backend exploded: missing API key" >&2; exit 1`)
	withFakeBackendsOnPath(t, dir)

	r := New()
	resp, err := r.Analyze(context.Background(), "x", "analysis", "claude", 2*time.Second)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false on non-zero exit")
	}
	if resp.Error != "backend exploded: missing API key" {
		t.Errorf("Error = %q, want captured stderr, not the exec error", resp.Error)
	}
}

func TestPinnedUnavailableBackendFails(t *testing.T) {
	dir := t.TempDir()
	withFakeBackendsOnPath(t, dir)

	r := New()
	_, err := r.Analyze(context.Background(), "x", "analysis", "gemini", time.Second)
	if err == nil {
		t.Fatal("expected ErrBackendUnavailable for a pinned, unavailable backend")
	}
}
