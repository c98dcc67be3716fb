package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/harrison/scour/internal/pattern"
)

// collectReads runs the reader stage against a single file and returns its
// results along with the pipeline whose counters it updated.
func collectReads(t *testing.T, opts Options, path string) ([]ReadResult, *Pipeline) {
	t.Helper()

	m, err := pattern.NewRegexp(".", false)
	if err != nil {
		t.Fatalf("Failed to build matcher: %v", err)
	}
	p := New(m, &captureEmitter{}, nil, opts)

	out := make(chan ReadResult, 4096)
	p.readFile(context.Background(), path, out)
	close(out)

	var results []ReadResult
	for r := range out {
		results = append(results, r)
	}
	return results, p
}

func TestReadFileNumbersLines(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "plain.txt")
	mustWrite(t, path, "alpha\nbeta\ngamma\n")

	results, p := collectReads(t, Options{}, path)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	wantTexts := []string{"alpha", "beta", "gamma"}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result %d carries error %v", i, r.Err)
		}
		if r.Path != path {
			t.Errorf("result %d path = %q, want %q", i, r.Path, path)
		}
		if r.Line != i+1 {
			t.Errorf("result %d line = %d, want %d", i, r.Line, i+1)
		}
		if r.Text != wantTexts[i] {
			t.Errorf("result %d text = %q, want %q", i, r.Text, wantTexts[i])
		}
	}

	if n := atomic.LoadInt64(&p.linesRead); n != 3 {
		t.Errorf("linesRead = %d, want 3", n)
	}
	if n := atomic.LoadInt64(&p.filesScanned); n != 1 {
		t.Errorf("filesScanned = %d, want 1", n)
	}
}

func TestReadFileStripsCarriageReturns(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "dos.txt")
	mustWrite(t, path, "alpha\r\nbeta\r\n")

	results, _ := collectReads(t, Options{}, path)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Text != "alpha" || results[1].Text != "beta" {
		t.Errorf("texts = %q, %q, want carriage returns stripped", results[0].Text, results[1].Text)
	}
}

func TestReadFileWithoutTrailingNewline(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "chopped.txt")
	mustWrite(t, path, "alpha\nbeta")

	results, _ := collectReads(t, Options{}, path)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[1].Text != "beta" {
		t.Errorf("last text = %q, want %q", results[1].Text, "beta")
	}
}

func TestReadFileMissing(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "missing.txt")

	results, p := collectReads(t, Options{}, path)
	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly one error result", len(results))
	}
	if results[0].Err == nil {
		t.Fatal("result error is nil, want open failure")
	}
	if results[0].Path != path {
		t.Errorf("result path = %q, want %q", results[0].Path, path)
	}
	if results[0].Line != 0 {
		t.Errorf("result line = %d, want 0", results[0].Line)
	}
	if n := atomic.LoadInt64(&p.filesErrored); n != 1 {
		t.Errorf("filesErrored = %d, want 1", n)
	}
}

func TestReadFileSkipsBinary(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bin")
	raw := []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01, 0x02, 0x03, '\n', 'x'}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}

	results, p := collectReads(t, Options{}, path)
	if len(results) != 0 {
		t.Fatalf("got %d results, want none for a binary file", len(results))
	}
	if n := atomic.LoadInt64(&p.filesBinary); n != 1 {
		t.Errorf("filesBinary = %d, want 1", n)
	}
	if n := atomic.LoadInt64(&p.filesErrored); n != 0 {
		t.Errorf("filesErrored = %d, want 0", n)
	}
}

func TestReadFileExplicitEncoding(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "latin1.txt")
	if err := os.WriteFile(path, []byte("caf\xe9\nna\xefve\n"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}

	enc, _, err := ResolveEncoding("ISO-8859-1")
	if err != nil {
		t.Fatalf("ResolveEncoding() error = %v", err)
	}

	results, _ := collectReads(t, Options{Encoding: enc}, path)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Text != "café" {
		t.Errorf("line 1 = %q, want %q", results[0].Text, "café")
	}
	if results[1].Text != "naïve" {
		t.Errorf("line 2 = %q, want %q", results[1].Text, "naïve")
	}
}

func TestReadFileExplicitEncodingOverridesBinarySniff(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "utf16.txt")
	raw := []byte{'h', 0, 'i', 0, '\n', 0, 'y', 0, 'o', 0, '\n', 0}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}

	enc, _, err := ResolveEncoding("UTF-16LE")
	if err != nil {
		t.Fatalf("ResolveEncoding() error = %v", err)
	}

	results, p := collectReads(t, Options{Encoding: enc}, path)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Text != "hi" || results[1].Text != "yo" {
		t.Errorf("texts = %q, %q, want %q, %q", results[0].Text, results[1].Text, "hi", "yo")
	}
	if n := atomic.LoadInt64(&p.filesBinary); n != 0 {
		t.Errorf("filesBinary = %d, want 0", n)
	}
}

func TestReadFileDetectsCharset(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "detected.txt")
	text := "La journ\xe9e commence au caf\xe9 du mus\xe9e, les habitu\xe9s d\xe9gustent un caf\xe9 serr\xe9.\n" +
		"Apr\xe9s la soir\xe9e d'\xe9t\xe9, le g\xe9rant f\xe9licite les employ\xe9s d\xe9vou\xe9s du caf\xe9.\n"
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}

	results, _ := collectReads(t, Options{Detect: true}, path)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !strings.Contains(results[0].Text, "café") {
		t.Errorf("line 1 = %q, want decoded accents", results[0].Text)
	}
}

func TestReadFileGrowsLineBuffer(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "long.txt")
	long := strings.Repeat("x", 100*1024)
	mustWrite(t, path, long+"\n")

	results, _ := collectReads(t, Options{}, path)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if len(results[0].Text) != 100*1024 {
		t.Errorf("line length = %d, want %d", len(results[0].Text), 100*1024)
	}
}

func TestReadFileOversizedFirstLine(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "huge.txt")
	mustWrite(t, path, strings.Repeat("y", maxLineLen+1))

	results, p := collectReads(t, Options{}, path)
	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly one error result", len(results))
	}
	if results[0].Err == nil {
		t.Fatal("result error is nil, want read failure")
	}
	if n := atomic.LoadInt64(&p.filesErrored); n != 1 {
		t.Errorf("filesErrored = %d, want 1", n)
	}
}

func TestReadFileFaultAfterFirstLine(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tail.txt")
	mustWrite(t, path, "short\n"+strings.Repeat("z", maxLineLen+1))

	results, p := collectReads(t, Options{}, path)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("result error = %v, want the delivered line untouched", results[0].Err)
	}
	if results[0].Text != "short" {
		t.Errorf("text = %q, want %q", results[0].Text, "short")
	}
	if n := atomic.LoadInt64(&p.filesErrored); n != 0 {
		t.Errorf("filesErrored = %d, want 0", n)
	}
}
