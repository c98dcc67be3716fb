// Package scan implements the three-stage streaming pipeline at the core of
// scour: a pool of file readers, a line matcher, and a result sink, joined
// by bounded queues.
//
// Results flow through the pipeline as plain structs whose Err field marks
// the error variant. A file contributes either exactly one error result or
// a sequence of line results, never both, and every consumer handles both
// variants explicitly.
package scan

import (
	"context"
	"time"
)

// ReadResult is one unit of reader output: a single line of a file, or,
// when Err is set, the only result that file will ever produce.
type ReadResult struct {
	Path string
	Line int // 1-based, strictly increasing within a file; 0 when Err is set
	Text string
	Err  error
}

// MatchResult is one unit of matcher output: a matched line carrying the
// leftmost occurrence as byte offsets into Text, or a read error forwarded
// unchanged from the reader stage.
type MatchResult struct {
	Path  string
	Line  int
	Text  string
	Start int
	End   int
	Err   error
}

// Stats aggregates the counters of one pipeline run.
type Stats struct {
	FilesScanned int64
	FilesErrored int64
	FilesBinary  int64
	LinesRead    int64
	Matches      int64
	Elapsed      time.Duration
}

// Source produces the file paths a run scans. Implementations send absolute
// paths on out and return once discovery is finished or ctx is cancelled.
// The channel belongs to the pipeline; Paths must not close it.
type Source interface {
	Paths(ctx context.Context, out chan<- string) error
}

// Emitter receives results in arrival order, from a single goroutine.
// A returned error aborts the run.
type Emitter interface {
	MatchLine(path string, line int, text string, start, end int) error
	FileError(path string, err error) error
}

// Logger receives scan diagnostics.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

type noopLogger struct{}

func (noopLogger) LogDebug(string) {}
func (noopLogger) LogWarn(string)  {}
