package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harrison/scour/internal/pattern"
	"golang.org/x/text/encoding"
)

// DefaultReaders is the reader pool size when Options.Readers is unset.
const DefaultReaders = 8

// Queue capacities. Bounded queues give the pipeline back-pressure: when a
// stage falls behind, its producers block on the full queue instead of
// buffering the whole tree in memory.
const (
	pathQueueCap  = 64
	lineQueueCap  = 256
	matchQueueCap = 128
)

// Options configures a pipeline run.
type Options struct {
	// Readers is the number of concurrent file readers. Zero selects
	// DefaultReaders.
	Readers int

	// Encoding decodes every file when set. Nil reads bytes as they are.
	Encoding encoding.Encoding

	// Detect sniffs a per-file charset when no explicit Encoding is set.
	Detect bool
}

// Pipeline wires the three scan stages over bounded queues. A Pipeline is
// built once and may run several scans, one at a time.
type Pipeline struct {
	matcher pattern.Matcher
	emitter Emitter
	log     Logger
	opts    Options

	filesScanned int64
	filesErrored int64
	filesBinary  int64
	linesRead    int64
	matches      int64
}

// New constructs a Pipeline. The matcher and emitter are required; log may
// be nil to disable diagnostics.
func New(matcher pattern.Matcher, emitter Emitter, log Logger, opts Options) *Pipeline {
	if matcher == nil {
		panic("matcher cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if log == nil {
		log = noopLogger{}
	}

	return &Pipeline{
		matcher: matcher,
		emitter: emitter,
		log:     log,
		opts:    opts,
	}
}

// Run scans every path the source produces and reports the run's counters.
//
// Stage shutdown propagates transitively: the source goroutine closes the
// path queue when discovery ends, the reader pool closes the line queue
// once every worker has finished, the matcher closes the match queue when
// its input is exhausted, and Run returns once the sink has drained the
// match queue and the source has reported.
//
// An emitter failure is fatal for the run: production is cancelled, the
// queues drain, and the failure is returned. Per-file read errors are not
// fatal; they flow through the queues as results.
func (p *Pipeline) Run(ctx context.Context, source Source) (Stats, error) {
	if source == nil {
		return Stats{}, fmt.Errorf("source cannot be nil")
	}

	start := time.Now()
	p.resetCounters()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths := make(chan string, pathQueueCap)
	lines := make(chan ReadResult, lineQueueCap)
	matches := make(chan MatchResult, matchQueueCap)

	walkErr := make(chan error, 1)
	go func() {
		defer close(paths)
		walkErr <- source.Paths(runCtx, paths)
	}()

	readers := p.opts.Readers
	if readers <= 0 {
		readers = DefaultReaders
	}

	var rg sync.WaitGroup
	for i := 0; i < readers; i++ {
		rg.Add(1)
		go func() {
			defer rg.Done()
			for path := range paths {
				if runCtx.Err() != nil {
					continue // drain without opening once cancelled
				}
				p.readFile(runCtx, path, lines)
			}
		}()
	}
	go func() {
		rg.Wait()
		close(lines)
	}()

	go func() {
		defer close(matches)
		p.runMatcher(runCtx, lines, matches)
	}()

	emitErr := p.runSink(matches, cancel)
	werr := <-walkErr

	stats := Stats{
		FilesScanned: atomic.LoadInt64(&p.filesScanned),
		FilesErrored: atomic.LoadInt64(&p.filesErrored),
		FilesBinary:  atomic.LoadInt64(&p.filesBinary),
		LinesRead:    atomic.LoadInt64(&p.linesRead),
		Matches:      atomic.LoadInt64(&p.matches),
		Elapsed:      time.Since(start),
	}

	if emitErr != nil {
		return stats, emitErr
	}
	if werr != nil && !errors.Is(werr, context.Canceled) && !errors.Is(werr, context.DeadlineExceeded) {
		return stats, fmt.Errorf("walk failed: %w", werr)
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (p *Pipeline) resetCounters() {
	atomic.StoreInt64(&p.filesScanned, 0)
	atomic.StoreInt64(&p.filesErrored, 0)
	atomic.StoreInt64(&p.filesBinary, 0)
	atomic.StoreInt64(&p.linesRead, 0)
	atomic.StoreInt64(&p.matches, 0)
}
