package scan

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/text/transform"
)

const (
	// sniffLen is how many leading bytes are inspected for NUL bytes and,
	// in detect mode, for charset detection.
	sniffLen = 8192

	readBufSize = 64 * 1024

	// maxLineLen bounds a single line. Longer lines fail the file's scan.
	maxLineLen = 1 << 20
)

// readFile produces the results of one file: a line result per line, or a
// single error result when the file cannot be opened or its first line
// cannot be read. The handle is released on every path out of here.
func (p *Pipeline) readFile(ctx context.Context, path string, out chan<- ReadResult) {
	f, err := os.Open(path)
	if err != nil {
		atomic.AddInt64(&p.filesErrored, 1)
		sendResult(ctx, out, ReadResult{Path: path, Err: err})
		return
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, readBufSize)

	prefix, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		atomic.AddInt64(&p.filesErrored, 1)
		sendResult(ctx, out, ReadResult{Path: path, Err: fmt.Errorf("read failed: %w", err)})
		return
	}

	enc := p.opts.Encoding
	if enc == nil {
		if p.opts.Detect {
			enc = detectCharset(prefix)
		}
		// Without an explicit or detected encoding, a NUL byte in the
		// leading bytes marks the file as binary.
		if enc == nil && bytes.IndexByte(prefix, 0) >= 0 {
			atomic.AddInt64(&p.filesBinary, 1)
			p.log.LogDebug(fmt.Sprintf("skipping binary file %s", path))
			return
		}
	}

	var r io.Reader = br
	if enc != nil {
		p.log.LogDebug(fmt.Sprintf("decoding %s", path))
		r = transform.NewReader(br, enc.NewDecoder())
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, readBufSize), maxLineLen)

	line := 0
	defer func() {
		atomic.AddInt64(&p.linesRead, int64(line))
	}()

	for scanner.Scan() {
		line++
		res := ReadResult{Path: path, Line: line, Text: scanner.Text()}
		if !sendResult(ctx, out, res) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if line == 0 {
			atomic.AddInt64(&p.filesErrored, 1)
			sendResult(ctx, out, ReadResult{Path: path, Err: fmt.Errorf("read failed: %w", err)})
			return
		}
		// Lines already went downstream, so the fault cannot become this
		// file's error result. It is reported through diagnostics instead.
		p.log.LogWarn(fmt.Sprintf("%s: read stopped after line %d: %v", path, line, err))
	}

	atomic.AddInt64(&p.filesScanned, 1)
}

// sendResult delivers one result under back-pressure, giving up when the
// run is cancelled. It reports whether the send happened.
func sendResult(ctx context.Context, out chan<- ReadResult, r ReadResult) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
