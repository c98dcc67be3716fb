package scan

import (
	"context"
	"fmt"
	"sync/atomic"
)

// runSink is the final stage: it hands every result to the emitter in
// arrival order. The first emission failure cancels upstream production;
// the remaining stream is then drained so every stage can finish its close
// protocol instead of blocking on a full queue.
func (p *Pipeline) runSink(in <-chan MatchResult, cancel context.CancelFunc) error {
	var emitErr error

	for m := range in {
		if emitErr != nil {
			continue
		}

		var err error
		if m.Err != nil {
			err = p.emitter.FileError(m.Path, m.Err)
		} else {
			atomic.AddInt64(&p.matches, 1)
			err = p.emitter.MatchLine(m.Path, m.Line, m.Text, m.Start, m.End)
		}

		if err != nil {
			emitErr = fmt.Errorf("emit failed: %w", err)
			cancel()
		}
	}

	return emitErr
}
