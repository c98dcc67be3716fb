package scan

import "context"

// runMatcher is the middle stage: it applies the shared matcher to every
// line and forwards read errors unchanged, so the sink sees failures inline
// with matches. It runs as a single goroutine, which keeps each file's
// lines in the order the reader produced them.
func (p *Pipeline) runMatcher(ctx context.Context, in <-chan ReadResult, out chan<- MatchResult) {
	for r := range in {
		var m MatchResult

		if r.Err != nil {
			m = MatchResult{Path: r.Path, Err: r.Err}
		} else {
			span, ok := p.matcher.Find(r.Text)
			if !ok {
				continue
			}
			m = MatchResult{
				Path:  r.Path,
				Line:  r.Line,
				Text:  r.Text,
				Start: span.Start,
				End:   span.End,
			}
		}

		select {
		case out <- m:
		case <-ctx.Done():
			return
		}
	}
}
