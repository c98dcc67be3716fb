package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Printer renders results to a writer. Paths under the search root are
// shown relative to it; anything else is shown verbatim.
type Printer struct {
	w       io.Writer
	root    string
	colored bool
	mu      sync.Mutex
}

// NewPrinter creates a Printer writing to w. Styling is applied only when
// colorEnabled is set; callers decide based on the target being a TTY.
func NewPrinter(w io.Writer, root string, colorEnabled bool) *Printer {
	return &Printer{
		w:       w,
		root:    root,
		colored: colorEnabled,
	}
}

// MatchLine renders one matched line. The span is clamped to the line so a
// malformed result cannot slice out of range.
func (p *Printer) MatchLine(path string, line int, text string, start, end int) error {
	shown := p.displayPath(path)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.colored {
		_, err := fmt.Fprintf(p.w, "%s:%d:%s\n", shown, line, text)
		return err
	}

	if start < 0 {
		start = 0
	}
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	if end < start {
		end = start
	}

	highlighted := text[:start] +
		color.New(color.FgRed, color.Bold).Sprint(text[start:end]) +
		text[end:]

	_, err := fmt.Fprintf(p.w, "%s:%s:%s\n",
		color.New(color.FgMagenta).Sprint(shown),
		color.New(color.FgGreen).Sprint(line),
		highlighted,
	)
	return err
}

// FileError renders a per-file failure inline among the results.
func (p *Printer) FileError(path string, cause error) error {
	shown := p.displayPath(path)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.colored {
		_, err := fmt.Fprintf(p.w, "%s: %v\n", shown, cause)
		return err
	}

	_, err := fmt.Fprintf(p.w, "%s: %s\n",
		color.New(color.FgMagenta).Sprint(shown),
		color.New(color.FgRed).Sprint(cause.Error()),
	)
	return err
}

// displayPath shortens path to be relative to the search root when it lies
// underneath it.
func (p *Printer) displayPath(path string) string {
	if p.root == "" {
		return path
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
