// Package display renders scan results for the terminal.
//
// A single Printer receives every result of a run and writes one line per
// result: matches as path:line:text, and per-file failures as path: message.
// Writes are serialized internally, so results arriving from the pipeline
// can never interleave mid-line.
//
// # Printing Results
//
// Construct one Printer per run and hand it every result in arrival order:
//
//	printer := display.NewPrinter(os.Stdout, root, display.IsTerminal(os.Stdout))
//	if err := printer.MatchLine(path, 42, text, start, end); err != nil {
//	    // stdout is gone, abort the run
//	}
//	printer.FileError(path, err)
//
// Paths under the search root are shown relative to it; anything else is
// shown verbatim.
//
// # Colors
//
// When color is enabled the matched span is highlighted in bold red, the
// path in magenta, and the line number in green. Color should only be
// requested when the target writer is a terminal:
//
//	colorEnabled := !cfg.NoColor && display.IsTerminal(out)
//
// Test buffers and pipes are never treated as terminals, so redirected
// output stays plain and parseable.
package display
