// Package walker discovers the files a scan will read. It walks a directory
// tree in parallel and filters entries by a file-name glob before any path
// reaches the reader pool, so excluded files are never opened.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// Logger receives walk diagnostics.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

type noopLogger struct{}

func (noopLogger) LogDebug(string) {}
func (noopLogger) LogWarn(string)  {}

// Options controls which files a walk produces.
type Options struct {
	// Root is the directory to search.
	Root string

	// Glob filters files by name. Plain globs apply to the base name;
	// globs containing a separator or ** apply to the root-relative path.
	// Empty matches every file.
	Glob string

	// Recurse descends into subdirectories.
	Recurse bool

	// Exclude lists directory names pruned from the walk.
	Exclude []string

	// Follow resolves symbolic links instead of skipping them.
	Follow bool
}

// Walker produces the regular files under a root that match a glob.
type Walker struct {
	root     string
	glob     string
	pathGlob bool
	recurse  bool
	exclude  map[string]bool
	follow   bool
	log      Logger
}

// New validates opts and builds a Walker. The root must be an existing
// directory and the glob must be well formed; both are checked here so a
// bad invocation fails before any scanning starts.
func New(opts Options, log Logger) (*Walker, error) {
	if opts.Glob != "" && !doublestar.ValidatePattern(opts.Glob) {
		return nil, fmt.Errorf("invalid glob %q", opts.Glob)
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", opts.Root)
	}

	exclude := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		exclude[name] = true
	}

	if log == nil {
		log = noopLogger{}
	}

	return &Walker{
		root:     root,
		glob:     opts.Glob,
		pathGlob: strings.Contains(opts.Glob, "/") || strings.Contains(opts.Glob, "**"),
		recurse:  opts.Recurse,
		exclude:  exclude,
		follow:   opts.Follow,
		log:      log,
	}, nil
}

// Paths walks the tree and sends the absolute path of every matching
// regular file on out. Unreadable entries are logged and skipped rather
// than failing the walk. The channel stays open; its lifecycle belongs to
// the caller. Paths returns once the tree is exhausted or ctx is cancelled.
func (w *Walker) Paths(ctx context.Context, out chan<- string) error {
	conf := fastwalk.Config{Follow: w.follow}

	return fastwalk.Walk(&conf, w.root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			w.log.LogWarn(fmt.Sprintf("skipping %s: %v", p, err))
			return nil
		}

		if d.IsDir() {
			if p == w.root {
				return nil
			}
			if w.exclude[d.Name()] || !w.recurse {
				w.log.LogDebug(fmt.Sprintf("pruning directory %s", p))
				return filepath.SkipDir
			}
			return nil
		}

		typ := d.Type()
		if typ&os.ModeSymlink != 0 && w.follow {
			info, serr := os.Stat(p)
			if serr != nil {
				w.log.LogWarn(fmt.Sprintf("skipping %s: %v", p, serr))
				return nil
			}
			if info.IsDir() {
				// The walk descends into linked directories on its own.
				return nil
			}
			typ = info.Mode().Type()
		}
		if !typ.IsRegular() {
			return nil
		}

		if !w.match(p) {
			return nil
		}

		select {
		case out <- p:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
}

// Root returns the absolute search root.
func (w *Walker) Root() string {
	return w.root
}

// match applies the glob to path. The pattern was validated at
// construction, so Match cannot fail here.
func (w *Walker) match(p string) bool {
	if w.glob == "" {
		return true
	}

	if w.pathGlob {
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return false
		}
		ok, _ := doublestar.Match(w.glob, filepath.ToSlash(rel))
		return ok
	}

	ok, _ := doublestar.Match(w.glob, filepath.Base(p))
	return ok
}
