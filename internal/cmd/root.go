package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harrison/scour/internal/config"
	"github.com/harrison/scour/internal/display"
	"github.com/harrison/scour/internal/logger"
	"github.com/harrison/scour/internal/pattern"
	"github.com/harrison/scour/internal/scan"
	"github.com/harrison/scour/internal/walker"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for scour
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scour <pattern> [glob]",
		Short: "Recursive pattern search across directory trees",
		Long: `Scour searches every file under a directory tree for lines matching a
regular expression and prints each match as path:line:text.

An optional glob restricts which files are read: plain globs such as
'*.go' match the file name, while globs containing / or ** match the
path relative to the search root. Files the glob rejects are never
opened. Matching is case-sensitive unless -i is given.

Configuration is loaded from .scour/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  # Find TODO markers in Go files under the current directory
  scour TODO '*.go'

  # Case-insensitive search of one subtree
  scour -i 'connection reset' --root ./logs

  # Literal string search without recursion
  scour -F 'count++' --no-recurse

  # Decode Latin-1 files while searching
  scour caf --encoding ISO-8859-1 '*.txt'

  # Keep a debug log of the run
  scour panic --log-dir ./scour-logs -v`,
		Args:    cobra.RangeArgs(1, 2),
		RunE:    runScan,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add flags
	cmd.Flags().String("config", "", "Path to config file (default: .scour/config.yaml)")
	cmd.Flags().String("root", ".", "Directory to search")
	cmd.Flags().BoolP("ignore-case", "i", false, "Match without regard to case")
	cmd.Flags().Bool("no-recurse", false, "Do not descend into subdirectories")
	cmd.Flags().BoolP("fixed-string", "F", false, "Treat the pattern as a literal string")
	cmd.Flags().Bool("follow", false, "Follow symbolic links")
	cmd.Flags().Int("readers", config.DefaultConfig().Readers, "Number of concurrent file readers")
	cmd.Flags().String("encoding", "", "Input encoding: IANA name or \"auto\" (default UTF-8)")
	cmd.Flags().StringSlice("exclude", nil, "Directory names to skip")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().BoolP("verbose", "v", false, "Show debug diagnostics on stderr")
	cmd.Flags().String("log-dir", "", "Directory for per-run log files")

	return cmd
}

// runScan implements the search: configuration, collaborator construction,
// and one pipeline run.
func runScan(cmd *cobra.Command, args []string) error {
	expr := args[0]
	glob := ""
	if len(args) == 2 {
		glob = args[1]
	}

	// Load configuration from file
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Build flag pointers for merge (only values the user set)
	var recursePtr *bool
	if cmd.Flags().Changed("no-recurse") {
		noRecurse, _ := cmd.Flags().GetBool("no-recurse")
		recurse := !noRecurse
		recursePtr = &recurse
	}

	var ignoreCasePtr *bool
	if cmd.Flags().Changed("ignore-case") {
		ignoreCase, _ := cmd.Flags().GetBool("ignore-case")
		ignoreCasePtr = &ignoreCase
	}

	var fixedStringPtr *bool
	if cmd.Flags().Changed("fixed-string") {
		fixedString, _ := cmd.Flags().GetBool("fixed-string")
		fixedStringPtr = &fixedString
	}

	var followPtr *bool
	if cmd.Flags().Changed("follow") {
		follow, _ := cmd.Flags().GetBool("follow")
		followPtr = &follow
	}

	var readersPtr *int
	if cmd.Flags().Changed("readers") {
		readers, _ := cmd.Flags().GetInt("readers")
		readersPtr = &readers
	}

	var encodingPtr *string
	if cmd.Flags().Changed("encoding") {
		encoding, _ := cmd.Flags().GetString("encoding")
		encodingPtr = &encoding
	}

	var excludePtr *[]string
	if cmd.Flags().Changed("exclude") {
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		excludePtr = &exclude
	}

	var noColorPtr *bool
	if cmd.Flags().Changed("no-color") {
		noColor, _ := cmd.Flags().GetBool("no-color")
		noColorPtr = &noColor
	}

	var logDirPtr *string
	if cmd.Flags().Changed("log-dir") {
		logDir, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &logDir
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(recursePtr, ignoreCasePtr, fixedStringPtr, followPtr, readersPtr, encodingPtr, excludePtr, noColorPtr, nil, logDirPtr)

	// Verbose flag overrides the configured log level
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		cfg.LogLevel = "debug"
	}

	// Validate merged configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Compile the matcher. A bad pattern fails here, before any stage runs.
	var matcher pattern.Matcher
	if cfg.FixedString {
		matcher, err = pattern.NewLiteral(expr, cfg.IgnoreCase)
	} else {
		matcher, err = pattern.NewRegexp(expr, cfg.IgnoreCase)
	}
	if err != nil {
		return err
	}

	enc, detect, err := scan.ResolveEncoding(cfg.Encoding)
	if err != nil {
		return err
	}

	// Diagnostics go to stderr so they never mix with results on stdout
	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	logs := &multiLogger{loggers: []scanLogger{consoleLog}}

	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		logs.loggers = append(logs.loggers, fileLog)
		consoleLog.LogDebug(fmt.Sprintf("run log: %s", fileLog.Path()))
	}

	root, _ := cmd.Flags().GetString("root")
	w, err := walker.New(walker.Options{
		Root:    root,
		Glob:    glob,
		Recurse: cfg.Recurse,
		Exclude: cfg.ExcludeDirs,
		Follow:  cfg.Follow,
	}, logs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colorEnabled := !cfg.NoColor && display.IsTerminal(out)
	printer := display.NewPrinter(out, w.Root(), colorEnabled)

	pipe := scan.New(matcher, printer, logs, scan.Options{
		Readers:  cfg.Readers,
		Encoding: enc,
		Detect:   detect,
	})

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nReceived interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	logs.LogScanStart(w.Root(), expr)

	stats, err := pipe.Run(ctx, w)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	logs.LogSummary(stats)

	return nil
}

// scanLogger is the full diagnostic surface shared by the console and file
// loggers. The walker and pipeline each depend only on the slice of it they
// declare themselves.
type scanLogger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogScanStart(root, pattern string)
	LogSummary(stats scan.Stats)
}

// multiLogger implements scanLogger by delegating to multiple loggers
type multiLogger struct {
	loggers []scanLogger
}

// LogTrace forwards to all loggers
func (ml *multiLogger) LogTrace(message string) {
	for _, logger := range ml.loggers {
		logger.LogTrace(message)
	}
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, logger := range ml.loggers {
		logger.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, logger := range ml.loggers {
		logger.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, logger := range ml.loggers {
		logger.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *multiLogger) LogError(message string) {
	for _, logger := range ml.loggers {
		logger.LogError(message)
	}
}

// LogScanStart forwards to all loggers
func (ml *multiLogger) LogScanStart(root, pattern string) {
	for _, logger := range ml.loggers {
		logger.LogScanStart(root, pattern)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(stats scan.Stats) {
	for _, logger := range ml.loggers {
		logger.LogSummary(stats)
	}
}
