package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/scour/internal/filelock"
	"github.com/harrison/scour/internal/scan"
)

// FileLogger writes scan diagnostics to per-run files in a log directory.
// Each run gets a timestamped scan-YYYYMMDD-HHMMSS.log identified by a
// unique run ID, and a latest.log symlink points at the most recent run.
// It is thread-safe and supports log level filtering.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	runID    string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to .scour/logs/ in the current
// directory with the default "info" level.
func NewFileLogger() (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(filepath.Join(".scour", "logs"), "info")
}

// NewFileLoggerWithDir creates a FileLogger with a custom log directory and
// the default "info" level.
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates a FileLogger with a custom log
// directory and log level. The directory is created if missing. Updating
// the latest.log symlink is guarded by a file lock so concurrent runs
// sharing a log directory cannot race each other; when another run holds
// the lock, the symlink is left alone and only the run log is written.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Timestamped filename: scan-YYYYMMDD-HHMMSS.log
	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("scan-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	if err := updateLatestSymlink(logDir, runFile); err != nil {
		file.Close()
		return nil, err
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		runID:    uuid.New().String(),
		logLevel: normalizeLogLevel(logLevel),
		mu:       sync.Mutex{},
	}

	logger.writeRunLog(fmt.Sprintf("=== scour run %s ===\n", logger.runID))
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// updateLatestSymlink points latest.log at runFile under a non-blocking
// file lock. A contended lock means another run just did the same thing,
// so losing it is not an error.
func updateLatestSymlink(logDir, runFile string) error {
	lock := filelock.New(filepath.Join(logDir, "latest.lock"))

	acquired, err := lock.TryLock()
	if err != nil || !acquired {
		return nil
	}
	defer lock.Unlock()

	symlinkPath := filepath.Join(logDir, "latest.log")

	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			return fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}

	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}

	return nil
}

// Path returns the run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

// shouldLog checks if a message at the given level should be logged.
// Returns true if messageLevel >= configured logLevel.
func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}

	formatted := fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, message)
	fl.writeRunLog(formatted)
}

// LogScanStart logs the parameters of a starting scan at INFO level.
func (fl *FileLogger) LogScanStart(root, pattern string) {
	if !fl.shouldLog("info") {
		return
	}

	message := fmt.Sprintf("[%s] Scanning %s for %s\n",
		time.Now().Format("15:04:05"), root, pattern)
	fl.writeRunLog(message)
}

// LogSummary logs the scan statistics at INFO level.
func (fl *FileLogger) LogSummary(stats scan.Stats) {
	if !fl.shouldLog("info") {
		return
	}

	ts := time.Now().Format("15:04:05")

	message := fmt.Sprintf(
		"\n[%s] === SCAN SUMMARY ===\n"+
			"[%s] Files scanned:  %d\n"+
			"[%s] Lines read:     %d\n"+
			"[%s] Matches:        %d\n"+
			"[%s] File errors:    %d\n"+
			"[%s] Binary skipped: %d\n"+
			"[%s] Duration:       %s\n"+
			"[%s] Completed at:   %s\n",
		ts,
		ts, stats.FilesScanned,
		ts, stats.LinesRead,
		ts, stats.Matches,
		ts, stats.FilesErrored,
		ts, stats.FilesBinary,
		ts, formatDuration(stats.Elapsed),
		ts, time.Now().Format(time.RFC3339),
	)

	fl.writeRunLog(message)
}

// Close flushes and closes the run log file.
// It should be called when the logger is no longer needed.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// Flush after each write so a cancelled run leaves a usable log
		fl.runLog.Sync()
	}
}
