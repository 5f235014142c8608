package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// configureLogging installs the default slog logger. The terminal UI owns the
// screen, so in UI mode logs go to a file under the user's state directory.
func configureLogging(stderr io.Writer, uiMode bool, level string) func() {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}

	output := stderr
	closeFn := func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
			fmt.Fprintf(stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err != nil {
				fmt.Fprintf(stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			} else {
				output = f
				closeFn = func() { _ = f.Close() }
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "layerguard", "layerguard.log")
	}
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "layerguard", "layerguard.log")
	}
	return "layerguard.log"
}
