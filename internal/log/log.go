// Package log configures the process-wide slog logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// LevelNone is above every slog level, so nothing is logged.
const LevelNone = slog.Level(12)

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelNone
	}
}

// FileWriter appends to a log file and can reopen it after rotation.
type FileWriter struct {
	path string
	fh   *os.File
	mu   sync.Mutex
}

func OpenFile(path string) (*FileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory for %s: %w", path, err)
	}
	w := &FileWriter{path: path}
	if err := w.Reopen(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *FileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fh.Write(p)
}

// Reopen closes the current handle and opens path again.
func (w *FileWriter) Reopen() error {
	fh, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", w.path, err)
	}
	w.mu.Lock()
	old := w.fh
	w.fh = fh
	w.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fh.Close()
}

// Init installs a JSON slog handler as the default logger. With a file,
// SIGHUP reopens it:
//
//	mv computor.log computor.bak && kill -HUP <pid>
//
// The returned closer releases the file; it is a no-op for stderr.
func Init(level, file string) io.Closer {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if file != "" {
		w, err := OpenFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v; falling back to stderr\n", err)
		} else {
			out, closer = w, w
			watchHangup(w)
		}
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: false,
		Level:     ParseLevel(level),
	})
	slog.SetDefault(slog.New(handler))
	return closer
}

func watchHangup(w *FileWriter) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	go func() {
		for range sigs {
			if err := w.Reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
			}
		}
	}()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
