// Package logging provides the leveled, optionally colored console logger
// with an optional append-mode file sink. It keeps a printf-style API on top
// of zerolog console writers.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/backmassage/multinight/internal/config"
	"github.com/backmassage/multinight/internal/term"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger provides leveled logging to stdout/stderr with an optional file sink.
type Logger struct {
	mu   sync.Mutex
	zl   zerolog.Logger
	file *os.File
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile, except in a dry run. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	noColor := !term.Enabled()

	var w zerolog.LevelWriter = levelSplitWriter{
		out: console(os.Stdout, noColor),
		err: console(os.Stderr, noColor),
	}

	l := &Logger{}
	// A dry run leaves the filesystem alone, log file included.
	if cfg.LogFile != "" && !cfg.DryRun {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		w = zerolog.MultiLevelWriter(w, console(f, true))
	}
	l.zl = newZerolog(w, cfg.Verbose)
	return l, nil
}

// New returns a colorless logger writing every level to w. Useful in tests
// and for embedding.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{zl: newZerolog(console(w, true), verbose)}
}

func newZerolog(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func console(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: timeFormat}
}

// levelSplitWriter sends error-and-above events to err and the rest to out.
type levelSplitWriter struct {
	out io.Writer
	err io.Writer
}

func (s levelSplitWriter) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s levelSplitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel {
		return s.err.Write(p)
	}
	return s.out.Write(p)
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) emit(e *zerolog.Event, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Msg(fmt.Sprintf(format, args...))
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(l.zl.Info(), format, args)
}

// Success logs at INFO level, tagged result=ok.
func (l *Logger) Success(format string, args ...interface{}) {
	l.emit(l.zl.Info().Str("result", "ok"), format, args)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(l.zl.Warn(), format, args)
}

// Error logs at ERROR level, to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(l.zl.Error(), format, args)
}

// Debug logs at DEBUG level; dropped unless the logger is verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(l.zl.Debug(), format, args)
}
