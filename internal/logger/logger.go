// Package logger writes the structured engine log to a rotating file, and to
// stderr as well in debug mode.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/levelup/internal/constants"
)

// Logger is the global logger, nil until Init.
var Logger *log.Logger

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
	// Frames between a caller and Logger.Log: the exported helper and emit.
	callerOffset = 2
)

type Config struct {
	Debug bool
	// Level overrides the default of info, or debug in debug mode.
	Level     string
	ConfigDir string
	// Quiet keeps debug output off stderr.
	Quiet bool
}

func (c Config) level() (log.Level, error) {
	if c.Level != "" {
		lvl, err := log.ParseLevel(c.Level)
		if err != nil {
			return 0, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		return lvl, nil
	}
	if c.Debug {
		return log.DebugLevel, nil
	}
	return log.InfoLevel, nil
}

// Path is the log file Init writes under dir.
func Path(dir string) string {
	return filepath.Join(dir, "logs", constants.AppName+".log")
}

func Init(cfg Config) error {
	level, err := cfg.level()
	if err != nil {
		return err
	}

	path := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	var writer io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	if cfg.Debug && !cfg.Quiet {
		writer = io.MultiWriter(os.Stderr, writer)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		CallerOffset:    callerOffset,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
	return nil
}

// Component is a logger scoped to one part of the engine. It resolves the
// global logger on every call, so package-level Components work before Init.
type Component struct {
	keyvals []any
}

var root Component

// For returns a Component that tags every line with component=name.
func For(name string) Component {
	return Component{keyvals: []any{"component", name}}
}

// With returns a copy that adds keyvals to every line.
func (c Component) With(keyvals ...any) Component {
	kv := make([]any, 0, len(c.keyvals)+len(keyvals))
	kv = append(append(kv, c.keyvals...), keyvals...)
	return Component{keyvals: kv}
}

func (c Component) Debug(msg string, keyvals ...any) { c.emit(log.DebugLevel, msg, keyvals) }
func (c Component) Info(msg string, keyvals ...any)  { c.emit(log.InfoLevel, msg, keyvals) }
func (c Component) Warn(msg string, keyvals ...any)  { c.emit(log.WarnLevel, msg, keyvals) }
func (c Component) Error(msg string, keyvals ...any) { c.emit(log.ErrorLevel, msg, keyvals) }

func (c Component) emit(level log.Level, msg string, keyvals []any) {
	l := Logger
	if l == nil {
		return
	}
	if len(c.keyvals) > 0 {
		l = l.With(c.keyvals...)
	}
	l.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...any) { root.emit(log.DebugLevel, msg, keyvals) }
func Info(msg string, keyvals ...any)  { root.emit(log.InfoLevel, msg, keyvals) }
func Warn(msg string, keyvals ...any)  { root.emit(log.WarnLevel, msg, keyvals) }
func Error(msg string, keyvals ...any) { root.emit(log.ErrorLevel, msg, keyvals) }

// Fatal logs at error level and exits.
func Fatal(msg string, keyvals ...any) {
	root.emit(log.ErrorLevel, msg, keyvals)
	os.Exit(1)
}
