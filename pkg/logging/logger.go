// Package logging builds the zap loggers used by the repository engine and
// the command line.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where log records go.
type Options struct {
	// Level is the minimum level written to the log file ("debug", "info",
	// "warn", "error"). The console never shows records below warn.
	Level string

	// File is the path of the rotated log file. Empty disables file output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a logger that writes warnings and errors to stderr and, when
// opts.File is set, every record at opts.Level or above to a rotated file.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if strings.TrimSpace(opts.Level) != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("logging: parse level %q: %w", opts.Level, err)
		}
	}

	consoleLevel := level
	if consoleLevel < zapcore.WarnLevel {
		consoleLevel = zapcore.WarnLevel
	}
	consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      zapcore.LowercaseLevelEncoder,
		ConsoleSeparator: " ",
	})
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), consoleLevel),
	}

	if opts.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotatingWriter(opts)),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// rotatingWriter creates a lumberjack writer, applying defaults for unset
// limits.
func rotatingWriter(opts Options) *lumberjack.Logger {
	w := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    1,
		MaxBackups: 2,
		MaxAge:     30,
		Compress:   false,
	}
	if opts.MaxSizeMB > 0 {
		w.MaxSize = opts.MaxSizeMB
	}
	if opts.MaxBackups > 0 {
		w.MaxBackups = opts.MaxBackups
	}
	if opts.MaxAgeDays > 0 {
		w.MaxAge = opts.MaxAgeDays
	}
	return w
}

// BadgerLogger adapts a zap logger to the logging interface badger expects.
// Badger is chatty at info level, so its info and debug output is demoted to
// debug.
type BadgerLogger struct {
	sugar *zap.SugaredLogger
}

// NewBadgerLogger wraps l for use as badger.Options.Logger.
func NewBadgerLogger(l *zap.Logger) *BadgerLogger {
	return &BadgerLogger{sugar: l.Named("catalog").Sugar()}
}

func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.sugar.Errorf(strings.TrimSpace(format), args...)
}

func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.sugar.Warnf(strings.TrimSpace(format), args...)
}

func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.sugar.Debugf(strings.TrimSpace(format), args...)
}

func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.sugar.Debugf(strings.TrimSpace(format), args...)
}
