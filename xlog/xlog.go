// Package xlog builds zap loggers whose writes are buffered and flushed by a
// background goroutine, so logging from a hot path costs an encode and a
// memcpy rather than a syscall.
package xlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel is consulted for the minimum level when WithLevel is not given.
const EnvLevel = "RTCORE_LOG_LEVEL"

const (
	defaultBufferSize    = 256 * 1024
	defaultFlushInterval = time.Second
)

// Logger is a *zap.Logger that owns its output. Close it to flush.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
	ws    *zapcore.BufferedWriteSyncer
	file  *os.File
}

// Option configures New.
type Option func(*loggerConfig)

type loggerConfig struct {
	level         *zapcore.Level
	path          string
	writer        io.Writer
	json          bool
	bufferSize    int
	flushInterval time.Duration
}

// WithLevel sets the minimum enabled level. Defaults to $RTCORE_LOG_LEVEL,
// or info.
func WithLevel(lvl zapcore.Level) Option {
	return func(cfg *loggerConfig) {
		cfg.level = &lvl
	}
}

// WithOutputFile appends to the file at path instead of writing to stdout.
func WithOutputFile(path string) Option {
	return func(cfg *loggerConfig) {
		cfg.path = path
	}
}

// WithWriter sends output to w instead of stdout. WithOutputFile wins when
// both are set.
func WithWriter(w io.Writer) Option {
	return func(cfg *loggerConfig) {
		cfg.writer = w
	}
}

// WithJSON switches from the console encoder to JSON.
func WithJSON() Option {
	return func(cfg *loggerConfig) {
		cfg.json = true
	}
}

// WithFlushInterval sets how often the background goroutine flushes.
func WithFlushInterval(d time.Duration) Option {
	return func(cfg *loggerConfig) {
		if d > 0 {
			cfg.flushInterval = d
		}
	}
}

// WithBufferSize sets the buffer size in bytes. A write that does not fit
// flushes synchronously.
func WithBufferSize(size int) Option {
	return func(cfg *loggerConfig) {
		if size > 0 {
			cfg.bufferSize = size
		}
	}
}

// New builds a Logger. Every entry carries its timestamp, level and the
// caller's file and line.
func New(opts ...Option) (*Logger, error) {
	cfg := &loggerConfig{
		bufferSize:    defaultBufferSize,
		flushInterval: defaultFlushInterval,
	}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}

	if cfg.level == nil {
		lvl, err := ParseLevel(os.Getenv(EnvLevel))
		if err != nil {
			return nil, err
		}
		cfg.level = &lvl
	}

	l := &Logger{level: zap.NewAtomicLevelAt(*cfg.level)}

	var out zapcore.WriteSyncer
	switch {
	case cfg.path != "":
		f, err := os.OpenFile(cfg.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("xlog: open %s: %w", cfg.path, err)
		}
		l.file = f
		out = f
	case cfg.writer != nil:
		out = zapcore.AddSync(cfg.writer)
	default:
		out = os.Stdout
	}

	l.ws = &zapcore.BufferedWriteSyncer{
		WS:            out,
		Size:          cfg.bufferSize,
		FlushInterval: cfg.flushInterval,
	}

	core := zapcore.NewCore(newEncoder(cfg.json), l.ws, l.level)
	l.Logger = zap.New(core, zap.AddCaller())
	return l, nil
}

func newEncoder(json bool) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "lvl",
		TimeKey:        "ts",
		CallerKey:      "callAt",
		NameKey:        "component",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if json {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

// SetLevel changes the minimum level at runtime. Safe for concurrent use.
func (l *Logger) SetLevel(lvl zapcore.Level) {
	l.level.SetLevel(lvl)
}

// Level returns the current minimum level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Close flushes pending entries, stops the background goroutine and closes
// the output file, if any. The Logger must not be used afterwards.
func (l *Logger) Close() error {
	err := l.ws.Stop()
	if l.file != nil {
		err = multierr.Append(err, l.file.Close())
	}
	return err
}

// ParseLevel maps a level name to a zap level, case-insensitively. TRACE is
// accepted as an alias of DEBUG; the empty string means INFO.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return zapcore.InfoLevel, nil
	case "trace":
		return zapcore.DebugLevel, nil
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("xlog: %w", err)
	}
	return lvl, nil
}
