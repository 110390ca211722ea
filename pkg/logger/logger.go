package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// OutputType defines the type of output for the logger
type OutputType string

const (
	// OutputConsole outputs logs to stdout
	OutputConsole OutputType = "console"
	// OutputFile outputs logs to a rotating file
	OutputFile OutputType = "file"
	// OutputOTEL outputs logs to an OpenTelemetry collector (plus stdout)
	OutputOTEL OutputType = "otel"
)

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string

	// Output defines where logs should be written (console, file, otel)
	Output OutputType

	// Format defines the log encoding (json, console)
	Format string

	// FilePath is the path to the log file (required when Output is "file")
	FilePath string

	// FileMaxSizeMB is the size a log file may reach before it is rotated
	FileMaxSizeMB int

	// FileMaxBackups is the number of rotated files to keep
	FileMaxBackups int

	// Development enables colored console output and warn-level stacktraces
	Development bool

	// AddCaller adds caller information to log entries
	AddCaller bool
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:          "info",
		Output:         OutputConsole,
		Format:         "json",
		FilePath:       "./logs/shipyard.log",
		FileMaxSizeMB:  100,
		FileMaxBackups: 3,
		AddCaller:      true,
	}
}

// Logger wraps zap.Logger with additional functionality
type Logger struct {
	*zap.Logger
	config  *Config
	closers []io.Closer
	mu      sync.Mutex
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// New creates a new Logger instance based on the provided configuration
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	core, closers, err := LocalCore(cfg)
	if err != nil {
		return nil, err
	}

	return NewWithCore(cfg, core, closers...), nil
}

// NewWithCore creates a Logger around a prepared core.
// The OTEL bridge uses this to tee the local core with an exporter core.
func NewWithCore(cfg *Config, core zapcore.Core, closers ...io.Closer) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Logger{
		Logger:  zap.New(core, buildZapOptions(cfg)...),
		config:  cfg,
		closers: closers,
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), config: DefaultConfig()}
}

// LocalCore builds the console or file core described by cfg
func LocalCore(cfg *Config) (zapcore.Core, []io.Closer, error) {
	level := ParseLevel(cfg.Level)
	encoder := newEncoder(cfg)

	if cfg.Output == OutputFile {
		if err := ensureLogDir(cfg.FilePath); err != nil {
			return nil, nil, err
		}
		writer := &rotatingFile{
			path:       cfg.FilePath,
			maxBytes:   int64(cfg.FileMaxSizeMB) * 1024 * 1024,
			maxBackups: cfg.FileMaxBackups,
		}
		return zapcore.NewCore(encoder, zapcore.AddSync(writer), level), []io.Closer{writer}, nil
	}

	return zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level), nil, nil
}

// Init initializes the global logger with the provided configuration
func Init(cfg *Config) error {
	logger, err := New(cfg)
	if err != nil {
		return err
	}

	SetGlobal(logger)
	return nil
}

// SetGlobal sets the global logger instance
func SetGlobal(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// Get returns the global logger instance, creating a default one on first use
func Get() *Logger {
	globalMu.RLock()
	if globalLogger != nil {
		defer globalMu.RUnlock()
		return globalLogger
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		logger, _ := New(DefaultConfig())
		globalLogger = logger
	}

	return globalLogger
}

// WithContext returns a logger with trace information from the context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return l
	}

	return l.WithFields(
		TraceID(span.SpanContext().TraceID().String()),
		SpanID(span.SpanContext().SpanID().String()),
	)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields ...Field) *Logger {
	return &Logger{
		Logger:  l.With(fields...),
		config:  l.config,
		closers: l.closers,
	}
}

// WithError returns a logger with an error field
func (l *Logger) WithError(err error) *Logger {
	return l.WithFields(zap.Error(err))
}

// Close flushes buffered entries and releases file or exporter handles
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.Logger.Sync()

	var lastErr error
	for _, closer := range l.closers {
		if err := closer.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// ParseLevel converts a string level to zapcore.Level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func newEncoder(cfg *Config) zapcore.Encoder {
	if cfg.Development {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewConsoleEncoder(ec)
	}

	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.TimeKey = "timestamp"
	ec.MessageKey = "message"

	if cfg.Format == "console" {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func buildZapOptions(cfg *Config) []zap.Option {
	var opts []zap.Option

	if cfg.AddCaller {
		opts = append(opts, zap.AddCaller())
	}

	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	} else {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return opts
}

// Close closes the global logger
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}
