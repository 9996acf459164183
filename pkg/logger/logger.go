package logger

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the logger configuration
type Config struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string

	// Format defines the log format (json, console)
	Format string

	// Development enables development mode (colored console output, stacktraces on warnings)
	Development bool

	// AddCaller adds caller information to log entries
	AddCaller bool
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:       "info",
		Format:      "json",
		Development: false,
		AddCaller:   true,
	}
}

// Logger wraps zap.Logger with additional functionality
type Logger struct {
	*zap.Logger
	sugar  *zap.SugaredLogger
	config *Config
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

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := createEncoderConfig(cfg.Development)

	var encoder zapcore.Encoder
	if cfg.Format == "console" || cfg.Development {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)

	var opts []zap.Option
	if cfg.AddCaller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	} else {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zapLogger := zap.New(core, opts...)

	return &Logger{
		Logger: zapLogger,
		sugar:  zapLogger.Sugar(),
		config: cfg,
	}, nil
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

// Get returns the global logger instance, initializing it with defaults if unset
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

// Sugar returns the sugared logger
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
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
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields ...zap.Field) *Logger {
	newLogger := l.With(fields...)
	return &Logger{
		Logger: newLogger,
		sugar:  newLogger.Sugar(),
		config: l.config,
	}
}

// WithError returns a logger with an error field
func (l *Logger) WithError(err error) *Logger {
	return l.WithFields(zap.Error(err))
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func createEncoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		config := zap.NewDevelopmentEncoderConfig()
		config.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncodeTime = zapcore.ISO8601TimeEncoder
		return config
	}

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.TimeKey = "timestamp"
	config.MessageKey = "message"
	config.LevelKey = "level"
	config.CallerKey = "caller"
	config.StacktraceKey = "stacktrace"
	return config
}

// Global helper functions

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...zap.Field) {
	Get().Debug(msg, fields...)
}

// Info logs an info message using the global logger
func Info(msg string, fields ...zap.Field) {
	Get().Info(msg, fields...)
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...zap.Field) {
	Get().Warn(msg, fields...)
}

// Fatal logs a fatal message and exits using the global logger
func Fatal(msg string, fields ...zap.Field) {
	Get().Fatal(msg, fields...)
}

// With returns a logger with additional fields using the global logger
func With(fields ...zap.Field) *Logger {
	return Get().WithFields(fields...)
}

// SyncGlobal flushes any buffered log entries from the global logger
func SyncGlobal() error {
	return Get().Sync()
}
