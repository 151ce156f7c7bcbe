package shared

import (
	"go.uber.org/zap"
)

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	ServiceName string // "por-verifier", "por-requests", ...
	Quiet       bool   // true when running as the trusted guest computation
	Development bool   // true for development mode
}

// Logger wraps zap.Logger with additional context
type Logger struct {
	*zap.Logger
	serviceName string
	quiet       bool
}

// NewLogger creates a new logger instance based on the configuration
func NewLogger(config LoggerConfig) (*Logger, error) {
	var zapLogger *zap.Logger
	var err error

	if config.Quiet {
		// Guest mode: only errors, no caller or stack noise in the proof logs
		zapConfig := zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
		zapConfig.DisableCaller = true
		zapConfig.DisableStacktrace = true
		zapLogger, err = zapConfig.Build()
	} else if config.Development {
		zapConfig := zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		zapLogger, err = zapConfig.Build()
	} else {
		zapConfig := zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		zapLogger, err = zapConfig.Build()
	}

	if err != nil {
		return nil, err
	}

	zapLogger = zapLogger.With(zap.String("service", config.ServiceName))

	return &Logger{
		Logger:      zapLogger,
		serviceName: config.ServiceName,
		quiet:       config.Quiet,
	}, nil
}

// WithRun tags every entry with the run identifier
func (l *Logger) WithRun(runID string) *zap.Logger {
	if runID == "" {
		return l.Logger
	}
	return l.Logger.With(zap.String("run_id", runID))
}

// Critical error logging - always logs even in quiet mode
func (l *Logger) Critical(msg string, fields ...zap.Field) {
	l.Logger.Error(msg, append(fields, zap.Bool("critical", true))...)
}

// DebugIf only logs outside quiet mode
func (l *Logger) DebugIf(msg string, fields ...zap.Field) {
	if !l.quiet {
		l.Logger.Debug(msg, fields...)
	}
}

// InfoIf only logs outside quiet mode
func (l *Logger) InfoIf(msg string, fields ...zap.Field) {
	if !l.quiet {
		l.Logger.Info(msg, fields...)
	}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

// NewNopLogger returns a Logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop(), serviceName: "nop", quiet: true}
}
