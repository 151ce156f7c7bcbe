package client

import (
	"zktls-por/shared"

	"go.uber.org/zap"
)

var sharedZapLogger *zap.Logger // set by the command that owns the process logger

// GetLogger returns the shared logger tagged for serviceName, or a fresh
// development logger when none was injected.
func GetLogger(serviceName string) *shared.Logger {
	if sharedZapLogger != nil {
		return &shared.Logger{
			Logger: sharedZapLogger.With(zap.String("service", serviceName)),
		}
	}

	logger, err := shared.NewLogger(shared.LoggerConfig{
		ServiceName: serviceName,
		Development: true,
	})
	if err != nil {
		return shared.NewNopLogger()
	}
	logger.Logger = logger.Logger.With(zap.String("source", "POR-CLIENT"))
	return logger
}

// SetSharedLogger lets the main package share its configured logger.
func SetSharedLogger(zapLogger *zap.Logger) {
	sharedZapLogger = zapLogger
}
