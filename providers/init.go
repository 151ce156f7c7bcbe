package providers

import (
	"go.uber.org/zap"
)

var (
	// Package-level logger for providers
	logger *zap.Logger
)

func init() {
	// Replaced by SetLogger once the host has built its own logger
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
}

// SetLogger allows the main package to inject its configured logger
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l.With(zap.String("package", "providers"))
	}
}
