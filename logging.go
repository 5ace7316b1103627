package recipes

import (
	"github.com/goliatone/go-logger/glog"
)

// Logger is the structured logger contract used across the module.
type Logger = glog.Logger

// LoggerProvider resolves named, scoped loggers.
type LoggerProvider = glog.LoggerProvider

// ResolveLogger resolves a scoped logger for the given component name,
// preferring the provider when one is configured.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) (LoggerProvider, Logger) {
	return glog.Resolve(name, provider, logger)
}

func defaultLogger() Logger {
	_, logger := glog.Resolve("recipes", nil, nil)
	return logger
}
