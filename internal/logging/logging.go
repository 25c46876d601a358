// Package logging owns the process-wide zap logger. Until Init is called every
// log call goes to a no-op logger, so library code can log unconditionally.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is the shared sugared logger.
var Logger = zap.NewNop().Sugar()

// Config builds the zap configuration: development at debug level when debug
// is set, production at warn level otherwise. Both write console lines to stderr.
func Config(debug bool) zap.Config {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	return cfg
}

// Init replaces Logger.
func Init(debug bool) error {
	logger, err := Config(debug).Build()
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	Logger = logger.Sugar()
	return nil
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() {
	_ = Logger.Sync() //nolint:errcheck
}

// Named returns a child of Logger, e.g. Named("lsp").
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
