package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Production gets the JSON production profile
// at info, everything else the development profile at debug. An explicit
// level overrides either.
func New(environment, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	atomic := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if environment != "production" {
		cfg = zap.NewDevelopmentConfig()
		atomic = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if strings.TrimSpace(level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		atomic = zap.NewAtomicLevelAt(parsed)
	}

	cfg.Level = atomic
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
