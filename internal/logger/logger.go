package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shiritori/internal/config"
)

// New builds a zap logger from the logging config. Unknown levels fall back
// to info; the "console" format switches to the human-readable development
// encoder.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
