package logger

import (
	"fmt"

	"github.com/straye-as/quotation-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger from the logging and app sections of cfg.
// Staging and production always log JSON; other environments log to a colored console
// unless the format is set to json.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := baseConfig(cfg.Logging.Format, cfg.App.Environment)

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = map[string]interface{}{
		"app":         cfg.App.Name,
		"environment": cfg.App.Environment,
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

func baseConfig(format, environment string) zap.Config {
	switch {
	case environment == "production", environment == "staging", format == "json":
		c := zap.NewProductionConfig()
		c.EncoderConfig.TimeKey = "timestamp"
		c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return c
	default:
		c := zap.NewDevelopmentConfig()
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return c
	}
}

// WithRequest adds request context to logger
func WithRequest(log *zap.Logger, method, path, requestID string) *zap.Logger {
	return log.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithUser adds the signed-in user to logger
func WithUser(log *zap.Logger, userID, email string) *zap.Logger {
	return log.With(
		zap.String("user_id", userID),
		zap.String("user_email", email),
	)
}

// WithJob scopes logger to one scheduled job
func WithJob(log *zap.Logger, name string) *zap.Logger {
	return log.Named("jobs").With(zap.String("job_name", name))
}
