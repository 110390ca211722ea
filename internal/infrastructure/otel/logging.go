package otel

import (
	"context"
	"io"

	"go.uber.org/zap/zapcore"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// NewLogger builds the application logger described by cfg. With otel output
// (or otel.enabled) the local core is teed with an OTLP exporter core.
func NewLogger(ctx context.Context, cfg *config.Config, version string) (*logger.Logger, error) {
	logCfg := &logger.Config{
		Level:          cfg.Logging.Level,
		Output:         logger.OutputType(cfg.Logging.Output),
		Format:         cfg.Logging.Format,
		FilePath:       cfg.Logging.FilePath,
		FileMaxSizeMB:  cfg.Logging.FileMaxSizeMB,
		FileMaxBackups: cfg.Logging.FileMaxBackups,
		Development:    cfg.IsDevelopment(),
		AddCaller:      true,
	}

	exportOTEL := logCfg.Output == logger.OutputOTEL || cfg.OTEL.Enabled
	if logCfg.Output == logger.OutputOTEL {
		logCfg.Output = logger.OutputConsole
	}

	local, closers, err := logger.LocalCore(logCfg)
	if err != nil {
		return nil, err
	}
	if !exportOTEL {
		return logger.NewWithCore(logCfg, local, closers...), nil
	}

	provider, err := NewProvider(ctx, &cfg.OTEL, cfg.Server.Environment, version, nil)
	if err != nil {
		for _, c := range closers {
			c.Close()
		}
		return nil, err
	}

	core := zapcore.NewTee(local, NewZapCore(provider, logger.ParseLevel(logCfg.Level)))
	return logger.NewWithCore(logCfg, core, append([]io.Closer{provider}, closers...)...), nil
}
