package logging

import (
	"context"
	"fmt"
	"os"

	"gestao-report/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The runner prints its processing report to stdout, so structured logs are
// teed into a JSON file when log_file is configured.
func Module() fx.Option {
	return fx.Module(
		"logging",
		fx.Provide(openLogFile),
		fx.Decorate(attachFileCore),
		fx.Invoke(closeOnStop),
	)
}

func openLogFile(cfg config.Config) (*os.File, error) {
	if cfg.LogFile == "" {
		return nil, nil
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

func attachFileCore(base *zap.Logger, cfg config.Config, file *os.File) *zap.Logger {
	if file == nil {
		return base
	}

	level := zap.InfoLevel
	if cfg.Debug {
		level = zap.DebugLevel
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(file),
		level,
	)
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
}

func closeOnStop(lc fx.Lifecycle, file *os.File) {
	if file == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return file.Close()
		},
	})
}
