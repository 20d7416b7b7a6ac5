package internal

import (
	"context"

	"gestao-report/internal/cache"
	"gestao-report/internal/cli"
	"gestao-report/internal/config"
	"gestao-report/internal/gestao"
	"gestao-report/internal/logging"
	"gestao-report/internal/reconcile"
	"gestao-report/internal/sheets"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		cache.Module(),
		gestao.Module(),
		reconcile.Module(),
		sheets.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
