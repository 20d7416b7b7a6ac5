package sheets

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"sheets",
		fx.Provide(NewExporter),
	)
}
