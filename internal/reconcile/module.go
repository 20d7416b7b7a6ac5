package reconcile

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"reconcile",
		fx.Provide(NewEngine),
	)
}
