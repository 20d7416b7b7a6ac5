package gestao

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"gestao",
		fx.Provide(NewClient, NewLoader),
	)
}
