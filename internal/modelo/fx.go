package modelo

import "go.uber.org/fx"

var Module = fx.Module("modelo",
	fx.Provide(NewService),
)
