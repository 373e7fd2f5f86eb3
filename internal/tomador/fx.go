package tomador

import "go.uber.org/fx"

var Module = fx.Module("tomador",
	fx.Provide(NewService),
)
