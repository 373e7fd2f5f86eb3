package partner

import "go.uber.org/fx"

var Module = fx.Module("partner",
	fx.Provide(NewService),
)
