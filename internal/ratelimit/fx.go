package ratelimit

import "go.uber.org/fx"

var Module = fx.Module("rate.limit",
	fx.Provide(
		fx.Annotate(NewGenerationGuard, fx.As(new(Guard))),
	),
)
