package config

import "go.uber.org/fx"

// Module wires application config and the plan catalog.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewPlanConfigHolder,
	),
)
