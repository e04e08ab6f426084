package scheduler

import "go.uber.org/fx"

// Module provides the wall clock used by debounce timers
var Module = fx.Options(
	fx.Provide(NewClock),
)
