package telemetry

import "go.uber.org/fx"

// Module provides the error tracker
var Module = fx.Options(
	fx.Provide(NewTelemetry),
)
