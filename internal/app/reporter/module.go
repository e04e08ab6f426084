package reporter

import "go.uber.org/fx"

// Module provides the build reporter
var Module = fx.Options(
	fx.Provide(NewReporter),
)
