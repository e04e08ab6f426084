package logger

import (
	"go.uber.org/fx"
)

// Module provides the diagnostic logger built from the loaded config
var Module = fx.Options(
	fx.Provide(NewLogger),
)
