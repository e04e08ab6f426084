package compiler

import "go.uber.org/fx"

// Module provides the stylesheet compiler
var Module = fx.Options(
	fx.Provide(New),
)
