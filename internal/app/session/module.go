package session

import "go.uber.org/fx"

// Module provides the watch session
var Module = fx.Options(
	fx.Provide(NewSession),
)
