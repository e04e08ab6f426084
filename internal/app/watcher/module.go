package watcher

import "go.uber.org/fx"

// Module provides the fsnotify-backed watcher
var Module = fx.Options(
	fx.Provide(NewWatcher),
)
