package app

import (
	"github.com/spf13/afero"
	"go.uber.org/fx"

	"lesswatch/internal/app/cli"
	"lesswatch/internal/app/compiler"
	"lesswatch/internal/app/reporter"
	"lesswatch/internal/app/scheduler"
	"lesswatch/internal/app/session"
	"lesswatch/internal/app/telemetry"
	"lesswatch/internal/app/watcher"
	"lesswatch/internal/config/logger"
)

var Module = fx.Options(
	logger.Module,
	telemetry.Module,
	compiler.Module,
	watcher.Module,
	reporter.Module,
	scheduler.Module,
	session.Module,
	cli.Module,
	fx.Provide(afero.NewOsFs),
	fx.Provide(NewApp),
	fx.Invoke(Register),
)
