package session

import (
	"path/filepath"

	"lesswatch/internal/app/ledger"
	"lesswatch/internal/app/scheduler"
	"lesswatch/internal/app/watcher"
	"lesswatch/internal/config/logger"
)

// Router gates watcher events before they reach the scheduler
type Router struct {
	cwd       string
	output    string
	filter    *watcher.ExtensionFilter
	scheduler scheduler.Scheduler
	log       logger.Logger
}

// NewRouter creates a router, cwd resolves relative event paths and output is the absolute artifact path
func NewRouter(cwd, output string, filter *watcher.ExtensionFilter, sched scheduler.Scheduler, log logger.Logger) *Router {
	return &Router{
		cwd:       cwd,
		output:    filepath.Clean(output),
		filter:    filter,
		scheduler: sched,
		log:       log,
	}
}

// Route schedules a qualifying event and reports whether it qualified
func (r *Router) Route(ev watcher.Event) bool {
	switch ev.Kind {
	case watcher.UnlinkDir:
	case watcher.Add, watcher.Change, watcher.Unlink:
		if r.resolve(ev.Path) == r.output {
			return false
		}

		if !r.filter.Match(ev.Path) {
			return false
		}
	default:
		return false
	}

	r.log.Debug().Msgf("Trigger %s %s", ev.Kind, ev.Path)
	r.scheduler.Schedule(ledger.Trigger{Kind: ev.Kind, Path: ev.Path})

	return true
}

func (r *Router) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(r.cwd, path)
}
