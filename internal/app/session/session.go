//go:generate mockgen -source=session.go -destination=session_mock.go -package=session
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"lesswatch/internal/app/builder"
	"lesswatch/internal/app/compiler"
	"lesswatch/internal/app/errors"
	"lesswatch/internal/app/ledger"
	"lesswatch/internal/app/reporter"
	"lesswatch/internal/app/scheduler"
	"lesswatch/internal/app/watcher"
	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

// Session runs one watch-and-rebuild session
type Session interface {
	Run(ctx context.Context) error
}

type session struct {
	cfg      *config.Config
	fs       afero.Fs
	compiler compiler.Compiler
	watcher  watcher.Watcher
	reporter reporter.Reporter
	clock    scheduler.Clock
	log      logger.Logger
}

// paths are the absolute locations a session works with
type paths struct {
	wd     string
	cwd    string
	entry  string
	output string
	root   string
}

// NewSession creates a new session instance
func NewSession(
	cfg *config.Config,
	fs afero.Fs,
	c compiler.Compiler,
	w watcher.Watcher,
	r reporter.Reporter,
	clock scheduler.Clock,
	log logger.Logger,
) Session {
	return &session{
		cfg:      cfg,
		fs:       fs,
		compiler: c,
		watcher:  w,
		reporter: r,
		clock:    clock,
		log:      log.WithComponent("SESSION"),
	}
}

// Run builds once in build-only mode, otherwise watches until ctx is done.
// Only startup failures and a failed build-only run return an error
func (s *session) Run(ctx context.Context) error {
	p, err := s.resolve()
	if err != nil {
		return err
	}

	filter := watcher.NewExtensionFilter(s.cfg.Extensions)
	s.log.Debug().Msgf("Watching extensions %v", filter.Extensions())

	if err := s.fs.MkdirAll(filepath.Dir(p.output), config.OutputDirMode); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToCreateOutputDir, err)
	}

	if !s.cfg.Build {
		s.reporter.Watching(shortPath(p.wd, p.root))
	}

	l := ledger.New()
	exec := builder.NewExecutor(builder.Params{
		Entry:     p.entry,
		Output:    p.output,
		RelOutput: shortPath(p.wd, p.output),
		Options:   s.cfg.Less,
		Fs:        s.fs,
		Compiler:  s.compiler,
		Ledger:    l,
		Reporter:  s.reporter,
		Log:       s.log,
	})

	if s.cfg.Build {
		if err := exec.Build(ctx); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrBuildFailed, err)
		}

		s.reporter.Succeeded()

		return nil
	}

	if s.cfg.Watch.IgnoreInitial {
		// failures are reported, the session keeps watching
		_ = exec.Build(ctx)
	}

	sub, err := s.watcher.Subscribe(ctx, p.root)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToSubscribe, err)
	}

	defer sub.Close()

	delay := time.Duration(s.cfg.Delay) * time.Millisecond
	sched := scheduler.New(delay, s.clock, l, func(gen ledger.Generation) {
		exec.Dispatch(ctx, gen)
	}, s.log)

	router := NewRouter(p.cwd, p.output, filter, sched, s.log)

	for ev := range sub.Events() {
		router.Route(ev)
	}

	s.log.Debug().Msg("Event stream ended, waiting for running builds")

	sched.Stop()
	exec.Wait()

	return nil
}

func (s *session) resolve() (paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return paths{}, fmt.Errorf("%w: %w", errors.ErrFailedToGetWorkingDir, err)
	}

	root := s.cfg.WatchDir
	if root == "" {
		root = "."
	}

	return paths{
		wd:     wd,
		cwd:    absolute(wd, s.cfg.Watch.Cwd),
		entry:  absolute(wd, s.cfg.Entry),
		output: absolute(wd, s.cfg.Output),
		root:   absolute(wd, root),
	}, nil
}

func absolute(wd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(wd, path)
}

// shortPath renders path relative to wd with forward slashes, "./" for wd itself
func shortPath(wd, path string) string {
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}

	if rel == "." {
		return "./"
	}

	return filepath.ToSlash(rel)
}
