package watcher

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"lesswatch/internal/app/errors"
	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

// Watcher creates subscriptions to filesystem changes below a root directory
type Watcher interface {
	Subscribe(ctx context.Context, root string) (Subscription, error)
}

// Subscription is a single, non-restartable stream of change events
type Subscription interface {
	Events() iter.Seq[Event]
	Close() error
}

// watcher implements the Watcher interface on top of fsnotify
type watcher struct {
	opts config.Watch
	log  logger.Logger
}

// subscription holds the state of one recursive fsnotify watch
type subscription struct {
	fsw      *fsnotify.Watcher
	opts     config.Watch
	cwd      string
	matcher  Matcher
	dirs     map[string]struct{}
	files    map[string]struct{}
	events   chan Event
	done     chan struct{}
	once     sync.Once
	consumed atomic.Bool
	log      logger.Logger
}

// NewWatcher creates a new Watcher instance
func NewWatcher(cfg *config.Config, log logger.Logger) Watcher {
	return &watcher{
		opts: cfg.Watch,
		log:  log.WithComponent("WATCHER"),
	}
}

// Subscribe starts watching root recursively and returns the event stream
func (w *watcher) Subscribe(ctx context.Context, root string) (Subscription, error) {
	cwd, err := resolveCwd(w.opts.Cwd)
	if err != nil {
		return nil, err
	}

	matcher, err := NewMatcher(w.opts.Ignored)
	if err != nil {
		return nil, err
	}

	roots, err := w.expandRoot(cwd, root)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	s := &subscription{
		fsw:     fsw,
		opts:    w.opts,
		cwd:     cwd,
		matcher: matcher,
		dirs:    make(map[string]struct{}),
		files:   make(map[string]struct{}),
		events:  make(chan Event, config.WatchEventBuffer),
		done:    make(chan struct{}),
		log:     w.log,
	}

	var initial []Event

	for _, r := range roots {
		if err := s.addTree(r, !w.opts.IgnoreInitial, &initial); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w.log.Info().Msgf("Watching %d directories below %s", len(s.dirs), strings.Join(roots, ", "))

	go s.run(ctx, initial)

	return s, nil
}

// expandRoot resolves the root against cwd and expands glob metacharacters when globbing is enabled
func (w *watcher) expandRoot(cwd, root string) ([]string, error) {
	if root == "" {
		root = cwd
	}

	if !filepath.IsAbs(root) {
		root = filepath.Join(cwd, root)
	}

	root = filepath.Clean(root)

	if w.opts.DisableGlobbing || !hasMeta(root) {
		return []string{root}, nil
	}

	matches, err := filepath.Glob(root)
	if err != nil {
		return nil, err
	}

	roots := make([]string, 0, len(matches))

	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			roots = append(roots, m)
		}
	}

	if len(roots) == 0 {
		return nil, fmt.Errorf("no directory matches %s", root)
	}

	return roots, nil
}

// Events returns the event stream, a second call yields nothing
func (s *subscription) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		if !s.consumed.CompareAndSwap(false, true) {
			return
		}

		for ev := range s.events {
			if !yield(ev) {
				return
			}
		}
	}
}

// Close stops the subscription and releases the fsnotify watcher
func (s *subscription) Close() error {
	var err error

	s.once.Do(func() {
		close(s.done)
		err = s.fsw.Close()
	})

	return err
}

// run delivers the initial scan and then translates fsnotify events until stopped
func (s *subscription) run(ctx context.Context, initial []Event) {
	defer close(s.events)

	for _, ev := range initial {
		if !s.emit(ctx, ev) {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case event, ok := <-s.fsw.Events:
			if !ok {
				return
			}

			if !s.handle(ctx, event) {
				return
			}
		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}

			s.log.Error().Err(err).Msg("Watcher error")
		}
	}
}

// emit sends one event, returning false once the subscription is stopped
func (s *subscription) emit(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-s.done:
		return false
	}
}

// handle maps a raw fsnotify event to add/change/unlink/unlinkDir
func (s *subscription) handle(ctx context.Context, event fsnotify.Event) bool {
	path := filepath.Clean(event.Name)
	rel := s.relative(path)

	if s.matcher.Ignored(rel) {
		return true
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := s.stat(path)
		if err != nil {
			return true
		}

		if info.IsDir() {
			if s.matcher.IgnoredDir(rel) {
				return true
			}

			var added []Event
			if err := s.addTree(path, true, &added); err != nil {
				s.log.Warn().Err(err).Msgf("Failed to watch new directory: %s", path)
			}

			for _, ev := range added {
				if !s.emit(ctx, ev) {
					return false
				}
			}

			return true
		}

		if _, known := s.files[path]; known {
			return s.emit(ctx, Event{Kind: Change, Path: rel})
		}

		s.files[path] = struct{}{}

		return s.emit(ctx, Event{Kind: Add, Path: rel})
	case event.Has(fsnotify.Write):
		if _, isDir := s.dirs[path]; isDir {
			return true
		}

		s.files[path] = struct{}{}

		return s.emit(ctx, Event{Kind: Change, Path: rel})
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if _, isDir := s.dirs[path]; isDir {
			s.removeTree(path)
			return s.emit(ctx, Event{Kind: UnlinkDir, Path: rel})
		}

		delete(s.files, path)

		return s.emit(ctx, Event{Kind: Unlink, Path: rel})
	}

	return true
}

// addTree watches dir and its subdirectories, collecting add events for files when requested
func (s *subscription) addTree(dir string, collect bool, out *[]Event) error {
	return s.walk(dir, collect, out, make(map[string]struct{}))
}

func (s *subscription) walk(dir string, collect bool, out *[]Event, visited map[string]struct{}) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}

	if _, seen := visited[resolved]; seen {
		return nil
	}

	visited[resolved] = struct{}{}

	if err := s.fsw.Add(dir); err != nil {
		return err
	}

	s.dirs[dir] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		rel := s.relative(path)

		info, err := s.stat(path)
		if err != nil {
			continue
		}

		if info.IsDir() {
			if s.matcher.IgnoredDir(rel) {
				continue
			}

			if err := s.walk(path, collect, out, visited); err != nil {
				s.log.Warn().Err(err).Msgf("Failed to watch directory: %s", path)
			}

			continue
		}

		if s.matcher.Ignored(rel) {
			continue
		}

		s.files[path] = struct{}{}

		if collect {
			*out = append(*out, Event{Kind: Add, Path: rel})
		}
	}

	return nil
}

// removeTree forgets a removed directory and everything below it
func (s *subscription) removeTree(dir string) {
	prefix := dir + string(filepath.Separator)

	for d := range s.dirs {
		if d == dir || strings.HasPrefix(d, prefix) {
			// inotify drops watches on deleted directories itself
			_ = s.fsw.Remove(d)
			delete(s.dirs, d)
		}
	}

	for f := range s.files {
		if strings.HasPrefix(f, prefix) {
			delete(s.files, f)
		}
	}
}

// stat follows symlinks only when configured to
func (s *subscription) stat(path string) (os.FileInfo, error) {
	if s.opts.FollowSymlinks {
		return os.Stat(path)
	}

	return os.Lstat(path)
}

// relative reports paths relative to the watcher cwd
func (s *subscription) relative(path string) string {
	rel, err := filepath.Rel(s.cwd, path)
	if err != nil {
		return path
	}

	return rel
}

// resolveCwd returns the absolute directory events are reported relative to
func resolveCwd(cwd string) (string, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: %w", errors.ErrFailedToGetWorkingDir, err)
		}

		return wd, nil
	}

	return filepath.Abs(cwd)
}

// hasMeta reports whether path contains glob metacharacters
func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[`)
}
