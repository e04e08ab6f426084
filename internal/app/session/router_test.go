package session

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"lesswatch/internal/app/ledger"
	"lesswatch/internal/app/scheduler"
	"lesswatch/internal/app/watcher"
	"lesswatch/internal/config"
	"lesswatch/internal/config/logger"
)

func Test_Router_Route(t *testing.T) {
	tests := []struct {
		name     string
		extra    []string
		event    watcher.Event
		expected bool
	}{
		{
			name:     "changed stylesheet",
			event:    watcher.Event{Kind: watcher.Change, Path: "src/b.less"},
			expected: true,
		},
		{
			name:     "added image with uppercase suffix",
			event:    watcher.Event{Kind: watcher.Add, Path: "src/img/LOGO.PNG"},
			expected: true,
		},
		{
			name:     "unlinked stylesheet",
			event:    watcher.Event{Kind: watcher.Unlink, Path: "src/old.less"},
			expected: true,
		},
		{
			name:     "removed directory always qualifies",
			event:    watcher.Event{Kind: watcher.UnlinkDir, Path: "src/partials"},
			expected: true,
		},
		{
			name:     "removed directory with output-like name still qualifies",
			event:    watcher.Event{Kind: watcher.UnlinkDir, Path: "dist/a.css"},
			expected: true,
		},
		{
			name:     "output artifact is never a trigger",
			event:    watcher.Event{Kind: watcher.Change, Path: "dist/a.css"},
			expected: false,
		},
		{
			name:     "output artifact given as absolute path",
			event:    watcher.Event{Kind: watcher.Add, Path: "/project/dist/a.css"},
			expected: false,
		},
		{
			name:     "output artifact through unclean path",
			event:    watcher.Event{Kind: watcher.Change, Path: "src/../dist/a.css"},
			expected: false,
		},
		{
			name:     "other css next to the output",
			event:    watcher.Event{Kind: watcher.Change, Path: "dist/b.css"},
			expected: true,
		},
		{
			name:     "text file ignored by default",
			event:    watcher.Event{Kind: watcher.Change, Path: "notes.txt"},
			expected: false,
		},
		{
			name:     "text file with extra extension",
			extra:    []string{"txt"},
			event:    watcher.Event{Kind: watcher.Change, Path: "notes.txt"},
			expected: true,
		},
		{
			name:     "unknown kind",
			event:    watcher.Event{Kind: watcher.Kind("addDir"), Path: "src/new"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sched := scheduler.NewMockScheduler(ctrl)

			if tt.expected {
				sched.EXPECT().Schedule(ledger.Trigger{Kind: tt.event.Kind, Path: tt.event.Path})
			}

			log := logger.NewLoggerWithOutput(config.DefaultConfig(), io.Discard)
			router := NewRouter("/project", "/project/dist/a.css", watcher.NewExtensionFilter(tt.extra), sched, log)

			assert.Equal(t, tt.expected, router.Route(tt.event))
		})
	}
}

func Test_shortPath(t *testing.T) {
	assert.Equal(t, "./", shortPath("/project", "/project"))
	assert.Equal(t, "src", shortPath("/project", "/project/src"))
	assert.Equal(t, "dist/a.css", shortPath("/project", "/project/dist/a.css"))
	assert.Equal(t, "../other", shortPath("/project", "/other"))
}
