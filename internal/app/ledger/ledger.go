package ledger

import (
	"fmt"
	"strings"
	"sync"

	"lesswatch/internal/app/watcher"
)

// Trigger is a single qualifying filesystem event recorded against the open generation
type Trigger struct {
	Kind watcher.Kind
	Path string
}

// String renders the trigger as "<kind> <path>"
func (t Trigger) String() string {
	return fmt.Sprintf("%s %s", t.Kind, t.Path)
}

// Generation is a closed batch of triggers identified by a monotonically increasing token
type Generation struct {
	Token    uint64
	Triggers []Trigger
}

// Summary describes the generation for the build log line
func (g Generation) Summary() string {
	if len(g.Triggers) == 0 {
		return "(initial build)"
	}

	seen := make(map[Trigger]struct{}, len(g.Triggers))
	descriptions := make([]string, 0, len(g.Triggers))

	for _, t := range g.Triggers {
		if _, ok := seen[t]; ok {
			continue
		}

		seen[t] = struct{}{}
		descriptions = append(descriptions, t.String())
	}

	summary := "(" + strings.Join(descriptions, ", ") + ")"

	if len(g.Triggers) > 1 {
		summary += fmt.Sprintf(" ×%d", len(g.Triggers))
	}

	return summary
}

// Ledger accumulates triggers for the open generation
type Ledger struct {
	mu       sync.Mutex
	token    uint64
	triggers []Trigger
}

// New creates an empty ledger whose open generation has token 0
func New() *Ledger {
	return &Ledger{}
}

// Append records a trigger against the open generation
func (l *Ledger) Append(t Trigger) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.triggers = append(l.triggers, t)
}

// Swap closes the open generation and opens a new one. The returned generation
// carries the token of the build that consumes it, every later Swap makes it stale
func (l *Ledger) Swap() Generation {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.token++

	gen := Generation{Token: l.token, Triggers: l.triggers}
	l.triggers = nil

	return gen
}

// IsCurrent reports whether no build started after the one holding token
func (l *Ledger) IsCurrent(token uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.token == token
}

// Pending returns the number of triggers in the open generation
func (l *Ledger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.triggers)
}
