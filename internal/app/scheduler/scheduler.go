//go:generate mockgen -source=scheduler.go -destination=scheduler_mock.go -package=scheduler
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"lesswatch/internal/app/ledger"
	"lesswatch/internal/config/logger"
)

// FSM states
const (
	Idle    = "idle"
	Pending = "pending"
)

// FSM events
const (
	Arm  = "arm"
	Fire = "fire"
)

// Scheduler batches triggers into builds
type Scheduler interface {
	Schedule(t ledger.Trigger)
	State() string
	Stop()
}

// scheduler implements a fixed-window debounce: the first trigger arms the timer,
// later triggers only join the batch until it fires
type scheduler struct {
	mu       sync.Mutex
	delay    time.Duration
	clock    Clock
	ledger   *ledger.Ledger
	callback func(ledger.Generation)
	machine  *fsm.FSM
	timer    Timer
	stopped  bool
	log      logger.Logger
}

// New creates a scheduler that hands every closed generation to callback
func New(delay time.Duration, clock Clock, l *ledger.Ledger, callback func(ledger.Generation), log logger.Logger) Scheduler {
	log = log.WithComponent("SCHEDULER")

	return &scheduler{
		delay:    delay,
		clock:    clock,
		ledger:   l,
		callback: callback,
		machine:  newMachine(log),
		log:      log,
	}
}

func newMachine(log logger.Logger) *fsm.FSM {
	return fsm.NewFSM(
		Idle,
		fsm.Events{
			{Name: Arm, Src: []string{Idle}, Dst: Pending},
			{Name: Fire, Src: []string{Pending}, Dst: Idle},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				log.Debug().Msgf("%s → %s (trigger: %s)", e.Src, e.Dst, e.Event)
			},
		},
	)
}

// Schedule records t and either builds immediately (no delay) or arms the timer
func (s *scheduler) Schedule(t ledger.Trigger) {
	s.mu.Lock()

	if s.stopped {
		s.mu.Unlock()
		return
	}

	s.ledger.Append(t)

	if s.delay <= 0 {
		gen := s.ledger.Swap()
		s.mu.Unlock()

		s.callback(gen)

		return
	}

	defer s.mu.Unlock()

	if s.machine.Current() != Idle {
		s.log.Debug().Msgf("Batched %s", t)
		return
	}

	if err := s.machine.Event(context.Background(), Arm); err != nil {
		s.log.Error().Err(err).Msg("Failed to arm scheduler")
		return
	}

	s.timer = s.clock.AfterFunc(s.delay, s.fire)
}

// fire closes the batch and hands it to the callback outside the lock
func (s *scheduler) fire() {
	s.mu.Lock()

	if s.stopped || s.machine.Current() != Pending {
		s.mu.Unlock()
		return
	}

	if err := s.machine.Event(context.Background(), Fire); err != nil {
		s.log.Error().Err(err).Msg("Failed to fire scheduler")
	}

	s.timer = nil
	gen := s.ledger.Swap()
	s.mu.Unlock()

	s.callback(gen)
}

// State returns the current state name
func (s *scheduler) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.machine.Current()
}

// Stop cancels the pending timer, triggers scheduled afterwards are dropped
func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
