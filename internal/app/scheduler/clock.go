package scheduler

import "time"

// Timer is a handle to a one-shot timer
type Timer interface {
	Stop() bool
}

// Clock starts one-shot timers, injectable so scheduling can be tested without real time
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// NewClock returns a Clock backed by the time package
func NewClock() Clock {
	return realClock{}
}

// AfterFunc runs f on its own goroutine once d has elapsed
func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
