package chathub

import "time"

// CancelFunc stops a scheduled callback. Calling it after the callback has
// started running is a no-op; the hub's own bookkeeping (pointer identity on
// the grace timer) decides whether a late firing still has effect.
type CancelFunc func()

// Scheduler abstracts deferred execution so the grace window can be driven
// deterministically in tests with a fake implementation.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) CancelFunc
}

type timerScheduler struct{}

// NewScheduler returns the production scheduler backed by time.AfterFunc.
func NewScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// graceTimer is the pending teardown for one disconnected user. The hub
// compares pointers when an expiry arrives: only the timer currently on
// record for that user may tear the room down, so a canceled or superseded
// timer that fires late is ignored.
type graceTimer struct {
	userID string
	cancel CancelFunc
}
