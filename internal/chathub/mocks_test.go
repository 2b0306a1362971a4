package chathub_test

import (
	"sync"
	"time"

	"salarythief/backend/internal/chathub"
	"salarythief/backend/internal/models"
)

// mockClient is a test double for the chathub.Client interface. Outbound
// events are captured on a buffered channel so tests can assert exactly
// what the hub delivered.
type mockClient struct {
	userID string
	send   chan models.ServerEvent
	closed bool
}

func newMockClient() *mockClient {
	return &mockClient{
		send: make(chan models.ServerEvent, 16), // Buffered to prevent blocking the hub in tests
	}
}

func (c *mockClient) GetUserID() string                         { return c.userID }
func (c *mockClient) SetUserID(id string)                       { c.userID = id }
func (c *mockClient) GetSendChannel() chan<- models.ServerEvent { return c.send }
func (c *mockClient) Run()                                      {}
func (c *mockClient) Close()                                    { c.closed = true }

// receive pops the next delivered event, or fails the wait after a short
// timeout so a missing delivery doesn't hang the test.
func (c *mockClient) receive(timeout time.Duration) (models.ServerEvent, bool) {
	select {
	case ev := <-c.send:
		return ev, true
	case <-time.After(timeout):
		return models.ServerEvent{}, false
	}
}

// drain returns every event currently buffered for this client.
func (c *mockClient) drain() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

// fakeScheduler records scheduled callbacks instead of arming real timers,
// so tests decide exactly when (and whether) a grace window expires.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []*fakeTimer
}

type fakeTimer struct {
	d        time.Duration
	fn       func()
	canceled bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{}
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) chathub.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, fn: fn}
	s.scheduled = append(s.scheduled, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.canceled = true
	}
}

// pending returns the number of callbacks scheduled so far, canceled or not.
func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scheduled)
}

// fire runs the i-th scheduled callback regardless of cancellation state,
// mimicking a timer that was already in flight when Stop was called.
func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	t := s.scheduled[i]
	s.mu.Unlock()
	t.fn()
}

// fireLive runs the i-th scheduled callback only if it was not canceled,
// the way a real timer behaves.
func (s *fakeScheduler) fireLive(i int) {
	s.mu.Lock()
	t := s.scheduled[i]
	s.mu.Unlock()
	if !t.canceled {
		t.fn()
	}
}
