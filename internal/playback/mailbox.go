package playback

import (
	"sync"
	"time"
)

// mailbox is an unbounded FIFO of functions drained by a single goroutine.
// post never blocks, so callbacks from the render engine, timers and
// negotiation goroutines can hand work to the owner without waiting on it.
type mailbox struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// post enqueues fn. Returns false once the mailbox is closed.
func (m *mailbox) post(fn func()) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
	m.wake()
	return true
}

// close stops accepting work. Functions already queued still run.
func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wake()
}

// run drains the mailbox until it is closed and empty.
func (m *mailbox) run() {
	defer close(m.done)
	for range m.signal {
		m.mu.Lock()
		batch := m.queue
		m.queue = nil
		closed := m.closed
		m.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if closed {
			return
		}
	}
}

func (m *mailbox) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// timerSlot holds at most one pending callback that runs on the owner
// goroutine. Scheduling again or cancelling drops the pending callback, even
// if its timer already fired and the call is waiting in the mailbox.
//
// Only the owner goroutine touches a timerSlot.
type timerSlot struct {
	gen   uint64
	timer *time.Timer
}

func (s *timerSlot) schedule(d time.Duration, post func(func()) bool, fn func()) {
	s.cancel()
	gen := s.gen
	s.timer = time.AfterFunc(d, func() {
		post(func() {
			if s.gen != gen {
				return
			}
			s.timer = nil
			fn()
		})
	})
}

func (s *timerSlot) cancel() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *timerSlot) pending() bool {
	return s.timer != nil
}
