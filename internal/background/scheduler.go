package background

import (
	"time"
)

// FrameFunc runs once per display refresh. ts is the refresh timestamp.
type FrameFunc func(ts time.Duration)

// FrameID identifies a requested frame callback.
type FrameID uint64

// Scheduler runs callbacks on the next display refresh, in the manner of
// requestAnimationFrame. Callbacks run on the same thread as event handlers.
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
}

// Loop runs a FrameFunc once per display refresh until stopped. The next
// frame is requested before fn runs, so Stop from inside fn still cancels it.
type Loop struct {
	sched   Scheduler
	fn      FrameFunc
	id      FrameID
	pending bool
	stopped bool
}

// StartLoop schedules fn for the next refresh and every one after it.
func StartLoop(sched Scheduler, fn FrameFunc) *Loop {
	l := &Loop{sched: sched, fn: fn}
	l.schedule()
	return l
}

func (l *Loop) schedule() {
	l.id = l.sched.RequestFrame(l.tick)
	l.pending = true
}

func (l *Loop) tick(ts time.Duration) {
	l.pending = false
	if l.stopped {
		return
	}
	l.schedule()
	l.fn(ts)
}

// Stop cancels the pending frame. It is safe to call more than once.
func (l *Loop) Stop() {
	if l.stopped {
		return
	}
	l.stopped = true
	if l.pending {
		l.sched.CancelFrame(l.id)
		l.pending = false
	}
}

// Running reports whether a frame is scheduled.
func (l *Loop) Running() bool {
	return !l.stopped && l.pending
}

// ManualScheduler is a Scheduler driven by explicit Tick calls. It is used
// for headless runs and tests.
type ManualScheduler struct {
	next    FrameID
	pending map[FrameID]FrameFunc
	order   []FrameID
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[FrameID]FrameFunc)}
}

func (m *ManualScheduler) RequestFrame(fn FrameFunc) FrameID {
	m.next++
	m.pending[m.next] = fn
	m.order = append(m.order, m.next)
	return m.next
}

func (m *ManualScheduler) CancelFrame(id FrameID) {
	delete(m.pending, id)
}

// Pending is the number of callbacks waiting for the next Tick.
func (m *ManualScheduler) Pending() int {
	return len(m.pending)
}

// Tick runs the callbacks that were pending when it was called, in request
// order, and returns how many ran. Callbacks requested during the tick wait
// for the next one.
func (m *ManualScheduler) Tick(ts time.Duration) int {
	batch := m.order
	m.order = nil

	ran := 0
	for _, id := range batch {
		fn, ok := m.pending[id]
		if !ok {
			continue
		}
		delete(m.pending, id)
		fn(ts)
		ran++
	}
	return ran
}
