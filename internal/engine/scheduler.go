// SPDX-License-Identifier: GPL-3.0

package engine

import "github.com/wnsim/dcfsim/internal/simlog"

// Activator is implemented by anything a Scheduler can fire an Event into.
// The Scheduler type-asserts components for the richer Stopper/ClearStatter
// interfaces the way the teacher's Node type-asserts Handler into Starter/Dinger/Stopper.
type Activator interface {
	Activate(ev *Event) error
}

// Stopper is an optional component hook invoked once Run reaches its stop
// time, mirroring the teacher's node.Stopper.
type Stopper interface {
	Stop(now Clock)
}

// ClearStatter is an optional component hook invoked once, when the
// scheduler's clock crosses the run's clear-stats time (spec 4.1's
// "clear_stats_time" argument to run), letting warm-up traffic be excluded
// from collected statistics.
type ClearStatter interface {
	ClearStats(now Clock)
}

// Backend selects the pending-event data structure a Scheduler uses.
type Backend int

const (
	// BackendCalendar is the default: Brown's calendar queue, O(1)
	// amortized insert/remove for the locally-clustered arrival pattern a
	// CSMA/CA simulation produces.
	BackendCalendar Backend = iota
	// BackendHeap is a binary min-heap, O(log N) insert/remove; useful for
	// small runs or as a correctness cross-check against the calendar
	// queue.
	BackendHeap
)

// Summary reports what a Run call accomplished.
type Summary struct {
	EventsProcessed uint64
	StopTime        Clock
}

// Scheduler is the single-threaded, cooperative discrete-event driver (spec
// 4.1). Unlike the teacher's Sim, which fans events out to one goroutine per
// node over channels, Scheduler calls directly into registered Activators on
// the same goroutine that calls Run, in strict time order.
type Scheduler struct {
	now        Clock
	queue      eventQueue
	pool       *eventPool
	components []Activator
	seq        uint64
	log        *simlog.Logger
}

// New creates a Scheduler using the given Backend. A nil logger is replaced
// with a discarding Logger.
func New(backend Backend, log *simlog.Logger) *Scheduler {
	var q eventQueue
	switch backend {
	case BackendHeap:
		q = newHeapQueue()
	default:
		q = newCalendarQueue()
	}
	if log == nil {
		log = simlog.Discard()
	}
	return &Scheduler{
		queue: q,
		pool:  newEventPool(),
		log:   log.With("component", "engine"),
	}
}

// Now returns the scheduler's current virtual time.
func (s *Scheduler) Now() Clock { return s.now }

// Register adds a component to the scheduler and returns the ComponentID
// Schedule calls should address it by.
func (s *Scheduler) Register(a Activator) ComponentID {
	s.components = append(s.components, a)
	return ComponentID(len(s.components) - 1)
}

// Schedule books an Event to fire after delay has elapsed from the
// scheduler's current time. It is equivalent to ScheduleAt(owner, kind,
// data, s.Now()+delay).
func (s *Scheduler) Schedule(owner ComponentID, kind Kind, data any, delay Clock) (*Event, error) {
	return s.ScheduleAt(owner, kind, data, s.now+delay)
}

// ScheduleAt books an Event to fire at the absolute virtual time t. It
// returns ErrTimeInPast if t is strictly before the current clock.
func (s *Scheduler) ScheduleAt(owner ComponentID, kind Kind, data any, t Clock) (*Event, error) {
	if t < s.now {
		return nil, ErrTimeInPast
	}
	e := s.pool.get()
	e.Time = t
	e.Owner = owner
	e.Kind = kind
	e.Data = data
	e.active = true
	e.seq = s.seq
	s.seq++
	s.queue.push(e)
	return e, nil
}

// Cancel removes a previously scheduled Event. It is a no-op if the Event
// is nil or not currently scheduled (spec 4.1).
func (s *Scheduler) Cancel(e *Event) {
	if e == nil || !e.active {
		return
	}
	s.queue.remove(e)
	s.pool.put(e)
}

// Reschedule moves an Event to a new absolute time, equivalent to
// Cancel(e) followed by a fresh ScheduleAt with the same owner/kind/data
// (spec 4.1: "rescheduling an active event is equivalent to cancel then
// insert"). It returns ErrTimeInPast under the same condition as
// ScheduleAt.
func (s *Scheduler) Reschedule(e *Event, t Clock) (*Event, error) {
	if e == nil {
		return nil, ErrUnknownComponent
	}
	owner, kind, data := e.Owner, e.Kind, e.Data
	if e.active {
		s.Cancel(e)
	}
	return s.ScheduleAt(owner, kind, data, t)
}

// Run drains the event queue in time order until no event remains at or
// before stopTime, calling back into each Event's owning component. If
// clearStatsTime is non-nil, every registered ClearStatter is notified
// exactly once, the first time the clock reaches or passes that time.
func (s *Scheduler) Run(stopTime Clock, clearStatsTime *Clock) (Summary, error) {
	var cleared bool
	if clearStatsTime == nil {
		cleared = true
	}
	var processed uint64
	for {
		head := s.queue.peekMin()
		if head == nil || head.Time > stopTime {
			break
		}
		e := s.queue.popMin()
		s.now = e.Time
		e.active = false

		if !cleared && s.now >= *clearStatsTime {
			s.clearStats(s.now)
			cleared = true
		}

		if int(e.Owner) < 0 || int(e.Owner) >= len(s.components) {
			s.pool.put(e)
			return Summary{EventsProcessed: processed, StopTime: s.now}, ErrUnknownComponent
		}
		comp := s.components[e.Owner]
		if err := comp.Activate(e); err != nil {
			s.pool.put(e)
			return Summary{EventsProcessed: processed, StopTime: s.now}, err
		}
		s.pool.put(e)
		processed++
	}
	if s.now < stopTime {
		s.now = stopTime
	}
	if !cleared {
		s.clearStats(s.now)
	}
	s.stopAll(s.now)
	return Summary{EventsProcessed: processed, StopTime: s.now}, nil
}

func (s *Scheduler) clearStats(now Clock) {
	for _, c := range s.components {
		if cs, ok := c.(ClearStatter); ok {
			cs.ClearStats(now)
		}
	}
}

func (s *Scheduler) stopAll(now Clock) {
	for _, c := range s.components {
		if st, ok := c.(Stopper); ok {
			st.Stop(now)
		}
	}
}

// Pending reports how many events are currently queued.
func (s *Scheduler) Pending() int { return s.queue.len() }
