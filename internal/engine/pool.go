// SPDX-License-Identifier: GPL-3.0

package engine

// eventPool is the typed event arena described in the design notes: rather
// than allocating and freeing individual *Event values (and the raw
// pointer/refcount bookkeeping that implies in the original C++), events
// are drawn from and returned to a pre-sized, doubling free list. Handles
// into the pool remain the *Event pointer itself; Go's garbage collector
// retires slots once nothing in the scheduler or a component still
// references them, so the pool only needs to avoid needless allocation on
// the hot Schedule/Cancel path (spec section 5, "Allocation").
type eventPool struct {
	free []*Event
}

const eventPoolInitialSlots = 256

func newEventPool() *eventPool {
	p := &eventPool{free: make([]*Event, 0, eventPoolInitialSlots)}
	for i := 0; i < eventPoolInitialSlots; i++ {
		p.free = append(p.free, &Event{heapIndex: -1})
	}
	return p
}

// get returns a zeroed Event ready for scheduling, taken from the free
// list's tail (LIFO, for cache locality) or freshly allocated when the pool
// is exhausted.
func (p *eventPool) get() *Event {
	if n := len(p.free); n > 0 {
		e := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		*e = Event{heapIndex: -1}
		return e
	}
	return &Event{heapIndex: -1}
}

// put returns an Event to the free list once it is no longer scheduled,
// doubling the free list's capacity when it is full.
func (p *eventPool) put(e *Event) {
	e.Data = nil
	e.active = false
	e.prev, e.next = nil, nil
	if len(p.free) < cap(p.free) {
		p.free = append(p.free, e)
		return
	}
	grown := make([]*Event, len(p.free), cap(p.free)*2)
	copy(grown, p.free)
	p.free = append(grown, e)
}
