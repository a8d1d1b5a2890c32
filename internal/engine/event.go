// SPDX-License-Identifier: GPL-3.0

// Package engine implements the priority-queue-driven discrete-event
// scheduler that is the foundation of the simulation (spec section 4.1). It
// replaces the teacher's goroutine-per-node, channel-passing Sim with an
// explicit, single-threaded Schedule/Cancel/Run API backed by a typed event
// arena, per the design notes' call to replace raw pointers and reference
// counting with stable index handles.
package engine

import "fmt"

// ComponentID identifies a registered Component within a Scheduler.
type ComponentID int

// Kind distinguishes the payload variants an Event can carry (spec 3.1).
type Kind int

const (
	// KindBackoffExpiry fires when a node's backoff counter reaches zero.
	KindBackoffExpiry Kind = iota
	// KindFrameTXEnd fires when an in-flight transmission completes.
	KindFrameTXEnd
	// KindSIFSTimeout fires after a SIFS gap in an RTS/CTS/DATA/ACK exchange.
	KindSIFSTimeout
	// KindDIFSElapsed fires when a channel has been idle for DIFS.
	KindDIFSElapsed
	// KindACKTimeout fires when an expected CTS/ACK failed to arrive in time.
	KindACKTimeout
	// KindAgentRequest fires on an agent's periodic request timer.
	KindAgentRequest
	// KindProgressMarker fires on the optional progress-reporting timer.
	KindProgressMarker
	// KindTrafficArrival fires on a node's traffic-generator interarrival
	// timer (spec 3.2's per-node traffic model).
	KindTrafficArrival
)

func (k Kind) String() string {
	switch k {
	case KindBackoffExpiry:
		return "backoff-expiry"
	case KindFrameTXEnd:
		return "frame-tx-end"
	case KindSIFSTimeout:
		return "sifs-timeout"
	case KindDIFSElapsed:
		return "difs-elapsed"
	case KindACKTimeout:
		return "ack-timeout"
	case KindAgentRequest:
		return "agent-request"
	case KindProgressMarker:
		return "progress-marker"
	case KindTrafficArrival:
		return "traffic-arrival"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a single scheduled action. An Event is owned by exactly one slot:
// scheduling an already-active Event first cancels its prior scheduling
// (spec 3.1 invariant).
type Event struct {
	Time  Clock
	Owner ComponentID
	Kind  Kind
	Data  any
	Slot  int // multi-slot timer identifier, e.g. per-flow or per-channel index

	active bool
	seq    uint64 // tie-break for simultaneous times; insertion order

	// heap backend bookkeeping
	heapIndex int

	// calendar-queue backend bookkeeping: intrusive sorted doubly linked
	// list within a bucket, giving O(1) removal given the Event pointer.
	bucket     int
	prev, next *Event
}

// Active reports whether the Event is currently scheduled.
func (e *Event) Active() bool {
	return e != nil && e.active
}
