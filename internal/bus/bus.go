// SPDX-License-Identifier: GPL-3.0

package bus

import "github.com/wnsim/dcfsim/internal/ids"

// Receiver is implemented by anything the Bus can fan notifications out
// to: every node in the simulation.
type Receiver interface {
	ID() ids.NodeID
	OnTXStart(n Notification)
	OnTXEnd(n Notification)
	OnNACK(nack NACK)

	// OnConfigChanged notifies a receiver that another node's Configuration
	// changed, so any MCS table it cached for that node as a destination is
	// stale (spec 4.2.2's cache-invalidation-on-reconfiguration rule).
	OnConfigChanged(source ids.NodeID)
}

// Bus is the no-shared-state fanout described in spec section 5: node
// transmissions are delivered to every other registered Receiver as paired
// TX-start/TX-end calls, and logical NACKs are routed point-to-point back
// to their source. It is the generalized replacement for the teacher's
// Sim.input/Sim.output channel dispatch (heistp-scim/sim.go), collapsed
// from per-node goroutines into direct calls on the scheduler's single
// goroutine.
type Bus struct {
	receivers map[ids.NodeID]Receiver
	order     []ids.NodeID
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{receivers: make(map[ids.NodeID]Receiver)}
}

// Register adds a node to the fanout set.
func (b *Bus) Register(r Receiver) {
	if _, exists := b.receivers[r.ID()]; !exists {
		b.order = append(b.order, r.ID())
	}
	b.receivers[r.ID()] = r
}

// TXStart delivers n.Source's transmission-start to every other registered
// node, in registration order (spec 5: order must not affect correctness,
// only determinism).
func (b *Bus) TXStart(n Notification) {
	for _, id := range b.order {
		if id == n.Source {
			continue
		}
		b.receivers[id].OnTXStart(n)
	}
}

// TXEnd delivers n.Source's transmission-end to every other registered
// node.
func (b *Bus) TXEnd(n Notification) {
	for _, id := range b.order {
		if id == n.Source {
			continue
		}
		b.receivers[id].OnTXEnd(n)
	}
}

// NACK routes a logical NACK directly back to the node that sent the frame
// it describes (nack.Source is the emitter; routing targets the original
// transmitter, carried by the caller via Notification.Source at the call
// site — NACK takes the explicit target to keep Bus itself stateless about
// in-flight packets).
func (b *Bus) NACK(to ids.NodeID, nack NACK) {
	if r, ok := b.receivers[to]; ok {
		r.OnNACK(nack)
	}
}

// ConfigChanged broadcasts that source's Configuration changed to every
// other registered node, so any of them caching an MCS table keyed by
// source as destination can invalidate it.
func (b *Bus) ConfigChanged(source ids.NodeID) {
	for _, id := range b.order {
		if id == source {
			continue
		}
		b.receivers[id].OnConfigChanged(source)
	}
}

// Len reports the number of registered receivers.
func (b *Bus) Len() int { return len(b.order) }
