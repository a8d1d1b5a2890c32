// SPDX-License-Identifier: GPL-3.0

// Package ids defines the small set of identifier types shared across the
// simulation's packages (node, channel, bus, agent, report, stats), kept in
// their own package so none of those packages need to import each other
// just to name a node or a packet.
package ids

// NodeID identifies a node (AP or STA) for the lifetime of a run.
type NodeID int

// WLANID identifies a BSS.
type WLANID int

// PacketID uniquely identifies one packet transmission's TX-start/TX-end
// pair, used to prevent double-subtracting channel power (spec 4.3).
type PacketID uint64

// NoNode is the sentinel NodeID meaning "no node" / "unaddressed".
const NoNode NodeID = -1
