// SPDX-License-Identifier: GPL-3.0

// Package agent implements the per-BSS decision loop and the optional
// central controller (spec 4.4, 4.5): a pre-processor mapping
// Configuration<->action index and Performance->reward, pluggable
// Learner strategies, and a controller that coordinates channel
// assignment and action-banning across agents.
package agent

// Learner is the pluggable decision strategy spec 4.4 requires: update
// folds an observed reward into the learner's model, select picks the next
// arm to play. Only the interface is mandated (spec 1: "the specific
// choice and tuning of learning algorithms ... their internals are not
// [mandated]").
type Learner interface {
	Update(arm int, reward float64)
	Select(availableArms []int, lastArm int) int

	// MostPlayed reports the arm played most often so far and its share of
	// all recorded plays, the per-arm play-frequency signal spec 4.5(b)'s
	// action-banning strategy bans on.
	MostPlayed() (arm int, frequency float64)
}
