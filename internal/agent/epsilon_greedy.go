// SPDX-License-Identifier: GPL-3.0

package agent

import (
	"math"
	"math/rand"
)

// EpsilonGreedy is a standard multi-armed-bandit learner: with probability
// epsilon it explores a uniformly random arm, otherwise it exploits the
// arm with the highest running mean reward, grounded on
// original_source/Code/network_optimization/learning_modules/multi_armed_bandits/action_selection_strategies/epsilon_greedy.h
// (PickArmEgreedy).
type EpsilonGreedy struct {
	Epsilon0 float64 // initial epsilon; decayed as 1/sqrt(k) per spec seed scenario 6
	rng      *rand.Rand

	rewardSum  map[int]float64
	playCount  map[int]int
	iterations int
}

// NewEpsilonGreedy constructs a learner with the given initial epsilon.
func NewEpsilonGreedy(epsilon0 float64, rng *rand.Rand) *EpsilonGreedy {
	return &EpsilonGreedy{
		Epsilon0:  epsilon0,
		rng:       rng,
		rewardSum: make(map[int]float64),
		playCount: make(map[int]int),
	}
}

// Update folds an observed reward for arm into its running mean.
func (e *EpsilonGreedy) Update(arm int, reward float64) {
	e.rewardSum[arm] += reward
	e.playCount[arm]++
}

// epsilon returns the current exploration probability, decayed as
// Epsilon0/sqrt(k) (spec seed scenario 6: "epsilon = 1/sqrt(k)" when
// Epsilon0 == 1).
func (e *EpsilonGreedy) epsilon() float64 {
	e.iterations++
	k := float64(e.iterations)
	if k < 1 {
		k = 1
	}
	eps := e.Epsilon0 / math.Sqrt(k)
	if eps > 1 {
		eps = 1
	}
	return eps
}

// MostPlayed implements Learner.
func (e *EpsilonGreedy) MostPlayed() (arm int, frequency float64) {
	total := 0
	best, bestCount := 0, 0
	for a, n := range e.playCount {
		total += n
		if n > bestCount {
			best, bestCount = a, n
		}
	}
	if total == 0 {
		return 0, 0
	}
	return best, float64(bestCount) / float64(total)
}

// mean returns arm's running mean reward, or 0 if unplayed.
func (e *EpsilonGreedy) mean(arm int) float64 {
	if n := e.playCount[arm]; n > 0 {
		return e.rewardSum[arm] / float64(n)
	}
	return 0
}

// Select implements Learner: PickArmEgreedy.
func (e *EpsilonGreedy) Select(availableArms []int, lastArm int) int {
	if len(availableArms) == 0 {
		return lastArm
	}
	if e.rng != nil && e.rng.Float64() < e.epsilon() {
		return availableArms[e.rng.Intn(len(availableArms))]
	}
	best := availableArms[0]
	bestMean := e.mean(best)
	for _, a := range availableArms[1:] {
		if m := e.mean(a); m > bestMean {
			best, bestMean = a, m
		}
	}
	return best
}
