package agent_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnsim/dcfsim/internal/agent"
)

func TestEpsilonGreedySelectsBestArmWithoutExploration(t *testing.T) {
	// epsilon0=0 disables exploration entirely: Select must always pick the
	// running-mean-maximizing arm.
	l := agent.NewEpsilonGreedy(0, rand.New(rand.NewSource(1)))
	l.Update(0, 1.0)
	l.Update(1, 5.0)
	l.Update(2, 3.0)

	assert.Equal(t, 1, l.Select([]int{0, 1, 2}, 0))
}

func TestEpsilonGreedyFallsBackToLastArmWhenNoneAvailable(t *testing.T) {
	l := agent.NewEpsilonGreedy(1.0, rand.New(rand.NewSource(1)))
	assert.Equal(t, 7, l.Select(nil, 7))
}

func TestEpsilonGreedyUpdateAccumulatesMean(t *testing.T) {
	l := agent.NewEpsilonGreedy(0, rand.New(rand.NewSource(1)))
	l.Update(0, 10.0)
	l.Update(0, 0.0)
	// mean(arm 0) is now 5.0; a fresh single-sample arm 1 at 4.0 should lose.
	l.Update(1, 4.0)
	assert.Equal(t, 0, l.Select([]int{0, 1}, 0))
}

func TestEpsilonGreedyMostPlayedTracksPlayFrequency(t *testing.T) {
	l := agent.NewEpsilonGreedy(0, rand.New(rand.NewSource(1)))
	l.Update(0, 1.0)
	l.Update(0, 1.0)
	l.Update(0, 1.0)
	l.Update(1, 1.0)

	arm, freq := l.MostPlayed()
	assert.Equal(t, 0, arm)
	assert.InDelta(t, 0.75, freq, 1e-9)
}

func TestEpsilonGreedyMostPlayedWithNoPlaysIsZero(t *testing.T) {
	l := agent.NewEpsilonGreedy(0, rand.New(rand.NewSource(1)))
	arm, freq := l.MostPlayed()
	assert.Equal(t, 0, arm)
	assert.Zero(t, freq)
}
