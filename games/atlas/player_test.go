/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestBotGuessRate(t *testing.T) {
	rng := newTestRand()

	for _, difficulty := range []int{0, 25, 50, 80, 100} {
		bot := NewBot(difficulty, 3)

		const trials = 10000

		hits := 0
		for range trials {
			if bot.Guess(rng) {
				hits++
			}
		}

		assert.InDelta(t, float64(difficulty)/100, float64(hits)/trials, 0.03, "difficulty %d", difficulty)
	}
}

func TestBotDifficultyClamped(t *testing.T) {
	assert.Equal(t, 0, NewBot(-20, 3).Difficulty)
	assert.Equal(t, 100, NewBot(250, 3).Difficulty)
}

func TestHumanNeverGuesses(t *testing.T) {
	rng := newTestRand()
	p := NewHuman("a", "Alice", 3, 2)

	for range 100 {
		assert.False(t, p.Guess(rng))
	}
}

func TestPlayerReset(t *testing.T) {
	p := NewHuman("a", "Alice", 3, 2)
	p.Lives = -1
	p.Hints = 0

	p.Reset(3, 2)

	assert.Equal(t, 3, p.Lives)
	assert.Equal(t, 2, p.Hints)

	bot := NewBot(50, 3)
	bot.Lives = 0

	bot.Reset(3, 2)

	assert.Equal(t, 3, bot.Lives)
	assert.Zero(t, bot.Hints)
	assert.True(t, bot.IsBot())
}
