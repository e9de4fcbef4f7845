/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import "math/rand/v2"

type Kind int

const (
	Human Kind = iota
	Bot
)

const (
	botID   = "Atlas-AI"
	botName = "Atlas-AI"

	// NoRoom is the room id of a session browsing the lobby.
	NoRoom = -1
)

// Player is a room member. Only the owning Room mutates it.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       Kind   `json:"-"`
	Lives      int    `json:"lives"`
	Hints      int    `json:"hints"`
	Difficulty int    `json:"-"`
	RoomID     int    `json:"-"`
}

func NewHuman(id, name string, lives, hints int) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Kind:   Human,
		Lives:  lives,
		Hints:  hints,
		RoomID: NoRoom,
	}
}

// NewBot returns a computer player that answers correctly with
// probability difficulty/100. Difficulty is clamped to 0..100.
func NewBot(difficulty, lives int) *Player {
	return &Player{
		ID:         botID,
		Name:       botName,
		Kind:       Bot,
		Lives:      lives,
		Difficulty: min(max(difficulty, 0), 100),
		RoomID:     NoRoom,
	}
}

func (p *Player) IsBot() bool {
	return p.Kind == Bot
}

// Guess reports whether the player produces a correct answer this turn
// without outside input. Humans always answer through the dispatcher.
func (p *Player) Guess(rng *rand.Rand) bool {
	switch p.Kind {
	case Bot:
		return rng.IntN(100) < p.Difficulty
	default:
		return false
	}
}

// Reset restores counters for a fresh game.
func (p *Player) Reset(lives, hints int) {
	p.Lives = lives

	switch p.Kind {
	case Bot:
		p.Hints = 0
	default:
		p.Hints = hints
	}
}
