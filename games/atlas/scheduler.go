/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import "time"

// TickerCreator produces the periodic tick source that drives every
// countdown of a Game.
type TickerCreator interface {
	Create(d time.Duration) (<-chan time.Time, func())
}

type tickerGen struct{}

func (tickerGen) Create(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)

	return t.C, t.Stop
}

// NewTickerGen returns a TickerCreator backed by time.NewTicker.
func NewTickerGen() TickerCreator {
	return tickerGen{}
}

type stopper interface {
	Stop() bool
}

// afterFunc schedules f to run once after d. The returned value cancels it.
type afterFunc func(d time.Duration, f func()) stopper

func timeAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// turnTimer is a room's scheduler handle: the countdown armed for one turn
// and the delayed bot move, if any.
type turnTimer struct {
	armed bool
	turn  uint64
	bot   stopper
}

func (t *turnTimer) cancel() {
	t.armed = false

	if t.bot != nil {
		t.bot.Stop()
		t.bot = nil
	}
}

// turnRef identifies the turn an asynchronous event was captured for.
type turnRef struct {
	roomID   int
	turn     uint64
	playerID string
}

func refOf(r *Room, p *Player) turnRef {
	return turnRef{
		roomID:   r.ID,
		turn:     r.turn,
		playerID: p.ID,
	}
}

// arm starts the countdown for the room's current turn and, when a bot holds
// it, schedules the bot's move. Only the loop calls arm, after a transition.
func (g *Game) arm(r *Room) {
	r.timer.cancel()

	if !r.Active() {
		return
	}

	holder, ok := r.CurrentPlayer()
	if !ok {
		return
	}

	r.timer.armed = true
	r.timer.turn = r.turn

	if !holder.IsBot() {
		return
	}

	ref := refOf(r, holder)

	r.timer.bot = g.afterFunc(g.cfg.BotDelay, func() {
		select {
		case g.botMoves <- ref:
		case <-g.done:
		}
	})
}

// settle re-arms the scheduler after a transition and announces a winner
// once per game.
func (g *Game) settle(r *Room) {
	g.arm(r)

	if winner, ok := r.Winner(); ok && !r.announced {
		r.announced = true
		r.AppendLog(winner.Name + " wins the game")

		g.log.Info().Int("room", r.ID).Str("player", winner.ID).Msg("game finished")
	}
}

// tick advances every armed countdown by one step.
func (g *Game) tick(now time.Time) {
	for _, r := range g.registry.Rooms() {
		if !r.tick() {
			continue
		}

		p, eliminated := r.ReduceLifeOfCurrent()
		if p == nil {
			g.arm(r)

			continue
		}

		r.AppendLog(p.Name + " was unable to answer within time")

		g.log.Debug().Int("room", r.ID).Str("player", p.ID).Bool("eliminated", eliminated).Msg("turn expired")

		g.settle(r)
		g.pushGame(r)
	}

	if g.cfg.PlayerTimeout > 0 {
		if n := g.registry.Reap(now.Add(-g.cfg.PlayerTimeout)); n > 0 {
			g.log.Debug().Int("sessions", n).Msg("reaped idle sessions")
		}
	}
}
