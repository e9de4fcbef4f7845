/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
)

// expiredSentinel is the countdown value at which the current turn is lost.
const expiredSentinel = -1

// RoomConfig holds the per-game rules shared by every room of a Game.
type RoomConfig struct {
	Lives    int
	Hints    int
	TurnTime time.Duration

	// FirstLetter is the required letter of the opening word of every game.
	// Zero accepts any letter.
	FirstLetter byte
}

func (c RoomConfig) turnSeconds() int {
	return int(c.TurnTime / time.Second)
}

// Room is one game session. It is not safe for concurrent use; the Game
// loop is its only writer.
type Room struct {
	ID   int
	Name string

	password string
	creator  *Player
	all      []*Player
	live     []*Player
	current  int

	ledger        *Ledger
	lastWord      string
	log           eventLog
	timeRemaining int
	running       bool

	// turn increases on every transition; events captured for an older
	// turn are stale.
	turn    uint64
	pending bool
	timer   turnTimer

	// announced is set once the winner of the current game was logged.
	announced bool

	cfg RoomConfig
	rng *rand.Rand
}

func NewRoom(id int, name, password string, creator *Player, cfg RoomConfig, rng *rand.Rand) *Room {
	r := &Room{
		ID:            id,
		Name:          name,
		password:      password,
		creator:       creator,
		current:       -1,
		ledger:        NewLedger(),
		timeRemaining: cfg.turnSeconds(),
		cfg:           cfg,
		rng:           rng,
	}

	r.AddPlayer(creator)

	return r
}

func (r *Room) AddPlayer(p *Player) {
	r.all = append(r.all, p)
	p.RoomID = r.ID
}

// AddBot seats a computer player. Bots never become creator.
func (r *Room) AddBot(b *Player) {
	r.all = append(r.all, b)
	b.RoomID = r.ID
}

func (r *Room) Running() bool {
	return r.running
}

// Active reports whether turns are still being played.
func (r *Room) Active() bool {
	return r.running && len(r.live) > 1
}

// Finished reports whether a single survivor remains.
func (r *Room) Finished() bool {
	return r.running && len(r.live) == 1
}

func (r *Room) Creator() *Player {
	return r.creator
}

func (r *Room) IsCreator(id string) bool {
	return r.creator != nil && r.creator.ID == id
}

func (r *Room) Turn() uint64 {
	return r.turn
}

func (r *Room) TimeRemaining() int {
	return r.timeRemaining
}

func (r *Room) LastWord() string {
	return r.lastWord
}

// Log returns the event log, newest first.
func (r *Room) Log() []string {
	return slices.Clone(r.log)
}

func (r *Room) Players() []*Player {
	return slices.Clone(r.all)
}

func (r *Room) LivePlayers() []*Player {
	return slices.Clone(r.live)
}

func (r *Room) Ledger() *Ledger {
	return r.ledger
}

func (r *Room) Member(id string) (*Player, bool) {
	for _, p := range r.all {
		if p.ID == id {
			return p, true
		}
	}

	return nil, false
}

// CurrentPlayer returns the turn-holder, if any.
func (r *Room) CurrentPlayer() (*Player, bool) {
	if !r.running || r.current < 0 || r.current >= len(r.live) {
		return nil, false
	}

	return r.live[r.current], true
}

// Winner returns the survivor of a finished game.
func (r *Room) Winner() (*Player, bool) {
	if !r.Finished() {
		return nil, false
	}

	return r.live[0], true
}

// RequiredLetter returns the letter the next answer must start with. The
// second result is false when any letter is accepted.
func (r *Room) RequiredLetter() (byte, bool) {
	if r.lastWord != "" {
		return lastLetter(r.lastWord)
	}

	if r.cfg.FirstLetter == 0 {
		return 0, false
	}

	return lower(r.cfg.FirstLetter), true
}

// Destroyable reports whether the room has no one left who can play.
func (r *Room) Destroyable() bool {
	switch len(r.all) {
	case 0:
		return true
	case 1:
		return r.all[0].IsBot()
	default:
		return false
	}
}

func (r *Room) Start() error {
	if r.running {
		return ErrAlreadyRunning
	}

	if len(r.all) <= 1 {
		return ErrInsufficientPlayers
	}

	r.begin()

	return nil
}

// Restart begins a new game in a finished room with the same members.
func (r *Room) Restart() error {
	if len(r.live) != 1 {
		return ErrNotFinished
	}

	r.reset()

	if len(r.all) > 1 {
		r.begin()
	}

	return nil
}

// reset returns the room to the lobby with fresh counters for every member.
func (r *Room) reset() {
	for _, p := range r.all {
		p.Reset(r.cfg.Lives, r.cfg.Hints)
	}

	r.timer.cancel()
	r.live = nil
	r.current = -1
	r.ledger.Reset()
	r.lastWord = ""
	r.pending = false
	r.running = false
	r.timeRemaining = r.cfg.turnSeconds()
}

func (r *Room) begin() {
	r.live = slices.Clone(r.all)
	r.running = true
	r.announced = false
	r.current = r.rng.IntN(len(r.live))
	r.newTurn()

	for skipped := 0; r.live[r.current].IsBot() && skipped < len(r.live); skipped++ {
		r.advanceTurn()
	}
}

// ChangeCreator hands ownership to the first human member other than the
// outgoing creator.
func (r *Room) ChangeCreator() error {
	for _, p := range r.all {
		if p.IsBot() || (r.creator != nil && p.ID == r.creator.ID) {
			continue
		}

		r.creator = p

		return nil
	}

	return ErrNoCreator
}

func (r *Room) newTurn() {
	r.timer.cancel()
	r.timeRemaining = r.cfg.turnSeconds()
	r.pending = false
	r.turn++
}

func (r *Room) advanceTurn() {
	if len(r.live) == 0 {
		r.current = 0
	} else {
		r.current = (r.current + 1) % len(r.live)
	}

	r.newTurn()
}

// SubmitWord records an answer already checked for existence and leading
// letter by the caller.
func (r *Room) SubmitWord(word string) error {
	word = strings.ToLower(strings.TrimSpace(word))

	if r.ledger.Contains(word) {
		return ErrDuplicateAnswer
	}

	if !r.ledger.Add(word) {
		return fmt.Errorf("%w: %q", ErrInvalidAnswer, word)
	}

	r.lastWord = word
	r.advanceTurn()

	return nil
}

// ReduceLifeOfCurrent costs the turn-holder one life, eliminating them once
// their lives drop below zero. It reports the affected player and whether
// they were eliminated.
func (r *Room) ReduceLifeOfCurrent() (*Player, bool) {
	p, ok := r.CurrentPlayer()
	if !ok {
		return nil, false
	}

	p.Lives--

	if p.Lives < 0 {
		r.removeLive(r.current)

		return p, true
	}

	r.advanceTurn()

	return p, false
}

// QuitCurrent removes the turn-holder from the game. The caller must have
// checked that the quitter holds the turn.
func (r *Room) QuitCurrent() (*Player, bool) {
	p, ok := r.CurrentPlayer()
	if !ok {
		return nil, false
	}

	r.removeLive(r.current)
	r.AppendLog(fmt.Sprintf("%s quits the game", p.Name))

	return p, true
}

// RemovePlayer takes a leaving member out of the room.
func (r *Room) RemovePlayer(id string) (*Player, bool) {
	i := slices.IndexFunc(r.all, func(p *Player) bool { return p.ID == id })
	if i < 0 {
		return nil, false
	}

	p := r.all[i]
	r.all = slices.Delete(r.all, i, i+1)
	p.RoomID = NoRoom

	if !r.running {
		return p, true
	}

	j := slices.Index(r.live, p)
	if j < 0 {
		return p, true
	}

	// The survivor of a finished game left: back to the lobby.
	if r.Finished() {
		r.reset()
		r.AppendLog(fmt.Sprintf("%s left the game", p.Name))

		return p, true
	}

	if j == r.current {
		r.QuitCurrent()

		return p, true
	}

	r.removeLive(j)
	r.AppendLog(fmt.Sprintf("%s left the game", p.Name))

	return p, true
}

// removeLive drops live player i. Removing the turn-holder steps the index
// back before advancing so the next player in order takes the turn.
func (r *Room) removeLive(i int) {
	r.live = slices.Delete(r.live, i, i+1)

	switch {
	case i == r.current:
		r.current--
		r.advanceTurn()
	case i < r.current:
		r.current--
	}
}

func (r *Room) AppendLog(text string) {
	r.log.push(text)
}

// tick counts down the armed turn and reports whether it just expired.
func (r *Room) tick() bool {
	if !r.timer.armed || r.timer.turn != r.turn {
		return false
	}

	r.timeRemaining--

	return r.timeRemaining <= expiredSentinel
}

// holds reports whether playerID still holds the given turn.
func (r *Room) holds(turn uint64, playerID string) bool {
	if r.turn != turn {
		return false
	}

	p, ok := r.CurrentPlayer()

	return ok && p.ID == playerID
}
