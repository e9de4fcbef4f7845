/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package atlas runs the place-name chain game: players take turns naming a
// place that starts with the last letter of the previous answer, losing a
// life for every miss until a single survivor remains.
//
// Every room and registry mutation happens on the goroutine running
// Game.Run. Place lookups are the only suspension points; their results
// come back through the loop and are dropped when the turn they were
// captured for has already been resolved.
package atlas

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Rules         RoomConfig
	BotDelay      time.Duration
	PlacesTimeout time.Duration
	PlayerTimeout time.Duration
	RateLimit     float64
	RateBurst     int
}

// Action is one inbound request from a participant.
type Action struct {
	PlayerID string
	Conn     Sender
	Msg      ClientMessage
}

type lookupKind int

const (
	lookupAnswer lookupKind = iota
	lookupHint
	lookupBot
)

type lookupResult struct {
	ref        turnRef
	kind       lookupKind
	word       string
	letter     byte
	valid      bool
	candidates []string
	err        error
}

type Game struct {
	cfg      Config
	log      zerolog.Logger
	registry *Registry
	places   PlaceService
	rng      *rand.Rand
	tickers  TickerCreator

	afterFunc afterFunc
	now       func() time.Time

	actions  chan Action
	botMoves chan turnRef
	results  chan lookupResult
	roomsReq chan chan []RoomSummary
	done     chan struct{}
}

type Option func(*Game)

func WithTickers(t TickerCreator) Option {
	return func(g *Game) { g.tickers = t }
}

func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

func WithRegistry(r *Registry) Option {
	return func(g *Game) { g.registry = r }
}

func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

func New(cfg Config, places PlaceService, log zerolog.Logger, opts ...Option) *Game {
	g := &Game{
		cfg:       cfg,
		log:       log,
		registry:  NewRegistry(),
		places:    places,
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		tickers:   NewTickerGen(),
		afterFunc: timeAfterFunc,
		now:       time.Now,
		actions:   make(chan Action, 256),
		botMoves:  make(chan turnRef, 32),
		results:   make(chan lookupResult, 64),
		roomsReq:  make(chan chan []RoomSummary, 32),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Run processes events until ctx is done, then cancels every room's
// scheduler.
func (g *Game) Run(ctx context.Context) {
	ticks, stop := g.tickers.Create(time.Second)

	defer func() {
		stop()

		for _, r := range g.registry.Rooms() {
			r.timer.cancel()
		}

		close(g.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticks:
			g.tick(now)
		case a := <-g.actions:
			g.handle(a)
		case ref := <-g.botMoves:
			g.botMove(ref)
		case res := <-g.results:
			g.resolve(res)
		case resp := <-g.roomsReq:
			resp <- g.registry.OpenRooms()
		}
	}
}

// Submit queues an action for the loop.
func (g *Game) Submit(ctx context.Context, a Action) bool {
	select {
	case g.actions <- a:
		return true
	case <-ctx.Done():
		return false
	case <-g.done:
		return false
	}
}

// OpenRooms returns the joinable rooms, or nil if ctx ends first.
func (g *Game) OpenRooms(ctx context.Context) []RoomSummary {
	resp := make(chan []RoomSummary, 1)

	select {
	case g.roomsReq <- resp:
	case <-ctx.Done():
		return nil
	case <-g.done:
		return nil
	}

	select {
	case rooms := <-resp:
		return rooms
	case <-ctx.Done():
		return nil
	}
}

func send(conn Sender, msg any) {
	if conn != nil {
		conn.Send(msg)
	}
}

func (g *Game) fail(a Action, err error) {
	g.log.Debug().Str("player", a.PlayerID).Str("action", a.Msg.Type).Err(err).Msg("action rejected")

	send(a.Conn, ErrorMessage{Type: "error", Error: err.Error()})
}

// notify reports err to the current transport of playerID.
func (g *Game) notify(playerID string, err error) {
	if s, ok := g.registry.Session(playerID); ok {
		send(s.Conn, ErrorMessage{Type: "error", Error: err.Error()})
	}
}

func (g *Game) handle(a Action) {
	now := g.now()

	if a.Msg.Type == actionDisconnect {
		g.registry.Disconnect(a.PlayerID, a.Conn, now)

		return
	}

	if s, ok := g.registry.Session(a.PlayerID); ok {
		s.LastSeen = now
	}

	switch a.Msg.Type {
	case actionIdentify:
		s := g.registry.Identify(a.PlayerID, a.Conn, now)
		send(a.Conn, SessionMessage{Type: "session", RoomID: s.RoomID})
	case actionRoomList:
		g.registry.Identify(a.PlayerID, a.Conn, now)
		send(a.Conn, RoomListMessage{Type: "room_list", Rooms: g.registry.OpenRooms()})
	case actionLobby:
		g.lobby(a)
	case actionCreateRoom:
		g.createRoom(a)
	case actionJoinRoom:
		g.joinRoom(a)
	case actionLeaveRoom, actionLeaveGame:
		g.leave(a)
	case actionStartRoom:
		g.startRoom(a)
	case actionGame:
		g.game(a)
	case actionAnswer:
		g.answer(a)
	case actionHint:
		g.hint(a)
	case actionRestart:
		g.restart(a)
	default:
		g.fail(a, ErrUnauthorized)
	}
}

func (g *Game) lobby(a Action) {
	_, room, err := g.registry.RoomOf(a.PlayerID)
	if err != nil {
		g.fail(a, err)

		return
	}

	send(a.Conn, lobbySnapshot(room))
}

func (g *Game) createRoom(a Action) {
	name := strings.TrimSpace(a.Msg.RoomName)
	userName := strings.TrimSpace(a.Msg.UserName)

	if name == "" || userName == "" {
		send(a.Conn, RoomIDMessage{Type: "room_id", RoomID: NoRoom, Error: ErrUnauthorized.Error()})

		return
	}

	rules := g.cfg.Rules
	creator := NewHuman(a.PlayerID, userName, rules.Lives, rules.Hints)

	room, err := g.registry.CreateRoom(name, a.Msg.Password, creator, rules, g.rng)
	if err != nil {
		g.log.Debug().Str("player", a.PlayerID).Str("name", name).Err(err).Msg("room not created")

		send(a.Conn, RoomIDMessage{Type: "room_id", RoomID: NoRoom, Error: err.Error()})

		return
	}

	if a.Msg.EnableBot {
		room.AddBot(NewBot(a.Msg.BotDifficulty, rules.Lives))
	}

	g.log.Info().Int("room", room.ID).Str("name", room.Name).Str("player", a.PlayerID).Bool("bot", a.Msg.EnableBot).Msg("room created")

	send(a.Conn, RoomIDMessage{Type: "room_id", RoomID: room.ID})

	g.broadcastRoomList()
}

func (g *Game) joinRoom(a Action) {
	userName := strings.TrimSpace(a.Msg.UserName)
	if userName == "" {
		send(a.Conn, RoomIDMessage{Type: "room_id", RoomID: NoRoom, Error: ErrUnauthorized.Error()})

		return
	}

	rules := g.cfg.Rules
	p := NewHuman(a.PlayerID, userName, rules.Lives, rules.Hints)

	room, err := g.registry.JoinRoom(a.Msg.RoomID, a.Msg.Password, p)
	if err != nil {
		g.log.Debug().Str("player", a.PlayerID).Int("room", a.Msg.RoomID).Err(err).Msg("join rejected")

		send(a.Conn, RoomIDMessage{Type: "room_id", RoomID: NoRoom, Error: err.Error()})

		return
	}

	g.log.Info().Int("room", room.ID).Str("player", a.PlayerID).Msg("player joined")

	send(a.Conn, RoomIDMessage{Type: "room_id", RoomID: room.ID})

	g.pushLobby(room)
	g.broadcastRoomList()
}

func (g *Game) leave(a Action) {
	_, room, err := g.registry.RoomOf(a.PlayerID)
	if err != nil {
		g.fail(a, err)

		return
	}

	turn := room.Turn()

	room, destroyed, err := g.registry.LeaveRoom(a.PlayerID)
	if err != nil {
		g.fail(a, err)

		return
	}

	g.log.Info().Int("room", room.ID).Str("player", a.PlayerID).Bool("destroyed", destroyed).Msg("player left")

	send(a.Conn, SessionMessage{Type: "session", RoomID: NoRoom})

	switch {
	case destroyed:
	case room.Running():
		if room.Turn() != turn || !room.Active() {
			g.settle(room)
		}

		g.pushGame(room)
	default:
		g.pushLobby(room)
	}

	g.broadcastRoomList()
}

func (g *Game) startRoom(a Action) {
	_, room, err := g.registry.RoomOf(a.PlayerID)
	if err != nil || !room.IsCreator(a.PlayerID) {
		send(a.Conn, StartFailedMessage{Type: "start_failed", Error: ErrUnauthorized.Error()})

		return
	}

	if err := room.Start(); err != nil {
		reason := ErrUnauthorized
		if errors.Is(err, ErrInsufficientPlayers) {
			reason = ErrInsufficientPlayers
		}

		send(a.Conn, StartFailedMessage{Type: "start_failed", Error: reason.Error()})

		return
	}

	g.log.Info().Int("room", room.ID).Int("players", len(room.all)).Msg("room started")

	g.settle(room)

	for _, s := range g.registry.Members(room) {
		send(s.Conn, RoomStartedMessage{Type: "room_started"})
	}

	g.pushGame(room)
	g.broadcastRoomList()
}

func (g *Game) game(a Action) {
	_, room, err := g.registry.RoomOf(a.PlayerID)
	if err != nil {
		g.fail(a, err)

		return
	}

	if !room.Running() {
		g.fail(a, ErrRoomNotAvailable)

		return
	}

	send(a.Conn, gameSnapshot(room))
}

// holder returns a's room if a's sender holds its current turn.
func (g *Game) holder(a Action) (*Room, *Player, error) {
	_, room, err := g.registry.RoomOf(a.PlayerID)
	if err != nil {
		return nil, nil, err
	}

	p, ok := room.CurrentPlayer()
	if !room.Active() || !ok || p.ID != a.PlayerID {
		return nil, nil, ErrNotYourTurn
	}

	return room, p, nil
}

func (g *Game) answer(a Action) {
	room, p, err := g.holder(a)
	if err != nil {
		g.fail(a, err)

		return
	}

	if room.pending {
		g.fail(a, ErrStaleTurn)

		return
	}

	word := strings.ToLower(strings.TrimSpace(a.Msg.Word))

	switch word {
	case "":
		g.fail(a, ErrInvalidAnswer)

		return
	case wordQuit:
		room.QuitCurrent()
	case wordPass:
		room.AppendLog(p.Name + " passed the turn")
		room.ReduceLifeOfCurrent()
	default:
		if letter, ok := room.RequiredLetter(); ok {
			if first, _ := firstLetter(word); first != letter {
				g.reject(room, p, word, ErrInvalidAnswer)

				return
			}
		}

		room.pending = true

		g.lookup(lookupResult{ref: refOf(room, p), kind: lookupAnswer, word: word})

		return
	}

	g.settle(room)
	g.pushGame(room)
}

// reject costs p a life for a bad answer.
func (g *Game) reject(room *Room, p *Player, word string, err error) {
	if errors.Is(err, ErrDuplicateAnswer) {
		room.AppendLog(fmt.Sprintf("%s's input: %s is already used", p.Name, word))
	} else {
		room.AppendLog(fmt.Sprintf("%s's input: %s is invalid", p.Name, word))
	}

	g.notify(p.ID, err)

	room.ReduceLifeOfCurrent()

	g.settle(room)
	g.pushGame(room)
}

func (g *Game) hint(a Action) {
	room, p, err := g.holder(a)
	if err != nil {
		g.fail(a, err)

		return
	}

	if p.Hints <= 0 {
		g.fail(a, ErrNoHintAvailable)

		return
	}

	g.lookup(lookupResult{ref: refOf(room, p), kind: lookupHint, letter: g.letterFor(room)})
}

func (g *Game) restart(a Action) {
	_, room, err := g.registry.RoomOf(a.PlayerID)
	if err != nil {
		g.fail(a, err)

		return
	}

	if !room.IsCreator(a.PlayerID) {
		g.fail(a, ErrUnauthorized)

		return
	}

	if err := room.Restart(); err != nil {
		g.fail(a, err)

		return
	}

	g.log.Info().Int("room", room.ID).Bool("running", room.Running()).Msg("room restarted")

	g.settle(room)
	g.pushGame(room)
	g.broadcastRoomList()
}

// letterFor picks the letter a lookup for room should use.
func (g *Game) letterFor(room *Room) byte {
	if letter, ok := room.RequiredLetter(); ok {
		return letter
	}

	return 'a' + byte(g.rng.IntN(26))
}

// lookup calls the place service off the loop and posts the result back.
func (g *Game) lookup(res lookupResult) {
	timeout := g.cfg.PlacesTimeout

	go func() {
		ctx, cancel := context.Background(), context.CancelFunc(func() {})
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, timeout)
		}
		defer cancel()

		switch res.kind {
		case lookupAnswer:
			res.valid, res.err = g.places.Validate(ctx, res.word)
		default:
			res.candidates, res.err = g.places.StartsWith(ctx, res.letter)
		}

		select {
		case g.results <- res:
		case <-g.done:
		}
	}()
}

func (g *Game) botMove(ref turnRef) {
	room, ok := g.registry.Room(ref.roomID)
	if !ok || !room.holds(ref.turn, ref.playerID) || room.pending {
		g.log.Debug().Int("room", ref.roomID).Uint64("turn", ref.turn).Err(ErrStaleTurn).Msg("bot move dropped")

		return
	}

	bot, _ := room.CurrentPlayer()
	if !bot.IsBot() {
		return
	}

	room.timer.bot = nil

	if !bot.Guess(g.rng) {
		g.botMissed(room, bot)

		return
	}

	room.pending = true

	g.lookup(lookupResult{ref: ref, kind: lookupBot, letter: g.letterFor(room)})
}

func (g *Game) botMissed(room *Room, bot *Player) {
	room.AppendLog(bot.Name + " was unable to answer")
	room.ReduceLifeOfCurrent()

	g.settle(room)
	g.pushGame(room)
}

// resolve applies a place lookup if its turn is still current.
func (g *Game) resolve(res lookupResult) {
	room, ok := g.registry.Room(res.ref.roomID)
	if !ok || !room.holds(res.ref.turn, res.ref.playerID) {
		g.log.Debug().Int("room", res.ref.roomID).Uint64("turn", res.ref.turn).Err(ErrStaleTurn).Msg("lookup dropped")

		if res.kind != lookupBot {
			g.notify(res.ref.playerID, ErrStaleTurn)
		}

		return
	}

	p, _ := room.CurrentPlayer()

	if res.err != nil {
		g.log.Warn().Int("room", room.ID).Err(res.err).Msg("place lookup failed")
	}

	switch res.kind {
	case lookupAnswer:
		room.pending = false

		if res.err != nil || !res.valid {
			g.reject(room, p, res.word, ErrInvalidAnswer)

			return
		}

		if err := room.SubmitWord(res.word); err != nil {
			g.reject(room, p, res.word, err)

			return
		}

		room.AppendLog(fmt.Sprintf("%s's input: %s", p.Name, res.word))

		g.settle(room)
		g.pushGame(room)
	case lookupHint:
		s, _ := g.registry.Session(p.ID)

		if p.Hints <= 0 {
			g.notify(p.ID, ErrNoHintAvailable)

			return
		}

		place, ok := firstUnused(res.candidates, res.letter, room.ledger)
		if res.err != nil || !ok {
			if s != nil {
				send(s.Conn, HintMessage{Type: "hint"})
			}

			return
		}

		p.Hints--

		if s != nil {
			send(s.Conn, HintMessage{Type: "hint", Place: &place})
		}

		g.pushGame(room)
	case lookupBot:
		room.pending = false

		place, ok := firstUnused(res.candidates, res.letter, room.ledger)
		if res.err != nil || !ok {
			g.botMissed(room, p)

			return
		}

		if err := room.SubmitWord(place); err != nil {
			g.botMissed(room, p)

			return
		}

		room.AppendLog(fmt.Sprintf("%s's input: %s", p.Name, strings.ToLower(place)))

		g.settle(room)
		g.pushGame(room)
	}
}

func (g *Game) pushGame(room *Room) {
	msg := gameSnapshot(room)

	for _, s := range g.registry.Members(room) {
		send(s.Conn, msg)
	}
}

func (g *Game) pushLobby(room *Room) {
	msg := lobbySnapshot(room)

	for _, s := range g.registry.Members(room) {
		send(s.Conn, msg)
	}
}

// broadcastRoomList refreshes the room browser of every session outside a room.
func (g *Game) broadcastRoomList() {
	msg := RoomListMessage{Type: "room_list", Rooms: g.registry.OpenRooms()}

	for _, s := range g.registry.Browsing() {
		send(s.Conn, msg)
	}
}
