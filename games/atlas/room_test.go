/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = RoomConfig{
	Lives:    1,
	Hints:    2,
	TurnTime: 3 * time.Second,
}

func newTestRoom(t *testing.T, names ...string) *Room {
	t.Helper()

	require.NotEmpty(t, names)

	creator := NewHuman(names[0], names[0], testRules.Lives, testRules.Hints)
	r := NewRoom(1, "room", "", creator, testRules, newTestRand())

	for _, n := range names[1:] {
		r.AddPlayer(NewHuman(n, n, testRules.Lives, testRules.Hints))
	}

	return r
}

func assertIndexValid(t *testing.T, r *Room) {
	t.Helper()

	if len(r.live) > 0 {
		assert.GreaterOrEqual(t, r.current, 0)
		assert.Less(t, r.current, len(r.live))
	}
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	r := newTestRoom(t, "alice")

	assert.ErrorIs(t, r.Start(), ErrInsufficientPlayers)
	assert.False(t, r.Running())
	assert.Empty(t, r.LivePlayers())

	r.AddPlayer(NewHuman("bob", "bob", 1, 2))

	require.NoError(t, r.Start())
	assert.True(t, r.Running())
	assert.Len(t, r.LivePlayers(), 2)
	assertIndexValid(t, r)

	assert.ErrorIs(t, r.Start(), ErrAlreadyRunning)
}

func TestStartSkipsBotHolder(t *testing.T) {
	for range 20 {
		creator := NewHuman("alice", "alice", 1, 2)
		r := NewRoom(1, "room", "", creator, testRules, newTestRand())
		r.AddBot(NewBot(50, 1))

		require.NoError(t, r.Start())

		p, ok := r.CurrentPlayer()
		require.True(t, ok)
		assert.False(t, p.IsBot())
	}
}

func TestRestartOnlyWhenFinished(t *testing.T) {
	r := newTestRoom(t, "alice", "bob")

	assert.ErrorIs(t, r.Restart(), ErrNotFinished)

	require.NoError(t, r.Start())
	assert.ErrorIs(t, r.Restart(), ErrNotFinished)

	for !r.Finished() {
		r.ReduceLifeOfCurrent()
	}

	require.Len(t, r.LivePlayers(), 1)

	require.NoError(t, r.Restart())
	assert.True(t, r.Active())
	assert.Len(t, r.LivePlayers(), 2)
	assert.Zero(t, r.Ledger().Len())
	assert.Empty(t, r.LastWord())

	for _, p := range r.Players() {
		assert.Equal(t, testRules.Lives, p.Lives)
		assert.Equal(t, testRules.Hints, p.Hints)
	}
}

func TestReduceLifeKeepsIndexInBounds(t *testing.T) {
	r := newTestRoom(t, "a", "b", "c", "d")
	require.NoError(t, r.Start())

	for r.Active() {
		turn := r.Turn()
		before := len(r.live)

		p, eliminated := r.ReduceLifeOfCurrent()
		require.NotNil(t, p)

		assert.Greater(t, r.Turn(), turn)
		assertIndexValid(t, r)

		if eliminated {
			assert.Less(t, p.Lives, 0)
			assert.Len(t, r.live, before-1)
			assert.NotContains(t, r.live, p)
		}

		r.advanceTurn()
		assertIndexValid(t, r)
	}

	assert.True(t, r.Finished())

	winner, ok := r.Winner()
	require.True(t, ok)
	assert.GreaterOrEqual(t, winner.Lives, 0)
}

func TestSubmitWordScenario(t *testing.T) {
	r := newTestRoom(t, "alice", "bob")
	require.NoError(t, r.Start())

	first, _ := r.CurrentPlayer()

	_, restricted := r.RequiredLetter()
	assert.False(t, restricted)

	require.NoError(t, r.SubmitWord("Berlin"))

	assert.Contains(t, r.Ledger().Bucket('b'), "berlin")
	assert.Equal(t, "berlin", r.LastWord())

	next, ok := r.CurrentPlayer()
	require.True(t, ok)
	assert.NotEqual(t, first.ID, next.ID)

	letter, ok := r.RequiredLetter()
	require.True(t, ok)
	assert.Equal(t, byte('n'), letter)
	assert.Equal(t, testRules.turnSeconds(), r.TimeRemaining())
}

func TestSubmitWordRejectsDuplicate(t *testing.T) {
	r := newTestRoom(t, "alice", "bob")
	require.NoError(t, r.Start())
	require.NoError(t, r.SubmitWord("Berlin"))

	holder, _ := r.CurrentPlayer()
	turn := r.Turn()

	assert.ErrorIs(t, r.SubmitWord("BERLIN"), ErrDuplicateAnswer)
	assert.ErrorIs(t, r.SubmitWord("42nd street"), ErrInvalidAnswer)

	still, _ := r.CurrentPlayer()
	assert.Equal(t, holder, still)
	assert.Equal(t, turn, r.Turn())
	assert.Equal(t, 1, r.Ledger().Len())
}

func TestRequiredLetterDefault(t *testing.T) {
	rules := testRules
	rules.FirstLetter = 'A'

	r := NewRoom(1, "room", "", NewHuman("a", "a", 1, 1), rules, newTestRand())

	letter, ok := r.RequiredLetter()
	require.True(t, ok)
	assert.Equal(t, byte('a'), letter)
}

func TestQuitCurrent(t *testing.T) {
	r := newTestRoom(t, "a", "b", "c")
	require.NoError(t, r.Start())

	holder, _ := r.CurrentPlayer()
	order := r.LivePlayers()
	next := order[(r.current+1)%len(order)]

	p, ok := r.QuitCurrent()
	require.True(t, ok)
	assert.Equal(t, holder, p)
	assert.Len(t, r.live, 2)
	assert.Equal(t, holder.Name+" quits the game", r.Log()[0])

	now, _ := r.CurrentPlayer()
	assert.Equal(t, next, now)
	assertIndexValid(t, r)
}

func TestRemoveNonHolderKeepsTurn(t *testing.T) {
	r := newTestRoom(t, "a", "b", "c")
	require.NoError(t, r.Start())

	holder, _ := r.CurrentPlayer()
	turn := r.Turn()

	var other *Player
	for _, p := range r.live {
		if p != holder {
			other = p

			break
		}
	}

	_, ok := r.RemovePlayer(other.ID)
	require.True(t, ok)

	now, _ := r.CurrentPlayer()
	assert.Equal(t, holder, now)
	assert.Equal(t, turn, r.Turn())
	assert.Len(t, r.Players(), 2)
	assert.Equal(t, NoRoom, other.RoomID)
	assertIndexValid(t, r)
}

func TestChangeCreator(t *testing.T) {
	creator := NewHuman("alice", "alice", 1, 1)
	r := NewRoom(1, "room", "", creator, testRules, newTestRand())
	r.AddBot(NewBot(50, 1))
	r.AddPlayer(NewHuman("bob", "bob", 1, 1))

	require.NoError(t, r.ChangeCreator())
	assert.True(t, r.IsCreator("bob"))

	solo := NewRoom(2, "solo", "", NewHuman("carol", "carol", 1, 1), testRules, newTestRand())
	solo.AddBot(NewBot(50, 1))

	assert.ErrorIs(t, solo.ChangeCreator(), ErrNoCreator)
	assert.True(t, solo.IsCreator("carol"))
}

func TestDestroyable(t *testing.T) {
	r := newTestRoom(t, "alice")
	r.AddBot(NewBot(10, 1))

	assert.False(t, r.Destroyable())

	r.RemovePlayer("alice")

	assert.True(t, r.Destroyable())
}

func TestWinnerLeavingFinishedGameReturnsToLobby(t *testing.T) {
	r := newTestRoom(t, "alice", "bob", "carol")
	require.NoError(t, r.Start())

	for !r.Finished() {
		r.ReduceLifeOfCurrent()
	}

	winner, ok := r.Winner()
	require.True(t, ok)

	_, ok = r.RemovePlayer(winner.ID)
	require.True(t, ok)

	assert.False(t, r.Running())
	assert.Empty(t, r.LivePlayers())
	assert.Len(t, r.Players(), 2)
	assert.Equal(t, winner.Name+" left the game", r.Log()[0])

	for _, p := range r.Players() {
		assert.Equal(t, testRules.Lives, p.Lives)
	}

	require.NoError(t, r.Start())
	assert.True(t, r.Active())
	assertIndexValid(t, r)
}

func TestLoserLeavingFinishedGameKeepsWinner(t *testing.T) {
	r := newTestRoom(t, "alice", "bob", "carol")
	require.NoError(t, r.Start())

	for !r.Finished() {
		r.ReduceLifeOfCurrent()
	}

	winner, _ := r.Winner()

	var loser *Player
	for _, p := range r.Players() {
		if p != winner {
			loser = p

			break
		}
	}

	r.RemovePlayer(loser.ID)

	assert.True(t, r.Finished())
	require.NoError(t, r.Restart())
	assert.True(t, r.Active())
	assert.Len(t, r.LivePlayers(), 2)
}
