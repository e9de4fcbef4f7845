/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import (
	"maps"
	"math/rand/v2"
	"slices"
	"time"
)

// Sender delivers outbound messages to one connected participant.
type Sender interface {
	Send(msg any) bool
}

// Session is the registry entry of a participant identity.
type Session struct {
	ID       string
	Conn     Sender
	RoomID   int
	LastSeen time.Time
}

// Registry is the in-memory directory of sessions and active rooms. Like
// Room, it is owned by a single goroutine.
type Registry struct {
	sessions map[string]*Session
	rooms    map[int]*Room
	nextID   int
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		rooms:    make(map[int]*Room),
		nextID:   1,
	}
}

// Identify creates the session for id if absent and binds conn to it.
func (r *Registry) Identify(id string, conn Sender, now time.Time) *Session {
	s, ok := r.sessions[id]
	if !ok {
		s = &Session{
			ID:     id,
			RoomID: NoRoom,
		}
		r.sessions[id] = s
	}

	if conn != nil {
		s.Conn = conn
	}
	s.LastSeen = now

	return s
}

func (r *Registry) Session(id string) (*Session, bool) {
	s, ok := r.sessions[id]

	return s, ok
}

// Disconnect unbinds conn from the session of id, if it is still bound.
func (r *Registry) Disconnect(id string, conn Sender, now time.Time) {
	s, ok := r.sessions[id]
	if !ok || s.Conn != conn {
		return
	}

	s.Conn = nil
	s.LastSeen = now
}

// Reap drops sessions outside any room whose transport has been gone since
// before cutoff. It returns the number of sessions removed.
func (r *Registry) Reap(cutoff time.Time) int {
	n := 0

	for id, s := range r.sessions {
		if s.Conn == nil && s.RoomID == NoRoom && s.LastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}

	return n
}

func (r *Registry) CreateRoom(name, password string, creator *Player, cfg RoomConfig, rng *rand.Rand) (*Room, error) {
	s, ok := r.sessions[creator.ID]
	if !ok {
		return nil, ErrUnknownPlayer
	}

	if s.RoomID != NoRoom {
		return nil, ErrAlreadyInRoom
	}

	for _, room := range r.rooms {
		if room.Name == name {
			return nil, ErrDuplicateRoomName
		}
	}

	room := NewRoom(r.nextID, name, password, creator, cfg, rng)
	r.nextID++

	r.rooms[room.ID] = room
	s.RoomID = room.ID

	return room, nil
}

func (r *Registry) Room(id int) (*Room, bool) {
	room, ok := r.rooms[id]

	return room, ok
}

// RoomOf returns the session of id and the room it is currently in.
func (r *Registry) RoomOf(id string) (*Session, *Room, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil, ErrUnknownPlayer
	}

	room, ok := r.rooms[s.RoomID]
	if !ok {
		return s, nil, ErrRoomNotFound
	}

	return s, room, nil
}

func (r *Registry) JoinRoom(roomID int, password string, p *Player) (*Room, error) {
	s, ok := r.sessions[p.ID]
	if !ok {
		return nil, ErrUnknownPlayer
	}

	if s.RoomID != NoRoom {
		return nil, ErrAlreadyInRoom
	}

	room, ok := r.rooms[roomID]
	if !ok || room.Running() {
		return nil, ErrRoomNotAvailable
	}

	if room.password != password {
		return nil, ErrPasswordMismatch
	}

	if _, ok := room.Member(p.ID); ok {
		return nil, ErrAlreadyInRoom
	}

	room.AddPlayer(p)
	s.RoomID = room.ID

	return room, nil
}

// LeaveRoom takes id out of its room. The room is destroyed when no human
// is left to play, otherwise ownership moves on if the creator left.
func (r *Registry) LeaveRoom(id string) (room *Room, destroyed bool, err error) {
	s, room, err := r.RoomOf(id)
	if err != nil {
		if s != nil {
			s.RoomID = NoRoom
		}

		return nil, false, err
	}

	s.RoomID = NoRoom

	if _, ok := room.RemovePlayer(id); !ok {
		return room, false, ErrUnknownPlayer
	}

	if room.Destroyable() {
		r.DeleteRoom(room.ID)

		return room, true, nil
	}

	if room.IsCreator(id) {
		if err := room.ChangeCreator(); err != nil {
			r.DeleteRoom(room.ID)

			return room, true, nil
		}
	}

	return room, false, nil
}

// DeleteRoom tears a room down and cancels its scheduler.
func (r *Registry) DeleteRoom(id int) {
	room, ok := r.rooms[id]
	if !ok {
		return
	}

	room.timer.cancel()
	delete(r.rooms, id)

	for _, p := range room.all {
		if s, ok := r.sessions[p.ID]; ok && s.RoomID == id {
			s.RoomID = NoRoom
		}
	}
}

// Rooms returns every active room ordered by id.
func (r *Registry) Rooms() []*Room {
	ids := slices.Sorted(maps.Keys(r.rooms))

	out := make([]*Room, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.rooms[id])
	}

	return out
}

// OpenRooms lists the rooms that can still be joined.
func (r *Registry) OpenRooms() []RoomSummary {
	out := []RoomSummary{}

	for _, room := range r.Rooms() {
		if room.Running() {
			continue
		}

		out = append(out, summarize(room))
	}

	return out
}

// Members returns the sessions of the human members of room.
func (r *Registry) Members(room *Room) []*Session {
	out := make([]*Session, 0, len(room.all))

	for _, p := range room.all {
		if p.IsBot() {
			continue
		}

		if s, ok := r.sessions[p.ID]; ok && s.RoomID == room.ID {
			out = append(out, s)
		}
	}

	return out
}

// Browsing returns the sessions not in any room.
func (r *Registry) Browsing() []*Session {
	out := []*Session{}

	for _, s := range r.sessions {
		if s.RoomID == NoRoom {
			out = append(out, s)
		}
	}

	return out
}
