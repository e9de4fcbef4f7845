/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

// Messages coming from clients
type ClientMessage struct {
	Type          string `json:"type"`                    // see the action constants
	UserName      string `json:"userName,omitempty"`      // create_room / join_room
	RoomName      string `json:"roomName,omitempty"`      // create_room
	Password      string `json:"password,omitempty"`      // create_room / join_room
	EnableBot     bool   `json:"enableBot,omitempty"`     // create_room
	BotDifficulty int    `json:"botDifficulty,omitempty"` // create_room
	RoomID        int    `json:"roomId,omitempty"`        // join_room
	Word          string `json:"word,omitempty"`          // answer
}

const (
	actionIdentify   = "identify"
	actionRoomList   = "room_list"
	actionLobby      = "lobby"
	actionCreateRoom = "create_room"
	actionJoinRoom   = "join_room"
	actionLeaveRoom  = "leave_room"
	actionStartRoom  = "start_room"
	actionGame       = "game"
	actionAnswer     = "answer"
	actionHint       = "hint"
	actionRestart    = "restart_room"
	actionLeaveGame  = "leave_game"

	// sent by the transport, never by clients
	actionDisconnect = "disconnect"
)

// Control words accepted as answers.
const (
	wordQuit = "quit"
	wordPass = "pass"
)

// SessionMessage tells a (re)connected client which room it is in.
type SessionMessage struct {
	Type   string `json:"type"` // "session"
	RoomID int    `json:"roomId"`
}

// RoomSummary describes an open room in the room list.
type RoomSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CreatorName string `json:"creatorName"`
	Players     int    `json:"players"`
	Locked      bool   `json:"locked"` // password protected
	HasBot      bool   `json:"hasBot"`
}

type RoomListMessage struct {
	Type  string        `json:"type"` // "room_list"
	Rooms []RoomSummary `json:"rooms"`
}

// RoomIDMessage answers create_room and join_room.
type RoomIDMessage struct {
	Type   string `json:"type"` // "room_id"
	RoomID int    `json:"roomId"`
	Error  string `json:"error,omitempty"`
}

type LobbyMessage struct {
	Type             string   `json:"type"` // "lobby"
	RoomName         string   `json:"roomName"`
	CreatorName      string   `json:"creatorName"`
	CreatorID        string   `json:"creatorId"`
	OtherPlayerNames []string `json:"otherPlayerNames"`
	RoomStatus       bool     `json:"roomStatus"`
}

type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Lives int    `json:"lives"`
	Bot   bool   `json:"bot"`
}

type CreatorView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameMessage is the running-game snapshot pushed to every member.
type GameMessage struct {
	Type                   string       `json:"type"` // "game"
	RoomName               string       `json:"roomName"`
	RoomStatus             bool         `json:"roomStatus"`
	AllPlayers             []PlayerView `json:"allPlayers"`
	LivePlayers            []PlayerView `json:"livePlayers"`
	CurrentPlayerID        string       `json:"currentPlayerId"`
	RoomLog                []string     `json:"roomLog"`
	Creator                CreatorView  `json:"creator"`
	LastAcceptedWord       string       `json:"lastAcceptedWord"`
	RequiredLetter         string       `json:"requiredLetter,omitempty"`
	TimeRemaining          int          `json:"timeRemaining"`
	CurrentPlayerHintCount int          `json:"currentPlayerHintCount"`
	Winner                 string       `json:"winner,omitempty"`
}

// RoomStartedMessage tells lobby members to switch to the game view.
type RoomStartedMessage struct {
	Type string `json:"type"` // "room_started"
}

type StartFailedMessage struct {
	Type  string `json:"type"` // "start_failed"
	Error string `json:"error"`
}

// HintMessage carries a suggested place, or null when none is left.
type HintMessage struct {
	Type  string  `json:"type"` // "hint"
	Place *string `json:"place"`
}

// ErrorMessage is sent only to the client whose action failed.
type ErrorMessage struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

func summarize(r *Room) RoomSummary {
	s := RoomSummary{
		ID:      r.ID,
		Name:    r.Name,
		Players: len(r.all),
		Locked:  r.password != "",
	}

	if r.creator != nil {
		s.CreatorName = r.creator.Name
	}

	for _, p := range r.all {
		if p.IsBot() {
			s.HasBot = true
		}
	}

	return s
}

func lobbySnapshot(r *Room) LobbyMessage {
	msg := LobbyMessage{
		Type:             "lobby",
		RoomName:         r.Name,
		OtherPlayerNames: []string{},
		RoomStatus:       r.running,
	}

	if r.creator != nil {
		msg.CreatorName = r.creator.Name
		msg.CreatorID = r.creator.ID
	}

	for _, p := range r.all {
		if r.IsCreator(p.ID) {
			continue
		}

		msg.OtherPlayerNames = append(msg.OtherPlayerNames, p.Name)
	}

	return msg
}

func viewsOf(players []*Player) []PlayerView {
	out := make([]PlayerView, 0, len(players))

	for _, p := range players {
		out = append(out, PlayerView{
			ID:    p.ID,
			Name:  p.Name,
			Lives: p.Lives,
			Bot:   p.IsBot(),
		})
	}

	return out
}

func gameSnapshot(r *Room) GameMessage {
	msg := GameMessage{
		Type:             "game",
		RoomName:         r.Name,
		RoomStatus:       r.running,
		AllPlayers:       viewsOf(r.all),
		LivePlayers:      viewsOf(r.live),
		RoomLog:          r.Log(),
		LastAcceptedWord: r.lastWord,
		TimeRemaining:    max(r.timeRemaining, 0),
	}

	if msg.RoomLog == nil {
		msg.RoomLog = []string{}
	}

	if r.creator != nil {
		msg.Creator = CreatorView{ID: r.creator.ID, Name: r.creator.Name}
	}

	if letter, ok := r.RequiredLetter(); ok {
		msg.RequiredLetter = string(letter)
	}

	if p, ok := r.CurrentPlayer(); ok {
		msg.CurrentPlayerID = p.ID
		msg.CurrentPlayerHintCount = p.Hints
	}

	if w, ok := r.Winner(); ok {
		msg.Winner = w.Name
	}

	return msg
}
