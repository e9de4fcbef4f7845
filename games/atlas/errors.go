/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import "errors"

// Reasons surfaced to clients verbatim.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomNotAvailable    = errors.New("room not available")
	ErrPasswordMismatch    = errors.New("incorrect password")
	ErrDuplicateRoomName   = errors.New("room name already in use")
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrUnauthorized        = errors.New("not a valid request")
	ErrAlreadyRunning      = errors.New("room is already running")
	ErrNotFinished         = errors.New("game is not finished")
	ErrInvalidAnswer       = errors.New("invalid answer")
	ErrDuplicateAnswer     = errors.New("place already used")
	ErrNoHintAvailable     = errors.New("no hint available")
	ErrStaleTurn           = errors.New("turn already resolved")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrNoCreator           = errors.New("no eligible creator")
	ErrAlreadyInRoom       = errors.New("already in a room")
)
