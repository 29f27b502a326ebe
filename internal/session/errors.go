package session

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrNotInRoom     = errors.New("not a member of this room")
	ErrRoomNotActive = errors.New("room is not active")
	ErrNoEngine      = errors.New("no engine configured")
	ErrNoOpponent    = errors.New("no opponent in room")
)
