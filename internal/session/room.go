package session

import (
	"sync"
	"time"

	"variantchess/internal/game"
)

type Status uint8

const (
	StatusCreated Status = iota
	StatusActive
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusActive:
		return "active"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Room is one match: a board, up to two players, and the per-room lock that
// serializes every state transition. The coordinator's registry lock is never
// held while a room lock is held.
type Room struct {
	Key string

	mu         sync.Mutex
	project    *game.ProjectDefinition
	board      *game.Board
	players    map[game.Color]Conn
	status     Status
	drawOffer  *game.Color
	vsComputer bool
	difficulty int
	createdAt  time.Time
}

// seatOf reports which color the connection plays, if any.
func (r *Room) seatOf(c Conn) (game.Color, bool) {
	for color, p := range r.players {
		if p != nil && p.ID() == c.ID() {
			return color, true
		}
	}
	return game.White, false
}

func (r *Room) opponent(color game.Color) Conn {
	return r.players[color.Opposite()]
}

// broadcast sends to every seated player; send failures are the transport's
// problem, not the room's.
func (r *Room) broadcast(m Msg) {
	for _, p := range r.players {
		if p != nil {
			_ = p.Send(m)
		}
	}
}

func (r *Room) playerCount() int {
	n := 0
	for _, p := range r.players {
		if p != nil {
			n++
		}
	}
	return n
}

// statePayload is the board snapshot attached to move and game-over
// messages. Callers hold r.mu.
func (r *Room) statePayload() map[string]any {
	return map[string]any{
		"room":   r.Key,
		"status": r.status.String(),
		"state":  game.Serialize(r.board),
	}
}
