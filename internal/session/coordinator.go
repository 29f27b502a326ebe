package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"variantchess/internal/game"
)

// Engine is the coordinator's view of the computer opponent. A false return
// means no move was produced in time.
type Engine interface {
	BestMove(ctx context.Context, fen string, difficulty int) (string, bool)
}

// Coordinator owns the room registry and routes every inbound message to a
// room under that room's lock. The registry lock only guards the maps; game
// state is guarded per room.
type Coordinator struct {
	log    *zap.Logger
	engine Engine

	mu     sync.RWMutex
	rooms  map[string]*Room
	member map[string]map[string]struct{} // conn id -> room keys
}

func NewCoordinator(log *zap.Logger, engine Engine) *Coordinator {
	return &Coordinator{
		log:    log,
		engine: engine,
		rooms:  make(map[string]*Room),
		member: make(map[string]map[string]struct{}),
	}
}

// addMember records room membership. Caller holds co.mu.
func (co *Coordinator) addMember(connID, key string) {
	keys := co.member[connID]
	if keys == nil {
		keys = make(map[string]struct{}, 1)
		co.member[connID] = keys
	}
	keys[key] = struct{}{}
}

// CreateRoom builds a board from the project (the standard chess setup when
// def is nil) and seats the creator as White. Against the computer the room
// is immediately active; otherwise it waits for a second player.
func (co *Coordinator) CreateRoom(c Conn, def *game.ProjectDefinition, vsComputer bool, difficulty int) (string, error) {
	if def == nil {
		def = game.StandardProject()
	}
	board, err := game.BoardFromProject(def)
	if err != nil {
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": err.Error()}})
		return "", err
	}
	room := &Room{
		Key:        uuid.NewString(),
		project:    def,
		board:      board,
		players:    map[game.Color]Conn{game.White: c},
		status:     StatusCreated,
		vsComputer: vsComputer,
		difficulty: difficulty,
		createdAt:  time.Now(),
	}
	if vsComputer {
		room.status = StatusActive
	}

	co.mu.Lock()
	co.rooms[room.Key] = room
	co.addMember(c.ID(), room.Key)
	co.mu.Unlock()

	room.mu.Lock()
	payload := room.statePayload()
	room.mu.Unlock()
	payload["color"] = game.White.String()
	_ = c.Send(Msg{T: MsgRoomCreated, M: payload})

	co.log.Info("room created",
		zap.String("room", room.Key),
		zap.String("conn", c.ID()),
		zap.Bool("vsComputer", vsComputer))
	return room.Key, nil
}

// JoinRoom seats the connection as Black and activates the room.
func (co *Coordinator) JoinRoom(c Conn, key string) error {
	room, err := co.roomFor(c, key)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if room.vsComputer || room.playerCount() >= 2 {
		room.mu.Unlock()
		_ = c.Send(Msg{T: MsgRoomFull, M: map[string]any{"room": key}})
		return ErrRoomFull
	}
	room.players[game.Black] = c
	room.status = StatusActive
	payload := room.statePayload()
	payload["color"] = game.Black.String()
	payload["playerCount"] = room.playerCount()
	room.broadcast(Msg{T: MsgPlayerJoined, M: payload})
	room.mu.Unlock()

	co.mu.Lock()
	co.addMember(c.ID(), key)
	co.mu.Unlock()

	co.log.Info("player joined", zap.String("room", key), zap.String("conn", c.ID()))
	return nil
}

// SubmitMove validates and applies one move, resolves triggers, and
// broadcasts the resulting state. The room lock is held across the whole
// validate-apply-resolve sequence, so concurrent submissions serialize and
// exactly one of two racing moves wins.
func (co *Coordinator) SubmitMove(c Conn, key string, from, to game.SquareID, promotion game.PieceType) error {
	room, err := co.roomFor(c, key)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	seat, ok := room.seatOf(c)
	if !ok {
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": ErrNotInRoom.Error()}})
		return ErrNotInRoom
	}
	if room.status == StatusEnded {
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": game.ErrGameOver.Error()}})
		return game.ErrGameOver
	}
	if room.status != StatusActive {
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": ErrRoomNotActive.Error()}})
		return ErrRoomNotActive
	}
	if room.board.Turn != seat {
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": game.ErrWrongTurn.Error()}})
		return game.ErrWrongTurn
	}
	mv, err := game.AttemptMove(room.board, from, to, promotion)
	if err != nil {
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": err.Error()}})
		return err
	}
	res := game.ResolveTriggers(room.board, mv)
	room.drawOffer = nil

	payload := room.statePayload()
	payload["from"] = string(from)
	payload["to"] = string(to)
	if mv.Captured != "" {
		payload["captured"] = string(mv.Captured)
	}
	if mv.Promotion != "" {
		payload["promotion"] = mv.Promotion
	}
	if mv.Castled {
		payload["castled"] = true
	}
	room.broadcast(Msg{T: MsgMove, M: payload})

	co.log.Debug("move applied",
		zap.String("room", key),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int("triggersFired", res.Fired))

	if room.board.GameOver {
		co.endLocked(room, key)
	}
	return nil
}

// Chat relays a text message to everyone in the room.
func (co *Coordinator) Chat(c Conn, key, text string) error {
	room, err := co.roomFor(c, key)
	if err != nil {
		return err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	seat, ok := room.seatOf(c)
	if !ok {
		return ErrNotInRoom
	}
	room.broadcast(Msg{T: MsgReceiveMessage, M: map[string]any{
		"room": key,
		"from": seat.String(),
		"text": text,
	}})
	return nil
}

// OfferDraw records the offer and forwards it to the opponent.
func (co *Coordinator) OfferDraw(c Conn, key string) error {
	room, err := co.roomFor(c, key)
	if err != nil {
		return err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	seat, ok := room.seatOf(c)
	if !ok {
		return ErrNotInRoom
	}
	offer := seat
	room.drawOffer = &offer
	if opp := room.opponent(seat); opp != nil {
		_ = opp.Send(Msg{T: MsgOfferDraw, M: map[string]any{"room": key, "from": seat.String()}})
	}
	return nil
}

// AcceptDraw ends the game without a winner. Only valid while the opponent's
// offer stands.
func (co *Coordinator) AcceptDraw(c Conn, key string) error {
	room, err := co.roomFor(c, key)
	if err != nil {
		return err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	seat, ok := room.seatOf(c)
	if !ok {
		return ErrNotInRoom
	}
	if room.status == StatusEnded {
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": game.ErrGameOver.Error()}})
		return game.ErrGameOver
	}
	if room.drawOffer == nil || *room.drawOffer != seat.Opposite() {
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": "no draw offer to accept"}})
		return fmt.Errorf("no standing draw offer")
	}
	room.drawOffer = nil
	room.board.GameOver = true
	co.endLocked(room, key)
	return nil
}

// Resign ends the game with the opponent as winner.
func (co *Coordinator) Resign(c Conn, key string) error {
	room, err := co.roomFor(c, key)
	if err != nil {
		return err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	seat, ok := room.seatOf(c)
	if !ok {
		return ErrNotInRoom
	}
	if room.status == StatusEnded {
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": game.ErrGameOver.Error()}})
		return game.ErrGameOver
	}
	room.board.GameOver = true
	room.board.HasWinner = true
	room.board.Winner = seat.Opposite()
	room.broadcast(Msg{T: MsgResign, M: map[string]any{"room": key, "by": seat.String()}})
	co.endLocked(room, key)
	return nil
}

// Disconnect removes the connection from every room it belongs to, tells
// each remaining player, and deletes rooms the moment they are empty.
func (co *Coordinator) Disconnect(c Conn) {
	co.mu.Lock()
	keys := co.member[c.ID()]
	delete(co.member, c.ID())
	rooms := make(map[string]*Room, len(keys))
	for key := range keys {
		if r := co.rooms[key]; r != nil {
			rooms[key] = r
		}
	}
	co.mu.Unlock()

	for key, room := range rooms {
		room.mu.Lock()
		if seat, seated := room.seatOf(c); seated {
			delete(room.players, seat)
			if opp := room.opponent(seat); opp != nil {
				_ = opp.Send(Msg{T: MsgPlayerLeft, M: map[string]any{
					"room":        key,
					"who":         seat.String(),
					"playerCount": room.playerCount(),
				}})
			}
		}
		empty := room.playerCount() == 0
		room.mu.Unlock()

		if empty {
			co.mu.Lock()
			delete(co.rooms, key)
			co.mu.Unlock()
			co.log.Info("room deleted", zap.String("room", key))
		}
	}
	co.log.Info("disconnected", zap.String("conn", c.ID()), zap.Int("rooms", len(rooms)))
}

// State returns the serialized board for HTTP reads.
func (co *Coordinator) State(key string) (*game.SerializedState, error) {
	co.mu.RLock()
	room := co.rooms[key]
	co.mu.RUnlock()
	if room == nil {
		return nil, ErrRoomNotFound
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return game.Serialize(room.board), nil
}

// RoomCount is a cheap health metric.
func (co *Coordinator) RoomCount() int {
	co.mu.RLock()
	defer co.mu.RUnlock()
	return len(co.rooms)
}

// roomFor looks up a room and reports room_not_found to the caller when it
// is missing.
func (co *Coordinator) roomFor(c Conn, key string) (*Room, error) {
	co.mu.RLock()
	room := co.rooms[key]
	co.mu.RUnlock()
	if room == nil {
		_ = c.Send(Msg{T: MsgRoomNotFound, M: map[string]any{"room": key}})
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// endLocked finalizes a finished game. Caller holds room.mu.
func (co *Coordinator) endLocked(room *Room, key string) {
	room.status = StatusEnded
	payload := room.statePayload()
	if room.board.HasWinner {
		payload["winner"] = room.board.Winner.String()
	} else {
		payload["result"] = "draw"
	}
	room.broadcast(Msg{T: MsgGameOver, M: payload})
	co.log.Info("game over",
		zap.String("room", key),
		zap.Bool("hasWinner", room.board.HasWinner))
}
