package session

import (
	"context"

	"go.uber.org/zap"

	"variantchess/internal/game"
)

// algebraicSquare converts a two-character UCI square ("e2") to a board
// square id. Engine output always speaks 8x8 coordinates.
func algebraicSquare(s string) (game.SquareID, bool) {
	if len(s) != 2 {
		return "", false
	}
	col := int(s[0] - 'a')
	row := int(s[1] - '1')
	if col < 0 || col > 7 || row < 0 || row > 7 {
		return "", false
	}
	return game.SquareIDOf(row, col), true
}

// parseEngineMove splits a UCI move string ("e2e4", "e7e8q") into board
// coordinates and an optional promotion type.
func parseEngineMove(s string) (from, to game.SquareID, promo game.PieceType, ok bool) {
	if len(s) != 4 && len(s) != 5 {
		return "", "", "", false
	}
	from, ok = algebraicSquare(s[0:2])
	if !ok {
		return "", "", "", false
	}
	to, ok = algebraicSquare(s[2:4])
	if !ok {
		return "", "", "", false
	}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			promo = game.TypeQueen
		case 'r':
			promo = game.TypeRook
		case 'b':
			promo = game.TypeBishop
		case 'n':
			promo = game.TypeKnight
		default:
			return "", "", "", false
		}
	}
	return from, to, promo, true
}

// RequestComputerMove asks the engine for a reply in the room's current
// position and applies it through the same validation path human moves use.
// A positive difficulty overrides the room's default for this request. The
// engine call runs without the room lock; the result is re-validated against
// the board before applying, so a move computed for a stale position is
// rejected rather than forced.
func (co *Coordinator) RequestComputerMove(ctx context.Context, c Conn, key string, difficulty int) error {
	room, err := co.roomFor(c, key)
	if err != nil {
		return err
	}

	room.mu.Lock()
	if !room.vsComputer {
		room.mu.Unlock()
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": "room has no computer seat"}})
		return ErrNoOpponent
	}
	if co.engine == nil {
		room.mu.Unlock()
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": ErrNoEngine.Error()}})
		return ErrNoEngine
	}
	if room.status == StatusEnded {
		room.mu.Unlock()
		_ = c.Send(Msg{T: MsgError, M: map[string]any{"error": game.ErrGameOver.Error()}})
		return game.ErrGameOver
	}
	fen, encodable := game.FEN(room.board)
	turn := room.board.Turn
	if difficulty <= 0 {
		difficulty = room.difficulty
	}
	room.mu.Unlock()

	if !encodable {
		co.failComputerMove(room, key, "position not expressible to the engine")
		return nil
	}

	move, ok := co.engine.BestMove(ctx, fen, difficulty)
	if !ok {
		co.failComputerMove(room, key, "engine produced no move")
		return nil
	}
	from, to, promo, ok := parseEngineMove(move)
	if !ok {
		co.failComputerMove(room, key, "unparseable engine move "+move)
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.status == StatusEnded || room.board.Turn != turn {
		co.failComputerMoveLocked(room, key, "position changed while the engine was thinking")
		return nil
	}
	mv, err := game.AttemptMove(room.board, from, to, promo)
	if err != nil {
		// Legal for the engine's approximation, not for the variant.
		co.failComputerMoveLocked(room, key, "engine move rejected: "+err.Error())
		return nil
	}
	game.ResolveTriggers(room.board, mv)
	room.drawOffer = nil

	payload := room.statePayload()
	payload["ok"] = true
	payload["move"] = move
	payload["from"] = string(from)
	payload["to"] = string(to)
	room.broadcast(Msg{T: MsgComputerMoveResult, M: payload})

	co.log.Debug("computer move applied",
		zap.String("room", key),
		zap.String("move", move))

	if room.board.GameOver {
		co.endLocked(room, key)
	}
	return nil
}

func (co *Coordinator) failComputerMove(room *Room, key, reason string) {
	room.mu.Lock()
	defer room.mu.Unlock()
	co.failComputerMoveLocked(room, key, reason)
}

func (co *Coordinator) failComputerMoveLocked(room *Room, key, reason string) {
	room.broadcast(Msg{T: MsgComputerMoveResult, M: map[string]any{
		"room":   key,
		"ok":     false,
		"reason": reason,
	}})
	co.log.Warn("computer move failed", zap.String("room", key), zap.String("reason", reason))
}
