package game

import "fmt"

// MoveResult reports what AttemptMove did. Captured is set when a piece was
// taken, Promotion when the mover changed type on arrival.
type MoveResult struct {
	Applied   bool
	PieceID   PieceID
	From      SquareID
	To        SquareID
	Captured  PieceID
	Promotion PieceType
	Castled   bool
}

// mirror returns the row delta adjusted for the piece's color. Patterns are
// authored from White's perspective.
func mirror(p *Piece, dr int) int {
	if p.Color == Black {
		return -dr
	}
	return dr
}

// LegalDestinations computes every square the piece may move to, movement and
// capture patterns combined. Deterministic given board state: nothing here
// depends on iteration order over other pieces.
func LegalDestinations(b *Board, id PieceID) map[SquareID]struct{} {
	out := make(map[SquareID]struct{})
	p, ok := b.Pieces[id]
	if !ok {
		return out
	}
	sq := b.SquareAt(p.Position)
	if sq == nil {
		return out
	}

	for _, pat := range p.Movement {
		if pat.FirstMoveOnly && p.HasMoved {
			continue
		}
		switch pat.Kind {
		case Run:
			runDestinations(b, p, sq, pat, false, out)
		case Jump:
			if target := jumpTarget(b, sq, mirror(p, pat.DR), pat.DC); target != nil && !b.IsOccupied(target.ID) {
				out[target.ID] = struct{}{}
			}
		}
	}
	for _, pat := range p.Captures {
		if pat.FirstMoveOnly && p.HasMoved {
			continue
		}
		switch pat.Kind {
		case Run:
			runDestinations(b, p, sq, pat, true, out)
		case Jump:
			if target := jumpTarget(b, sq, mirror(p, pat.DR), pat.DC); target != nil {
				if victim := b.PieceAt(target.ID); victim != nil && victim.Color != p.Color {
					out[target.ID] = struct{}{}
				}
			}
		}
	}
	if dest, ok := castleDestination(b, p); ok {
		out[dest] = struct{}{}
	}
	return out
}

// runDestinations slides along the pattern's authored vector, one full step
// at a time, so a (2,1) run travels its own ray rather than a unit diagonal.
// Quiet squares are accumulated only for movement patterns; the first
// occupant ends the run and is included only for capture patterns when it is
// an enemy.
func runDestinations(b *Board, p *Piece, from *Square, pat OffsetPattern, capturing bool, out map[SquareID]struct{}) {
	dr := mirror(p, pat.DR)
	dc := pat.DC
	if dr == 0 && dc == 0 {
		return
	}
	row, col := from.Row+dr, from.Col+dc
	for {
		sq := b.GetSquare(row, col)
		if sq == nil || sq.Disabled {
			return
		}
		occupant := b.PieceAt(sq.ID)
		if occupant == nil {
			if !capturing {
				out[sq.ID] = struct{}{}
			}
			row += dr
			col += dc
			continue
		}
		if capturing && occupant.Color != p.Color {
			out[sq.ID] = struct{}{}
		}
		return
	}
}

func jumpTarget(b *Board, from *Square, dr, dc int) *Square {
	sq := b.GetSquare(from.Row+dr, from.Col+dc)
	if sq == nil || sq.Disabled {
		return nil
	}
	return sq
}

// castleDestination reports the king-shift square when the piece's castling
// rule applies: both pieces unmoved, same row, clear enabled path.
func castleDestination(b *Board, p *Piece) (SquareID, bool) {
	if p.Castling == nil || p.HasMoved {
		return "", false
	}
	from := b.SquareAt(p.Position)
	if from == nil {
		return "", false
	}
	rook, ok := castlePartner(b, p, from)
	if !ok {
		return "", false
	}
	rookSq := b.SquareAt(rook.Position)
	dir := sign(rookSq.Col - from.Col)
	destCol := from.Col + 2*dir
	for col := from.Col + dir; col != rookSq.Col; col += dir {
		sq := b.GetSquare(from.Row, col)
		if sq == nil || sq.Disabled || b.IsOccupied(sq.ID) {
			return "", false
		}
	}
	dest := b.GetSquare(from.Row, destCol)
	if dest == nil || dest.Disabled {
		return "", false
	}
	return dest.ID, true
}

// castlePartner finds the nearest unmoved rook-type piece on the king's row,
// at least three columns away so the two-file king shift lands short of it.
func castlePartner(b *Board, king *Piece, from *Square) (*Piece, bool) {
	var best *Piece
	bestDist := 0
	for _, cand := range b.Pieces {
		if cand.Color != king.Color || cand.Type != king.Castling.RookType || cand.HasMoved {
			continue
		}
		sq := b.SquareAt(cand.Position)
		if sq == nil || sq.Row != from.Row {
			continue
		}
		dist := abs(sq.Col - from.Col)
		if dist < 3 {
			continue
		}
		if best == nil || dist < bestDist || (dist == bestDist && cand.ID < best.ID) {
			best = cand
			bestDist = dist
		}
	}
	return best, best != nil
}

// AttemptMove validates and executes a move. On failure the board is left
// untouched. Capture resolution is detect, remove, then place, so the board
// never transiently holds two pieces on one square.
func AttemptMove(b *Board, from, to SquareID, promotion PieceType) (MoveResult, error) {
	res := MoveResult{From: from, To: to}
	if b.GameOver {
		return res, ErrGameOver
	}
	mover := b.PieceAt(from)
	if mover == nil {
		return res, fmt.Errorf("no piece at %s: %w", from, ErrIllegalMove)
	}
	if mover.Color != b.Turn {
		return res, ErrWrongTurn
	}
	dests := LegalDestinations(b, mover.ID)
	if _, ok := dests[to]; !ok {
		return res, fmt.Errorf("%s -> %s: %w", from, to, ErrIllegalMove)
	}
	res.PieceID = mover.ID

	toSq := b.SquareAt(to)
	if victim := b.PieceAt(to); victim != nil {
		res.Captured = victim.ID
		b.RemovePiece(victim.ID)
		b.LastNote = fmt.Sprintf("%s %s takes %s at %s", mover.Color, mover.Type, victim.Type, to)
	} else {
		b.LastNote = fmt.Sprintf("%s %s %s -> %s", mover.Color, mover.Type, from, to)
	}

	fromSq := b.SquareAt(from)
	castled := mover.Castling != nil && !mover.HasMoved && fromSq.Row == toSq.Row && abs(toSq.Col-fromSq.Col) == 2 && res.Captured == ""
	b.relocate(mover, to)
	mover.HasMoved = true
	if castled {
		moveCastleRook(b, mover, fromSq, toSq)
		res.Castled = true
	}

	if promoted := resolvePromotion(b, mover, promotion); promoted != "" {
		res.Promotion = promoted
	}

	b.Turn = b.Turn.Opposite()
	res.Applied = true
	return res, nil
}

func moveCastleRook(b *Board, king *Piece, from, to *Square) {
	dir := sign(to.Col - from.Col)
	// Rook scan continues past the king's destination toward the edge.
	for col := to.Col + dir; ; col += dir {
		sq := b.GetSquare(from.Row, col)
		if sq == nil {
			return
		}
		rook := b.PieceAt(sq.ID)
		if rook == nil {
			continue
		}
		if rook.Color != king.Color || rook.Type != king.Castling.RookType || rook.HasMoved {
			return
		}
		inner := b.GetSquare(from.Row, to.Col-dir)
		if inner == nil || inner.Disabled || b.IsOccupied(inner.ID) {
			return
		}
		b.relocate(rook, inner.ID)
		rook.HasMoved = true
		appendNote(&b.LastNote, "castled")
		return
	}
}

// resolvePromotion upgrades a Promotes piece that reached its far edge. The
// requested type is honored when it is a known standard type; custom
// promotion targets keep the piece's own patterns and just rename it.
func resolvePromotion(b *Board, p *Piece, promotion PieceType) PieceType {
	if !p.Promotes {
		return ""
	}
	sq := b.SquareAt(p.Position)
	if sq == nil {
		return ""
	}
	farEdge := (p.Color == White && sq.Row == b.Rows-1) || (p.Color == Black && sq.Row == 0)
	if !farEdge {
		return ""
	}
	target := promotion
	if target == "" {
		target = TypeQueen
	}
	if movement, captures, ok := StandardPatterns(target); ok {
		p.Movement = movement
		p.Captures = captures
	}
	p.Type = target
	p.Promotes = false
	appendNote(&b.LastNote, fmt.Sprintf("promoted to %s", target))
	return target
}
