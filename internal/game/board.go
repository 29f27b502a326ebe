package game

import "fmt"

// Board is the storage and query surface for squares and pieces. It holds no
// validation logic; the evaluator and trigger engine operate on it and the
// session coordinator is its only writer.
type Board struct {
	Rows      int
	Cols      int
	Squares   map[SquareID]*Square
	Pieces    map[PieceID]*Piece
	Turn      Color
	GameOver  bool
	HasWinner bool
	Winner    Color
	LastNote  string

	occupied map[SquareID]PieceID
}

// NewBoard builds an empty board with every square active.
func NewBoard(rows, cols int) *Board {
	b := &Board{
		Rows:     rows,
		Cols:     cols,
		Squares:  make(map[SquareID]*Square, rows*cols),
		Pieces:   make(map[PieceID]*Piece),
		Turn:     White,
		occupied: make(map[SquareID]PieceID),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := SquareIDOf(r, c)
			b.Squares[id] = &Square{ID: id, Row: r, Col: c}
		}
	}
	return b
}

func (b *Board) GetSquare(row, col int) *Square {
	return b.Squares[SquareIDOf(row, col)]
}

func (b *Board) SquareAt(id SquareID) *Square {
	return b.Squares[id]
}

func (b *Board) InBounds(row, col int) bool {
	return b.Squares[SquareIDOf(row, col)] != nil
}

func (b *Board) IsOccupied(id SquareID) bool {
	_, ok := b.occupied[id]
	return ok
}

// PieceAt returns the piece occupying the square, or nil.
func (b *Board) PieceAt(id SquareID) *Piece {
	pid, ok := b.occupied[id]
	if !ok {
		return nil
	}
	return b.Pieces[pid]
}

// PlacePiece puts the piece on the square. The square must exist, be enabled,
// and be empty.
func (b *Board) PlacePiece(p *Piece, id SquareID) error {
	sq := b.Squares[id]
	if sq == nil {
		return fmt.Errorf("place %s: %w", id, ErrUnknownSquare)
	}
	if sq.Disabled {
		return fmt.Errorf("place %s: %w", id, ErrSquareOff)
	}
	if b.IsOccupied(id) {
		return fmt.Errorf("place %s: %w", id, ErrSquareTaken)
	}
	p.Position = id
	b.Pieces[p.ID] = p
	b.occupied[id] = p.ID
	return nil
}

// RemovePiece deletes the piece from the board entirely.
func (b *Board) RemovePiece(id PieceID) {
	p, ok := b.Pieces[id]
	if !ok {
		return
	}
	delete(b.occupied, p.Position)
	delete(b.Pieces, id)
}

// relocate moves a live piece to an empty square, bypassing the disabled
// check so that only callers which re-check it (teleport) can use it.
func (b *Board) relocate(p *Piece, to SquareID) {
	delete(b.occupied, p.Position)
	p.Position = to
	b.occupied[to] = p.ID
}

// Clone deep-copies the board. Used by the serializer round-trip tests and
// by callers that need a scratch board.
func (b *Board) Clone() *Board {
	out := &Board{
		Rows:      b.Rows,
		Cols:      b.Cols,
		Squares:   make(map[SquareID]*Square, len(b.Squares)),
		Pieces:    make(map[PieceID]*Piece, len(b.Pieces)),
		Turn:      b.Turn,
		GameOver:  b.GameOver,
		HasWinner: b.HasWinner,
		Winner:    b.Winner,
		LastNote:  b.LastNote,
		occupied:  make(map[SquareID]PieceID, len(b.occupied)),
	}
	for id, sq := range b.Squares {
		c := *sq
		c.Logic = sq.Logic.Clone()
		out.Squares[id] = &c
	}
	for id, p := range b.Pieces {
		out.Pieces[id] = p.Clone()
	}
	for sq, pid := range b.occupied {
		out.occupied[sq] = pid
	}
	return out
}

func appendNote(dst *string, note string) {
	if *dst == "" {
		*dst = note
	} else {
		*dst += "; " + note
	}
}
