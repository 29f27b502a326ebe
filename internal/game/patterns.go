package game

// Standard chess expressed through the same OffsetPattern machinery custom
// pieces use. Row deltas are White-relative; the evaluator mirrors them for
// Black.

var (
	orthogonalRuns = PatternList{
		{Kind: Run, DR: 1, DC: 0},
		{Kind: Run, DR: -1, DC: 0},
		{Kind: Run, DR: 0, DC: 1},
		{Kind: Run, DR: 0, DC: -1},
	}
	diagonalRuns = PatternList{
		{Kind: Run, DR: 1, DC: 1},
		{Kind: Run, DR: 1, DC: -1},
		{Kind: Run, DR: -1, DC: 1},
		{Kind: Run, DR: -1, DC: -1},
	}
	knightJumps = PatternList{
		{Kind: Jump, DR: 2, DC: 1},
		{Kind: Jump, DR: 1, DC: 2},
		{Kind: Jump, DR: -1, DC: 2},
		{Kind: Jump, DR: -2, DC: 1},
		{Kind: Jump, DR: -2, DC: -1},
		{Kind: Jump, DR: -1, DC: -2},
		{Kind: Jump, DR: 1, DC: -2},
		{Kind: Jump, DR: 2, DC: -1},
	}
	kingJumps = PatternList{
		{Kind: Jump, DR: 1, DC: 0},
		{Kind: Jump, DR: 1, DC: 1},
		{Kind: Jump, DR: 0, DC: 1},
		{Kind: Jump, DR: -1, DC: 1},
		{Kind: Jump, DR: -1, DC: 0},
		{Kind: Jump, DR: -1, DC: -1},
		{Kind: Jump, DR: 0, DC: -1},
		{Kind: Jump, DR: 1, DC: -1},
	}
	pawnMovement = PatternList{
		{Kind: Jump, DR: 1, DC: 0},
		{Kind: Jump, DR: 2, DC: 0, FirstMoveOnly: true},
	}
	pawnCaptures = PatternList{
		{Kind: Jump, DR: 1, DC: 1},
		{Kind: Jump, DR: 1, DC: -1},
	}
)

// StandardPatterns returns (movement, captures, known) for the built-in
// piece types.
func StandardPatterns(pt PieceType) (PatternList, PatternList, bool) {
	switch pt {
	case TypePawn:
		return pawnMovement.Clone(), pawnCaptures.Clone(), true
	case TypeKnight:
		return knightJumps.Clone(), knightJumps.Clone(), true
	case TypeBishop:
		return diagonalRuns.Clone(), diagonalRuns.Clone(), true
	case TypeRook:
		return orthogonalRuns.Clone(), orthogonalRuns.Clone(), true
	case TypeQueen:
		both := append(orthogonalRuns.Clone(), diagonalRuns.Clone()...)
		return both, both.Clone(), true
	case TypeKing:
		return kingJumps.Clone(), kingJumps.Clone(), true
	default:
		return nil, nil, false
	}
}

// NewStandardPiece builds one of the six built-in pieces.
func NewStandardPiece(id PieceID, pt PieceType, color Color) *Piece {
	movement, captures, _ := StandardPatterns(pt)
	p := &Piece{
		ID:       id,
		Type:     pt,
		Color:    color,
		Movement: movement,
		Captures: captures,
		Promotes: pt == TypePawn,
	}
	if pt == TypeKing {
		p.Castling = &CastlingRule{RookType: TypeRook}
	}
	return p
}
