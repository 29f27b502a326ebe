package game

import (
	"fmt"
	"sort"
)

// SquareState is a serializable representation of a Square.
type SquareState struct {
	ID       SquareID `json:"id"`
	Row      int      `json:"row"`
	Col      int      `json:"col"`
	Disabled bool     `json:"disabled"`
	Logic    RuleList `json:"logic,omitempty"`
}

// PieceState is a serializable representation of a Piece. Behavioral fields
// are carried even for custom pieces so a board stays playable when its
// project's definitions changed after the game started.
type PieceState struct {
	ID        PieceID        `json:"id"`
	Type      PieceType      `json:"type"`
	Color     Color          `json:"color"`
	ColorName string         `json:"colorName"`
	Position  SquareID       `json:"position"`
	Movement  PatternList    `json:"movement"`
	Captures  PatternList    `json:"captures"`
	Castling  *CastlingRule  `json:"castling,omitempty"`
	Logic     RuleList       `json:"logic,omitempty"`
	Variables map[string]any `json:"variables,omitempty"`
	Cooldowns map[string]int `json:"cooldowns,omitempty"`
	HasMoved  bool           `json:"hasMoved"`
	IsCustom  bool           `json:"isCustom"`
	Promotes  bool           `json:"promotes"`
}

// SerializedState is the transport- and persistence-safe form of a Board.
type SerializedState struct {
	Rows       int           `json:"rows"`
	Cols       int           `json:"cols"`
	Squares    []SquareState `json:"squares"`
	Pieces     []PieceState  `json:"pieces"`
	Turn       Color         `json:"turn"`
	TurnName   string        `json:"turnName"`
	GameOver   bool          `json:"gameOver"`
	HasWinner  bool          `json:"hasWinner"`
	Winner     Color         `json:"winner"`
	WinnerName string        `json:"winnerName,omitempty"`
	LastNote   string        `json:"lastNote,omitempty"`
}

// Serialize flattens the board to plain records. Output ordering is
// deterministic so serialized forms compare byte-for-byte.
func Serialize(b *Board) *SerializedState {
	st := &SerializedState{
		Rows:      b.Rows,
		Cols:      b.Cols,
		Squares:   make([]SquareState, 0, len(b.Squares)),
		Pieces:    make([]PieceState, 0, len(b.Pieces)),
		Turn:      b.Turn,
		TurnName:  b.Turn.String(),
		GameOver:  b.GameOver,
		HasWinner: b.HasWinner,
		Winner:    b.Winner,
		LastNote:  b.LastNote,
	}
	if b.HasWinner {
		st.WinnerName = b.Winner.String()
	}
	for _, sq := range b.Squares {
		st.Squares = append(st.Squares, SquareState{
			ID:       sq.ID,
			Row:      sq.Row,
			Col:      sq.Col,
			Disabled: sq.Disabled,
			Logic:    sq.Logic.Clone(),
		})
	}
	sort.Slice(st.Squares, func(i, j int) bool {
		a, c := st.Squares[i], st.Squares[j]
		if a.Row != c.Row {
			return a.Row < c.Row
		}
		return a.Col < c.Col
	})
	for _, p := range b.Pieces {
		var castling *CastlingRule
		if p.Castling != nil {
			c := *p.Castling
			castling = &c
		}
		st.Pieces = append(st.Pieces, PieceState{
			ID:        p.ID,
			Type:      p.Type,
			Color:     p.Color,
			ColorName: p.Color.String(),
			Position:  p.Position,
			Movement:  p.Movement.Clone(),
			Captures:  p.Captures.Clone(),
			Castling:  castling,
			Logic:     p.Logic.Clone(),
			Variables: cloneAnyMap(p.Variables),
			Cooldowns: cloneIntMap(p.Cooldowns),
			HasMoved:  p.HasMoved,
			IsCustom:  p.IsCustom,
			Promotes:  p.Promotes,
		})
	}
	sort.Slice(st.Pieces, func(i, j int) bool { return st.Pieces[i].ID < st.Pieces[j].ID })
	return st
}

// CustomPieceDef is the behavior a project's editor authored for one custom
// piece type.
type CustomPieceDef struct {
	Type     PieceType     `json:"type"`
	Movement PatternList   `json:"movement"`
	Captures PatternList   `json:"captures"`
	Logic    RuleList      `json:"logic,omitempty"`
	Castling *CastlingRule `json:"castling,omitempty"`
	Promotes bool          `json:"promotes,omitempty"`
}

// Deserialize reconstructs a Board. Squares come back verbatim. Custom pieces
// resolve behavior from defs by type; when no definition is found the piece's
// own serialized fields are used, so a stale or partial project definition
// degrades per piece instead of failing the load.
func Deserialize(st *SerializedState, defs map[PieceType]CustomPieceDef) (*Board, error) {
	if st == nil {
		return nil, fmt.Errorf("nil serialized state")
	}
	if st.Rows <= 0 || st.Cols <= 0 {
		return nil, fmt.Errorf("invalid board size %dx%d", st.Rows, st.Cols)
	}
	b := &Board{
		Rows:      st.Rows,
		Cols:      st.Cols,
		Squares:   make(map[SquareID]*Square, len(st.Squares)),
		Pieces:    make(map[PieceID]*Piece, len(st.Pieces)),
		Turn:      st.Turn,
		GameOver:  st.GameOver,
		HasWinner: st.HasWinner,
		Winner:    st.Winner,
		LastNote:  st.LastNote,
		occupied:  make(map[SquareID]PieceID, len(st.Pieces)),
	}
	for _, sq := range st.Squares {
		b.Squares[sq.ID] = &Square{
			ID:       sq.ID,
			Row:      sq.Row,
			Col:      sq.Col,
			Disabled: sq.Disabled,
			Logic:    sq.Logic.Clone(),
		}
	}
	for _, ps := range st.Pieces {
		p := &Piece{
			ID:        ps.ID,
			Type:      ps.Type,
			Color:     ps.Color,
			Position:  ps.Position,
			Movement:  ps.Movement.Clone(),
			Captures:  ps.Captures.Clone(),
			Logic:     ps.Logic.Clone(),
			Variables: cloneAnyMap(ps.Variables),
			Cooldowns: cloneIntMap(ps.Cooldowns),
			HasMoved:  ps.HasMoved,
			IsCustom:  ps.IsCustom,
			Promotes:  ps.Promotes,
		}
		if ps.Castling != nil {
			c := *ps.Castling
			p.Castling = &c
		}
		if ps.IsCustom {
			if def, ok := defs[ps.Type]; ok {
				p.Movement = def.Movement.Clone()
				p.Captures = def.Captures.Clone()
				p.Logic = def.Logic.Clone()
				p.Promotes = def.Promotes
				if def.Castling != nil {
					c := *def.Castling
					p.Castling = &c
				}
			}
		}
		if b.Squares[p.Position] == nil {
			return nil, fmt.Errorf("piece %s on %s: %w", p.ID, p.Position, ErrUnknownSquare)
		}
		if _, taken := b.occupied[p.Position]; taken {
			return nil, fmt.Errorf("piece %s on %s: %w", p.ID, p.Position, ErrSquareTaken)
		}
		b.Pieces[p.ID] = p
		b.occupied[p.Position] = p.ID
	}
	return b, nil
}

// PlacedPiece is one entry of a project's starting position.
type PlacedPiece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// ProjectDefinition is the artifact the surrounding editor hands over: board
// shape, active squares, square logic, the starting position, and custom
// piece behavior.
type ProjectDefinition struct {
	Rows          int                      `json:"rows"`
	Cols          int                      `json:"cols"`
	ActiveSquares []SquareID               `json:"activeSquares,omitempty"`
	SquareLogic   map[SquareID]RuleList    `json:"squareLogic,omitempty"`
	PlacedPieces  map[SquareID]PlacedPiece `json:"placedPieces"`
	CustomPieces  []CustomPieceDef         `json:"customPieces,omitempty"`
}

// CustomDefs indexes the project's custom pieces by type.
func (def *ProjectDefinition) CustomDefs() map[PieceType]CustomPieceDef {
	out := make(map[PieceType]CustomPieceDef, len(def.CustomPieces))
	for _, d := range def.CustomPieces {
		out[d.Type] = d
	}
	return out
}

// BoardFromProject constructs the initial board for a project. An empty
// ActiveSquares list means the whole grid is active. Unknown custom types
// with no definition become inert pieces with no patterns rather than an
// error; the rest of the project is usually still playable.
func BoardFromProject(def *ProjectDefinition) (*Board, error) {
	if def == nil || def.Rows <= 0 || def.Cols <= 0 {
		return nil, fmt.Errorf("invalid project dimensions")
	}
	b := NewBoard(def.Rows, def.Cols)
	if len(def.ActiveSquares) > 0 {
		active := make(map[SquareID]struct{}, len(def.ActiveSquares))
		for _, id := range def.ActiveSquares {
			active[id] = struct{}{}
		}
		for id, sq := range b.Squares {
			if _, ok := active[id]; !ok {
				sq.Disabled = true
			}
		}
	}
	for id, logic := range def.SquareLogic {
		if sq := b.Squares[id]; sq != nil {
			sq.Logic = logic.Clone()
		}
	}

	defs := def.CustomDefs()
	placements := make([]SquareID, 0, len(def.PlacedPieces))
	for id := range def.PlacedPieces {
		placements = append(placements, id)
	}
	sort.Slice(placements, func(i, j int) bool { return placements[i] < placements[j] })
	for _, id := range placements {
		pp := def.PlacedPieces[id]
		pieceID := PieceID(fmt.Sprintf("%s_%s", id, pp.Type))
		var piece *Piece
		if _, _, standard := StandardPatterns(pp.Type); standard {
			piece = NewStandardPiece(pieceID, pp.Type, pp.Color)
		} else {
			piece = &Piece{ID: pieceID, Type: pp.Type, Color: pp.Color, IsCustom: true}
			if d, ok := defs[pp.Type]; ok {
				piece.Movement = d.Movement.Clone()
				piece.Captures = d.Captures.Clone()
				piece.Logic = d.Logic.Clone()
				piece.Promotes = d.Promotes
				if d.Castling != nil {
					c := *d.Castling
					piece.Castling = &c
				}
			}
		}
		if err := b.PlacePiece(piece, id); err != nil {
			return nil, fmt.Errorf("project placement: %w", err)
		}
	}
	b.LastNote = "new game"
	return b, nil
}

// StandardProject is the classic 8x8 starting position expressed as a
// project definition.
func StandardProject() *ProjectDefinition {
	def := &ProjectDefinition{
		Rows:         8,
		Cols:         8,
		PlacedPieces: make(map[SquareID]PlacedPiece, 32),
	}
	back := []PieceType{TypeRook, TypeKnight, TypeBishop, TypeQueen, TypeKing, TypeBishop, TypeKnight, TypeRook}
	for col, pt := range back {
		def.PlacedPieces[SquareIDOf(0, col)] = PlacedPiece{Type: pt, Color: White}
		def.PlacedPieces[SquareIDOf(7, col)] = PlacedPiece{Type: pt, Color: Black}
	}
	for col := 0; col < 8; col++ {
		def.PlacedPieces[SquareIDOf(1, col)] = PlacedPiece{Type: TypePawn, Color: White}
		def.PlacedPieces[SquareIDOf(6, col)] = PlacedPiece{Type: TypePawn, Color: Black}
	}
	return def
}
