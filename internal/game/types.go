package game

import (
	"fmt"
	"strconv"
	"strings"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return White, false
	}
}

// PieceType is open-ended: the built-in constants cover standard chess and
// project definitions introduce their own names for custom pieces.
type PieceType = string

const (
	TypePawn   PieceType = "pawn"
	TypeKnight PieceType = "knight"
	TypeBishop PieceType = "bishop"
	TypeRook   PieceType = "rook"
	TypeQueen  PieceType = "queen"
	TypeKing   PieceType = "king"
)

// SquareID is a pure function of (row, col).
type SquareID string

func SquareIDOf(row, col int) SquareID {
	return SquareID(strconv.Itoa(row) + "_" + strconv.Itoa(col))
}

// Coords parses the id back into (row, col).
func (id SquareID) Coords() (int, int, bool) {
	parts := strings.SplitN(string(id), "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return row, col, true
}

type PieceID string

type PatternKind uint8

const (
	// Run slides along a direction until blocked or out of bounds.
	Run PatternKind = iota
	// Jump teleports to an exact relative offset, ignoring intervening squares.
	Jump
)

func (k PatternKind) String() string {
	if k == Run {
		return "run"
	}
	return "jump"
}

func ParsePatternKind(s string) (PatternKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "run":
		return Run, true
	case "jump":
		return Jump, true
	default:
		return Run, false
	}
}

// OffsetPattern describes one movement or capture rule. DR is authored from
// White's perspective (negative = toward Black's back rank) and mirrored for
// Black pieces at evaluation time.
type OffsetPattern struct {
	Kind PatternKind `json:"kind"`
	DR   int         `json:"dr"`
	DC   int         `json:"dc"`
	// FirstMoveOnly marks patterns usable only while HasMoved is false,
	// e.g. a pawn's double step.
	FirstMoveOnly bool `json:"firstMoveOnly,omitempty"`
}

type PatternList []OffsetPattern

func (pl PatternList) Clone() PatternList {
	if len(pl) == 0 {
		return nil
	}
	out := make(PatternList, len(pl))
	copy(out, pl)
	return out
}

type ColorFilter uint8

const (
	AnyColor ColorFilter = iota
	WhiteOnly
	BlackOnly
)

func (f ColorFilter) Matches(c Color) bool {
	switch f {
	case WhiteOnly:
		return c == White
	case BlackOnly:
		return c == Black
	default:
		return true
	}
}

func (f ColorFilter) String() string {
	switch f {
	case WhiteOnly:
		return "white"
	case BlackOnly:
		return "black"
	default:
		return "any"
	}
}

// PieceFilter restricts which pieces satisfy a trigger. Zero value matches
// everything.
type PieceFilter struct {
	Color ColorFilter `json:"color,omitempty"`
	Type  PieceType   `json:"type,omitempty"`
}

func (f PieceFilter) Matches(p *Piece) bool {
	if p == nil {
		return false
	}
	if !f.Color.Matches(p.Color) {
		return false
	}
	if f.Type != "" && f.Type != p.Type {
		return false
	}
	return true
}

type TriggerKind uint8

const (
	// OnStep fires when a matching piece lands on the square holding the rule.
	OnStep TriggerKind = iota
	// OnProximity fires when a matching piece lands within Distance squares
	// (Chebyshev) of the rule's square.
	OnProximity
)

func (k TriggerKind) String() string {
	if k == OnStep {
		return "on_step"
	}
	return "on_proximity"
}

type Trigger struct {
	Kind     TriggerKind `json:"kind"`
	Filter   PieceFilter `json:"filter,omitempty"`
	Distance int         `json:"distance,omitempty"`
}

type EffectKind uint8

const (
	EffectTeleport EffectKind = iota
	EffectDisableSquare
	EffectEnableSquare
	EffectKill
	EffectWin
)

func (k EffectKind) String() string {
	switch k {
	case EffectTeleport:
		return "teleport"
	case EffectDisableSquare:
		return "disable_square"
	case EffectEnableSquare:
		return "enable_square"
	case EffectKill:
		return "kill"
	case EffectWin:
		return "win"
	default:
		return fmt.Sprintf("effect(%d)", k)
	}
}

// Effect is one consequence of a fired trigger. Target is used by Teleport
// and the square toggles; Side names the winner for Win.
type Effect struct {
	Kind   EffectKind `json:"kind"`
	Target SquareID   `json:"target,omitempty"`
	Side   Color      `json:"side,omitempty"`
}

// TriggerRule pairs a condition with its effects. Effects execute in
// declaration order; a rule fires at most once per resolved move.
type TriggerRule struct {
	Trigger Trigger  `json:"trigger"`
	Effects []Effect `json:"effects"`
}

type RuleList []TriggerRule

func (rl RuleList) Clone() RuleList {
	if len(rl) == 0 {
		return nil
	}
	out := make(RuleList, len(rl))
	for i, r := range rl {
		out[i] = r
		out[i].Effects = append([]Effect(nil), r.Effects...)
	}
	return out
}

// CastlingRule lets a king-type piece castle with an unmoved RookType piece
// on the same row; the king shifts two columns toward the rook.
type CastlingRule struct {
	RookType PieceType `json:"rookType"`
}

type Square struct {
	ID       SquareID `json:"id"`
	Row      int      `json:"row"`
	Col      int      `json:"col"`
	Disabled bool     `json:"disabled"`
	Logic    RuleList `json:"logic,omitempty"`
}

type Piece struct {
	ID        PieceID        `json:"id"`
	Type      PieceType      `json:"type"`
	Color     Color          `json:"color"`
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

func (p *Piece) Clone() *Piece {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Movement = p.Movement.Clone()
	clone.Captures = p.Captures.Clone()
	clone.Logic = p.Logic.Clone()
	if p.Castling != nil {
		c := *p.Castling
		clone.Castling = &c
	}
	clone.Variables = cloneAnyMap(p.Variables)
	clone.Cooldowns = cloneIntMap(p.Cooldowns)
	return &clone
}

func cloneAnyMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneIntMap(src map[string]int) map[string]int {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
