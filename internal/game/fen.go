package game

import (
	"strconv"
	"strings"
)

// fenLetter maps a piece to its FEN letter. Custom pieces are approximated:
// anything with a run pattern plays roughly like a queen, jump-only pieces
// like a knight. Good enough for an engine to produce a plausible reply.
func fenLetter(p *Piece) byte {
	var c byte
	switch p.Type {
	case TypePawn:
		c = 'p'
	case TypeKnight:
		c = 'n'
	case TypeBishop:
		c = 'b'
	case TypeRook:
		c = 'r'
	case TypeQueen:
		c = 'q'
	case TypeKing:
		c = 'k'
	default:
		c = 'n'
		if hasRun(p.Movement) || hasRun(p.Captures) {
			c = 'q'
		}
	}
	if p.Color == White {
		c -= 'a' - 'A'
	}
	return c
}

func hasRun(pl PatternList) bool {
	for _, pat := range pl {
		if pat.Kind == Run {
			return true
		}
	}
	return false
}

// FEN renders the board as a FEN position an off-the-shelf engine will
// accept. Boards larger than 8x8 have no FEN form; smaller boards are padded
// with empty squares into the bottom-left corner of an 8x8 grid. Disabled
// squares read as empty. Returns false when the board cannot be encoded.
func FEN(b *Board) (string, bool) {
	if b.Rows > 8 || b.Cols > 8 {
		return "", false
	}
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			var p *Piece
			if rank < b.Rows && file < b.Cols {
				if sq := b.GetSquare(rank, file); sq != nil {
					p = b.PieceAt(sq.ID)
				}
			}
			if p == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(fenLetter(p))
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if b.Turn == Black {
		side = "b"
	}
	sb.WriteString(" " + side + " - - 0 1")
	return sb.String(), true
}
