package game

import (
	"encoding/json"
	"errors"
	"testing"
)

func mustPlace(t *testing.T, b *Board, p *Piece, row, col int) {
	t.Helper()
	if err := b.PlacePiece(p, SquareIDOf(row, col)); err != nil {
		t.Fatalf("place %s: %v", p.ID, err)
	}
}

func wantDests(t *testing.T, dests map[SquareID]struct{}, present, absent []SquareID) {
	t.Helper()
	for _, id := range present {
		if _, ok := dests[id]; !ok {
			t.Fatalf("destination %s missing (have %v)", id, dests)
		}
	}
	for _, id := range absent {
		if _, ok := dests[id]; ok {
			t.Fatalf("destination %s should be illegal", id)
		}
	}
}

func TestRookRunStopsAtFirstPiece(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
	mustPlace(t, b, NewStandardPiece("bp", TypePawn, Black), 0, 4)
	mustPlace(t, b, NewStandardPiece("wp", TypePawn, White), 4, 0)

	dests := LegalDestinations(b, "wr")
	wantDests(t, dests,
		[]SquareID{SquareIDOf(0, 1), SquareIDOf(0, 3), SquareIDOf(0, 4), SquareIDOf(3, 0)},
		[]SquareID{SquareIDOf(0, 5), SquareIDOf(4, 0), SquareIDOf(5, 0)},
	)
}

func TestDisabledSquareEndsRun(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
	b.GetSquare(0, 2).Disabled = true

	dests := LegalDestinations(b, "wr")
	wantDests(t, dests,
		[]SquareID{SquareIDOf(0, 1)},
		[]SquareID{SquareIDOf(0, 2), SquareIDOf(0, 3)},
	)
}

func TestPawnDirectionMirrors(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wp", TypePawn, White), 1, 2)
	mustPlace(t, b, NewStandardPiece("bp", TypePawn, Black), 6, 2)
	mustPlace(t, b, NewStandardPiece("bn", TypeKnight, Black), 2, 3)

	white := LegalDestinations(b, "wp")
	wantDests(t, white,
		[]SquareID{SquareIDOf(2, 2), SquareIDOf(3, 2), SquareIDOf(2, 3)},
		[]SquareID{SquareIDOf(0, 2), SquareIDOf(2, 1)},
	)

	black := LegalDestinations(b, "bp")
	wantDests(t, black,
		[]SquareID{SquareIDOf(5, 2), SquareIDOf(4, 2)},
		[]SquareID{SquareIDOf(7, 2)},
	)
}

func TestPawnDoubleStepOnlyBeforeFirstMove(t *testing.T) {
	b := NewBoard(8, 8)
	p := NewStandardPiece("wp", TypePawn, White)
	mustPlace(t, b, p, 1, 0)
	if _, err := AttemptMove(b, SquareIDOf(1, 0), SquareIDOf(3, 0), ""); err != nil {
		t.Fatalf("double step: %v", err)
	}
	b.Turn = White
	dests := LegalDestinations(b, "wp")
	wantDests(t, dests,
		[]SquareID{SquareIDOf(4, 0)},
		[]SquareID{SquareIDOf(5, 0)},
	)
}

func TestRunFollowsAuthoredVector(t *testing.T) {
	// A (2,1) run slides along its own ray, never the unit diagonal.
	b := NewBoard(8, 8)
	rider := &Piece{
		ID:    "rider",
		Type:  "rider",
		Color: White,
		Movement: PatternList{
			{Kind: Run, DR: 2, DC: 1},
		},
		IsCustom: true,
	}
	mustPlace(t, b, rider, 0, 0)

	dests := LegalDestinations(b, "rider")
	wantDests(t, dests,
		[]SquareID{SquareIDOf(2, 1), SquareIDOf(4, 2), SquareIDOf(6, 3)},
		[]SquareID{SquareIDOf(1, 1), SquareIDOf(2, 2), SquareIDOf(3, 3)},
	)

	// Black rides the mirrored ray.
	blackRider := rider.Clone()
	blackRider.ID = "brider"
	blackRider.Color = Black
	mustPlace(t, b, blackRider, 7, 0)

	black := LegalDestinations(b, "brider")
	wantDests(t, black,
		[]SquareID{SquareIDOf(5, 1), SquareIDOf(3, 2), SquareIDOf(1, 3)},
		[]SquareID{SquareIDOf(6, 1)},
	)
}

func TestMovementNeverCaptures(t *testing.T) {
	// A custom piece with movement-only patterns cannot land on enemies.
	b := NewBoard(5, 5)
	p := &Piece{
		ID:    "slider",
		Type:  "slider",
		Color: White,
		Movement: PatternList{
			{Kind: Run, DR: 0, DC: 1},
		},
		IsCustom: true,
	}
	mustPlace(t, b, p, 2, 0)
	mustPlace(t, b, NewStandardPiece("bp", TypePawn, Black), 2, 3)

	dests := LegalDestinations(b, "slider")
	wantDests(t, dests,
		[]SquareID{SquareIDOf(2, 1), SquareIDOf(2, 2)},
		[]SquareID{SquareIDOf(2, 3), SquareIDOf(2, 4)},
	)
}

func TestAttemptMoveErrors(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
	mustPlace(t, b, NewStandardPiece("br", TypeRook, Black), 7, 7)

	before, _ := json.Marshal(Serialize(b))

	if _, err := AttemptMove(b, SquareIDOf(7, 7), SquareIDOf(7, 0), ""); !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("err = %v, want ErrWrongTurn", err)
	}
	if _, err := AttemptMove(b, SquareIDOf(0, 0), SquareIDOf(3, 3), ""); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if _, err := AttemptMove(b, SquareIDOf(4, 4), SquareIDOf(4, 5), ""); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("empty origin err = %v, want ErrIllegalMove", err)
	}

	after, _ := json.Marshal(Serialize(b))
	if string(before) != string(after) {
		t.Fatalf("rejected moves mutated the board:\n%s\n%s", before, after)
	}
}

func TestCaptureRemovesVictimAndFlipsTurn(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
	mustPlace(t, b, NewStandardPiece("bp", TypePawn, Black), 0, 4)

	mv, err := AttemptMove(b, SquareIDOf(0, 0), SquareIDOf(0, 4), "")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if mv.Captured != "bp" {
		t.Fatalf("captured = %q, want bp", mv.Captured)
	}
	if _, ok := b.Pieces["bp"]; ok {
		t.Fatalf("victim still on board")
	}
	if got := b.PieceAt(SquareIDOf(0, 4)); got == nil || got.ID != "wr" {
		t.Fatalf("mover not on target square")
	}
	if b.Turn != Black {
		t.Fatalf("turn = %v, want black", b.Turn)
	}
	if b.LastNote == "" {
		t.Fatalf("expected a move note")
	}
}

func TestGameOverRejectsMoves(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
	b.GameOver = true
	if _, err := AttemptMove(b, SquareIDOf(0, 0), SquareIDOf(0, 1), ""); !errors.Is(err, ErrGameOver) {
		t.Fatalf("err = %v, want ErrGameOver", err)
	}
}

func TestPromotionAtFarEdge(t *testing.T) {
	b := NewBoard(8, 8)
	p := NewStandardPiece("wp", TypePawn, White)
	p.HasMoved = true
	mustPlace(t, b, p, 6, 0)

	mv, err := AttemptMove(b, SquareIDOf(6, 0), SquareIDOf(7, 0), "")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if mv.Promotion != TypeQueen {
		t.Fatalf("promotion = %q, want queen", mv.Promotion)
	}
	if p.Type != TypeQueen || p.Promotes {
		t.Fatalf("piece not upgraded: type=%s promotes=%v", p.Type, p.Promotes)
	}
	if len(p.Movement) != len(orthogonalRuns)+len(diagonalRuns) {
		t.Fatalf("promoted piece kept pawn patterns")
	}
}

func TestPromotionChoice(t *testing.T) {
	b := NewBoard(8, 8)
	p := NewStandardPiece("bp", TypePawn, Black)
	p.HasMoved = true
	mustPlace(t, b, p, 1, 3)
	b.Turn = Black

	mv, err := AttemptMove(b, SquareIDOf(1, 3), SquareIDOf(0, 3), TypeKnight)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if mv.Promotion != TypeKnight || p.Type != TypeKnight {
		t.Fatalf("promotion = %q, piece type = %q, want knight", mv.Promotion, p.Type)
	}
}

func TestCastleKingSide(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wk", TypeKing, White), 0, 4)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 7)

	dests := LegalDestinations(b, "wk")
	wantDests(t, dests, []SquareID{SquareIDOf(0, 6)}, nil)

	mv, err := AttemptMove(b, SquareIDOf(0, 4), SquareIDOf(0, 6), "")
	if err != nil {
		t.Fatalf("castle: %v", err)
	}
	if !mv.Castled {
		t.Fatalf("move not flagged as castling")
	}
	if got := b.PieceAt(SquareIDOf(0, 5)); got == nil || got.ID != "wr" {
		t.Fatalf("rook did not hop to the inner square")
	}
}

func TestCastleBlockedPath(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wk", TypeKing, White), 0, 4)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 7)
	mustPlace(t, b, NewStandardPiece("wb", TypeBishop, White), 0, 5)

	dests := LegalDestinations(b, "wk")
	if _, ok := dests[SquareIDOf(0, 6)]; ok {
		t.Fatalf("castle allowed through occupied path")
	}
}

func TestCastleRequiresUnmovedPartner(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wk", TypeKing, White), 0, 4)
	rook := NewStandardPiece("wr", TypeRook, White)
	rook.HasMoved = true
	mustPlace(t, b, rook, 0, 7)

	dests := LegalDestinations(b, "wk")
	if _, ok := dests[SquareIDOf(0, 6)]; ok {
		t.Fatalf("castle allowed with a moved rook")
	}
}

func TestCastleRookTooClose(t *testing.T) {
	// The king's two-file shift would land on the rook itself.
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wk", TypeKing, White), 0, 4)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 6)

	dests := LegalDestinations(b, "wk")
	if _, ok := dests[SquareIDOf(0, 6)]; ok {
		t.Fatalf("castle allowed onto the partner's square")
	}
}
