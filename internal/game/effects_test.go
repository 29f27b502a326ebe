package game

import (
	"errors"
	"testing"
)

func moveAndResolve(t *testing.T, b *Board, from, to SquareID) Resolution {
	t.Helper()
	mv, err := AttemptMove(b, from, to, "")
	if err != nil {
		t.Fatalf("move %s -> %s: %v", from, to, err)
	}
	return ResolveTriggers(b, mv)
}

func TestOnStepKill(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 3, 0)
	b.GetSquare(3, 3).Logic = RuleList{{
		Trigger: Trigger{Kind: OnStep},
		Effects: []Effect{{Kind: EffectKill}},
	}}

	res := moveAndResolve(t, b, SquareIDOf(3, 0), SquareIDOf(3, 3))
	if !res.ActorDied {
		t.Fatalf("trap did not kill the mover")
	}
	if _, ok := b.Pieces["wr"]; ok {
		t.Fatalf("dead piece still on board")
	}
	if b.IsOccupied(SquareIDOf(3, 3)) {
		t.Fatalf("trap square still occupied")
	}
}

func TestOnStepFilter(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 3, 0)
	b.GetSquare(3, 3).Logic = RuleList{{
		Trigger: Trigger{Kind: OnStep, Filter: PieceFilter{Color: BlackOnly}},
		Effects: []Effect{{Kind: EffectKill}},
	}}

	res := moveAndResolve(t, b, SquareIDOf(3, 0), SquareIDOf(3, 3))
	if res.Fired != 0 || res.ActorDied {
		t.Fatalf("black-only trap fired for a white piece: %+v", res)
	}
}

func TestOnStepWinEndsGame(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
	mustPlace(t, b, NewStandardPiece("br", TypeRook, Black), 7, 7)
	b.GetSquare(0, 5).Logic = RuleList{{
		Trigger: Trigger{Kind: OnStep},
		Effects: []Effect{{Kind: EffectWin, Side: White}},
	}}

	res := moveAndResolve(t, b, SquareIDOf(0, 0), SquareIDOf(0, 5))
	if !res.Ended || res.Winner != White {
		t.Fatalf("win effect did not end the game: %+v", res)
	}
	if !b.GameOver || !b.HasWinner || b.Winner != White {
		t.Fatalf("board not marked finished")
	}
	if _, err := AttemptMove(b, SquareIDOf(7, 7), SquareIDOf(7, 0), ""); !errors.Is(err, ErrGameOver) {
		t.Fatalf("post-win move err = %v, want ErrGameOver", err)
	}
}

func TestWinShortCircuitsRemainingEffects(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
	b.GetSquare(0, 3).Logic = RuleList{
		{
			Trigger: Trigger{Kind: OnStep},
			Effects: []Effect{{Kind: EffectWin, Side: White}},
		},
		{
			Trigger: Trigger{Kind: OnStep},
			Effects: []Effect{{Kind: EffectKill}},
		},
	}

	res := moveAndResolve(t, b, SquareIDOf(0, 0), SquareIDOf(0, 3))
	if !res.Ended || res.ActorDied {
		t.Fatalf("rules after a win still ran: %+v", res)
	}
	if _, ok := b.Pieces["wr"]; !ok {
		t.Fatalf("winner's piece removed by short-circuited rule")
	}
}

func TestTeleportAndInvalidTargets(t *testing.T) {
	cases := []struct {
		name   string
		target SquareID
		setup  func(b *Board)
		landed SquareID
	}{
		{
			name:   "valid",
			target: SquareIDOf(5, 5),
			landed: SquareIDOf(5, 5),
		},
		{
			name:   "off board",
			target: SquareID("99_99"),
			landed: SquareIDOf(0, 3),
		},
		{
			name:   "disabled",
			target: SquareIDOf(5, 5),
			setup:  func(b *Board) { b.GetSquare(5, 5).Disabled = true },
			landed: SquareIDOf(0, 3),
		},
		{
			name:   "occupied",
			target: SquareIDOf(7, 7),
			landed: SquareIDOf(0, 3),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBoard(8, 8)
			mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
			mustPlace(t, b, NewStandardPiece("br", TypeRook, Black), 7, 7)
			b.GetSquare(0, 3).Logic = RuleList{{
				Trigger: Trigger{Kind: OnStep},
				Effects: []Effect{{Kind: EffectTeleport, Target: tc.target}},
			}}
			if tc.setup != nil {
				tc.setup(b)
			}
			moveAndResolve(t, b, SquareIDOf(0, 0), SquareIDOf(0, 3))
			if got := b.Pieces["wr"].Position; got != tc.landed {
				t.Fatalf("piece at %s, want %s", got, tc.landed)
			}
		})
	}
}

func TestProximityDistance(t *testing.T) {
	newBoard := func() *Board {
		b := NewBoard(8, 8)
		mustPlace(t, b, NewStandardPiece("wk", TypeKing, White), 2, 2)
		b.GetSquare(4, 4).Logic = RuleList{{
			Trigger: Trigger{Kind: OnProximity, Distance: 1},
			Effects: []Effect{{Kind: EffectDisableSquare, Target: SquareIDOf(0, 0)}},
		}}
		return b
	}

	b := newBoard()
	res := moveAndResolve(t, b, SquareIDOf(2, 2), SquareIDOf(3, 3))
	if res.Fired != 1 || !b.GetSquare(0, 0).Disabled {
		t.Fatalf("landing adjacent to the sensor did not fire: %+v", res)
	}

	b = newBoard()
	res = moveAndResolve(t, b, SquareIDOf(2, 2), SquareIDOf(2, 3))
	if res.Fired != 0 || b.GetSquare(0, 0).Disabled {
		t.Fatalf("landing outside the radius fired: %+v", res)
	}
}

func TestProximityOnLandingSquare(t *testing.T) {
	// Distance 0 is within any radius: a proximity sensor fires for a piece
	// landing directly on it.
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 4, 0)
	b.GetSquare(4, 4).Logic = RuleList{{
		Trigger: Trigger{Kind: OnProximity, Distance: 1},
		Effects: []Effect{{Kind: EffectDisableSquare, Target: SquareIDOf(0, 0)}},
	}}

	res := moveAndResolve(t, b, SquareIDOf(4, 0), SquareIDOf(4, 4))
	if res.Fired != 1 {
		t.Fatalf("landing on the sensor square did not fire: %+v", res)
	}
	if !b.GetSquare(0, 0).Disabled {
		t.Fatalf("sensor effect not applied")
	}
}

func TestMoverOwnProximityLogic(t *testing.T) {
	// A piece carrying its own proximity rule is at distance 0 of every
	// square it lands on, so the rule fires on each of its moves.
	b := NewBoard(8, 8)
	p := NewStandardPiece("wr", TypeRook, White)
	p.Logic = RuleList{{
		Trigger: Trigger{Kind: OnProximity, Distance: 2},
		Effects: []Effect{{Kind: EffectDisableSquare, Target: SquareIDOf(7, 7)}},
	}}
	mustPlace(t, b, p, 0, 0)

	res := moveAndResolve(t, b, SquareIDOf(0, 0), SquareIDOf(0, 5))
	if res.Fired != 1 {
		t.Fatalf("mover's own proximity rule did not fire: %+v", res)
	}
	if !b.GetSquare(7, 7).Disabled {
		t.Fatalf("mover's effect not applied")
	}
}

func TestPieceProximityLogic(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 2, 2)
	sentinel := NewStandardPiece("bs", TypeKnight, Black)
	sentinel.Logic = RuleList{{
		Trigger: Trigger{Kind: OnProximity, Distance: 2, Filter: PieceFilter{Color: WhiteOnly}},
		Effects: []Effect{{Kind: EffectKill}},
	}}
	mustPlace(t, b, sentinel, 4, 4)

	res := moveAndResolve(t, b, SquareIDOf(2, 2), SquareIDOf(2, 4))
	if !res.ActorDied {
		t.Fatalf("sentinel did not kill the intruder: %+v", res)
	}
	if _, ok := b.Pieces["bs"]; !ok {
		t.Fatalf("sentinel itself was removed")
	}
}

func TestSquareToggleDefaultsToLandingSquare(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
	b.GetSquare(0, 2).Logic = RuleList{{
		Trigger: Trigger{Kind: OnStep},
		Effects: []Effect{{Kind: EffectDisableSquare}},
	}}

	moveAndResolve(t, b, SquareIDOf(0, 0), SquareIDOf(0, 2))
	if !b.GetSquare(0, 2).Disabled {
		t.Fatalf("empty target did not resolve to the landing square")
	}
}

func TestTriggersRunOncePerMove(t *testing.T) {
	b := NewBoard(8, 8)
	mustPlace(t, b, NewStandardPiece("wr", TypeRook, White), 0, 0)
	mustPlace(t, b, NewStandardPiece("br", TypeRook, Black), 7, 7)
	b.GetSquare(0, 3).Logic = RuleList{{
		Trigger: Trigger{Kind: OnStep},
		Effects: []Effect{{Kind: EffectEnableSquare, Target: SquareIDOf(6, 6)}},
	}}

	res := moveAndResolve(t, b, SquareIDOf(0, 0), SquareIDOf(0, 3))
	if res.Fired != 1 {
		t.Fatalf("fired = %d, want 1", res.Fired)
	}
	// A later move elsewhere must not re-run the rule for the parked piece.
	res = moveAndResolve(t, b, SquareIDOf(7, 7), SquareIDOf(7, 0))
	if res.Fired != 0 {
		t.Fatalf("stationary piece re-triggered square logic: %+v", res)
	}
}
