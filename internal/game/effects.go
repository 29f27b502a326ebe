package game

import (
	"fmt"
	"sort"
)

// Resolution summarizes one post-move trigger pass.
type Resolution struct {
	Fired     int
	ActorDied bool
	Ended     bool
	Winner    Color
}

// firedRule is a collected rule plus enough identity to report where it came
// from in board notes.
type firedRule struct {
	rule   *TriggerRule
	source string
}

// ResolveTriggers runs once per successfully applied move, in two passes:
// pass 1 collects every satisfied rule, pass 2 applies their effects in
// declaration order. Effects never re-invoke collection within the same move,
// so cascades are bounded to one pass; a fresh evaluation happens only on the
// next move.
func ResolveTriggers(b *Board, mv MoveResult) Resolution {
	var res Resolution
	if !mv.Applied {
		return res
	}
	actor := b.Pieces[mv.PieceID]
	if actor == nil {
		return res
	}
	landing := b.SquareAt(actor.Position)
	if landing == nil {
		return res
	}

	fired := collectRules(b, actor, landing)

	for i := range fired {
		res.Fired++
		if applyEffects(b, actor, fired[i], &res) {
			break
		}
	}
	return res
}

// collectRules gathers satisfied rules in a deterministic order: the landing
// square's OnStep rules, proximity square rules by (row, col), the actor's
// own rules, then bystander pieces' proximity rules by piece id. The landing
// square and the actor itself are at Chebyshev distance 0, so their
// OnProximity rules fire for any non-negative radius.
func collectRules(b *Board, actor *Piece, landing *Square) []firedRule {
	var out []firedRule

	for i := range landing.Logic {
		rule := &landing.Logic[i]
		if rule.Trigger.Kind == OnStep && rule.Trigger.Filter.Matches(actor) {
			out = append(out, firedRule{rule: rule, source: "square " + string(landing.ID)})
		}
	}

	proximitySquares := make([]*Square, 0)
	for _, sq := range b.Squares {
		if len(sq.Logic) == 0 {
			continue
		}
		proximitySquares = append(proximitySquares, sq)
	}
	sort.Slice(proximitySquares, func(i, j int) bool {
		a, c := proximitySquares[i], proximitySquares[j]
		if a.Row != c.Row {
			return a.Row < c.Row
		}
		return a.Col < c.Col
	})
	for _, sq := range proximitySquares {
		for i := range sq.Logic {
			rule := &sq.Logic[i]
			if rule.Trigger.Kind != OnProximity || !rule.Trigger.Filter.Matches(actor) {
				continue
			}
			if chebyshev(sq, landing) <= rule.Trigger.Distance {
				out = append(out, firedRule{rule: rule, source: "square " + string(sq.ID)})
			}
		}
	}

	for i := range actor.Logic {
		rule := &actor.Logic[i]
		if !rule.Trigger.Filter.Matches(actor) {
			continue
		}
		// OnStep and OnProximity both hold for the mover at its own landing
		// square.
		out = append(out, firedRule{rule: rule, source: "piece " + string(actor.ID)})
	}

	bystanders := make([]*Piece, 0)
	for _, p := range b.Pieces {
		if p.ID != actor.ID && len(p.Logic) > 0 {
			bystanders = append(bystanders, p)
		}
	}
	sort.Slice(bystanders, func(i, j int) bool { return bystanders[i].ID < bystanders[j].ID })
	for _, p := range bystanders {
		sq := b.SquareAt(p.Position)
		if sq == nil {
			continue
		}
		for i := range p.Logic {
			rule := &p.Logic[i]
			if rule.Trigger.Kind != OnProximity || !rule.Trigger.Filter.Matches(actor) {
				continue
			}
			if chebyshev(sq, landing) <= rule.Trigger.Distance {
				out = append(out, firedRule{rule: rule, source: "piece " + string(p.ID)})
			}
		}
	}

	return out
}

// applyEffects runs one rule's effects in declaration order against the
// moved piece. Returns true when a Win ended the game, which short-circuits
// the remaining queued rules for this move.
func applyEffects(b *Board, actor *Piece, fr firedRule, res *Resolution) bool {
	for _, eff := range fr.rule.Effects {
		switch eff.Kind {
		case EffectTeleport:
			if res.ActorDied {
				continue
			}
			target := b.SquareAt(eff.Target)
			// Invalid targets are a silent no-op, never an abort.
			if target == nil || target.Disabled || b.IsOccupied(target.ID) {
				continue
			}
			b.relocate(actor, target.ID)
			appendNote(&b.LastNote, fmt.Sprintf("%s teleported to %s", actor.Type, target.ID))
		case EffectDisableSquare:
			if sq := effectSquare(b, eff.Target, actor); sq != nil {
				sq.Disabled = true
				appendNote(&b.LastNote, fmt.Sprintf("square %s disabled", sq.ID))
			}
		case EffectEnableSquare:
			if sq := effectSquare(b, eff.Target, actor); sq != nil {
				sq.Disabled = false
				appendNote(&b.LastNote, fmt.Sprintf("square %s enabled", sq.ID))
			}
		case EffectKill:
			if res.ActorDied {
				continue
			}
			b.RemovePiece(actor.ID)
			res.ActorDied = true
			appendNote(&b.LastNote, fmt.Sprintf("%s %s destroyed (%s)", actor.Color, actor.Type, fr.source))
		case EffectWin:
			b.GameOver = true
			b.HasWinner = true
			b.Winner = eff.Side
			res.Ended = true
			res.Winner = eff.Side
			appendNote(&b.LastNote, fmt.Sprintf("%s wins", eff.Side))
			return true
		}
	}
	return false
}

// effectSquare resolves a square toggle's target; an empty target means the
// actor's current square.
func effectSquare(b *Board, target SquareID, actor *Piece) *Square {
	if target == "" {
		return b.SquareAt(actor.Position)
	}
	return b.SquareAt(target)
}

func chebyshev(a, b *Square) int {
	dr := abs(a.Row - b.Row)
	dc := abs(a.Col - b.Col)
	if dr > dc {
		return dr
	}
	return dc
}
