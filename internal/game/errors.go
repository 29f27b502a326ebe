package game

import "errors"

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrWrongTurn     = errors.New("not your turn")
	ErrGameOver      = errors.New("game is over")
	ErrUnknownPiece  = errors.New("unknown piece")
	ErrUnknownSquare = errors.New("unknown square")
	ErrSquareTaken   = errors.New("square already occupied")
	ErrSquareOff     = errors.New("square disabled")
)
