package board

import "errors"

var (
	// ErrInvalidFEN indicates a malformed FEN string.
	ErrInvalidFEN = errors.New("invalid FEN")

	// ErrInvalidSquare indicates a square name outside a1..h8.
	ErrInvalidSquare = errors.New("invalid square")

	// ErrIllegalMove indicates move text that matches no legal move.
	ErrIllegalMove = errors.New("illegal move")

	// ErrNoPendingPromotion is returned when a promotion choice is supplied
	// but the last logged move is not a staged promotion.
	ErrNoPendingPromotion = errors.New("no pending promotion")

	// ErrInvalidPromotion indicates a promotion choice other than Q, R, B or N.
	ErrInvalidPromotion = errors.New("invalid promotion piece")
)
