package board

import (
	"fmt"
	"slices"
)

// Position is the complete game state: the board plus everything needed to
// generate moves and undo them. It is mutated only through MakeMove,
// UnmakeMove and ResolvePromotion.
type Position struct {
	Board Board

	SideToMove     Color
	EnPassant      Square // landing square for an en passant capture, NoSquare if none
	FullMoveNumber int    // starts at 1, incremented after black's ply

	// King positions (cached for check detection)
	KingSquare [2]Square

	// Terminal flags, recomputed by every GenerateLegalMoves call and
	// cleared by UnmakeMove.
	Checkmate bool
	Stalemate bool

	// Undo stack, one entry per MakeMove.
	history []UndoInfo
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	p := &Position{
		Board:          StartingBoard(),
		SideToMove:     White,
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	p.KingSquare[White] = E1
	p.KingSquare[Black] = E8
	return p
}

// Copy creates a deep copy of the position, including its undo stack.
// Searching a copy leaves the original untouched.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.history = slices.Clone(p.history)
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.Board.Get(sq)
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.Board.Get(sq) == NoPiece
}

// MoveLog returns the moves applied so far, oldest first.
func (p *Position) MoveLog() []Move {
	moves := make([]Move, len(p.history))
	for i, u := range p.history {
		moves[i] = u.Move
	}
	return moves
}

// Ply returns the number of entries on the undo stack.
func (p *Position) Ply() int {
	return len(p.history)
}

// LastMove returns the most recently applied move.
func (p *Position) LastMove() (Move, bool) {
	if len(p.history) == 0 {
		return NoMove, false
	}
	return p.history[len(p.history)-1].Move, true
}

// findKings locates and caches the king positions.
func (p *Position) findKings() {
	p.KingSquare[White] = NoSquare
	p.KingSquare[Black] = NoSquare
	for sq, piece := range p.Board {
		if piece.Type() == King {
			p.KingSquare[piece.Color()] = Square(sq)
		}
	}
}

// Validate checks that the position can be played from.
func (p *Position) Validate() error {
	kings := [2]int{}
	for sq, piece := range p.Board {
		switch {
		case piece.Type() == King:
			kings[piece.Color()]++
			if p.KingSquare[piece.Color()] != Square(sq) {
				return fmt.Errorf("%s king cached on %s but found on %s",
					piece.Color(), p.KingSquare[piece.Color()], Square(sq))
			}
		case piece.Type() == Pawn && (Square(sq).Row() == 0 || Square(sq).Row() == 7):
			return fmt.Errorf("pawn on back rank at %s", Square(sq))
		}
	}

	// Check that each side has exactly one king
	if kings[White] != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if kings[Black] != 1 {
		return fmt.Errorf("black must have exactly one king")
	}

	return nil
}

// Mirror returns a new position with colors swapped: every piece changes
// color and moves to the reflected rank, and the other side is to move.
// The undo stack is not carried over.
func (p *Position) Mirror() *Position {
	m := &Position{
		Board:          p.Board.Mirrored(),
		SideToMove:     p.SideToMove.Other(),
		EnPassant:      NoSquare,
		FullMoveNumber: p.FullMoveNumber,
	}
	if p.EnPassant != NoSquare {
		m.EnPassant = p.EnPassant.Mirror()
	}
	m.findKings()
	return m
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	s := "\n" + p.Board.String() + "\n"
	s += fmt.Sprintf("Side to move: %s\n", p.SideToMove)
	s += fmt.Sprintf("En passant: %s\n", p.EnPassant)
	s += fmt.Sprintf("Kings: %s %s\n", p.KingSquare[White], p.KingSquare[Black])
	s += fmt.Sprintf("Full move: %d\n", p.FullMoveNumber)
	return s
}
