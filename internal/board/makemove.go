package board

import "fmt"

// UndoInfo is one entry of the undo stack.
type UndoInfo struct {
	Move           Move
	EnPassant      Square // en passant target before the move
	FullMoveNumber int
	Completed      bool // the ply handed the turn to the opponent
}

// MakeMove applies a move to the position and pushes it on the undo stack.
//
// A promotion without a choice is staged: the pawn is placed on the last
// rank and logged, but the turn does not pass until ResolvePromotion (or a
// second MakeMove of the same move carrying a choice) completes the ply.
//
// The move must come from the current legal-move list; anything else leaves
// the position undefined.
func (p *Position) MakeMove(m Move) {
	if staged, ok := p.PendingPromotion(); ok && staged.Equal(m) && m.Choice != NoPieceType {
		// Second phase of a staged promotion.
		if err := p.ResolvePromotion(m.Choice); err == nil {
			return
		}
	}

	undo := UndoInfo{
		Move:           m,
		EnPassant:      p.EnPassant,
		FullMoveNumber: p.FullMoveNumber,
	}

	us := m.Piece.Color()
	placed := m.Piece
	if m.Promotion && m.Choice != NoPieceType {
		placed = NewPiece(m.Choice, us)
	}

	p.Board.Set(m.From, NoPiece)
	p.Board.Set(m.To, placed)

	if m.Piece.Type() == King {
		p.KingSquare[us] = m.To
	}

	if m.EnPassant {
		p.Board.Set(m.passedSquare(), NoPiece)
	}

	if m.IsDoublePush() {
		p.EnPassant = NewSquare((m.From.Row()+m.To.Row())/2, m.From.Col())
	} else {
		p.EnPassant = NoSquare
	}

	if m.Resolved() {
		p.completePly(&undo)
	}

	p.history = append(p.history, undo)
}

// completePly hands the turn to the opponent.
func (p *Position) completePly(undo *UndoInfo) {
	if p.SideToMove == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = p.SideToMove.Other()
	undo.Completed = true
}

// PendingPromotion returns the staged promotion waiting for a choice.
func (p *Position) PendingPromotion() (Move, bool) {
	if len(p.history) == 0 {
		return NoMove, false
	}
	top := p.history[len(p.history)-1]
	if top.Completed || !top.Move.Promotion {
		return NoMove, false
	}
	return top.Move, true
}

// ResolvePromotion supplies the choice for a staged promotion, replaces the
// pawn with the chosen piece and completes the ply.
func (p *Position) ResolvePromotion(pt PieceType) error {
	if !pt.IsPromotionChoice() {
		return fmt.Errorf("%w: %s", ErrInvalidPromotion, pt)
	}
	if _, ok := p.PendingPromotion(); !ok {
		return ErrNoPendingPromotion
	}

	top := &p.history[len(p.history)-1]
	top.Move.Choice = pt
	p.Board.Set(top.Move.To, NewPiece(pt, top.Move.Piece.Color()))
	p.completePly(top)
	return nil
}

// UnmakeMove pops the last move and restores the board, king squares, en
// passant target and side to move. It is a no-op on an empty stack.
// Both terminal flags are cleared.
func (p *Position) UnmakeMove() {
	if len(p.history) == 0 {
		return
	}

	undo := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	m := undo.Move

	p.Board.Set(m.From, m.Piece)
	p.Board.Set(m.To, m.Captured)

	if m.Piece.Type() == King {
		p.KingSquare[m.Piece.Color()] = m.From
	}

	if m.EnPassant {
		p.Board.Set(m.To, NoPiece)
		p.Board.Set(m.passedSquare(), m.Captured)
	}

	p.EnPassant = undo.EnPassant
	p.FullMoveNumber = undo.FullMoveNumber
	if undo.Completed {
		p.SideToMove = p.SideToMove.Other()
	}

	p.Checkmate = false
	p.Stalemate = false
}
