package board

// GenerateLegalMoves generates all legal moves for the side to move and
// recomputes the Checkmate and Stalemate flags.
//
// Each pseudo-legal candidate is applied, the mover's king is tested against
// every pseudo-legal reply, and the candidate is undone. The cost is roughly
// the product of both sides' move counts.
func (p *Position) GenerateLegalMoves() []Move {
	moves := p.GeneratePseudoLegalMoves()
	legal := p.filterLegalMoves(moves)

	if len(legal) == 0 {
		inCheck := p.InCheck()
		p.Checkmate = inCheck
		p.Stalemate = !inCheck
	} else {
		p.Checkmate = false
		p.Stalemate = false
	}

	return legal
}

// filterLegalMoves removes moves that leave the mover's king attacked.
// The input slice is reused.
func (p *Position) filterLegalMoves(moves []Move) []Move {
	us := p.SideToMove
	legal := moves[:0]

	for _, m := range moves {
		p.MakeMove(m)
		// MakeMove normally hands the turn over; test from the mover's side.
		after := p.SideToMove
		p.SideToMove = us
		attacked := p.SquareUnderAttack(p.KingSquare[us])
		p.SideToMove = after
		p.UnmakeMove()

		if !attacked {
			legal = append(legal, m)
		}
	}

	return legal
}

// SquareUnderAttack reports whether any pseudo-legal move of the side not
// to move ends on sq. It does not check legality of those replies.
func (p *Position) SquareUnderAttack(sq Square) bool {
	return p.IsSquareAttacked(sq, p.SideToMove.Other())
}

// IsSquareAttacked reports whether color by has a pseudo-legal move onto sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	for _, m := range p.generateMoves(by) {
		if m.To == sq {
			return true
		}
	}
	return false
}

// InCheck returns true if the side to move's king is attacked.
func (p *Position) InCheck() bool {
	return p.SquareUnderAttack(p.KingSquare[p.SideToMove])
}

// IsCheckmate regenerates the legal moves and reports checkmate.
func (p *Position) IsCheckmate() bool {
	p.GenerateLegalMoves()
	return p.Checkmate
}

// IsStalemate regenerates the legal moves and reports stalemate.
func (p *Position) IsStalemate() bool {
	p.GenerateLegalMoves()
	return p.Stalemate
}
