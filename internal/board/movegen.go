package board

// Ray directions as (row, col) steps.
var (
	rookDirections   = [4][2]int{{-1, 0}, {1, 0}, {0, 1}, {0, -1}}
	bishopDirections = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	knightOffsets    = [8][2]int{{-2, -1}, {-1, -2}, {1, -2}, {2, -1}, {2, 1}, {1, 2}, {-1, 2}, {-2, 1}}
	kingOffsets      = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

// GeneratePseudoLegalMoves generates all pseudo-legal moves for the side to
// move (may leave king in check). Castling is not generated.
func (p *Position) GeneratePseudoLegalMoves() []Move {
	return p.generateMoves(p.SideToMove)
}

// generateMoves generates the pseudo-legal moves of color us, scanning the
// board from a8 to h1.
func (p *Position) generateMoves(us Color) []Move {
	moves := make([]Move, 0, 48)

	for i, piece := range p.Board {
		if piece == NoPiece || piece.Color() != us {
			continue
		}
		from := Square(i)

		switch piece.Type() {
		case Pawn:
			moves = p.pawnMoves(moves, from, us)
		case Rook:
			moves = p.rookMoves(moves, from, us)
		case Knight:
			moves = p.knightMoves(moves, from, us)
		case Bishop:
			moves = p.bishopMoves(moves, from, us)
		case Queen:
			moves = p.queenMoves(moves, from, us)
		case King:
			moves = p.kingMoves(moves, from, us)
		}
	}

	return moves
}

// pawnMoves adds single and double pushes, diagonal captures and en passant.
// White pawns advance toward row 0.
func (p *Position) pawnMoves(moves []Move, from Square, us Color) []Move {
	dir, startRow := -1, 6
	if us == Black {
		dir, startRow = 1, 1
	}
	row, col := from.Row(), from.Col()
	next := row + dir
	if next < 0 || next > 7 {
		return moves
	}

	// Pushes
	one := NewSquare(next, col)
	if p.IsEmpty(one) {
		moves = append(moves, NewMove(from, one, &p.Board))
		if row == startRow {
			two := NewSquare(next+dir, col)
			if p.IsEmpty(two) {
				moves = append(moves, NewMove(from, two, &p.Board))
			}
		}
	}

	// Captures
	for _, dc := range [2]int{-1, 1} {
		c := col + dc
		if c < 0 || c > 7 {
			continue
		}
		to := NewSquare(next, c)
		target := p.Board.Get(to)
		if target != NoPiece && target.Color() != us {
			moves = append(moves, NewMove(from, to, &p.Board))
		} else if to == p.EnPassant {
			moves = append(moves, NewEnPassant(from, to, &p.Board))
		}
	}

	return moves
}

// slide casts a ray from from in each direction, stopping before a friendly
// piece and on (including) an enemy piece.
func (p *Position) slide(moves []Move, from Square, us Color, dirs [4][2]int) []Move {
	for _, d := range dirs {
		row, col := from.Row(), from.Col()
		for {
			row += d[0]
			col += d[1]
			if !onBoard(row, col) {
				break
			}
			to := NewSquare(row, col)
			target := p.Board.Get(to)
			if target == NoPiece {
				moves = append(moves, NewMove(from, to, &p.Board))
				continue
			}
			if target.Color() != us {
				moves = append(moves, NewMove(from, to, &p.Board))
			}
			break
		}
	}
	return moves
}

// jump adds each on-board offset target that is empty or holds an enemy piece.
func (p *Position) jump(moves []Move, from Square, us Color, offsets [8][2]int) []Move {
	for _, o := range offsets {
		row, col := from.Row()+o[0], from.Col()+o[1]
		if !onBoard(row, col) {
			continue
		}
		to := NewSquare(row, col)
		if target := p.Board.Get(to); target == NoPiece || target.Color() != us {
			moves = append(moves, NewMove(from, to, &p.Board))
		}
	}
	return moves
}

func (p *Position) rookMoves(moves []Move, from Square, us Color) []Move {
	return p.slide(moves, from, us, rookDirections)
}

func (p *Position) bishopMoves(moves []Move, from Square, us Color) []Move {
	return p.slide(moves, from, us, bishopDirections)
}

// queenMoves is the union of rook and bishop rays.
func (p *Position) queenMoves(moves []Move, from Square, us Color) []Move {
	moves = p.rookMoves(moves, from, us)
	return p.bishopMoves(moves, from, us)
}

func (p *Position) knightMoves(moves []Move, from Square, us Color) []Move {
	return p.jump(moves, from, us, knightOffsets)
}

func (p *Position) kingMoves(moves []Move, from Square, us Color) []Move {
	return p.jump(moves, from, us, kingOffsets)
}
