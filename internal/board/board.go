package board

import "strings"

// Board is the 8x8 grid of squares, indexed by Square.
type Board [64]Piece

// backRank is the piece order on both back ranks, file a to h.
var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// EmptyBoard returns a board with every square empty.
func EmptyBoard() Board {
	var b Board
	for sq := range b {
		b[sq] = NoPiece
	}
	return b
}

// StartingBoard returns the standard initial position.
func StartingBoard() Board {
	b := EmptyBoard()
	for col := 0; col < 8; col++ {
		b[NewSquare(0, col)] = NewPiece(backRank[col], Black)
		b[NewSquare(1, col)] = BlackPawn
		b[NewSquare(6, col)] = WhitePawn
		b[NewSquare(7, col)] = NewPiece(backRank[col], White)
	}
	return b
}

// Get returns the piece on sq, or NoPiece if the square is empty.
func (b *Board) Get(sq Square) Piece {
	return b[sq]
}

// Set places piece on sq. NoPiece clears the square.
func (b *Board) Set(sq Square, piece Piece) {
	b[sq] = piece
}

// At returns the piece at row, col.
func (b *Board) At(row, col int) Piece {
	return b[NewSquare(row, col)]
}

// Material returns the material balance in points (positive favors white),
// independent of the side to move.
func (b *Board) Material() int {
	score := 0
	for _, piece := range b {
		switch piece.Color() {
		case White:
			score += piece.Value()
		case Black:
			score -= piece.Value()
		}
	}
	return score
}

// Mirrored returns the board with every piece's color swapped and the ranks
// reflected, so the result is the same position seen from the other side.
func (b *Board) Mirrored() Board {
	m := EmptyBoard()
	for sq, piece := range b {
		m[Square(sq).Mirror()] = piece.Flip()
	}
	return m
}

// String renders the board rank 8 first, using '.' for empty squares.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		sb.WriteByte(byte('8' - row))
		sb.WriteString("  ")
		for col := 0; col < 8; col++ {
			piece := b.At(row, col)
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}
