package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position with an empty move log.
// The castling field is accepted but ignored since castling is not played.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := &Position{
		Board:          EmptyBoard(),
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: invalid side to move: %s", ErrInvalidFEN, parts[1])
	}

	// Castling rights (field 2) are checked for shape only
	if strings.Trim(parts[2], "KQkq-") != "" {
		return nil, fmt.Errorf("%w: invalid castling field: %s", ErrInvalidFEN, parts[2])
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid en passant square: %s", ErrInvalidFEN, parts[3])
		}
		if !pos.enPassantPossible(sq) {
			return nil, fmt.Errorf("%w: no double-pushed pawn behind en passant square %s", ErrInvalidFEN, sq)
		}
		pos.EnPassant = sq
	}

	// Half-move clock (field 4) is not tracked; validate it anyway
	if len(parts) > 4 {
		if _, err := strconv.Atoi(parts[4]); err != nil {
			return nil, fmt.Errorf("%w: invalid half-move clock: %s", ErrInvalidFEN, parts[4])
		}
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid full-move number: %s", ErrInvalidFEN, parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	pos.findKings()
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}

	return pos, nil
}

// enPassantPossible reports whether sq can be the landing square of an en
// passant capture for the side to move: the enemy pawn that just advanced
// two squares stands beyond it and both squares it crossed are empty.
func (p *Position) enPassantPossible(sq Square) bool {
	landing, dir := 2, 1 // white to move, black pawn moved down the board
	if p.SideToMove == Black {
		landing, dir = 5, -1
	}
	if sq.Row() != landing {
		return false
	}
	col := sq.Col()
	return p.IsEmpty(sq) &&
		p.IsEmpty(NewSquare(landing-dir, col)) &&
		p.PieceAt(NewSquare(landing+dir, col)) == NewPiece(Pawn, p.SideToMove.Other())
}

// parsePiecePlacement parses the piece placement section of a FEN string.
// FEN lists rank 8 first, which is row 0.
func parsePiecePlacement(pos *Position, placement string) error {
	rows := strings.Split(placement, "/")
	if len(rows) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(rows))
	}

	for row, rowStr := range rows {
		col := 0

		for _, c := range rowStr {
			if col > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, 8-row)
			}

			if c >= '1' && c <= '8' {
				// Skip empty squares
				col += int(c - '0')
			} else {
				// Place a piece
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("%w: invalid piece character: %c", ErrInvalidFEN, c)
				}
				pos.Board.Set(NewSquare(row, col), piece)
				col++
			}
		}

		if col != 8 {
			return fmt.Errorf("%w: invalid number of squares in rank %d: got %d", ErrInvalidFEN, 8-row, col)
		}
	}

	return nil
}

// ToFEN returns the FEN representation of the position. Castling rights are
// always "-" and the half-move clock is always 0.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			piece := p.Board.At(row, col)
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteString(" - ")
	sb.WriteString(p.EnPassant.String())

	sb.WriteString(" 0 ")
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
