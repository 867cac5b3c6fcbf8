package board

import (
	"fmt"
	"strings"
)

// ParseMove resolves coordinate notation ("e2e4", "e7e8q") against the
// legal moves of pos. A promotion without a suffix is returned unresolved.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	choice := NoPieceType
	if len(s) == 5 {
		choice = PieceTypeFromChar(s[4])
		if !choice.IsPromotionChoice() {
			return NoMove, fmt.Errorf("%w: %c", ErrInvalidPromotion, s[4])
		}
	}

	want := NewMove(from, to, &pos.Board)
	for _, m := range pos.GenerateLegalMoves() {
		if !m.Equal(want) {
			continue
		}
		if choice != NoPieceType {
			if !m.Promotion {
				return NoMove, fmt.Errorf("%w: %q is not a promotion", ErrIllegalMove, s)
			}
			return m.WithPromotion(choice), nil
		}
		return m, nil
	}

	return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
}

// MovesToText renders moves in coordinate notation.
func MovesToText(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

// ApplyMoves parses and plays each move text in order. Promotions are
// played in one step; a promotion without a suffix becomes a queen.
// It stops at the first move that is not legal.
func (p *Position) ApplyMoves(moves ...string) error {
	for i, s := range moves {
		m, err := ParseMove(strings.TrimSpace(s), p)
		if err != nil {
			return fmt.Errorf("ply %d: %w", i+1, err)
		}
		if m.Promotion && m.Choice == NoPieceType {
			m = m.WithPromotion(Queen)
		}
		p.MakeMove(m)
	}
	return nil
}
