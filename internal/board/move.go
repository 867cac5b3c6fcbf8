package board

// Move describes a single transition on the board. The moved and captured
// pieces are read from the board when the move is constructed and never
// re-read afterwards, so a Move can be undone after the board has changed.
type Move struct {
	From     Square
	To       Square
	Piece    Piece // piece moved
	Captured Piece // occupant of To, or the passed pawn for en passant

	EnPassant bool
	Promotion bool      // a pawn reaches the farthest rank
	Choice    PieceType // promotion piece, NoPieceType until resolved
}

// NoMove represents the absence of a move.
var NoMove = Move{From: NoSquare, To: NoSquare, Piece: NoPiece, Captured: NoPiece, Choice: NoPieceType}

// NewMove creates a move from -> to, recording whatever occupies both squares
// on b. It never fails: legality is checked separately.
func NewMove(from, to Square, b *Board) Move {
	piece := b.Get(from)
	m := Move{
		From:     from,
		To:       to,
		Piece:    piece,
		Captured: b.Get(to),
		Choice:   NoPieceType,
	}
	if piece.Type() == Pawn {
		m.Promotion = (piece.Color() == White && to.Row() == 0) ||
			(piece.Color() == Black && to.Row() == 7)
	}
	return m
}

// NewEnPassant creates an en passant capture. The captured piece is the
// enemy pawn that is passed, not the (empty) landing square.
func NewEnPassant(from, to Square, b *Board) Move {
	m := NewMove(from, to, b)
	m.EnPassant = true
	m.Captured = NewPiece(Pawn, m.Piece.Color().Other())
	return m
}

// ID returns the move identity derived from the four coordinates.
// Two moves with the same start and end squares are the same move,
// whatever their promotion choice.
func (m Move) ID() int {
	return m.From.Row() + m.From.Col()*10 + m.To.Row()*100 + m.To.Col()*1000
}

// Equal compares moves by identity.
func (m Move) Equal(o Move) bool {
	return m.ID() == o.ID()
}

// IsNull returns true for NoMove.
func (m Move) IsNull() bool {
	return m.From == NoSquare
}

// IsCapture returns true if this move removes an enemy piece.
func (m Move) IsCapture() bool {
	return m.Captured != NoPiece
}

// IsDoublePush returns true for a two-square pawn advance.
func (m Move) IsDoublePush() bool {
	if m.Piece.Type() != Pawn {
		return false
	}
	d := m.From.Row() - m.To.Row()
	return d == 2 || d == -2
}

// Resolved reports whether the move can be applied as a complete ply:
// either it is not a promotion or its promotion choice is known.
func (m Move) Resolved() bool {
	return !m.Promotion || m.Choice != NoPieceType
}

// WithPromotion returns a copy of the move carrying the given promotion
// choice. The identity is unchanged.
func (m Move) WithPromotion(pt PieceType) Move {
	m.Choice = pt
	return m
}

// passedSquare returns the square of the pawn captured en passant: the
// landing column on the capturing pawn's starting row.
func (m Move) passedSquare() Square {
	return NewSquare(m.From.Row(), m.To.Col())
}

// String returns coordinate notation (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}

	s := m.From.String() + m.To.String()

	if m.Promotion && m.Choice != NoPieceType {
		s += string(m.Choice.Char())
	}

	return s
}
