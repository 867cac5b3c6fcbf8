package engine

import "github.com/hailam/chesscore/internal/board"

// Evaluate returns the material score of pos: the sum of piece values, white
// positive and black negative, whoever is to move.
func Evaluate(pos *board.Position) int {
	return MaterialScore(&pos.Board)
}

// MaterialScore scores a bare board.
func MaterialScore(b *board.Board) int {
	return b.Material()
}

// terminalScore scores a position with no legal moves. A mate found with
// more depth remaining is nearer the root and scores further from zero.
func terminalScore(pos *board.Position, depth int) int {
	if !pos.Checkmate {
		return StalemateScore
	}
	if depth < 0 {
		depth = 0
	}
	score := CheckmateScore + depth
	if pos.SideToMove == board.White {
		return -score
	}
	return score
}
