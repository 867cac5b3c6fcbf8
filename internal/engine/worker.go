package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Worker searches root candidates on its own position. Workers never share
// a position, so several can run in parallel on copies of the root.
type Worker struct {
	id int

	// Per-worker position copy
	pos *board.Position

	nodes uint64

	// Communication channel for results
	resultCh chan<- WorkerResult
}

// WorkerResult is the minimax score of one root candidate.
type WorkerResult struct {
	WorkerID int
	Index    int // position of the candidate in the root list
	Score    int
	Nodes    uint64
}

// rootJob is one root candidate handed to a worker.
type rootJob struct {
	index int
	move  board.Move
}

// NewWorker creates a search worker on pos.
func NewWorker(id int, pos *board.Position, resultCh chan<- WorkerResult) *Worker {
	return &Worker{
		id:       id,
		pos:      pos,
		resultCh: resultCh,
	}
}

// ID returns the worker's ID.
func (w *Worker) ID() int {
	return w.id
}

// Nodes returns the number of nodes searched.
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

// Run scores each job until jobs is closed. The side to move at the root
// maximizes when maximizing is set; replies alternate from there.
func (w *Worker) Run(jobs <-chan rootJob, depth int, maximizing bool) {
	for job := range jobs {
		before := w.nodes
		score := w.scoreRootMove(job.move, depth, maximizing)
		w.resultCh <- WorkerResult{
			WorkerID: w.id,
			Index:    job.index,
			Score:    score,
			Nodes:    w.nodes - before,
		}
	}
}

// scoreRootMove applies a root candidate and searches the reply tree.
func (w *Worker) scoreRootMove(m board.Move, depth int, maximizing bool) int {
	w.pos.MakeMove(m)
	next := w.pos.GenerateLegalMoves()
	score := w.minimax(next, depth-1, !maximizing)
	w.pos.UnmakeMove()
	return score
}

// minimax returns the score of the worker's position. moves are its legal
// moves; an empty list is a finished game at any ply.
func (w *Worker) minimax(moves []board.Move, depth int, maximizing bool) int {
	w.nodes++

	if len(moves) == 0 {
		return terminalScore(w.pos, depth)
	}
	if depth <= 0 {
		return Evaluate(w.pos)
	}

	best := Infinity
	if maximizing {
		best = -Infinity
	}

	var buf [len(board.PromotionChoices)]board.Move
	for _, m := range moves {
		for _, cand := range candidates(m, buf[:0]) {
			w.pos.MakeMove(cand)
			next := w.pos.GenerateLegalMoves()
			score := w.minimax(next, depth-1, !maximizing)
			w.pos.UnmakeMove()

			if (maximizing && score > best) || (!maximizing && score < best) {
				best = score
			}
		}
	}

	return best
}

// candidates expands an unresolved promotion into one move per choice so
// every searched ply completes; other moves pass through unchanged.
func candidates(m board.Move, buf []board.Move) []board.Move {
	if m.Resolved() {
		return append(buf, m)
	}
	for _, pt := range board.PromotionChoices {
		buf = append(buf, m.WithPromotion(pt))
	}
	return buf
}
