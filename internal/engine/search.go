package engine

import (
	"sync"

	"github.com/hailam/chesscore/internal/board"
)

// Search constants
const (
	Infinity       = 30000
	CheckmateScore = 1000
	StalemateScore = 0
)

// Result is the outcome of a root search.
type Result struct {
	Score int
	Move  board.Move
	Found bool // false when there was no candidate to play
	Nodes uint64
}

// Searcher performs a fixed-depth minimax search. Root candidates are
// scored by one or more workers; the best is then chosen in candidate
// order, so the result does not depend on the number of workers.
type Searcher struct {
	threads int
	nodes   uint64
}

// NewSearcher creates a searcher using up to threads workers.
func NewSearcher(threads int) *Searcher {
	if threads < 1 {
		threads = 1
	}
	return &Searcher{threads: threads}
}

// Threads returns the maximum number of workers.
func (s *Searcher) Threads() int {
	return s.threads
}

// Nodes returns the number of nodes visited by the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search runs minimax from pos over the given root candidates. White
// maximizes, black minimizes. pos is restored before Search returns.
func (s *Searcher) Search(pos *board.Position, moves []board.Move, depth int) Result {
	s.nodes = 1
	if len(moves) == 0 {
		return Result{Score: terminalScore(pos, depth), Move: board.NoMove, Nodes: s.nodes}
	}
	if depth < 1 {
		depth = 1
	}

	var roots []board.Move
	var buf [len(board.PromotionChoices)]board.Move
	for _, m := range moves {
		roots = append(roots, candidates(m, buf[:0])...)
	}

	maximizing := pos.SideToMove == board.White
	scores := s.scoreRoots(pos, roots, depth, maximizing)

	best := Infinity
	if maximizing {
		best = -Infinity
	}
	res := Result{Move: board.NoMove}
	for i, score := range scores {
		if (maximizing && score > best) || (!maximizing && score < best) {
			best = score
			res.Move = roots[i]
			res.Found = true
		}
	}
	res.Score = best
	res.Nodes = s.nodes

	return res
}

// scoreRoots scores every root candidate, in parallel when more than one
// worker is allowed.
func (s *Searcher) scoreRoots(pos *board.Position, roots []board.Move, depth int, maximizing bool) []int {
	n := min(s.threads, len(roots))
	results := make(chan WorkerResult, len(roots))
	jobs := make(chan rootJob, len(roots))
	for i, m := range roots {
		jobs <- rootJob{index: i, move: m}
	}
	close(jobs)

	if n == 1 {
		// Search the live position in place.
		NewWorker(0, pos, results).Run(jobs, depth, maximizing)
	} else {
		var wg sync.WaitGroup
		for id := range n {
			w := NewWorker(id, pos.Copy(), results)
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.Run(jobs, depth, maximizing)
			}()
		}
		wg.Wait()
	}
	close(results)

	scores := make([]int, len(roots))
	for r := range results {
		scores[r.Index] = r.Score
		s.nodes += r.Nodes
	}
	return scores
}
