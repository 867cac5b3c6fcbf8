package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/rs/zerolog"
)

// DefaultDepth is the search depth in plies when none is configured.
const DefaultDepth = 3

// SearchInfo contains information about a finished search.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	Move  board.Move
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply
	Medium                   // 3 ply
	Hard                     // 4 ply
)

// DifficultyDepth maps difficulty to search depth.
var DifficultyDepth = map[Difficulty]int{
	Easy:   2,
	Medium: DefaultDepth,
	Hard:   4,
}

// String returns the lowercase difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// Config configures an Engine.
type Config struct {
	Depth   int    // search depth in plies, DefaultDepth if zero
	Seed    uint64 // root shuffle seed, time-based if zero
	Threads int    // root search workers, 1 if zero
	Logger  zerolog.Logger
}

// Engine is the chess AI engine. It is not safe for concurrent use.
type Engine struct {
	searcher *Searcher
	depth    int
	rng      *rand.Rand
	log      zerolog.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine.
func NewEngine(cfg Config) *Engine {
	if cfg.Depth <= 0 {
		cfg.Depth = DefaultDepth
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	return &Engine{
		searcher: NewSearcher(cfg.Threads),
		depth:    cfg.Depth,
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		log:      cfg.Logger,
	}
}

// SetDifficulty sets the search depth from a difficulty level.
func (e *Engine) SetDifficulty(d Difficulty) {
	if depth, ok := DifficultyDepth[d]; ok {
		e.depth = depth
	}
}

// SetDepth sets the search depth in plies. Values below one are ignored.
func (e *Engine) SetDepth(depth int) {
	if depth > 0 {
		e.depth = depth
	}
}

// SetThreads sets the number of root search workers.
func (e *Engine) SetThreads(n int) {
	e.searcher = NewSearcher(n)
}

// Threads returns the number of root search workers.
func (e *Engine) Threads() int {
	return e.searcher.Threads()
}

// Depth returns the configured search depth.
func (e *Engine) Depth() int {
	return e.depth
}

// Search finds the best move for the side to move at the configured depth.
// It returns false when the side to move has no legal move; check the
// position's Checkmate and Stalemate flags to tell which.
func (e *Engine) Search(pos *board.Position) (board.Move, bool) {
	return e.BestMove(pos, pos.GenerateLegalMoves(), e.depth)
}

// BestMove searches the given candidate moves to depth plies. The candidates
// are shuffled first so that equally scored moves vary between calls; the
// caller's slice is left untouched.
func (e *Engine) BestMove(pos *board.Position, moves []board.Move, depth int) (board.Move, bool) {
	if len(moves) == 0 {
		return board.NoMove, false
	}

	shuffled := slices.Clone(moves)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	res := e.SearchOrdered(pos, shuffled, depth)
	return res.Move, res.Found
}

// SearchOrdered searches the candidates in the order given. Among moves with
// equal scores the first one wins.
func (e *Engine) SearchOrdered(pos *board.Position, moves []board.Move, depth int) Result {
	if depth <= 0 {
		depth = e.depth
	}

	startTime := time.Now()
	res := e.searcher.Search(pos, moves, depth)
	elapsed := time.Since(startTime)

	e.log.Debug().
		Int("depth", depth).
		Int("candidates", len(moves)).
		Int("threads", e.searcher.Threads()).
		Uint64("nodes", res.Nodes).
		Int("score", res.Score).
		Str("move", res.Move.String()).
		Dur("elapsed", elapsed).
		Msg("search complete")

	if e.OnInfo != nil {
		e.OnInfo(SearchInfo{
			Depth: depth,
			Score: res.Score,
			Nodes: res.Nodes,
			Time:  elapsed,
			Move:  res.Move,
		})
	}

	return res
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, move := range moves {
		pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove()
	}

	return nodes
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score >= CheckmateScore {
		return "White mates"
	}
	if score <= -CheckmateScore {
		return "Black mates"
	}
	if score > 0 {
		return "+" + strconv.Itoa(score)
	}
	return strconv.Itoa(score)
}
