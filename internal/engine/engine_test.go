package engine

import (
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(Config{Seed: 1})
	eng.SetDifficulty(Easy)

	move, ok := eng.Search(pos)
	if !ok || move.IsNull() {
		t.Fatal("Search returned no move for starting position")
	}

	legal := false
	for _, m := range pos.GenerateLegalMoves() {
		if m.Equal(move) {
			legal = true
		}
	}
	if !legal {
		t.Errorf("Search returned illegal move %s", move)
	}
	t.Logf("Best move: %s", move.String())
}

func TestSearchLeavesPositionUnchanged(t *testing.T) {
	pos := mustFEN(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w - - 2 3")
	before := pos.ToFEN()
	ply := pos.Ply()

	eng := NewEngine(Config{Depth: 3, Seed: 7})
	if _, ok := eng.Search(pos); !ok {
		t.Fatal("expected a move")
	}

	if got := pos.ToFEN(); got != before {
		t.Errorf("position changed by search:\n got %s\nwant %s", got, before)
	}
	if pos.Ply() != ply {
		t.Errorf("undo stack changed: got %d entries, want %d", pos.Ply(), ply)
	}
}

func TestSearchCapturesHangingQueen(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1")

	for depth := 1; depth <= 3; depth++ {
		eng := NewEngine(Config{Depth: depth, Seed: 3})
		move, ok := eng.Search(pos)
		if !ok {
			t.Fatalf("depth %d: no move", depth)
		}
		if move.String() != "d2d5" {
			t.Errorf("depth %d: got %s, want d2d5", depth, move)
		}
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
	}{
		{"white back rank", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8"},
		{"black back rank", "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", "a8a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for depth := 1; depth <= 3; depth++ {
				pos := mustFEN(t, tt.fen)
				eng := NewEngine(Config{Depth: depth, Seed: 11})
				res := eng.SearchOrdered(pos, pos.GenerateLegalMoves(), depth)
				if !res.Found {
					t.Fatalf("depth %d: no move", depth)
				}
				if res.Move.String() != tt.want {
					t.Errorf("depth %d: got %s, want %s", depth, res.Move, tt.want)
				}

				mateScore := CheckmateScore + depth - 1
				if pos.SideToMove == board.Black {
					mateScore = -mateScore
				}
				if res.Score != mateScore {
					t.Errorf("depth %d: score %d, want %d", depth, res.Score, mateScore)
				}
			}
		})
	}
}

func TestSearchPrefersQueenPromotion(t *testing.T) {
	pos := mustFEN(t, "k7/4P3/8/8/8/8/8/7K w - - 0 1")
	eng := NewEngine(Config{Depth: 2, Seed: 5})

	move, ok := eng.Search(pos)
	if !ok {
		t.Fatal("expected a move")
	}
	if move.String() != "e7e8q" {
		t.Errorf("got %s, want e7e8q", move)
	}
	if !move.Resolved() {
		t.Error("search returned an unresolved promotion")
	}
}

func TestSearchOrderedTieBreak(t *testing.T) {
	// Every move scores zero at depth 1; the first candidate must win.
	pos := board.NewPosition()
	moves := pos.GenerateLegalMoves()
	eng := NewEngine(Config{Seed: 1})

	res := eng.SearchOrdered(pos, moves, 1)
	if !res.Move.Equal(moves[0]) {
		t.Errorf("got %s, want first candidate %s", res.Move, moves[0])
	}

	reversed := make([]board.Move, len(moves))
	for i, m := range moves {
		reversed[len(moves)-1-i] = m
	}
	res = eng.SearchOrdered(pos, reversed, 1)
	if !res.Move.Equal(reversed[0]) {
		t.Errorf("got %s, want first candidate %s", res.Move, reversed[0])
	}
}

func TestBestMoveSeedIsDeterministic(t *testing.T) {
	pos := board.NewPosition()
	moves := pos.GenerateLegalMoves()
	orig := append([]board.Move(nil), moves...)

	a, _ := NewEngine(Config{Seed: 42}).BestMove(pos, moves, 2)
	b, _ := NewEngine(Config{Seed: 42}).BestMove(pos, moves, 2)
	if !a.Equal(b) {
		t.Errorf("same seed gave %s and %s", a, b)
	}

	for i := range moves {
		if moves[i] != orig[i] {
			t.Fatal("BestMove reordered the caller's slice")
		}
	}
}

func TestBestMoveNoCandidates(t *testing.T) {
	pos := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	eng := NewEngine(Config{})

	move, ok := eng.Search(pos)
	if ok || !move.IsNull() {
		t.Errorf("expected no move in stalemate, got %s", move)
	}
	if !pos.Stalemate {
		t.Error("expected stalemate flag")
	}
}

func TestSearchSeesStalemateAsDraw(t *testing.T) {
	// K+Q vs K: Qf7 leaves black no move and scores 0, every other queen
	// move keeps the +9 material edge.
	pos := mustFEN(t, "7k/8/6K1/8/8/8/8/5Q2 w - - 0 1")
	eng := NewEngine(Config{Depth: 1, Seed: 9})

	move, ok := eng.Search(pos)
	if !ok {
		t.Fatal("expected a move")
	}
	if move.String() == "f1f7" {
		t.Error("search chose a stalemating move")
	}
}

func TestOnInfo(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(Config{Depth: 2, Seed: 1})

	var info SearchInfo
	calls := 0
	eng.OnInfo = func(i SearchInfo) {
		info = i
		calls++
	}
	move, _ := eng.Search(pos)

	if calls != 1 {
		t.Fatalf("OnInfo called %d times, want 1", calls)
	}
	if info.Depth != 2 {
		t.Errorf("info depth %d, want 2", info.Depth)
	}
	if info.Nodes < 400 {
		t.Errorf("info nodes %d, want at least 400", info.Nodes)
	}
	if !info.Move.Equal(move) {
		t.Errorf("info move %s, want %s", info.Move, move)
	}
}

func TestMaterialScore(t *testing.T) {
	tests := []struct {
		fen  string
		want int
	}{
		{board.StartFEN, 0},
		{"4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1", -4},
		{"4k3/pppp4/8/8/8/8/8/RNB1K3 w - - 0 1", 7},
	}

	for _, tt := range tests {
		pos := mustFEN(t, tt.fen)
		if got := Evaluate(pos); got != tt.want {
			t.Errorf("Evaluate(%s) = %d, want %d", tt.fen, got, tt.want)
		}
		if got := Evaluate(pos.Mirror()); got != -tt.want {
			t.Errorf("Evaluate(mirror of %s) = %d, want %d", tt.fen, got, -tt.want)
		}
	}
}

func TestDifficulty(t *testing.T) {
	eng := NewEngine(Config{})
	if eng.Depth() != DefaultDepth {
		t.Errorf("default depth %d, want %d", eng.Depth(), DefaultDepth)
	}

	for d, depth := range DifficultyDepth {
		eng.SetDifficulty(d)
		if eng.Depth() != depth {
			t.Errorf("%s: depth %d, want %d", d, eng.Depth(), depth)
		}
		parsed, err := ParseDifficulty(d.String())
		if err != nil || parsed != d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", d.String(), parsed, err)
		}
	}

	if _, err := ParseDifficulty("impossible"); err == nil {
		t.Error("expected error for unknown difficulty")
	}

	eng.SetDepth(0)
	if eng.Depth() == 0 {
		t.Error("SetDepth(0) should be ignored")
	}
}

func TestPerft(t *testing.T) {
	eng := NewEngine(Config{})
	if got := eng.Perft(board.NewPosition(), 3); got != 8902 {
		t.Errorf("perft(3) = %d, want 8902", got)
	}
}

func TestScoreToString(t *testing.T) {
	tests := map[int]string{
		0:                   "0",
		5:                   "+5",
		-3:                  "-3",
		CheckmateScore + 2:  "White mates",
		-CheckmateScore - 1: "Black mates",
	}
	for score, want := range tests {
		if got := ScoreToString(score); got != want {
			t.Errorf("ScoreToString(%d) = %q, want %q", score, got, want)
		}
	}
}

func TestParallelSearchMatchesSequential(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1",
		"k7/4P3/8/8/8/8/8/7K w - - 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b - - 3 3",
	}

	for _, fen := range fens {
		pos := mustFEN(t, fen)
		before := pos.ToFEN()
		moves := pos.GenerateLegalMoves()

		seq := NewEngine(Config{Threads: 1}).SearchOrdered(pos, moves, 2)
		par := NewEngine(Config{Threads: 4}).SearchOrdered(pos, moves, 2)

		if !seq.Move.Equal(par.Move) || seq.Move.Choice != par.Move.Choice {
			t.Errorf("%s: sequential %s, parallel %s", fen, seq.Move, par.Move)
		}
		if seq.Score != par.Score || seq.Nodes != par.Nodes {
			t.Errorf("%s: sequential score %d nodes %d, parallel score %d nodes %d",
				fen, seq.Score, seq.Nodes, par.Score, par.Nodes)
		}
		if got := pos.ToFEN(); got != before {
			t.Errorf("position changed: %s", got)
		}
	}
}

func TestWorkerScoresRootMoves(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1")
	moves := pos.GenerateLegalMoves()

	results := make(chan WorkerResult, len(moves))
	jobs := make(chan rootJob, len(moves))
	for i, m := range moves {
		jobs <- rootJob{index: i, move: m}
	}
	close(jobs)

	w := NewWorker(3, pos.Copy(), results)
	w.Run(jobs, 1, true)
	close(results)

	var total uint64
	for r := range results {
		if r.WorkerID != 3 {
			t.Errorf("result from worker %d", r.WorkerID)
		}
		want := -4
		if moves[r.Index].String() == "d2d5" {
			want = 5
		}
		if r.Score != want {
			t.Errorf("%s scored %d, want %d", moves[r.Index], r.Score, want)
		}
		total += r.Nodes
	}
	if total != w.Nodes() || total != uint64(len(moves)) {
		t.Errorf("nodes %d (worker %d), want %d", total, w.Nodes(), len(moves))
	}
}
