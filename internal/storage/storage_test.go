package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hailam/chesscore/internal/board"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestStorage(t *testing.T) {
	t.Run("DefaultPreferences", func(t *testing.T) {
		prefs := DefaultPreferences()
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.Difficulty != DifficultyMedium {
			t.Errorf("Expected medium difficulty")
		}
		if prefs.GameMode != ModeHumanVsComputer {
			t.Errorf("Expected human vs computer mode")
		}
	})

	t.Run("NewGameStats", func(t *testing.T) {
		stats := NewGameStats()
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.GetWinRate() != 0 {
			t.Errorf("Expected 0 win rate")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &GameStats{
			GamesPlayed: 10,
			Wins:        5,
			Losses:      3,
			Draws:       2,
		}
		rate := stats.GetWinRate()
		if rate != 50 {
			t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
		}
	})
}

func TestFirstLaunch(t *testing.T) {
	s := openTestStorage(t)

	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch() = %v, %v; want true", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatal(err)
	}
	first, err = s.IsFirstLaunch()
	if err != nil || first {
		t.Errorf("IsFirstLaunch() = %v, %v; want false", first, err)
	}
}

func TestPreferences(t *testing.T) {
	s := openTestStorage(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Username != "Player" {
		t.Errorf("Expected defaults before first save, got %+v", prefs)
	}

	prefs.Username = "carol"
	prefs.Difficulty = DifficultyHard
	prefs.PlayerColor = ColorBlack
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(prefs, got); diff != "" {
		t.Errorf("preferences mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordGame(t *testing.T) {
	s := openTestStorage(t)

	results := []GameResult{
		{Won: true, Mode: ModeHumanVsComputer, Difficulty: DifficultyEasy, Duration: time.Minute},
		{Won: true, Mode: ModeHumanVsComputer, Difficulty: DifficultyHard, Duration: time.Minute},
		{Draw: true, Mode: ModeHumanVsHuman, Duration: time.Minute},
		{Won: true, Mode: ModeHumanVsHuman, Duration: time.Minute},
		{Mode: ModeHumanVsComputer, Duration: time.Minute},
	}
	for _, r := range results {
		if err := s.RecordGame(r); err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}

	want := &GameStats{
		GamesPlayed:    5,
		Wins:           3,
		Losses:         1,
		Draws:          1,
		WinsByMode:     map[string]int{"hvc": 2, "hvh": 1},
		WinsByDiff:     map[string]int{"easy": 2, "hard": 1},
		TotalPlayTime:  5 * time.Minute,
		LongestWinStrk: 2,
		CurrentStreak:  0,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordGameAfterStatsWithoutMaps(t *testing.T) {
	s := openTestStorage(t)

	// Stored with null maps.
	if err := s.SaveStats(&GameStats{GamesPlayed: 2, Losses: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordGame(GameResult{Won: true, Mode: ModeHumanVsComputer, Difficulty: DifficultyMedium}); err != nil {
		t.Fatalf("RecordGame: %v", err)
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	want := &GameStats{
		GamesPlayed:    3,
		Wins:           1,
		Losses:         2,
		WinsByMode:     map[string]int{"hvc": 1},
		WinsByDiff:     map[string]int{"medium": 1},
		LongestWinStrk: 1,
		CurrentStreak:  1,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadGame(t *testing.T) {
	s := openTestStorage(t)

	rec := &GameRecord{
		White: "Player",
		Black: "Computer",
		Moves: []string{"f2f3", "e7e5", "g2g4", "d8h4"},
	}
	if err := s.SaveGame(rec); err != nil {
		t.Fatal(err)
	}
	if rec.ID == 0 {
		t.Fatal("SaveGame did not assign an id")
	}

	got, err := s.LoadGame(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	// Overwrite with a result.
	rec.Result = "Black wins by checkmate"
	if err := s.SaveGame(rec); err != nil {
		t.Fatal(err)
	}
	got, err = s.LoadGame(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Finished() || got.Result != rec.Result {
		t.Errorf("result not updated: %q", got.Result)
	}
}

func TestLoadMissingGame(t *testing.T) {
	s := openTestStorage(t)

	if _, err := s.LoadGame(99); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("LoadGame(99) error = %v, want ErrGameNotFound", err)
	}
	if err := s.DeleteGame(99); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("DeleteGame(99) error = %v, want ErrGameNotFound", err)
	}
}

func TestParseGameID(t *testing.T) {
	if id, err := ParseGameID("42"); err != nil || id != 42 {
		t.Errorf("ParseGameID(42) = %d, %v", id, err)
	}
	for _, s := range []string{"", "0", "-1", "abc", "1.5"} {
		if _, err := ParseGameID(s); err == nil {
			t.Errorf("ParseGameID(%q) accepted", s)
		}
	}
}

func TestListAndDeleteGames(t *testing.T) {
	s := openTestStorage(t)

	var ids []uint64
	for i := 0; i < 12; i++ {
		rec := &GameRecord{Moves: []string{"e2e4"}}
		if err := s.SaveGame(rec); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, rec.ID)
	}

	games, err := s.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	var got []uint64
	for _, g := range games {
		got = append(got, g.ID)
	}
	if diff := cmp.Diff(ids, got); diff != "" {
		t.Errorf("ListGames ids (-want +got):\n%s", diff)
	}

	if err := s.DeleteGame(ids[3]); err != nil {
		t.Fatal(err)
	}
	games, err = s.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != len(ids)-1 {
		t.Errorf("got %d games after delete, want %d", len(games), len(ids)-1)
	}
}

func TestReplay(t *testing.T) {
	rec := &GameRecord{Moves: []string{"f2f3", "e7e5", "g2g4", "d8h4"}}
	pos, err := rec.Replay()
	if err != nil {
		t.Fatal(err)
	}
	pos.GenerateLegalMoves()
	if !pos.Checkmate {
		t.Errorf("expected fool's mate, got:%s", pos)
	}

	rec = &GameRecord{
		StartFEN: "4k3/P7/8/8/8/8/8/4K3 w - - 0 1",
		Moves:    []string{"a7a8n"},
	}
	pos, err = rec.Replay()
	if err != nil {
		t.Fatal(err)
	}
	if got := pos.PieceAt(board.A8); got != board.WhiteKnight {
		t.Errorf("a8 = %s, want N", got)
	}

	rec = &GameRecord{Moves: []string{"e2e5"}}
	if _, err := rec.Replay(); !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("Replay of illegal move: error = %v, want ErrIllegalMove", err)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Options{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	rec := &GameRecord{Moves: []string{"d2d4"}}
	if err := s.SaveGame(rec); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(Options{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, err := s.LoadGame(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rec.Moves, got.Moves); diff != "" {
		t.Errorf("moves (-want +got):\n%s", diff)
	}

	// Ids keep increasing across reopen.
	next := &GameRecord{}
	if err := s.SaveGame(next); err != nil {
		t.Fatal(err)
	}
	if next.ID <= rec.ID {
		t.Errorf("new id %d not after %d", next.ID, rec.ID)
	}
}

func TestDataPaths(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_DATA_HOME only applies on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if want := filepath.Join(base, appName); dataDir != want {
		t.Errorf("GetDataDir() = %s, want %s", dataDir, want)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		t.Errorf("Database directory was not created: %s", dbDir)
	}
}
