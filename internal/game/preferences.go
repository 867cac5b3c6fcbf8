package game

import (
	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
)

// LoadPreferences applies the stored preferences (mode, player color and
// difficulty) to the game. Without storage it does nothing.
func (g *Game) LoadPreferences() error {
	if g.storage == nil {
		return nil
	}

	prefs, err := g.storage.LoadPreferences()
	if err != nil {
		g.log.Warn().Err(err).Msg("failed to load preferences")
		return err
	}

	g.cancelThinking()
	g.mode = Mode(prefs.GameMode)
	if prefs.PlayerColor == storage.ColorBlack {
		g.playerColor = board.Black
	} else {
		g.playerColor = board.White
	}
	g.engine.SetDifficulty(engine.Difficulty(prefs.Difficulty))
	if prefs.Username != "" && g.record.White == "" && g.record.Black == "" {
		if g.playerColor == board.White {
			g.record.White = prefs.Username
		} else {
			g.record.Black = prefs.Username
		}
	}

	if !g.gameOver && g.mode == HumanVsComputer && g.isComputerTurn() {
		g.startAIThinking()
	}
	return nil
}

// SavePreferences stores the current mode, player color and difficulty.
func (g *Game) SavePreferences() error {
	if g.storage == nil {
		return nil
	}

	prefs, err := g.storage.LoadPreferences()
	if err != nil {
		return err
	}
	prefs.GameMode = storage.GameMode(g.mode)
	prefs.Difficulty = storageDifficulty(g.engine.Depth())
	if g.playerColor == board.Black {
		prefs.PlayerColor = storage.ColorBlack
	} else {
		prefs.PlayerColor = storage.ColorWhite
	}

	if err := g.storage.SavePreferences(prefs); err != nil {
		g.log.Warn().Err(err).Msg("failed to save preferences")
		return err
	}
	return nil
}

// storageDifficulty maps a search depth onto the nearest difficulty level.
func storageDifficulty(depth int) storage.Difficulty {
	switch {
	case depth <= engine.DifficultyDepth[engine.Easy]:
		return storage.DifficultyEasy
	case depth >= engine.DifficultyDepth[engine.Hard]:
		return storage.DifficultyHard
	default:
		return storage.DifficultyMedium
	}
}
