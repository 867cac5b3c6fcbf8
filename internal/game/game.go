// Package game runs a chess game session on top of the rules core: square
// selection input, interactive promotion, undo, a computer opponent and
// result detection, with optional persistence.
package game

import (
	"context"
	"errors"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/pgn"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/rs/zerolog"
)

var (
	ErrGameOver         = errors.New("game is over")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrPromotionPending = errors.New("promotion choice pending")
	ErrNothingToUndo    = errors.New("nothing to undo")
)

// Mode represents the game mode
type Mode int

const (
	HumanVsHuman Mode = iota
	HumanVsComputer
	ComputerVsComputer
)

func (m Mode) String() string {
	switch m {
	case HumanVsComputer:
		return "human-vs-computer"
	case ComputerVsComputer:
		return "computer-vs-computer"
	default:
		return "human-vs-human"
	}
}

// Result strings
const (
	WhiteWins = "White wins by checkmate"
	BlackWins = "Black wins by checkmate"
	Stalemate = "Draw by stalemate"
)

// PGNResult converts a result string to its PGN token. Anything else,
// including an unfinished game, is "*".
func PGNResult(result string) string {
	switch result {
	case WhiteWins:
		return pgn.WhiteWon
	case BlackWins:
		return pgn.BlackWon
	case Stalemate:
		return pgn.Drawn
	default:
		return pgn.Unfinished
	}
}

// Config configures a new Game.
type Config struct {
	Mode        Mode
	PlayerColor board.Color // human side in HumanVsComputer
	StartFEN    string      // standard start position if empty

	Engine  *engine.Engine   // created with default settings if nil
	Storage *storage.Storage // optional; finished games are saved and counted
	White   string           // player names for saved games
	Black   string

	Logger zerolog.Logger
}

// Game is a single chess game session. It is not safe for concurrent use;
// the computer's search runs on a copy of the position in its own goroutine
// and is collected with PollComputerMove or WaitComputerMove.
type Game struct {
	position *board.Position
	legal    []board.Move
	selected board.Square

	mode        Mode
	playerColor board.Color

	engine     *engine.Engine
	aiThinking bool
	aiMove     chan board.Move

	storage *storage.Storage
	record  storage.GameRecord
	started time.Time

	gameOver   bool
	gameResult string

	log zerolog.Logger
}

// New creates a game. In human-vs-computer mode with the human playing the
// side not to move, the computer starts thinking immediately.
func New(cfg Config) (*Game, error) {
	pos := board.NewPosition()
	if cfg.StartFEN != "" {
		var err error
		if pos, err = board.ParseFEN(cfg.StartFEN); err != nil {
			return nil, err
		}
	}

	eng := cfg.Engine
	if eng == nil {
		eng = engine.NewEngine(engine.Config{Logger: cfg.Logger})
	}

	g := &Game{
		mode:        cfg.Mode,
		playerColor: cfg.PlayerColor,
		engine:      eng,
		aiMove:      make(chan board.Move, 1),
		storage:     cfg.Storage,
		log:         cfg.Logger.With().Str("component", "game").Logger(),
	}
	g.record = storage.GameRecord{
		White:    cfg.White,
		Black:    cfg.Black,
		StartFEN: cfg.StartFEN,
	}
	g.reset(pos)

	return g, nil
}

// Resume recreates a game from a saved record. The record's id is kept, so
// saving the game again overwrites it.
func Resume(rec *storage.GameRecord, cfg Config) (*Game, error) {
	cfg.StartFEN = rec.StartFEN
	cfg.White, cfg.Black = rec.White, rec.Black

	g, err := New(cfg)
	if err != nil {
		return nil, err
	}
	g.cancelThinking()

	pos, err := rec.Replay()
	if err != nil {
		return nil, err
	}
	g.record.ID = rec.ID
	g.record.StartedAt = rec.StartedAt
	g.record.EndedAt = rec.EndedAt
	g.position = pos

	// A finished game is not recorded a second time.
	g.refresh()
	if !g.gameOver && g.mode == HumanVsComputer && g.isComputerTurn() {
		g.startAIThinking()
	}

	return g, nil
}

// reset installs pos as a fresh game.
func (g *Game) reset(pos *board.Position) {
	g.position = pos
	g.selected = board.NoSquare
	g.gameOver = false
	g.gameResult = ""
	g.started = time.Now()
	g.record.ID = 0
	g.record.StartedAt = g.started
	g.record.EndedAt = time.Time{}

	g.refresh()
	if !g.gameOver && g.isComputerTurn() && g.mode == HumanVsComputer {
		g.startAIThinking()
	}
}

// NewGame resets to the starting position of the current game, keeping mode,
// player color and engine settings.
func (g *Game) NewGame() error {
	g.cancelThinking()

	pos := board.NewPosition()
	if g.record.StartFEN != "" {
		var err error
		if pos, err = board.ParseFEN(g.record.StartFEN); err != nil {
			return err
		}
	}
	g.reset(pos)
	g.log.Debug().Str("mode", g.mode.String()).Msg("new game")
	return nil
}

// refresh regenerates the legal move cache and the terminal state.
func (g *Game) refresh() {
	g.legal = g.position.GenerateLegalMoves()
	g.checkGameEnd()
}

// checkGameEnd checks if the game is over.
func (g *Game) checkGameEnd() {
	switch {
	case g.position.Checkmate:
		g.gameOver = true
		if g.position.SideToMove == board.White {
			g.gameResult = BlackWins
		} else {
			g.gameResult = WhiteWins
		}
	case g.position.Stalemate:
		g.gameOver = true
		g.gameResult = Stalemate
	default:
		g.gameOver = false
		g.gameResult = ""
	}
}

// isComputerTurn reports whether the engine plays the side to move.
func (g *Game) isComputerTurn() bool {
	switch g.mode {
	case HumanVsComputer:
		return g.position.SideToMove != g.playerColor
	case ComputerVsComputer:
		return true
	default:
		return false
	}
}

// canHumanMove returns the reason the human may not move now, or nil.
func (g *Game) canHumanMove() error {
	if g.gameOver {
		return ErrGameOver
	}
	if _, ok := g.position.PendingPromotion(); ok {
		return ErrPromotionPending
	}
	if g.aiThinking || g.isComputerTurn() {
		return ErrNotYourTurn
	}
	return nil
}

// Select feeds one square of the two-gesture move input. The first square
// is remembered; selecting it again clears it. A second, different square
// forms a move which is played if it is legal. When it is not, the second
// square becomes the new first square. Played reports whether a move (or a
// staged promotion) was made.
func (g *Game) Select(sq board.Square) (m board.Move, played bool, err error) {
	if !sq.IsValid() {
		return board.NoMove, false, board.ErrInvalidSquare
	}
	if err := g.canHumanMove(); err != nil {
		return board.NoMove, false, err
	}

	if g.selected == board.NoSquare {
		g.selected = sq
		return board.NoMove, false, nil
	}
	if g.selected == sq {
		g.selected = board.NoSquare
		return board.NoMove, false, nil
	}

	if match, ok := g.findMove(g.selected, sq); ok {
		g.selected = board.NoSquare
		g.play(match)
		return match, true, nil
	}

	g.selected = sq
	return board.NoMove, false, nil
}

// Selected returns the remembered first square, NoSquare if none.
func (g *Game) Selected() board.Square {
	return g.selected
}

// ClearSelection forgets the first square.
func (g *Game) ClearSelection() {
	g.selected = board.NoSquare
}

// findMove finds a legal move from src to dst by identity.
func (g *Game) findMove(src, dst board.Square) (board.Move, bool) {
	want := board.NewMove(src, dst, &g.position.Board)
	for _, m := range g.legal {
		if m.Equal(want) {
			return m, true
		}
	}
	return board.NoMove, false
}

// Move plays a move given in coordinate notation ("e2e4", "e7e8q"). A
// promotion without a suffix is staged until Promote is called.
func (g *Game) Move(text string) (board.Move, error) {
	if err := g.canHumanMove(); err != nil {
		return board.NoMove, err
	}
	m, err := board.ParseMove(text, g.position)
	if err != nil {
		return board.NoMove, err
	}
	g.selected = board.NoSquare
	g.play(m)
	return m, nil
}

// play applies a legal move. Unresolved promotions are staged and the turn
// stays with the mover.
func (g *Game) play(m board.Move) {
	g.position.MakeMove(m)

	if !m.Resolved() {
		g.log.Debug().Str("move", m.String()).Msg("promotion staged")
		return
	}

	g.log.Debug().
		Str("move", m.String()).
		Str("side", m.Piece.Color().String()).
		Bool("capture", m.IsCapture()).
		Msg("move played")
	g.afterPly()
}

// afterPly runs after every completed ply.
func (g *Game) afterPly() {
	g.refresh()

	if g.gameOver {
		g.finish()
		return
	}

	if g.mode == HumanVsComputer && g.isComputerTurn() {
		g.startAIThinking()
	}
}

// PendingPromotion returns the staged promotion waiting for a choice.
func (g *Game) PendingPromotion() (board.Move, bool) {
	return g.position.PendingPromotion()
}

// Promote completes a staged promotion with the chosen piece.
func (g *Game) Promote(pt board.PieceType) error {
	if err := g.position.ResolvePromotion(pt); err != nil {
		return err
	}
	m, _ := g.position.LastMove()
	g.log.Debug().Str("move", m.String()).Msg("promotion resolved")
	g.afterPly()
	return nil
}

// Undo cancels a staged promotion, or takes back the last ply. Against the
// computer it takes back plies until it is the human's turn again.
func (g *Game) Undo() error {
	g.cancelThinking()

	if g.position.Ply() == 0 {
		return ErrNothingToUndo
	}

	if _, ok := g.position.PendingPromotion(); ok {
		g.position.UnmakeMove()
		g.legal = g.position.GenerateLegalMoves()
		return nil
	}

	g.position.UnmakeMove()
	if g.mode == HumanVsComputer {
		for g.isComputerTurn() && g.position.Ply() > 0 {
			g.position.UnmakeMove()
		}
	}

	g.selected = board.NoSquare
	g.refresh()
	if g.mode == HumanVsComputer && g.isComputerTurn() && !g.gameOver {
		g.startAIThinking()
	}
	return nil
}

// startAIThinking starts the AI search in a goroutine.
func (g *Game) startAIThinking() {
	g.aiThinking = true

	// Copy position for the search
	pos := g.position.Copy()
	g.log.Debug().Str("side", pos.SideToMove.String()).Int("depth", g.engine.Depth()).Msg("computer thinking")

	go func() {
		move, _ := g.engine.Search(pos)
		g.aiMove <- move // Always send, even if NoMove (game over)
	}()
}

// cancelThinking waits for an in-flight search and drops its result.
func (g *Game) cancelThinking() {
	if !g.aiThinking {
		return
	}
	<-g.aiMove
	g.aiThinking = false
}

// StartComputerMove starts the engine on the side to move without blocking.
func (g *Game) StartComputerMove() error {
	if g.gameOver {
		return ErrGameOver
	}
	if _, ok := g.position.PendingPromotion(); ok {
		return ErrPromotionPending
	}
	if g.aiThinking {
		return nil
	}
	if g.mode == HumanVsComputer && !g.isComputerTurn() {
		return ErrNotYourTurn
	}
	g.startAIThinking()
	return nil
}

// PollComputerMove plays the engine's move if its search has finished.
func (g *Game) PollComputerMove() (board.Move, bool) {
	if !g.aiThinking {
		return board.NoMove, false
	}

	select {
	case move := <-g.aiMove:
		return g.applyComputerMove(move), true
	default:
		return board.NoMove, false
	}
}

// WaitComputerMove blocks until the engine's search finishes and plays its
// move.
func (g *Game) WaitComputerMove(ctx context.Context) (board.Move, error) {
	if !g.aiThinking {
		return board.NoMove, errors.New("computer is not thinking")
	}

	select {
	case move := <-g.aiMove:
		return g.applyComputerMove(move), nil
	case <-ctx.Done():
		return board.NoMove, ctx.Err()
	}
}

// ComputerMove searches and plays a move for the side to move, blocking
// until done.
func (g *Game) ComputerMove() (board.Move, error) {
	if err := g.StartComputerMove(); err != nil {
		return board.NoMove, err
	}
	return g.WaitComputerMove(context.Background())
}

func (g *Game) applyComputerMove(move board.Move) board.Move {
	g.aiThinking = false
	if move.IsNull() {
		// No legal move: the position is already terminal.
		g.refresh()
		return move
	}

	// The search ran on a copy; match the result back onto the live position.
	match, ok := g.findMove(move.From, move.To)
	if !ok {
		g.log.Error().Str("move", move.String()).Msg("engine returned a move that is not legal")
		return board.NoMove
	}
	if match.Promotion {
		match = match.WithPromotion(move.Choice)
	}
	g.play(match)
	return match
}

// finish records a finished game in storage.
func (g *Game) finish() {
	g.record.EndedAt = time.Now()
	g.log.Info().
		Str("result", g.gameResult).
		Int("plies", g.position.Ply()).
		Msg("game over")

	if g.storage == nil {
		return
	}

	if _, err := g.Save(); err != nil {
		g.log.Warn().Err(err).Msg("failed to save game")
	}

	// Win/loss statistics are the human player's against the computer.
	if g.mode != HumanVsComputer {
		return
	}
	res := storage.GameResult{
		Draw:       g.gameResult == Stalemate,
		Won:        g.Winner() == g.playerColor,
		Mode:       storage.GameMode(g.mode),
		Difficulty: storageDifficulty(g.engine.Depth()),
		Duration:   time.Since(g.started),
	}
	if err := g.storage.RecordGame(res); err != nil {
		g.log.Warn().Err(err).Msg("failed to record game statistics")
	}
}

// Record returns the game as a storage record. A staged promotion is left
// out of the move list.
func (g *Game) Record() *storage.GameRecord {
	rec := g.record
	moves := g.position.MoveLog()
	if _, ok := g.position.PendingPromotion(); ok {
		moves = moves[:len(moves)-1]
	}
	rec.Moves = board.MovesToText(moves)
	rec.FinalFEN = g.position.ToFEN()
	rec.Result = g.gameResult
	return &rec
}

// Save stores the game, finished or not, and returns its id.
func (g *Game) Save() (uint64, error) {
	if g.storage == nil {
		return 0, errors.New("no storage configured")
	}
	rec := g.Record()
	if err := g.storage.SaveGame(rec); err != nil {
		return 0, err
	}
	g.record.ID = rec.ID
	g.record.StartedAt = rec.StartedAt
	return rec.ID, nil
}

// Position returns the live position. Callers must not mutate it.
func (g *Game) Position() *board.Position {
	return g.position
}

// LegalMoves returns the legal moves of the side to move.
func (g *Game) LegalMoves() []board.Move {
	return append([]board.Move(nil), g.legal...)
}

// LegalMovesFrom returns the legal moves starting on sq.
func (g *Game) LegalMovesFrom(sq board.Square) []board.Move {
	var moves []board.Move
	for _, m := range g.legal {
		if m.From == sq {
			moves = append(moves, m)
		}
	}
	return moves
}

// MoveHistory returns the moves played so far in coordinate notation.
func (g *Game) MoveHistory() []string {
	return g.Record().Moves
}

// Mode returns the game mode.
func (g *Game) Mode() Mode {
	return g.mode
}

// SetMode changes the game mode. The current game continues.
func (g *Game) SetMode(m Mode) {
	g.cancelThinking()
	g.mode = m
	if !g.gameOver && m == HumanVsComputer && g.isComputerTurn() {
		g.startAIThinking()
	}
}

// PlayerColor returns the human's side in human-vs-computer mode.
func (g *Game) PlayerColor() board.Color {
	return g.playerColor
}

// SetPlayerColor sets the human's side.
func (g *Game) SetPlayerColor(c board.Color) {
	g.cancelThinking()
	g.playerColor = c
	if !g.gameOver && g.mode == HumanVsComputer && g.isComputerTurn() {
		g.startAIThinking()
	}
}

// Engine returns the engine used for computer moves.
func (g *Game) Engine() *engine.Engine {
	return g.engine
}

// SetDifficulty sets the computer's search depth from a difficulty level.
func (g *Game) SetDifficulty(d engine.Difficulty) {
	g.cancelThinking()
	g.engine.SetDifficulty(d)
	if !g.gameOver && g.mode == HumanVsComputer && g.isComputerTurn() {
		g.startAIThinking()
	}
}

// GameOver reports whether the game has ended.
func (g *Game) GameOver() bool {
	return g.gameOver
}

// GameResult returns the game result string, empty while in progress.
func (g *Game) GameResult() string {
	return g.gameResult
}

// Winner returns the winning color, NoColor for a draw or unfinished game.
func (g *Game) Winner() board.Color {
	switch g.gameResult {
	case WhiteWins:
		return board.White
	case BlackWins:
		return board.Black
	default:
		return board.NoColor
	}
}

// IsAIThinking reports whether a computer search is in flight.
func (g *Game) IsAIThinking() bool {
	return g.aiThinking
}

// Close waits for any in-flight search.
func (g *Game) Close() {
	g.cancelThinking()
}
