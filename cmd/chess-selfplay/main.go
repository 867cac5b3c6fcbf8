// Command chess-selfplay plays the engine against itself, stores the game
// and optionally writes it out as PGN.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/hailam/chesscore/internal/config"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/pgn"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/rs/zerolog"
)

var (
	depth      = flag.Int("depth", 0, "search depth in plies (overrides "+config.EnvDepth+")")
	difficulty = flag.String("difficulty", "", "easy, medium or hard (ignored when -depth is set)")
	seed       = flag.Uint64("seed", 0, "move shuffle seed (overrides "+config.EnvSeed+")")
	threads    = flag.Int("threads", 0, "root search workers (overrides "+config.EnvThreads+")")
	maxPlies   = flag.Int("maxplies", 200, "stop after this many plies")
	startFEN   = flag.String("fen", "", "start position (standard start if empty)")
	dataDir    = flag.String("data", "", "data directory (overrides "+config.EnvDataDir+")")
	inMemory   = flag.Bool("memory", false, "do not persist the game")
	logLevel   = flag.String("log-level", "", "trace, debug, info, warn or error")
	pgnOut     = flag.String("pgn", "", "write the game as PGN to this file, - for stdout")
	list       = flag.Bool("list", false, "list stored games and exit")
	resume     = flag.String("resume", "", "continue the stored game with this id instead of starting a new one")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("self-play failed")
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

// loadConfig layers explicitly set flags over the environment.
func loadConfig() (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "difficulty":
			if d, derr := engine.ParseDifficulty(*difficulty); derr != nil {
				err = derr
			} else {
				cfg.SearchDepth = engine.DifficultyDepth[d]
			}
		case "seed":
			cfg.Seed = *seed
		case "threads":
			cfg.Threads = *threads
		case "data":
			cfg.DataDir = *dataDir
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if *depth != 0 {
		cfg.SearchDepth = *depth
	}
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func openStorage(cfg config.Config, log zerolog.Logger) (*storage.Storage, error) {
	opts := storage.Options{InMemory: *inMemory, Logger: log}
	if !opts.InMemory && cfg.DataDir != "" {
		dir, err := storage.DatabaseDirIn(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		opts.Dir = dir
	}
	store, err := storage.Open(opts)
	if err != nil {
		return nil, err
	}

	first, err := store.IsFirstLaunch()
	if err != nil {
		store.Close()
		return nil, err
	}
	if first && !opts.InMemory {
		log.Info().Str("dir", opts.Dir).Msg("created game database")
		if err := store.MarkFirstLaunchComplete(); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}

// newGame starts a computer-vs-computer game, or continues a stored one
// when -resume is set.
func newGame(store *storage.Storage, cfg game.Config) (*game.Game, error) {
	if *resume == "" {
		return game.New(cfg)
	}

	id, err := storage.ParseGameID(*resume)
	if err != nil {
		return nil, err
	}
	rec, err := store.LoadGame(id)
	if err != nil {
		return nil, err
	}
	return game.Resume(rec, cfg)
}

func run(cfg config.Config, log zerolog.Logger) error {
	store, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if *list {
		return listGames(store)
	}

	eng := engine.NewEngine(cfg.EngineConfig(log))
	eng.OnInfo = func(info engine.SearchInfo) {
		log.Debug().
			Str("move", info.Move.String()).
			Str("score", engine.ScoreToString(info.Score)).
			Uint64("nodes", info.Nodes).
			Dur("time", info.Time).
			Msg("search")
	}

	name := fmt.Sprintf("chesscore depth %d", eng.Depth())
	g, err := newGame(store, game.Config{
		Mode:     game.ComputerVsComputer,
		StartFEN: *startFEN,
		Engine:   eng,
		Storage:  store,
		White:    name,
		Black:    name,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	defer g.Close()

	if *resume != "" {
		log.Info().
			Uint64("id", g.Record().ID).
			Int("plies", g.Position().Ply()).
			Bool("finished", g.GameOver()).
			Msg("resumed game")
	}

	start := time.Now()
	for ply := 0; ply < *maxPlies && !g.GameOver(); ply++ {
		side := g.Position().SideToMove
		m, err := g.ComputerMove()
		if err != nil {
			return err
		}
		log.Info().
			Int("ply", g.Position().Ply()).
			Str("side", side.String()).
			Str("move", m.String()).
			Int("material", engine.Evaluate(g.Position())).
			Msg("move")
	}

	rec := g.Record()
	if !g.GameOver() {
		// Unfinished games are saved here; finished ones were saved on game end.
		if _, err := g.Save(); err != nil {
			return err
		}
		rec = g.Record()
		log.Info().Int("plies", len(rec.Moves)).Msg("ply limit reached")
	}

	result := g.GameResult()
	if result == "" {
		result = "unfinished"
	}
	log.Info().
		Uint64("id", rec.ID).
		Str("result", result).
		Str("fen", rec.FinalFEN).
		Dur("elapsed", time.Since(start)).
		Msg("game complete")
	fmt.Fprintf(os.Stderr, "%s\n", g.Position())

	if *pgnOut != "" {
		return writePGN(rec, *pgnOut)
	}
	return nil
}

func writePGN(rec *storage.GameRecord, path string) error {
	text, err := pgn.Export(rec.StartFEN, rec.Moves, pgn.Tags{
		Event:  "chesscore self-play",
		White:  rec.White,
		Black:  rec.Black,
		Date:   rec.StartedAt,
		Result: game.PGNResult(rec.Result),
	})
	if err != nil {
		return err
	}

	if path == "-" {
		_, err = fmt.Fprintln(os.Stdout, text)
		return err
	}
	return os.WriteFile(path, []byte(text+"\n"), 0644)
}

func listGames(store *storage.Storage) error {
	games, err := store.ListGames()
	if err != nil {
		return err
	}
	for _, g := range games {
		result := g.Result
		if !g.Finished() {
			pos, err := g.Replay()
			if err != nil {
				return err
			}
			result = "in progress, " + pos.SideToMove.String() + " to move"
		}
		fmt.Printf("%d\t%s\t%d plies\t%s\n", g.ID, g.StartedAt.Format(time.DateTime), len(g.Moves), result)
	}
	return nil
}
