// Package pgn exports games played on the rules core as PGN text. Moves are
// replayed through github.com/notnil/chess, which renders standard algebraic
// notation and independently adjudicates the final position. The result
// written to the PGN is always the caller's.
package pgn

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"
)

// Result tokens
const (
	WhiteWon   = "1-0"
	BlackWon   = "0-1"
	Drawn      = "1/2-1/2"
	Unfinished = "*"
)

// Tags are the PGN header values written for a game.
type Tags struct {
	Event string
	Site  string
	White string
	Black string
	Date  time.Time

	// Result is one of the result tokens; empty means Unfinished.
	Result string
}

// Outcome is the result of a replayed game as judged by notnil/chess.
type Outcome struct {
	Result string // "1-0", "0-1", "1/2-1/2" or "*"
	Method string // "Checkmate", "Stalemate", ... or "NoMethod"
}

// replay plays coordinate-notation moves ("e2e4", "e7e8q") from startFEN,
// or from the standard start when startFEN is empty.
func replay(startFEN string, moves []string) (*chess.Game, error) {
	var opts []func(*chess.Game)
	if startFEN != "" {
		fen, err := chess.FEN(startFEN)
		if err != nil {
			return nil, fmt.Errorf("start position: %w", err)
		}
		opts = append(opts, fen)
	}
	game := chess.NewGame(opts...)

	uci := chess.UCINotation{}
	for i, s := range moves {
		m, err := uci.Decode(game.Position(), s)
		if err != nil {
			return nil, fmt.Errorf("ply %d %q: %w", i+1, s, err)
		}
		if err := game.Move(m); err != nil {
			return nil, fmt.Errorf("ply %d %q: %w", i+1, s, err)
		}
	}
	return game, nil
}

// Export renders moves as a PGN document. Moves are checked and converted
// to standard algebraic notation by notnil/chess; the Result tag and the
// game termination marker come from tags.Result.
func Export(startFEN string, moves []string, tags Tags) (string, error) {
	switch tags.Result {
	case "":
		tags.Result = Unfinished
	case WhiteWon, BlackWon, Drawn, Unfinished:
	default:
		return "", fmt.Errorf("invalid result %q", tags.Result)
	}

	game, err := replay(startFEN, moves)
	if err != nil {
		return "", err
	}

	if tags.Event == "" {
		tags.Event = "Casual game"
	}
	if tags.Site == "" {
		tags.Site = "?"
	}
	if tags.White == "" {
		tags.White = "?"
	}
	if tags.Black == "" {
		tags.Black = "?"
	}
	date := "????.??.??"
	if !tags.Date.IsZero() {
		date = tags.Date.Format("2006.01.02")
	}

	var b strings.Builder
	writeTag(&b, "Event", tags.Event)
	writeTag(&b, "Site", tags.Site)
	writeTag(&b, "Date", date)
	writeTag(&b, "Round", "-")
	writeTag(&b, "White", tags.White)
	writeTag(&b, "Black", tags.Black)
	writeTag(&b, "Result", tags.Result)
	if startFEN != "" {
		writeTag(&b, "SetUp", "1")
		writeTag(&b, "FEN", startFEN)
	}
	b.WriteByte('\n')

	for _, tok := range movetext(game) {
		b.WriteString(tok)
		b.WriteByte(' ')
	}
	b.WriteString(tags.Result)

	return b.String(), nil
}

func writeTag(b *strings.Builder, key, value string) {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	fmt.Fprintf(b, "[%s \"%s\"]\n", key, value)
}

// movetext returns the numbered SAN tokens of the game's moves.
func movetext(game *chess.Game) []string {
	positions := game.Positions()
	moves := game.Moves()

	number := 1
	if fields := strings.Fields(positions[0].String()); len(fields) == 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			number = n
		}
	}

	var san chess.AlgebraicNotation
	toks := make([]string, 0, len(moves)*3/2+1)
	for i, m := range moves {
		pos := positions[i]
		switch {
		case pos.Turn() == chess.White:
			toks = append(toks, strconv.Itoa(number)+".")
		case i == 0:
			toks = append(toks, strconv.Itoa(number)+"...")
		}
		toks = append(toks, san.Encode(pos, m))
		if pos.Turn() == chess.Black {
			number++
		}
	}
	return toks
}

// Adjudicate replays moves and reports how notnil/chess judges the final
// position.
func Adjudicate(startFEN string, moves []string) (Outcome, error) {
	game, err := replay(startFEN, moves)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Result: string(game.Outcome()),
		Method: game.Method().String(),
	}, nil
}
