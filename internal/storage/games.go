package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/hailam/chesscore/internal/board"
)

// ErrGameNotFound is returned when no game is stored under an id.
var ErrGameNotFound = errors.New("game not found")

// GameRecord is a saved game: its starting position, the moves played in
// coordinate notation and, once known, the final position and result.
type GameRecord struct {
	ID        uint64    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	StartFEN  string    `json:"start_fen"`
	Moves     []string  `json:"moves"`
	FinalFEN  string    `json:"final_fen"`
	Result    string    `json:"result,omitempty"` // empty while in progress
}

// Finished reports whether the game has a result.
func (r *GameRecord) Finished() bool {
	return r.Result != ""
}

// Replay rebuilds the final position by applying the recorded moves to the
// starting position.
func (r *GameRecord) Replay() (*board.Position, error) {
	pos := board.NewPosition()
	if r.StartFEN != "" {
		var err error
		if pos, err = board.ParseFEN(r.StartFEN); err != nil {
			return nil, fmt.Errorf("game %d: %w", r.ID, err)
		}
	}
	if err := pos.ApplyMoves(r.Moves...); err != nil {
		return nil, fmt.Errorf("game %d: %w", r.ID, err)
	}
	return pos, nil
}

func gameKey(id uint64) []byte {
	// Zero padded so keys iterate in id order.
	return fmt.Appendf(nil, "%s%020d", prefixGame, id)
}

// SaveGame stores rec, assigning a new id when rec.ID is zero. Saving a
// record with an existing id overwrites it.
func (s *Storage) SaveGame(rec *GameRecord) error {
	if rec.ID == 0 {
		next, err := s.gameSeq.Next()
		if err != nil {
			return fmt.Errorf("allocate game id: %w", err)
		}
		rec.ID = next + 1
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(rec.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save game %d: %w", rec.ID, err)
	}

	s.log.Debug().Uint64("id", rec.ID).Int("moves", len(rec.Moves)).Str("result", rec.Result).Msg("game saved")
	return nil
}

// LoadGame returns the game stored under id.
func (s *Storage) LoadGame(id uint64) (*GameRecord, error) {
	rec := &GameRecord{}
	found, err := s.getJSON(string(gameKey(id)), rec)
	if err != nil {
		return nil, fmt.Errorf("load game %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("load game %d: %w", id, ErrGameNotFound)
	}
	return rec, nil
}

// DeleteGame removes the game stored under id.
func (s *Storage) DeleteGame(id uint64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := gameKey(id)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete game %d: %w", id, ErrGameNotFound)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// ListGames returns every stored game, oldest id first.
func (s *Storage) ListGames() ([]GameRecord, error) {
	var games []GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixGame)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec GameRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			games = append(games, rec)
		}
		return nil
	})

	return games, err
}

// ParseGameID parses a decimal game id.
func ParseGameID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid game id %q", s)
	}
	return id, nil
}
