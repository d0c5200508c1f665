// Package storage persists the small amount of cross-session state — the
// favorites list and the purchased-item set — as versioned JSON payloads in
// an app_state key-value table.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"qihuang-chef/internal/plan"
)

const (
	favoritesKey = "favorites"
	purchasedKey = "purchased_items"

	// payloadVersion is stored inside the payload envelope, not in the key,
	// so a schema change migrates data instead of abandoning it.
	payloadVersion = 1
)

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Store reads and writes persisted app state. Each logical key is rewritten
// in full on every mutation.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore wraps an existing database connection.
func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, log: logger}
}

// SaveFavorites rewrites the favorites payload.
func (s *Store) SaveFavorites(favs []plan.Recipe) error {
	return s.save(favoritesKey, favs)
}

// LoadFavorites reads the favorites payload; a missing key yields nil.
func (s *Store) LoadFavorites() ([]plan.Recipe, error) {
	var favs []plan.Recipe
	if err := s.load(favoritesKey, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// SavePurchased rewrites the purchased-item identifier set.
func (s *Store) SavePurchased(ids []string) error {
	return s.save(purchasedKey, ids)
}

// LoadPurchased reads the purchased-item identifiers; a missing key yields nil.
func (s *Store) LoadPurchased() ([]string, error) {
	var ids []string
	if err := s.load(purchasedKey, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	payload, err := json.Marshal(envelope{Version: payloadVersion, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO app_state (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) load(key string, out any) error {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM app_state WHERE key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	// Legacy payloads were written as a bare array with no envelope, so they
	// either fail the envelope parse outright or leave the version at zero.
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Version == 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("failed to parse legacy %s payload: %w", key, err)
		}
		s.log.Info().Str("key", key).Msg("migrated legacy state payload")
		return nil
	}

	switch env.Version {
	case payloadVersion:
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to parse %s payload: %w", key, err)
		}
		return nil
	default:
		// Newer than this binary understands; start empty rather than guess.
		s.log.Warn().Str("key", key).Int("version", env.Version).Msg("discarding state payload from unknown version")
		return nil
	}
}
