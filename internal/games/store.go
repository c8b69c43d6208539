package games

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ballpark-tracker/internal/logger"
	"ballpark-tracker/internal/models"
	"ballpark-tracker/internal/storage"
)

// StorageKey is the key the game list lives under. Kept from the original
// client so an exported localStorage dump can be imported as-is.
const StorageKey = "npb-events"

// Store is the Game record store: one JSON array under one key.
type Store struct {
	KV     storage.KV
	Logger *logger.Logger
}

func NewStore(kv storage.KV, log *logger.Logger) *Store {
	return &Store{KV: kv, Logger: log}
}

// Load reads the full game list. found reports whether the key held a usable
// value; a missing key or a malformed value both come back as (nil, false,
// nil) so the caller can fall through to the seed path. The store is a cache,
// not a source of truth, so parse failures degrade instead of propagating.
func (s *Store) Load(ctx context.Context) (games []models.Game, found bool, err error) {
	raw, err := s.KV.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read game list: %w", err)
	}

	if err := json.Unmarshal(raw, &games); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("STORE", fmt.Sprintf("Malformed game list under %q, treating store as empty: %v", StorageKey, err))
		}
		return nil, false, nil
	}
	return games, true, nil
}

// Save writes the full game list back.
func (s *Store) Save(ctx context.Context, games []models.Game) error {
	if games == nil {
		games = []models.Game{}
	}
	raw, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("failed to marshal game list: %w", err)
	}
	if err := s.KV.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("failed to write game list: %w", err)
	}
	if s.Logger != nil {
		s.Logger.LogStore("SAVE", StorageKey, fmt.Sprintf("%d games", len(games)))
	}
	return nil
}
