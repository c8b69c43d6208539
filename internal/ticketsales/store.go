package ticketsales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ballpark-tracker/internal/logger"
	"ballpark-tracker/internal/models"
	"ballpark-tracker/internal/storage"
)

// StorageKey is the key the ticket-sale list lives under (original client key).
const StorageKey = "ticket-sales"

// Store is the Ticket-Sale record store: one JSON array under one key.
type Store struct {
	KV     storage.KV
	Logger *logger.Logger
}

func NewStore(kv storage.KV, log *logger.Logger) *Store {
	return &Store{KV: kv, Logger: log}
}

// Load reads the full sale list. A missing key or malformed value degrades to
// an empty list; sales have no seed path.
func (s *Store) Load(ctx context.Context) ([]models.TicketSale, error) {
	raw, err := s.KV.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket-sale list: %w", err)
	}

	var sales []models.TicketSale
	if err := json.Unmarshal(raw, &sales); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("STORE", fmt.Sprintf("Malformed ticket-sale list under %q, treating store as empty: %v", StorageKey, err))
		}
		return nil, nil
	}
	return sales, nil
}

// Save writes the full sale list back.
func (s *Store) Save(ctx context.Context, sales []models.TicketSale) error {
	if sales == nil {
		sales = []models.TicketSale{}
	}
	raw, err := json.Marshal(sales)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket-sale list: %w", err)
	}
	if err := s.KV.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("failed to write ticket-sale list: %w", err)
	}
	if s.Logger != nil {
		s.Logger.LogStore("SAVE", StorageKey, fmt.Sprintf("%d sales", len(sales)))
	}
	return nil
}
