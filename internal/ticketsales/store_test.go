package ticketsales_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballpark-tracker/internal/models"
	"ballpark-tracker/internal/storage"
	"ballpark-tracker/internal/ticketsales"
)

func setupStore(t *testing.T) (*ticketsales.Store, storage.KV) {
	t.Helper()
	kv, err := storage.OpenSQLite("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return ticketsales.NewStore(kv, nil), kv
}

func TestLoadMissingKeyIsEmpty(t *testing.T) {
	store, _ := setupStore(t)

	sales, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sales)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	in := []models.TicketSale{
		{ID: "ticket-1", SaleDate: "2026-04-01", Games: []string{"A", "B"},
			DeletedGames: []string{"C"}, Memo: "gate 7 pickup"},
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMalformedValueDegradesToEmpty(t *testing.T) {
	store, kv := setupStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, ticketsales.StorageKey, []byte(`not json`)))

	sales, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sales)
}
