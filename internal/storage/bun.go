package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Entry is one stored value. The whole store is a single table.
type Entry struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Key   string `bun:"key,pk"`
	Value []byte `bun:"value"`
}

// BunKV is a KV backed by a SQL database through bun. SQLite is the default
// (a local file next to the app); postgres is available for anyone who wants
// the data in a real server.
type BunKV struct {
	Bun *bun.DB
}

// OpenSQLite opens (creating if needed) a sqlite-backed KV at path.
func OpenSQLite(path string) (*BunKV, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite at %s: %w", path, err)
	}
	return NewBunKV(bun.NewDB(sqldb, sqlitedialect.New()))
}

// OpenPostgres opens a postgres-backed KV using the given DSN and connection
// pool limits.
func OpenPostgres(dsn string, maxOpen, maxIdle int, maxLifetime time.Duration) (*BunKV, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	sqldb.SetMaxOpenConns(maxOpen)
	sqldb.SetMaxIdleConns(maxIdle)
	sqldb.SetConnMaxLifetime(maxLifetime)
	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewBunKV(bun.NewDB(sqldb, pgdialect.New()))
}

// NewBunKV wraps an existing bun.DB and ensures the kv_entries table exists.
func NewBunKV(db *bun.DB) (*BunKV, error) {
	_, err := db.NewCreateTable().
		Model((*Entry)(nil)).
		IfNotExists().
		Exec(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create kv_entries table: %w", err)
	}
	return &BunKV{Bun: db}, nil
}

func (s *BunKV) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.Bun.NewSelect().
		Model(&entry).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *BunKV) Set(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: key, Value: value}
	_, err := s.Bun.NewInsert().
		Model(&entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}

func (s *BunKV) Delete(ctx context.Context, key string) error {
	_, err := s.Bun.NewDelete().
		Model((*Entry)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	return err
}

func (s *BunKV) Close() error {
	return s.Bun.Close()
}
