// Package sqlite provides a SQLite-backed implementation of storage.ItemStore.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/raidsplit/internal/models"
	"github.com/mmynk/raidsplit/internal/resist"
	"github.com/mmynk/raidsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.ItemStore
var _ storage.ItemStore = (*SQLiteStore)(nil)

// SQLiteStore implements storage.ItemStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertItems writes item rows in one transaction.
func (s *SQLiteStore) UpsertItems(ctx context.Context, items []models.ItemResist) (int, error) {
	return s.upsert(ctx, "items", items)
}

// UpsertEnchants writes enchant rows in one transaction.
func (s *SQLiteStore) UpsertEnchants(ctx context.Context, enchants []models.ItemResist) (int, error) {
	return s.upsert(ctx, "enchants", enchants)
}

func (s *SQLiteStore) upsert(ctx context.Context, table string, rows []models.ItemResist) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+table+" (id, name, frost_res) VALUES (?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET name = excluded.name, frost_res = excluded.frost_res",
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, r.FrostResist); err != nil {
			return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(rows), nil
}

// GetItem retrieves one item by id.
func (s *SQLiteStore) GetItem(ctx context.Context, id int) (*models.ItemResist, error) {
	item := &models.ItemResist{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, frost_res FROM items WHERE id = ?",
		id,
	).Scan(&item.ID, &item.Name, &item.FrostResist)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// LoadResistTable reads every row with a positive resistance.
func (s *SQLiteStore) LoadResistTable(ctx context.Context) (*resist.Table, error) {
	items, err := s.loadMap(ctx, "items")
	if err != nil {
		return nil, err
	}
	enchants, err := s.loadMap(ctx, "enchants")
	if err != nil {
		return nil, err
	}
	return resist.NewTable(items, enchants), nil
}

func (s *SQLiteStore) loadMap(ctx context.Context, table string) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, frost_res FROM "+table+" WHERE frost_res > 0")
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var id, res int
		if err := rows.Scan(&id, &res); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		out[id] = res
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return out, nil
}
