// Package storage provides abstractions for the item resistance database.
package storage

import (
	"context"

	"github.com/mmynk/raidsplit/internal/models"
	"github.com/mmynk/raidsplit/internal/resist"
)

// ItemStore defines the operations on the item and enchant resistance tables.
// The server only reads it at startup; cmd/import-items writes it.
type ItemStore interface {
	// UpsertItems inserts or replaces item rows and returns how many were written.
	UpsertItems(ctx context.Context, items []models.ItemResist) (int, error)

	// UpsertEnchants inserts or replaces enchant rows and returns how many were written.
	UpsertEnchants(ctx context.Context, enchants []models.ItemResist) (int, error)

	// GetItem retrieves one item by id.
	// Returns ErrNotFound if the item is not stored.
	GetItem(ctx context.Context, id int) (*models.ItemResist, error)

	// LoadResistTable reads both tables into an in-memory lookup.
	LoadResistTable(ctx context.Context) (*resist.Table, error)

	// Close releases any resources held by the store.
	Close() error
}
