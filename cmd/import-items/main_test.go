package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/raidsplit/internal/models"
	"github.com/mmynk/raidsplit/internal/storage"
	"github.com/mmynk/raidsplit/internal/storage/sqlite"
)

const dump = "INSERT INTO `items` (`item_id`,`name`,`frost_res`) VALUES " +
	"(22652,'Glacial Vest',44),(22654,'Glacial Gloves',24),(22652,'Glacial Vest',45);\n"

func TestRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "items.db")
	dumpPath := filepath.Join(dir, "items.sql")
	require.NoError(t, os.WriteFile(dumpPath, []byte(dump), 0o644))

	ctx := context.Background()
	require.NoError(t, run(ctx, dbPath, dumpPath, "items", "", false))

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer store.Close()

	item, err := store.GetItem(ctx, 22652)
	require.NoError(t, err)
	assert.Equal(t, 45, item.FrostResist)

	table, err := store.LoadResistTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, table.Item(22654))
}

func TestRun_NothingToImport(t *testing.T) {
	err := run(context.Background(), filepath.Join(t.TempDir(), "items.db"), "", "items", "", false)
	assert.ErrorContains(t, err, "nothing to import")
}

func TestVerifyItem(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "items.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	rows := []models.ItemResist{{ID: 22669, Name: "Icebane Breastplate", FrostResist: 42}}
	assert.NoError(t, verifyItem(ctx, store, nil))
	assert.ErrorIs(t, verifyItem(ctx, store, rows), storage.ErrNotFound)

	_, err = store.UpsertItems(ctx, []models.ItemResist{{ID: 22669, Name: "Icebane Breastplate", FrostResist: 40}})
	require.NoError(t, err)
	assert.ErrorContains(t, verifyItem(ctx, store, rows), "want 42")

	_, err = store.UpsertItems(ctx, rows)
	require.NoError(t, err)
	assert.NoError(t, verifyItem(ctx, store, rows))
}
