// Command import-items loads item and enchant resistance values into the
// item database used by the server.
//
//	import-items -dump items.sql [-table items] [-enchants enchants.sql]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/raidsplit/internal/catalog"
	"github.com/mmynk/raidsplit/internal/config"
	"github.com/mmynk/raidsplit/internal/itemdb"
	"github.com/mmynk/raidsplit/internal/models"
	"github.com/mmynk/raidsplit/internal/storage"
	"github.com/mmynk/raidsplit/internal/storage/sqlite"
	"github.com/mmynk/raidsplit/pkg/logging"
)

func main() {
	var (
		dumpPath     = flag.String("dump", "", "MySQL dump with an item template table")
		table        = flag.String("table", "items", "table name inside the dump")
		enchantsPath = flag.String("enchants", "", "optional MySQL dump with an enchants table")
		seed         = flag.Bool("seed", true, "also write the catalog's seed values")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(context.Background(), cfg.ItemDBPath, *dumpPath, *table, *enchantsPath, *seed); err != nil {
		slog.Error("Import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dbPath, dumpPath, table, enchantsPath string, seed bool) error {
	if dumpPath == "" && enchantsPath == "" && !seed {
		return fmt.Errorf("nothing to import: pass -dump, -enchants or -seed")
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open item database: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	if seed {
		set, err := catalog.Default()
		if err != nil {
			return err
		}
		if err := writeSeed(ctx, store, set); err != nil {
			return err
		}
	}

	if dumpPath != "" {
		rows, err := parseFile(dumpPath, table)
		if err != nil {
			return err
		}
		n, err := store.UpsertItems(ctx, rows)
		if err != nil {
			return err
		}
		if err := verifyItem(ctx, store, rows); err != nil {
			return err
		}
		slog.Info("Items imported", "path", dumpPath, "rows", n)
	}

	if enchantsPath != "" {
		rows, err := parseFile(enchantsPath, "enchants")
		if err != nil {
			return err
		}
		n, err := store.UpsertEnchants(ctx, rows)
		if err != nil {
			return err
		}
		slog.Info("Enchants imported", "path", enchantsPath, "rows", n)
	}
	return nil
}

func parseFile(path, table string) ([]models.ItemResist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close()

	rows, stats, err := itemdb.ParseDump(f, table, itemdb.ItemColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	slog.Debug("Dump parsed", "path", path, "statements", stats.Statements, "rows", stats.Rows, "kept", stats.Kept)
	return rows, nil
}

// verifyItem reads back the last imported row, which wins over any earlier
// row with the same id.
func verifyItem(ctx context.Context, store storage.ItemStore, rows []models.ItemResist) error {
	if len(rows) == 0 {
		return nil
	}
	want := rows[len(rows)-1]
	got, err := store.GetItem(ctx, want.ID)
	if err != nil {
		return fmt.Errorf("failed to read back item %d: %w", want.ID, err)
	}
	if got.FrostResist != want.FrostResist {
		return fmt.Errorf("item %d stored with frost resist %d, want %d", want.ID, got.FrostResist, want.FrostResist)
	}
	slog.Debug("Import verified", "item", got.ID, "name", got.Name, "frost_resist", got.FrostResist)
	return nil
}

// writeSeed stores the catalog's seed values so a fresh database is usable
// without a dump. Seed rows are named by id; a dump imported afterwards
// replaces them.
func writeSeed(ctx context.Context, store storage.ItemStore, set *catalog.Set) error {
	toRows := func(m map[int]int) []models.ItemResist {
		rows := make([]models.ItemResist, 0, len(m))
		for id, res := range m {
			rows = append(rows, models.ItemResist{ID: id, Name: fmt.Sprintf("item %d", id), FrostResist: res})
		}
		return rows
	}
	n, err := store.UpsertItems(ctx, toRows(set.SeedItems()))
	if err != nil {
		return err
	}
	m, err := store.UpsertEnchants(ctx, toRows(set.SeedEnchants()))
	if err != nil {
		return err
	}
	slog.Info("Seed values written", "items", n, "enchants", m)
	return nil
}
