// Package bonus assigns catalog bonuses to players by ranking the report's
// statistics tables.
package bonus

import (
	"cmp"
	"slices"

	"github.com/mmynk/raidsplit/internal/models"
)

// Ranked returns a copy of the table sorted by total, highest first.
// Ties keep their input order.
func Ranked(table []models.StatEntry) []models.StatEntry {
	sorted := slices.Clone(table)
	slices.SortStableFunc(sorted, func(a, b models.StatEntry) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return sorted
}

// RankedEntry returns the entry at a 1-indexed rank, or false when the table
// is too short.
func RankedEntry(table []models.StatEntry, rank int) (models.StatEntry, bool) {
	if rank < 1 || rank > len(table) {
		return models.StatEntry{}, false
	}
	return Ranked(table)[rank-1], true
}

// MergeCasts sums several variant tables per player. Players are listed in
// order of first appearance.
func MergeCasts(tables ...[]models.StatEntry) []models.StatEntry {
	var merged []models.StatEntry
	index := make(map[int]int)
	for _, table := range tables {
		for _, e := range table {
			if i, ok := index[e.PlayerID]; ok {
				merged[i].Total += e.Total
				continue
			}
			index[e.PlayerID] = len(merged)
			merged = append(merged, e)
		}
	}
	return merged
}
