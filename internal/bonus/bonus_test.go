package bonus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/raidsplit/internal/models"
)

type fakeCatalog []models.BonusDefinition

func (f fakeCatalog) Bonuses() []models.BonusDefinition { return f }

func entry(id int, name string, total float64) models.StatEntry {
	return models.StatEntry{PlayerID: id, PlayerName: name, Total: total}
}

func TestRankedEntry_StableOnTies(t *testing.T) {
	table := []models.StatEntry{entry(1, "A", 100), entry(2, "B", 100), entry(3, "C", 50)}

	for range 10 {
		got, ok := RankedEntry(table, 2)
		require.True(t, ok)
		assert.Equal(t, 2, got.PlayerID)
	}

	first, ok := RankedEntry(table, 1)
	require.True(t, ok)
	assert.Equal(t, 1, first.PlayerID)

	_, ok = RankedEntry(table, 4)
	assert.False(t, ok)
	_, ok = RankedEntry(nil, 1)
	assert.False(t, ok)
	_, ok = RankedEntry(table, 0)
	assert.False(t, ok)

	// Input is not reordered.
	assert.Equal(t, 3, table[2].PlayerID)
}

func TestMergeCasts(t *testing.T) {
	regular := []models.StatEntry{entry(1, "A", 3), entry(2, "B", 5)}
	greater := []models.StatEntry{entry(2, "B", 4), entry(3, "C", 7)}

	got := MergeCasts(regular, greater)
	assert.Equal(t, []models.StatEntry{entry(1, "A", 3), entry(2, "B", 9), entry(3, "C", 7)}, got)

	assert.Empty(t, MergeCasts())
	assert.Equal(t, 3.0, regular[0].Total)
}

func TestResolve(t *testing.T) {
	cat := fakeCatalog{
		{ID: "tank1", DetectionMethod: models.DetectDamageTaken, Rank: 1},
		{ID: "dps1", DetectionMethod: models.DetectDamageDone, Rank: 1},
		{ID: "dps2", DetectionMethod: models.DetectDamageDone, Rank: 2},
		{ID: "dps3", DetectionMethod: models.DetectDamageDone, Rank: 3},
		{ID: "healer1", DetectionMethod: models.DetectHealingDone, Rank: 1},
		{ID: "topDispel", DetectionMethod: models.DetectDispel, Rank: 1},
		{ID: "kings", DetectionMethod: models.DetectCast, CastGroup: "kings"},
		{ID: "mc2", DetectionMethod: models.DetectCast, CastGroup: "mindControl", Rank: 2},
		{ID: "masterLooter", DetectionMethod: models.DetectManual},
	}
	report := &models.ReportData{
		DamageTaken: []models.StatEntry{entry(1, "Tank", 900), entry(2, "Rogue", 100)},
		DamageDone:  []models.StatEntry{entry(2, "Rogue", 500), entry(3, "Mage", 700)},
		HealingDone: []models.StatEntry{entry(4, "Priest", 1000)},
		Casts: map[string][]models.StatEntry{
			"kings":       {entry(5, "Paladin", 12)},
			"mindControl": {entry(4, "Priest", 3)},
		},
	}

	got := Resolve(report, cat)
	require.Len(t, got, len(cat))

	want := map[string]int{"tank1": 1, "dps1": 3, "dps2": 2, "healer1": 4, "kings": 5}
	for i, a := range got {
		assert.Equal(t, cat[i].ID, a.BonusID, "catalog order")
		assert.True(t, a.AutoDetected)
		id, assigned := want[a.BonusID]
		if !assigned {
			assert.Nil(t, a.PlayerID, a.BonusID)
			continue
		}
		require.NotNil(t, a.PlayerID, a.BonusID)
		assert.Equal(t, id, *a.PlayerID, a.BonusID)
	}
	assert.Equal(t, "Mage", got[1].PlayerName)
}

func TestResolve_NilReport(t *testing.T) {
	got := Resolve(nil, fakeCatalog{{ID: "dps1", DetectionMethod: models.DetectDamageDone, Rank: 1}})
	require.Len(t, got, 1)
	assert.False(t, got[0].Assigned())
}

func TestAssign(t *testing.T) {
	assignments := []models.BonusAssignment{
		{BonusID: "dps1", PlayerID: models.IntPtr(3), PlayerName: "Mage", AutoDetected: true},
		{BonusID: "topSpender", AutoDetected: true},
	}

	require.True(t, Assign(assignments, "topSpender", models.IntPtr(models.ExternalPlayerID), "Banker"))
	assert.Equal(t, models.ExternalPlayerID, *assignments[1].PlayerID)
	assert.Equal(t, "Banker", assignments[1].PlayerName)
	assert.False(t, assignments[1].AutoDetected)

	require.True(t, Assign(assignments, "dps1", nil, "ignored"))
	assert.False(t, assignments[0].Assigned())
	assert.Empty(t, assignments[0].PlayerName)
	assert.False(t, assignments[0].AutoDetected)

	assert.False(t, Assign(assignments, "missing", nil, ""))
}
