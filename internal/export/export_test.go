package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/raidsplit/internal/models"
)

type lookup map[string]models.BonusDefinition

func (l lookup) Bonus(id string) (models.BonusDefinition, bool) {
	d, ok := l[id]
	return d, ok
}

func TestGold(t *testing.T) {
	assert.Equal(t, int64(163), Gold(162.5))
	assert.Equal(t, int64(142), Gold(142.21875))
	assert.Equal(t, int64(-50), Gold(-50))
	assert.Equal(t, int64(0), Gold(0.4))
}

func TestImportList(t *testing.T) {
	got := ImportList([]models.PlayerCut{
		{Name: "Grom", TotalCut: 277.5},
		{Name: "Jaina", TotalCut: 162.49},
	})
	assert.Equal(t, "Player,Gold\nGrom,278\nJaina,162", got)

	assert.Equal(t, "Player,Gold", ImportList(nil))
}

func sheetFixture() (models.Config, *models.PayoutResult, []models.BonusAssignment, lookup) {
	cfg := models.Config{TotalPot: 100000, OrganizerCutPercent: 14, BonusPoolPercent: 21, PlayerCount: 2}
	result := &models.PayoutResult{
		GoldToDistribute: 86000,
		BonusPool:        21000,
		EvenSplitPool:    65000,
		BaseCut:          32500,
		PlayerCuts: []models.PlayerCut{
			{PlayerID: 1, Name: "Grom", BaseCut: 32500, Bonuses: []models.BonusLine{{BonusID: "tank1", Name: "Tank 1", Amount: 1150}}, TotalCut: 33650},
			{PlayerID: 2, Name: "Jaina", BaseCut: 32500, TotalCut: 32500},
		},
		TotalDistributed: 66150,
	}
	assignments := []models.BonusAssignment{
		{BonusID: "tank1", PlayerID: models.IntPtr(1), PlayerName: "Grom"},
		{BonusID: "dps1"},
		{BonusID: "gone", PlayerID: models.IntPtr(2), PlayerName: "Jaina"},
	}
	bonuses := lookup{
		"tank1": {ID: "tank1", Name: "Tank 1", Percentage: 1.15},
		"dps1":  {ID: "dps1", Name: "DPS 1", Percentage: 1.2},
	}
	return cfg, result, assignments, bonuses
}

func TestSheet(t *testing.T) {
	cfg, result, assignments, bonuses := sheetFixture()
	got := Sheet(cfg, result, assignments, bonuses)

	rows := strings.Split(got, "\n")
	require.Len(t, rows, 9, "summary is the tallest section")

	// summary(3) + gap + bonus(4) + gap + players(6) + gap + import(2)
	const width = 3 + 1 + 4 + 1 + 6 + 1 + 2
	grid := make([][]string, len(rows))
	for i, r := range rows {
		grid[i] = strings.Split(r, "\t")
		require.Len(t, grid[i], width, "row %d", i)
	}

	assert.Equal(t, []string{"Total Pot", "", "100,000"}, grid[1][0:3])
	assert.Equal(t, []string{"Organizer Cut", "14.00%", "14,000"}, grid[2][0:3])
	assert.Equal(t, []string{"Gold to Distribute", "86.00%", "86,000"}, grid[3][0:3])
	assert.Equal(t, []string{"Even Split", "65.00%", "65,000"}, grid[5][0:3])
	assert.Equal(t, []string{"Base Cut", "", "32,500"}, grid[7][0:3])

	assert.Equal(t, []string{"Bonus", "Player", "%", "Amount"}, grid[0][4:8])
	assert.Equal(t, []string{"Tank 1", "Grom", "1.15%", "1,150"}, grid[1][4:8])
	assert.Equal(t, []string{"", "", "", ""}, grid[2][4:8], "unassigned and unknown bonuses are skipped")

	assert.Equal(t, []string{"Grom", "32,500", "1,150", "0", "0", "33,650"}, grid[1][9:15])
	assert.Equal(t, []string{"Jaina", "32,500"}, grid[2][9:11])

	assert.Equal(t, []string{"Player", "Gold"}, grid[0][16:18])
	assert.Equal(t, []string{"Grom", "33650"}, grid[1][16:18])

	for _, r := range grid {
		assert.Empty(t, r[3])
		assert.Empty(t, r[8])
		assert.Empty(t, r[15])
	}
}
