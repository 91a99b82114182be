// Package export renders a payout result for pasting into other tools.
package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mmynk/raidsplit/internal/models"
)

// BonusLookup resolves bonus definitions by id.
type BonusLookup interface {
	Bonus(id string) (models.BonusDefinition, bool)
}

// Gold rounds an amount to whole gold, halves away from zero.
func Gold(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(0).IntPart()
}

// ImportList renders the "Player,Gold" list used by loot addons.
func ImportList(cuts []models.PlayerCut) string {
	lines := make([]string, 0, len(cuts)+1)
	lines = append(lines, "Player,Gold")
	for _, c := range cuts {
		lines = append(lines, fmt.Sprintf("%s,%d", c.Name, Gold(c.TotalCut)))
	}
	return strings.Join(lines, "\n")
}

// Sheet renders a tab-separated table with the summary, bonus, player and
// import sections side by side, one empty column between sections.
func Sheet(cfg models.Config, result *models.PayoutResult, assignments []models.BonusAssignment, bonuses BonusLookup) string {
	p := message.NewPrinter(language.English)
	gold := func(v float64) string { return p.Sprintf("%d", Gold(v)) }
	pct := func(v float64) string { return fmt.Sprintf("%.2f%%", v) }

	summary := [][]string{
		{"Summary", "", ""},
		{"Total Pot", "", gold(cfg.TotalPot)},
		{"Organizer Cut", pct(cfg.OrganizerCutPercent), gold(cfg.TotalPot * cfg.OrganizerCutPercent / 100)},
		{"Gold to Distribute", pct(100 - cfg.OrganizerCutPercent), gold(result.GoldToDistribute)},
		{"Bonuses", pct(cfg.BonusPoolPercent), gold(result.BonusPool)},
		{"Even Split", pct(100 - cfg.OrganizerCutPercent - cfg.BonusPoolPercent), gold(result.EvenSplitPool)},
		{"Players", "", fmt.Sprint(cfg.PlayerCount)},
		{"Base Cut", "", gold(result.BaseCut)},
		{"Deducted", "", gold(result.TotalDeducted)},
	}

	bonusRows := [][]string{{"Bonus", "Player", "%", "Amount"}}
	for _, a := range assignments {
		if !a.Assigned() {
			continue
		}
		def, ok := bonuses.Bonus(a.BonusID)
		if !ok {
			continue
		}
		bonusRows = append(bonusRows, []string{
			def.Name,
			a.PlayerName,
			pct(def.Percentage),
			gold(cfg.TotalPot * def.Percentage / 100),
		})
	}

	players := [][]string{{"Player", "Base", "Bonus", "Deduction", "Redistributed", "Total"}}
	imports := [][]string{{"Player", "Gold"}}
	for _, c := range result.PlayerCuts {
		players = append(players, []string{
			c.Name,
			gold(c.BaseCut),
			gold(c.BonusTotal()),
			gold(c.Deduction),
			gold(c.RedistributionGain),
			gold(c.TotalCut),
		})
		imports = append(imports, []string{c.Name, fmt.Sprint(Gold(c.TotalCut))})
	}

	return layout(summary, bonusRows, players, imports)
}

// layout places sections next to each other. Short sections are padded with
// empty cells so every row has the same number of columns.
func layout(sections ...[][]string) string {
	height := 0
	for _, s := range sections {
		height = max(height, len(s))
	}

	lines := make([]string, 0, height)
	for row := range height {
		var cells []string
		for i, s := range sections {
			if i > 0 {
				cells = append(cells, "")
			}
			width := len(s[0])
			for col := range width {
				if row < len(s) && col < len(s[row]) {
					cells = append(cells, s[row][col])
				} else {
					cells = append(cells, "")
				}
			}
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}
