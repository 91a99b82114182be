package bonus

import (
	"github.com/mmynk/raidsplit/internal/models"
)

// Catalog is the part of a raid catalog the resolver reads.
type Catalog interface {
	Bonuses() []models.BonusDefinition
}

// Resolve produces one assignment per catalog bonus, in catalog order.
// Missing tables and short tables leave the bonus unassigned.
func Resolve(report *models.ReportData, cat Catalog) []models.BonusAssignment {
	defs := cat.Bonuses()
	out := make([]models.BonusAssignment, 0, len(defs))
	for _, def := range defs {
		a := models.BonusAssignment{BonusID: def.ID, AutoDetected: true}
		if entry, ok := detect(report, def); ok {
			a.PlayerID = models.IntPtr(entry.PlayerID)
			a.PlayerName = entry.PlayerName
		}
		out = append(out, a)
	}
	return out
}

func detect(report *models.ReportData, def models.BonusDefinition) (models.StatEntry, bool) {
	if report == nil {
		return models.StatEntry{}, false
	}
	rank := max(def.Rank, 1)

	switch def.DetectionMethod {
	case models.DetectDamageTaken:
		return RankedEntry(report.DamageTaken, rank)
	case models.DetectDamageDone:
		return RankedEntry(report.DamageDone, rank)
	case models.DetectHealingDone:
		return RankedEntry(report.HealingDone, rank)
	case models.DetectDispel:
		return RankedEntry(report.Dispels, rank)
	case models.DetectCast:
		return RankedEntry(report.Casts[def.CastGroup], rank)
	default:
		return models.StatEntry{}, false
	}
}

// Assign sets or clears the recipient of one bonus and marks it as a manual
// edit. A nil playerID clears the assignment. It returns false when the bonus
// is not in the list.
func Assign(assignments []models.BonusAssignment, bonusID string, playerID *int, playerName string) bool {
	for i := range assignments {
		if assignments[i].BonusID != bonusID {
			continue
		}
		assignments[i].PlayerID = playerID
		assignments[i].PlayerName = playerName
		if playerID == nil {
			assignments[i].PlayerName = ""
		}
		assignments[i].AutoDetected = false
		return true
	}
	return false
}
