package calculator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mmynk/raidsplit/internal/models"
)

// ErrInvalidPlayerCount is returned when the configured player count cannot divide the pot.
var ErrInvalidPlayerCount = errors.New("player count must be at least 1")

// BonusLookup resolves catalog bonus definitions by id.
type BonusLookup interface {
	Bonus(id string) (models.BonusDefinition, bool)
}

// cutKey identifies a PlayerCut. Roster players are keyed by id; hand-typed
// external awardees share ExternalPlayerID and are told apart by name.
type cutKey struct {
	id   int
	name string
}

func keyFor(id int, name string) cutKey {
	if id == models.ExternalPlayerID {
		return cutKey{id: id, name: name}
	}
	return cutKey{id: id}
}

// ComputePayout distributes the pot among the roster.
// It is a pure function: identical inputs produce identical output.
//
// Algorithm:
// - goldToDistribute = pot × (1 - organizer%), bonusPool = pot × bonus%
// - baseCut = (goldToDistribute - bonusPool) / configured player count
// - every assigned bonus pays pot × bonus% to its player (unlisted awardees get a base cut too)
// - each deduction removes a percentage of the player's current total
// - the deducted sum is shared evenly by every cut, so deductions are zero-sum
// - cuts are sorted by total, highest first (stable)
//
// Assignments that reference a bonus missing from the catalog and deductions on
// players without a cut are skipped.
func ComputePayout(
	cfg models.Config,
	assignments []models.BonusAssignment,
	players []models.Player,
	deductions []models.Deduction,
	bonuses BonusLookup,
) (*models.PayoutResult, error) {
	if cfg.PlayerCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, cfg.PlayerCount)
	}

	goldToDistribute := cfg.TotalPot * (1 - cfg.OrganizerCutPercent/100)
	bonusPool := cfg.TotalPot * (cfg.BonusPoolPercent / 100)
	evenSplitPool := goldToDistribute - bonusPool
	baseCut := evenSplitPool / float64(cfg.PlayerCount)

	// Insertion order is kept in cuts; index maps a key to its position.
	cuts := make([]*models.PlayerCut, 0, len(players))
	index := make(map[cutKey]int, len(players))

	addCut := func(id int, name string) *models.PlayerCut {
		cut := &models.PlayerCut{
			PlayerID: id,
			Name:     name,
			BaseCut:  baseCut,
			Bonuses:  []models.BonusLine{},
			TotalCut: baseCut,
		}
		index[keyFor(id, name)] = len(cuts)
		cuts = append(cuts, cut)
		return cut
	}

	for _, p := range players {
		if _, exists := index[keyFor(p.ID, p.Name)]; exists {
			continue
		}
		addCut(p.ID, p.Name)
	}

	for _, a := range assignments {
		if !a.Assigned() {
			continue
		}
		bonus, ok := bonuses.Bonus(a.BonusID)
		if !ok {
			continue
		}
		amount := cfg.TotalPot * (bonus.Percentage / 100)

		playerID := *a.PlayerID
		var cut *models.PlayerCut
		if i, exists := index[keyFor(playerID, a.PlayerName)]; exists {
			cut = cuts[i]
		} else {
			name := a.PlayerName
			if name == "" {
				name = fmt.Sprintf("Player %d", playerID)
			}
			cut = addCut(playerID, name)
		}

		cut.Bonuses = append(cut.Bonuses, models.BonusLine{
			BonusID: bonus.ID,
			Name:    bonus.Name,
			Amount:  amount,
		})
		cut.TotalCut += amount
	}

	var totalDeducted float64
	for _, d := range deductions {
		i, exists := index[keyFor(d.PlayerID, d.PlayerName)]
		if !exists {
			continue
		}
		cut := cuts[i]
		amount := cut.TotalCut * (d.Percentage / 100)
		cut.TotalCut -= amount
		cut.Deduction += amount
		totalDeducted += amount
	}

	if totalDeducted > 0 && len(cuts) > 0 {
		gain := totalDeducted / float64(len(cuts))
		for _, cut := range cuts {
			cut.RedistributionGain += gain
			cut.TotalCut += gain
		}
	}

	playerCuts := make([]models.PlayerCut, len(cuts))
	for i, cut := range cuts {
		playerCuts[i] = *cut
	}
	slices.SortStableFunc(playerCuts, func(a, b models.PlayerCut) int {
		switch {
		case a.TotalCut > b.TotalCut:
			return -1
		case a.TotalCut < b.TotalCut:
			return 1
		default:
			return 0
		}
	})

	var totalDistributed float64
	for _, cut := range playerCuts {
		totalDistributed += cut.TotalCut
	}

	return &models.PayoutResult{
		GoldToDistribute: goldToDistribute,
		BonusPool:        bonusPool,
		EvenSplitPool:    evenSplitPool,
		BaseCut:          baseCut,
		TotalDeducted:    totalDeducted,
		PlayerCuts:       playerCuts,
		TotalDistributed: totalDistributed,
	}, nil
}
