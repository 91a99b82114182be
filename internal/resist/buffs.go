package resist

import (
	"slices"

	"github.com/mmynk/raidsplit/internal/models"
)

// BuffSpells lists the spell ids that identify resistance-related buffs.
type BuffSpells struct {
	ResistAura    []int
	MarkOfTheWild []int
	Consumable    []int
}

// BuffState is what is known about one player's resistance sources.
type BuffState struct {
	PlayerID         int
	HasResistAura    bool
	HasMarkOfTheWild bool
	HasConsumable    bool

	// GearResist is the highest gear total over all snapshots; only meaningful with HasGear.
	GearResist int
	HasGear    bool
}

// raidBuffBonus is the resistance granted by raid-wide buffs. Consumables are not included.
func (s BuffState) raidBuffBonus(p Params) int {
	bonus := 0
	if s.HasResistAura {
		bonus += p.AuraBonus
	}
	if s.HasMarkOfTheWild {
		bonus += p.MarkBonus
	}
	return bonus
}

// BuffStates collects buff presence and gear totals per player.
func BuffStates(spells BuffSpells, auras []models.AuraEntry, gear []models.GearSnapshot, table *Table) map[int]*BuffState {
	states := make(map[int]*BuffState)
	get := func(id int) *BuffState {
		s, ok := states[id]
		if !ok {
			s = &BuffState{PlayerID: id}
			states[id] = s
		}
		return s
	}

	for _, a := range auras {
		if a.TotalUptime <= 0 {
			continue
		}
		switch {
		case slices.Contains(spells.ResistAura, a.AbilityID):
			get(a.PlayerID).HasResistAura = true
		case slices.Contains(spells.MarkOfTheWild, a.AbilityID):
			get(a.PlayerID).HasMarkOfTheWild = true
		case slices.Contains(spells.Consumable, a.AbilityID):
			get(a.PlayerID).HasConsumable = true
		}
	}

	for _, snap := range gear {
		s := get(snap.PlayerID)
		total := table.GearResist(snap.Items)
		if !s.HasGear || total > s.GearResist {
			s.GearResist = total
		}
		s.HasGear = true
	}

	return states
}
