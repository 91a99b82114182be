package models

// RaidType identifies which bonus/deduction catalog applies to a report.
type RaidType string

const (
	RaidNaxxramas RaidType = "naxxramas"
	RaidWorldTour RaidType = "worldtour"
)

// Player is one participant of the report.
type Player struct {
	// ID is the report's actor id.
	ID int `json:"id"`

	Name string `json:"name"`

	// Class is the game class (Warrior, Mage, ...).
	Class string `json:"class"`
}

// StatEntry is one player's aggregate in a ranked statistics table.
type StatEntry struct {
	PlayerID   int     `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Total      float64 `json:"total"`
}

// AuraEntry is one player's uptime of a tracked buff. Presence means TotalUptime > 0.
type AuraEntry struct {
	PlayerID    int     `json:"playerId"`
	AbilityID   int     `json:"abilityId"`
	TotalUptime float64 `json:"totalUptime"`
}

// Fight is one encounter attempt inside a report.
type Fight struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
	ZoneName  string `json:"zoneName,omitempty"`
	Kill      bool   `json:"kill"`
}

// DamageSample is a single elemental damage instance taken by a player.
type DamageSample struct {
	TargetID               int     `json:"targetId"`
	AbilityID              int     `json:"abilityId"`
	AmountDealt            float64 `json:"amountDealt"`
	AmountBeforeMitigation float64 `json:"amountBeforeMitigation"`
}

// EquippedItem is one gear slot of a snapshot. EnchantID is 0 when the slot has no enchant.
type EquippedItem struct {
	ItemID    int `json:"itemId"`
	EnchantID int `json:"enchantId,omitempty"`
}

// GearSnapshot is the equipment of one player at the start of one fight.
type GearSnapshot struct {
	PlayerID int            `json:"playerId"`
	FightID  int            `json:"fightId"`
	Items    []EquippedItem `json:"items"`
}

// ReportData is the normalized view of one provider report.
// Every table may be empty; absence of data is never an error.
type ReportData struct {
	Code      string   `json:"code"`
	Title     string   `json:"title"`
	StartTime int64    `json:"startTime"`
	EndTime   int64    `json:"endTime"`
	ZoneName  string   `json:"zoneName"`
	ZoneNames []string `json:"zoneNames"`
	Fights    []Fight  `json:"fights"`
	Players   []Player `json:"players"`

	DamageDone  []StatEntry `json:"damageDone"`
	DamageTaken []StatEntry `json:"damageTaken"`
	HealingDone []StatEntry `json:"healingDone"`
	Dispels     []StatEntry `json:"dispels"`

	// Casts holds merged cast-count tables keyed by cast group id.
	Casts map[string][]StatEntry `json:"casts"`

	Auras         []AuraEntry    `json:"auras"`
	DamageSamples []DamageSample `json:"damageSamples"`
	GearSnapshots []GearSnapshot `json:"gearSnapshots"`
}

// PlayerByID returns the roster entry with the given id.
func (r *ReportData) PlayerByID(id int) (Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// ResistEstimate is the estimated gear resistance rating of one player.
type ResistEstimate struct {
	PlayerID   int    `json:"playerId"`
	PlayerName string `json:"playerName"`
	Rating     int    `json:"rating"`

	// Source is "gear" when the rating came from an item lookup, "fit" otherwise.
	Source string `json:"source"`

	// Samples is the number of damage events the player took from the mechanic.
	Samples int `json:"samples"`

	// MitigatedFraction is the overall share of damage resisted across all samples.
	MitigatedFraction float64 `json:"mitigatedFraction"`
}

// Resist estimate sources.
const (
	ResistSourceGear = "gear"
	ResistSourceFit  = "fit"
)
