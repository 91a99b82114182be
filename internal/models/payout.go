package models

// Config is the pot configuration of a run.
type Config struct {
	TotalPot            float64 `json:"totalPot" validate:"gte=0"`
	OrganizerCutPercent float64 `json:"organizerCutPercent" validate:"gte=0,lte=100"`
	BonusPoolPercent    float64 `json:"bonusPoolPercent" validate:"gte=0,lte=100"`

	// PlayerCount divides the even-split pool. It may differ from the roster size.
	PlayerCount int `json:"playerCount" validate:"gte=1"`
}

// DefaultConfig returns the settings a session starts with before a report is loaded.
func DefaultConfig() Config {
	return Config{
		TotalPot:            0,
		OrganizerCutPercent: 14,
		BonusPoolPercent:    21,
		PlayerCount:         40,
	}
}

// ConfigForRoster returns DefaultConfig with the player count set to a loaded
// roster's size. An empty roster keeps the default count.
func ConfigForRoster(players int) Config {
	cfg := DefaultConfig()
	if players > 0 {
		cfg.PlayerCount = players
	}
	return cfg
}

// BonusLine is one bonus paid to a player.
type BonusLine struct {
	BonusID string  `json:"bonusId"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
}

// PlayerCut is the final payout of one player.
// TotalCut = BaseCut + sum(Bonuses) - Deduction + RedistributionGain.
type PlayerCut struct {
	PlayerID           int         `json:"playerId"`
	Name               string      `json:"name"`
	BaseCut            float64     `json:"baseCut"`
	Bonuses            []BonusLine `json:"bonuses"`
	Deduction          float64     `json:"deduction"`
	RedistributionGain float64     `json:"redistributionGain"`
	TotalCut           float64     `json:"totalCut"`
}

// BonusTotal sums the player's bonus lines.
func (c PlayerCut) BonusTotal() float64 {
	var sum float64
	for _, b := range c.Bonuses {
		sum += b.Amount
	}
	return sum
}

// PayoutResult is the full distribution of a pot.
type PayoutResult struct {
	GoldToDistribute float64     `json:"goldToDistribute"`
	BonusPool        float64     `json:"bonusPool"`
	EvenSplitPool    float64     `json:"evenSplitPool"`
	BaseCut          float64     `json:"baseCut"`
	TotalDeducted    float64     `json:"totalDeducted"`
	PlayerCuts       []PlayerCut `json:"playerCuts"`
	TotalDistributed float64     `json:"totalDistributed"`
}
