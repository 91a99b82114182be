package models

// Deduction is a user-accepted percentage penalty on one player's total cut.
type Deduction struct {
	ID         string  `json:"id"`
	PlayerID   int     `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
	Reason     string  `json:"reason"`

	// RuleID is set when the deduction was accepted from a suggestion.
	RuleID string `json:"ruleId,omitempty"`
}

// SuggestedDeduction is an advisory penalty proposed by a deduction rule.
type SuggestedDeduction struct {
	RuleID     string  `json:"ruleId"`
	PlayerID   int     `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
	Reason     string  `json:"reason"`
	Details    string  `json:"details,omitempty"`
}
