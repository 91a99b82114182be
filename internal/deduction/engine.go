package deduction

import (
	"slices"

	"github.com/google/uuid"

	"github.com/mmynk/raidsplit/internal/models"
)

// Engine runs every rule that applies to a report's raid type.
type Engine struct {
	rules []Rule
}

func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: slices.Clone(rules)}
}

// Rules returns the metadata of all rules.
func (e *Engine) Rules() []Meta {
	out := make([]Meta, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, r.Meta())
	}
	return out
}

// Suggest concatenates the suggestions of applicable rules in rule order.
// A player may receive several suggestions.
func (e *Engine) Suggest(ctx Context) []models.SuggestedDeduction {
	var out []models.SuggestedDeduction
	for _, r := range e.rules {
		if !r.Meta().AppliesTo(ctx.RaidType) {
			continue
		}
		out = append(out, r.Evaluate(ctx)...)
	}
	return out
}

// Presence indexes aura uptime per group: group name -> player ids with uptime > 0.
func Presence(auras []models.AuraEntry, groups map[string][]int) map[string]map[int]bool {
	out := make(map[string]map[int]bool, len(groups))
	for name, spells := range groups {
		present := make(map[int]bool)
		for _, a := range auras {
			if a.TotalUptime > 0 && slices.Contains(spells, a.AbilityID) {
				present[a.PlayerID] = true
			}
		}
		out[name] = present
	}
	return out
}

// Accept turns a suggestion into a deduction with a fresh id. A non-nil
// percentage overrides the suggested one.
func Accept(s models.SuggestedDeduction, percentage *float64) models.Deduction {
	d := models.Deduction{
		ID:         uuid.NewString(),
		PlayerID:   s.PlayerID,
		PlayerName: s.PlayerName,
		Percentage: s.Percentage,
		Reason:     s.Reason,
		RuleID:     s.RuleID,
	}
	if percentage != nil {
		d.Percentage = *percentage
	}
	return d
}

// IsApplied reports whether a deduction already covers the suggestion's player and rule.
func IsApplied(deductions []models.Deduction, s models.SuggestedDeduction) bool {
	return slices.ContainsFunc(deductions, func(d models.Deduction) bool {
		return d.PlayerID == s.PlayerID && d.RuleID == s.RuleID
	})
}
