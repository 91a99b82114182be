// Package deduction proposes penalty suggestions from a report. Rules are
// advisory: nothing here changes a deduction list except Accept.
package deduction

import (
	"fmt"
	"slices"

	"github.com/mmynk/raidsplit/internal/catalog"
	"github.com/mmynk/raidsplit/internal/models"
)

// Context is everything a rule may inspect.
type Context struct {
	RaidType models.RaidType
	Players  []models.Player

	// Resistances holds estimates by player id; players without samples are absent.
	Resistances map[int]models.ResistEstimate

	// Presence maps aura group name to the players with uptime in that group.
	Presence map[string]map[int]bool
}

// Meta describes a rule.
type Meta struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Percentage  float64           `json:"percentage"`
	RaidTypes   []models.RaidType `json:"raidTypes"`
}

// AppliesTo reports whether the rule runs for a raid type.
func (m Meta) AppliesTo(rt models.RaidType) bool {
	return slices.Contains(m.RaidTypes, rt)
}

// Rule evaluates one penalty policy.
type Rule interface {
	Meta() Meta
	Evaluate(ctx Context) []models.SuggestedDeduction
}

// ResistRule flags players of the listed classes whose resist estimate is
// below the threshold.
type ResistRule struct {
	meta      Meta
	classes   []string
	threshold int
}

func (r *ResistRule) Meta() Meta { return r.meta }

func (r *ResistRule) Evaluate(ctx Context) []models.SuggestedDeduction {
	var out []models.SuggestedDeduction
	for _, p := range ctx.Players {
		if !slices.Contains(r.classes, p.Class) {
			continue
		}
		est, ok := ctx.Resistances[p.ID]
		if !ok || est.Rating >= r.threshold {
			continue
		}
		out = append(out, models.SuggestedDeduction{
			RuleID:     r.meta.ID,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Percentage: r.meta.Percentage,
			Reason:     r.meta.Name,
			Details:    fmt.Sprintf("~%d FR", est.Rating),
		})
	}
	return out
}

// MissingAuraRule flags every player without uptime on any spell of an aura group.
type MissingAuraRule struct {
	meta  Meta
	group string
}

func (r *MissingAuraRule) Meta() Meta { return r.meta }

func (r *MissingAuraRule) Evaluate(ctx Context) []models.SuggestedDeduction {
	present := ctx.Presence[r.group]
	var out []models.SuggestedDeduction
	for _, p := range ctx.Players {
		if present[p.ID] {
			continue
		}
		out = append(out, models.SuggestedDeduction{
			RuleID:     r.meta.ID,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Percentage: r.meta.Percentage,
			Reason:     r.meta.Name,
			Details:    fmt.Sprintf("No %s buff detected", r.group),
		})
	}
	return out
}

// BuildRules turns catalog settings into rules. Unknown kinds are an error.
func BuildRules(cfgs []catalog.RuleConfig) ([]Rule, error) {
	rules := make([]Rule, 0, len(cfgs))
	for _, c := range cfgs {
		meta := Meta{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Percentage:  c.Percentage,
			RaidTypes:   slices.Clone(c.RaidTypes),
		}
		switch c.Kind {
		case catalog.KindResist:
			rules = append(rules, &ResistRule{meta: meta, classes: slices.Clone(c.Classes), threshold: c.Threshold})
		case catalog.KindMissingAura:
			rules = append(rules, &MissingAuraRule{meta: meta, group: c.AuraGroup})
		default:
			return nil, fmt.Errorf("unknown rule kind %q for rule %q", c.Kind, c.ID)
		}
	}
	return rules, nil
}
