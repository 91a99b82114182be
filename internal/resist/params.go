// Package resist estimates a player's hidden frost resistance rating, either
// exactly from equipped gear or by fitting the distribution of partial resists
// on a raid mechanic's damage ticks.
package resist

import "math"

// Params are the tuning constants of the partial-resist model.
type Params struct {
	// RatingScale is the rating that would yield 100% average mitigation before the cap.
	RatingScale float64 `yaml:"ratingScale"`

	// CapFraction caps the average mitigation fraction.
	CapFraction float64 `yaml:"capFraction"`

	// MaxRating bounds the rating search.
	MaxRating int `yaml:"maxRating"`

	// Peak and Slope shape the triangular bucket model:
	// p(bucket) = max(0, Peak - Slope × |bucket - average|).
	Peak  float64 `yaml:"peak"`
	Slope float64 `yaml:"slope"`

	// FullResistCap caps the probability of a 100% resist.
	FullResistCap float64 `yaml:"fullResistCap"`

	// AuraBonus and MarkBonus are the raid-wide buff contributions removed from fitted ratings.
	AuraBonus int `yaml:"auraBonus"`
	MarkBonus int `yaml:"markBonus"`
}

// DefaultParams returns the constants tuned for level 60 bosses.
func DefaultParams() Params {
	return Params{
		RatingScale:   315,
		CapFraction:   0.75,
		MaxRating:     315,
		Peak:          0.5,
		Slope:         2.5,
		FullResistCap: 0.02,
		AuraBonus:     60,
		MarkBonus:     20,
	}
}

// withDefaults fills zero fields from DefaultParams so partial YAML overrides work.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.RatingScale <= 0 {
		p.RatingScale = d.RatingScale
	}
	if p.CapFraction <= 0 {
		p.CapFraction = d.CapFraction
	}
	if p.MaxRating <= 0 {
		p.MaxRating = d.MaxRating
	}
	if p.Peak <= 0 {
		p.Peak = d.Peak
	}
	if p.Slope <= 0 {
		p.Slope = d.Slope
	}
	if p.FullResistCap <= 0 {
		p.FullResistCap = d.FullResistCap
	}
	return p
}

// Saturation is the lowest rating at which the predicted average resist reaches
// the cap. Higher ratings predict the same distribution.
func (p Params) Saturation() int {
	sat := int(math.Ceil(p.CapFraction * p.RatingScale))
	return max(0, min(p.MaxRating, sat))
}
