package resist

import (
	"math"
	"sort"

	"github.com/mmynk/raidsplit/internal/models"
)

const buckets = 5

// Histogram counts damage ticks by resisted fraction in quarters (0%, 25%, 50%, 75%, 100%).
type Histogram [buckets]int

// Total returns the number of counted ticks.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Bucket maps a resisted fraction to its quarter, clamped to [0, 4].
func Bucket(fraction float64) int {
	b := int(math.Round(fraction * 4))
	return max(0, min(buckets-1, b))
}

// Add counts one tick. Ticks without pre-mitigation damage are ignored.
func (h *Histogram) Add(s models.DamageSample) bool {
	if s.AmountBeforeMitigation <= 0 {
		return false
	}
	resisted := (s.AmountBeforeMitigation - s.AmountDealt) / s.AmountBeforeMitigation
	h[Bucket(resisted)]++
	return true
}

// Estimator turns damage samples and gear into resistance ratings.
type Estimator struct {
	params Params
	table  *Table
	spells BuffSpells

	// means[r] is the mean resisted fraction predicted for rating r, up to the
	// rating where the model saturates. It never decreases.
	means []float64
}

// NewEstimator builds an Estimator and precomputes the model curve up to saturation.
func NewEstimator(params Params, table *Table, spells BuffSpells) *Estimator {
	params = params.withDefaults()
	if table == nil {
		table = NewTable(nil, nil)
	}
	sat := params.Saturation()
	e := &Estimator{
		params: params,
		table:  table,
		spells: spells,
		means:  make([]float64, sat+1),
	}
	for r := range e.means {
		e.means[r] = Mean(Expected(params, r))
	}
	for r := 1; r < len(e.means); r++ {
		e.means[r] = math.Max(e.means[r], e.means[r-1])
	}
	return e
}

// Mean returns the average resisted fraction of a bucket distribution.
func Mean(dist [buckets]float64) float64 {
	m := 0.0
	for k, v := range dist {
		m += float64(k) / 4 * v
	}
	return m
}

// Expected returns the bucket distribution the model predicts for a rating.
func Expected(p Params, rating int) [buckets]float64 {
	avg := math.Min(float64(rating)/p.RatingScale, p.CapFraction)

	var dist [buckets]float64
	sum := 0.0
	for k := range dist {
		v := p.Peak - p.Slope*math.Abs(float64(k)/4-avg)
		if v < 0 {
			v = 0
		}
		if k == buckets-1 && v > p.FullResistCap {
			v = p.FullResistCap
		}
		dist[k] = v
		sum += v
	}
	if sum > 0 {
		for k := range dist {
			dist[k] /= sum
		}
	}
	return dist
}

// Fit returns the lowest rating whose predicted mean resist reaches the mean
// observed in the histogram, or the saturation rating when none does. Moving a
// tick to a higher bucket never lowers the result.
func (e *Estimator) Fit(h Histogram) int {
	total := h.Total()
	if total == 0 {
		return 0
	}
	observed := 0.0
	for k, c := range h {
		observed += float64(k) / 4 * float64(c)
	}
	observed /= float64(total)

	// Rounding in the model curve must not push an exact match one rating up.
	const tolerance = 1e-9
	r := sort.Search(len(e.means), func(r int) bool {
		return e.means[r] >= observed-tolerance
	})
	return min(r, len(e.means)-1)
}

// Input is the raw material for one report's estimates.
type Input struct {
	Players []models.Player

	// AbilityID restricts samples to one mechanic; zero keeps all samples.
	AbilityID int

	Samples []models.DamageSample
	Gear    []models.GearSnapshot
	Auras   []models.AuraEntry
}

// Estimate returns a rating for every roster player with at least one usable
// sample, in roster order. Gear totals take precedence; otherwise the fitted
// rating has raid-wide buffs removed and is floored at zero.
func (e *Estimator) Estimate(in Input) []models.ResistEstimate {
	hists := make(map[int]*Histogram)
	dealt := make(map[int]float64)
	before := make(map[int]float64)
	for _, s := range in.Samples {
		if in.AbilityID != 0 && s.AbilityID != in.AbilityID {
			continue
		}
		h, ok := hists[s.TargetID]
		if !ok {
			h = &Histogram{}
		}
		if !h.Add(s) {
			continue
		}
		hists[s.TargetID] = h
		dealt[s.TargetID] += s.AmountDealt
		before[s.TargetID] += s.AmountBeforeMitigation
	}

	states := BuffStates(e.spells, in.Auras, in.Gear, e.table)

	estimates := make([]models.ResistEstimate, 0, len(hists))
	for _, p := range in.Players {
		h, ok := hists[p.ID]
		if !ok {
			continue
		}
		est := models.ResistEstimate{
			PlayerID:          p.ID,
			PlayerName:        p.Name,
			Samples:           h.Total(),
			MitigatedFraction: 1 - dealt[p.ID]/before[p.ID],
		}

		state := states[p.ID]
		if state != nil && state.HasGear {
			est.Rating = state.GearResist
			est.Source = models.ResistSourceGear
		} else {
			rating := e.Fit(*h)
			if state != nil {
				rating -= state.raidBuffBonus(e.params)
			}
			est.Rating = max(0, rating)
			est.Source = models.ResistSourceFit
		}
		estimates = append(estimates, est)
	}
	return estimates
}

// ByPlayer indexes estimates by player id.
func ByPlayer(estimates []models.ResistEstimate) map[int]models.ResistEstimate {
	m := make(map[int]models.ResistEstimate, len(estimates))
	for _, e := range estimates {
		m[e.PlayerID] = e
	}
	return m
}
