// Package catalog holds the static, per-raid configuration: bonus definitions,
// spell groups, deduction rule settings and resist model constants.
//
// A Set is built once at startup and passed to whatever needs it; nothing in
// this package keeps global state.
package catalog

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/raidsplit/internal/models"
	"github.com/mmynk/raidsplit/internal/resist"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Encounter identifies the boss fight whose mechanic feeds the resist estimator.
type Encounter struct {
	Name      string `yaml:"name" json:"name"`
	AbilityID int    `yaml:"abilityId" json:"abilityId"`
}

// RuleConfig describes one deduction rule. Kind selects the evaluator.
type RuleConfig struct {
	ID          string   `yaml:"id" json:"id"`
	Kind        string   `yaml:"kind" json:"kind"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Percentage  float64  `yaml:"percentage" json:"percentage"`
	Classes     []string `yaml:"classes" json:"classes,omitempty"`
	Threshold   int      `yaml:"threshold" json:"threshold,omitempty"`
	AuraGroup   string   `yaml:"auraGroup" json:"auraGroup,omitempty"`

	// RaidTypes is filled at load time from the raids that declare the rule.
	RaidTypes []models.RaidType `yaml:"-" json:"raidTypes"`
}

// Rule kinds.
const (
	KindResist      = "resist"
	KindMissingAura = "missingAura"
)

// Aura groups with a fixed meaning to the resist estimator.
const (
	AuraFlask            = "flask"
	AuraResist           = "resistAura"
	AuraMarkOfTheWild    = "markOfTheWild"
	AuraResistConsumable = "resistConsumable"
)

type fileFormat struct {
	Items    map[int]int         `yaml:"items"`
	Enchants map[int]int         `yaml:"enchants"`
	Raids    map[string]raidFile `yaml:"raids"`
}

type raidFile struct {
	Name           string                   `yaml:"name"`
	Zones          []string                 `yaml:"zones"`
	Encounter      *Encounter               `yaml:"encounter"`
	CastGroups     map[string][]int         `yaml:"castGroups"`
	AuraGroups     map[string][]int         `yaml:"auraGroups"`
	Resist         *resist.Params           `yaml:"resist"`
	Bonuses        []models.BonusDefinition `yaml:"bonuses"`
	DeductionRules []RuleConfig             `yaml:"deductionRules"`
}

// Catalog is the immutable configuration of one raid type.
type Catalog struct {
	raidType   models.RaidType
	name       string
	zones      []string
	encounter  *Encounter
	castGroups map[string][]int
	auraGroups map[string][]int
	params     resist.Params
	bonuses    []models.BonusDefinition
	byID       map[string]int
	rules      []RuleConfig
}

func (c *Catalog) RaidType() models.RaidType { return c.raidType }
func (c *Catalog) Name() string              { return c.name }
func (c *Catalog) Zones() []string           { return slices.Clone(c.zones) }

// Encounter returns the resist encounter, if the raid has one.
func (c *Catalog) Encounter() (Encounter, bool) {
	if c.encounter == nil {
		return Encounter{}, false
	}
	return *c.encounter, true
}

// CastGroups returns a copy of the cast group spell ids, keyed by group name.
func (c *Catalog) CastGroups() map[string][]int {
	out := make(map[string][]int, len(c.castGroups))
	for k, v := range c.castGroups {
		out[k] = slices.Clone(v)
	}
	return out
}

// AuraGroup returns the spell ids of a named aura group.
func (c *Catalog) AuraGroup(name string) []int {
	return slices.Clone(c.auraGroups[name])
}

// AuraGroupNames returns the aura group names in sorted order.
func (c *Catalog) AuraGroupNames() []string {
	return slices.Sorted(maps.Keys(c.auraGroups))
}

// Bonuses returns the bonus definitions in catalog order.
func (c *Catalog) Bonuses() []models.BonusDefinition {
	return slices.Clone(c.bonuses)
}

// Bonus looks up a bonus definition by id.
func (c *Catalog) Bonus(id string) (models.BonusDefinition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.BonusDefinition{}, false
	}
	return c.bonuses[i], true
}

// DeductionRules returns the rule settings declared for this raid.
func (c *Catalog) DeductionRules() []RuleConfig {
	return slices.Clone(c.rules)
}

// ResistParams returns the resist model constants.
func (c *Catalog) ResistParams() resist.Params { return c.params }

// BuffSpells returns the resist-related spell ids for the estimator.
func (c *Catalog) BuffSpells() resist.BuffSpells {
	return resist.BuffSpells{
		ResistAura:    c.AuraGroup(AuraResist),
		MarkOfTheWild: c.AuraGroup(AuraMarkOfTheWild),
		Consumable:    c.AuraGroup(AuraResistConsumable),
	}
}

// Set maps every supported raid type to its catalog.
type Set struct {
	raids    map[models.RaidType]*Catalog
	order    []models.RaidType
	items    map[int]int
	enchants map[int]int
}

// Default loads the embedded catalog.
func Default() (*Set, error) {
	return Load(defaultYAML)
}

// LoadFile loads a catalog from disk, for overriding the embedded one.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Load(data)
}

// Load parses and validates a YAML catalog.
func Load(data []byte) (*Set, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Raids) == 0 {
		return nil, fmt.Errorf("%w: no raids defined", ErrInvalidCatalog)
	}

	s := &Set{
		raids:    make(map[models.RaidType]*Catalog, len(f.Raids)),
		items:    f.Items,
		enchants: f.Enchants,
	}
	for _, key := range slices.Sorted(maps.Keys(f.Raids)) {
		c, err := newCatalog(models.RaidType(key), f.Raids[key])
		if err != nil {
			return nil, err
		}
		s.raids[c.raidType] = c
		s.order = append(s.order, c.raidType)
	}
	return s, nil
}

func newCatalog(rt models.RaidType, rf raidFile) (*Catalog, error) {
	if len(rf.Zones) == 0 {
		return nil, fmt.Errorf("%w: raid %s has no zones", ErrInvalidCatalog, rt)
	}

	c := &Catalog{
		raidType:   rt,
		name:       rf.Name,
		zones:      rf.Zones,
		encounter:  rf.Encounter,
		castGroups: rf.CastGroups,
		auraGroups: rf.AuraGroups,
		params:     resist.DefaultParams(),
		bonuses:    rf.Bonuses,
		byID:       make(map[string]int, len(rf.Bonuses)),
	}
	if rf.Resist != nil {
		c.params = *rf.Resist
	}
	if c.name == "" {
		c.name = string(rt)
	}

	for i, b := range rf.Bonuses {
		if b.ID == "" {
			return nil, fmt.Errorf("%w: raid %s bonus %d has no id", ErrInvalidCatalog, rt, i)
		}
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("%w: raid %s has duplicate bonus %q", ErrInvalidCatalog, rt, b.ID)
		}
		if b.DetectionMethod == models.DetectCast {
			if _, ok := rf.CastGroups[b.CastGroup]; !ok {
				return nil, fmt.Errorf("%w: bonus %q references unknown cast group %q", ErrInvalidCatalog, b.ID, b.CastGroup)
			}
		}
		c.byID[b.ID] = i
	}

	seen := make(map[string]bool, len(rf.DeductionRules))
	for _, r := range rf.DeductionRules {
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: raid %s has duplicate rule %q", ErrInvalidCatalog, rt, r.ID)
		}
		seen[r.ID] = true
		switch r.Kind {
		case KindResist:
		case KindMissingAura:
			if _, ok := rf.AuraGroups[r.AuraGroup]; !ok {
				return nil, fmt.Errorf("%w: rule %q references unknown aura group %q", ErrInvalidCatalog, r.ID, r.AuraGroup)
			}
		default:
			return nil, fmt.Errorf("%w: rule %q has unknown kind %q", ErrInvalidCatalog, r.ID, r.Kind)
		}
		r.RaidTypes = []models.RaidType{rt}
		c.rules = append(c.rules, r)
	}
	return c, nil
}

// Get returns the catalog of a raid type.
func (s *Set) Get(rt models.RaidType) (*Catalog, bool) {
	c, ok := s.raids[rt]
	return c, ok
}

// RaidTypes returns the supported raid types in a stable order.
func (s *Set) RaidTypes() []models.RaidType {
	return slices.Clone(s.order)
}

// SeedItems returns the item resist values shipped with the catalog.
func (s *Set) SeedItems() map[int]int { return maps.Clone(s.items) }

// SeedEnchants returns the enchant resist values shipped with the catalog.
func (s *Set) SeedEnchants() map[int]int { return maps.Clone(s.enchants) }

// SeedTable returns the seed values as a resist lookup table.
func (s *Set) SeedTable() *resist.Table {
	return resist.NewTable(s.items, s.enchants)
}

// DeductionRules returns every rule across raids. A rule declared by several
// raids appears once, scoped to all of them.
func (s *Set) DeductionRules() []RuleConfig {
	var out []RuleConfig
	index := make(map[string]int)
	for _, rt := range s.order {
		for _, r := range s.raids[rt].rules {
			if i, ok := index[r.ID]; ok {
				out[i].RaidTypes = append(out[i].RaidTypes, rt)
				continue
			}
			r.RaidTypes = slices.Clone(r.RaidTypes)
			index[r.ID] = len(out)
			out = append(out, r)
		}
	}
	return out
}

// DetectRaidType matches the report zone, then each fight zone, against the
// supported raids. Matching is a case-insensitive substring test.
func (s *Set) DetectRaidType(reportZone string, fightZones []string) (models.RaidType, error) {
	candidates := make([]string, 0, len(fightZones)+1)
	if reportZone != "" {
		candidates = append(candidates, reportZone)
	}
	for _, z := range fightZones {
		if z != "" && !slices.Contains(candidates, z) {
			candidates = append(candidates, z)
		}
	}

	for _, zone := range candidates {
		if rt, ok := s.match(zone); ok {
			return rt, nil
		}
	}

	supported := make([]string, 0, len(s.order))
	for _, rt := range s.order {
		supported = append(supported, s.raids[rt].name)
	}
	return "", &ZoneError{Zones: candidates, Supported: supported}
}

func (s *Set) match(zone string) (models.RaidType, bool) {
	z := strings.ToLower(zone)
	for _, rt := range s.order {
		for _, known := range s.raids[rt].zones {
			if strings.Contains(z, strings.ToLower(known)) {
				return rt, true
			}
		}
	}
	return "", false
}
