package models

// BonusCategory groups bonuses for display.
type BonusCategory string

const (
	CategoryTank    BonusCategory = "tank"
	CategoryDPS     BonusCategory = "dps"
	CategoryHealer  BonusCategory = "healer"
	CategoryDebuff  BonusCategory = "debuff"
	CategoryUtility BonusCategory = "utility"
	CategoryManual  BonusCategory = "manual"
)

// DetectionMethod selects which statistics table a bonus is ranked on.
type DetectionMethod string

const (
	DetectDamageTaken DetectionMethod = "damageTaken"
	DetectDamageDone  DetectionMethod = "damageDone"
	DetectHealingDone DetectionMethod = "healingDone"
	DetectDispel      DetectionMethod = "dispel"
	DetectCast        DetectionMethod = "cast"
	DetectManual      DetectionMethod = "manual"
)

// ExternalPlayerID marks an assignment to a name typed by hand that is not in the roster.
const ExternalPlayerID = -1

// BonusDefinition is one immutable catalog entry.
type BonusDefinition struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	Percentage      float64         `json:"percentage" yaml:"percentage"`
	Category        BonusCategory   `json:"category" yaml:"category"`
	DetectionMethod DetectionMethod `json:"detectionMethod" yaml:"detection"`

	// Rank is 1-indexed; zero means "not ranked" and is treated as 1 for cast bonuses.
	Rank int `json:"rank,omitempty" yaml:"rank"`

	// CastGroup names the merged cast table used by cast bonuses.
	CastGroup string `json:"castGroup,omitempty" yaml:"castGroup"`
}

// BonusAssignment maps one bonus to the player who earns it.
// A nil PlayerID means the bonus is unassigned.
type BonusAssignment struct {
	BonusID      string `json:"bonusId" validate:"required"`
	PlayerID     *int   `json:"playerId"`
	PlayerName   string `json:"playerName,omitempty"`
	AutoDetected bool   `json:"autoDetected"`
}

// Assigned reports whether the bonus has a recipient.
func (a BonusAssignment) Assigned() bool {
	return a.PlayerID != nil
}

// IntPtr returns a pointer to id, for building assignments.
func IntPtr(id int) *int {
	return &id
}
