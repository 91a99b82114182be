// Package share encodes a payout session into a compact string that can be
// passed around in a URL, and merges a decoded session back over a fresh one.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/raidsplit/internal/models"
)

var ErrMalformed = errors.New("malformed share data")

// Payload is the shared session. Keys are kept short to keep URLs small.
type Payload struct {
	ReportCode  string       `json:"r"`
	Config      Config       `json:"c"`
	Assignments []Assignment `json:"a"`
	Deductions  []Deduction  `json:"d,omitempty"`
}

type Config struct {
	TotalPot            float64 `json:"t"`
	OrganizerCutPercent float64 `json:"o"`
	BonusPoolPercent    float64 `json:"b"`
	PlayerCount         int     `json:"p"`
}

// Assignment is one bonus recipient. A nil PlayerID records a bonus the
// user cleared by hand.
type Assignment struct {
	BonusID    string `json:"b"`
	PlayerID   *int   `json:"p"`
	PlayerName string `json:"n,omitempty"`
}

type Deduction struct {
	PlayerID   int     `json:"p"`
	PlayerName string  `json:"n"`
	Percentage float64 `json:"pct"`
	Reason     string  `json:"r"`
	RuleID     string  `json:"rule,omitempty"`
}

// New captures a session. Assigned bonuses are kept, as are bonuses the user
// cleared; untouched unassigned bonuses are left out.
func New(reportCode string, cfg models.Config, assignments []models.BonusAssignment, deductions []models.Deduction) Payload {
	p := Payload{
		ReportCode: reportCode,
		Config: Config{
			TotalPot:            cfg.TotalPot,
			OrganizerCutPercent: cfg.OrganizerCutPercent,
			BonusPoolPercent:    cfg.BonusPoolPercent,
			PlayerCount:         cfg.PlayerCount,
		},
		Assignments: []Assignment{},
	}
	for _, a := range assignments {
		if !a.Assigned() && a.AutoDetected {
			continue
		}
		sa := Assignment{BonusID: a.BonusID, PlayerName: a.PlayerName}
		if a.PlayerID != nil {
			sa.PlayerID = models.IntPtr(*a.PlayerID)
		}
		p.Assignments = append(p.Assignments, sa)
	}
	for _, d := range deductions {
		p.Deductions = append(p.Deductions, Deduction{
			PlayerID:   d.PlayerID,
			PlayerName: d.PlayerName,
			Percentage: d.Percentage,
			Reason:     d.Reason,
			RuleID:     d.RuleID,
		})
	}
	return p
}

// Encode renders the payload as base64 of its JSON form.
func Encode(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal share payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Decode parses an encoded payload. Any failure yields ErrMalformed and a zero
// payload; callers should carry on without share data.
func Decode(s string) (Payload, error) {
	// Query strings turn '+' into ' '.
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "+")
	if s == "" {
		return Payload{}, fmt.Errorf("%w: empty", ErrMalformed)
	}

	var raw []byte
	var err error
	for _, enc := range encodings {
		raw, err = enc.DecodeString(s)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if p.ReportCode == "" {
		return Payload{}, fmt.Errorf("%w: missing report code", ErrMalformed)
	}
	if err := p.Config.check(); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for _, a := range p.Assignments {
		if a.BonusID == "" {
			return Payload{}, fmt.Errorf("%w: assignment without bonus id", ErrMalformed)
		}
	}
	for _, d := range p.Deductions {
		if d.Percentage < 0 || d.Percentage > 100 {
			return Payload{}, fmt.Errorf("%w: deduction for %q is %v%%", ErrMalformed, d.PlayerName, d.Percentage)
		}
	}
	return p, nil
}

// check enforces the bounds a payout config must satisfy.
func (c Config) check() error {
	switch {
	case c.TotalPot < 0:
		return fmt.Errorf("negative pot %v", c.TotalPot)
	case c.PlayerCount < 1:
		return fmt.Errorf("player count %d", c.PlayerCount)
	case c.OrganizerCutPercent < 0 || c.OrganizerCutPercent > 100:
		return fmt.Errorf("organizer cut %v%%", c.OrganizerCutPercent)
	case c.BonusPoolPercent < 0 || c.BonusPoolPercent > 100:
		return fmt.Errorf("bonus pool %v%%", c.BonusPoolPercent)
	case c.OrganizerCutPercent+c.BonusPoolPercent > 100:
		return fmt.Errorf("cuts add up to %v%%", c.OrganizerCutPercent+c.BonusPoolPercent)
	}
	return nil
}

// ModelConfig returns the shared payout configuration.
func (p Payload) ModelConfig() models.Config {
	return models.Config{
		TotalPot:            p.Config.TotalPot,
		OrganizerCutPercent: p.Config.OrganizerCutPercent,
		BonusPoolPercent:    p.Config.BonusPoolPercent,
		PlayerCount:         p.Config.PlayerCount,
	}
}

// Apply overlays shared assignments on detected ones by bonus id. Overridden
// entries are marked as manual; bonuses missing from the payload keep their
// detected value, and shared bonuses unknown to detected are dropped.
func (p Payload) Apply(detected []models.BonusAssignment) []models.BonusAssignment {
	shared := make(map[string]Assignment, len(p.Assignments))
	for _, a := range p.Assignments {
		shared[a.BonusID] = a
	}

	out := make([]models.BonusAssignment, len(detected))
	for i, d := range detected {
		s, ok := shared[d.BonusID]
		if !ok {
			out[i] = d
			continue
		}
		out[i] = models.BonusAssignment{
			BonusID:      d.BonusID,
			PlayerName:   s.PlayerName,
			AutoDetected: false,
		}
		if s.PlayerID != nil {
			out[i].PlayerID = models.IntPtr(*s.PlayerID)
		} else {
			out[i].PlayerName = ""
		}
	}
	return out
}

// ModelDeductions returns the shared deductions with fresh ids.
func (p Payload) ModelDeductions() []models.Deduction {
	out := make([]models.Deduction, 0, len(p.Deductions))
	for _, d := range p.Deductions {
		out = append(out, models.Deduction{
			ID:         uuid.NewString(),
			PlayerID:   d.PlayerID,
			PlayerName: d.PlayerName,
			Percentage: d.Percentage,
			Reason:     d.Reason,
			RuleID:     d.RuleID,
		})
	}
	return out
}
