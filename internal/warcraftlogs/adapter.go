package warcraftlogs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/mmynk/raidsplit/internal/models"
)

// envelope is the common shape of every query's data field.
type envelope struct {
	ReportData struct {
		Report *rawReport `json:"report"`
	} `json:"reportData"`
}

type rawReport struct {
	Title     string  `json:"title"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Zone      *struct {
		Name string `json:"name"`
	} `json:"zone"`
	Fights     []rawFight `json:"fights"`
	MasterData *struct {
		Actors []rawActor `json:"actors"`
	} `json:"masterData"`
	Table         json.RawMessage `json:"table"`
	PlayerDetails json.RawMessage `json:"playerDetails"`
	Events        *struct {
		Data              json.RawMessage `json:"data"`
		NextPageTimestamp *float64        `json:"nextPageTimestamp"`
	} `json:"events"`
}

type rawFight struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Kill      *bool   `json:"kill"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	GameZone  *struct {
		Name string `json:"name"`
	} `json:"gameZone"`
}

type rawActor struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	SubType string `json:"subType"`
}

type rawEntry struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Total       float64 `json:"total"`
	TotalUptime float64 `json:"totalUptime"`
}

type rawTable struct {
	Entries []rawEntry `json:"entries"`
	Auras   []rawEntry `json:"auras"`
}

type rawEvent struct {
	Type              string  `json:"type"`
	SourceID          int     `json:"sourceID"`
	TargetID          int     `json:"targetID"`
	AbilityGameID     int     `json:"abilityGameID"`
	Fight             int     `json:"fight"`
	Amount            float64 `json:"amount"`
	Absorbed          float64 `json:"absorbed"`
	Resisted          float64 `json:"resisted"`
	UnmitigatedAmount float64 `json:"unmitigatedAmount"`
	Gear              []struct {
		ID               int `json:"id"`
		PermanentEnchant int `json:"permanentEnchant"`
	} `json:"gear"`
}

type rawDetails struct {
	Tanks   []rawActor `json:"tanks"`
	Healers []rawActor `json:"healers"`
	DPS     []rawActor `json:"dps"`
}

func (e *envelope) report(query string) (*rawReport, error) {
	if e.ReportData.Report == nil {
		return nil, fmt.Errorf("%s: %w", query, ErrReportNotFound)
	}
	return e.ReportData.Report, nil
}

// unwrapData strips an optional {"data": ...} wrapper. The API returns table
// and playerDetails scalars wrapped; some proxies return them bare.
func unwrapData(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return raw
	}
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 && wrapped.Data[0] == '{' {
		return wrapped.Data
	}
	return raw
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

func decodeTable(raw json.RawMessage) (rawTable, error) {
	var t rawTable
	if isNull(raw) {
		return t, nil
	}
	if err := json.Unmarshal(unwrapData(raw), &t); err != nil {
		return t, fmt.Errorf("failed to decode table: %w", err)
	}
	return t, nil
}

// normalizeSummary maps the report query onto ReportData. Fight times are kept
// relative to the report start, as the API reports them.
func normalizeSummary(code string, r *rawReport) *models.ReportData {
	rd := &models.ReportData{
		Code:      code,
		Title:     r.Title,
		StartTime: int64(r.StartTime),
		EndTime:   int64(r.EndTime),
		Casts:     map[string][]models.StatEntry{},
	}
	if r.Zone != nil {
		rd.ZoneName = r.Zone.Name
	}

	for _, f := range r.Fights {
		fight := models.Fight{
			ID:        f.ID,
			Name:      f.Name,
			StartTime: int64(f.StartTime),
			EndTime:   int64(f.EndTime),
			Kill:      f.Kill != nil && *f.Kill,
		}
		if f.GameZone != nil {
			fight.ZoneName = f.GameZone.Name
			if fight.ZoneName != "" && !slices.Contains(rd.ZoneNames, fight.ZoneName) {
				rd.ZoneNames = append(rd.ZoneNames, fight.ZoneName)
			}
		}
		rd.Fights = append(rd.Fights, fight)
	}
	if rd.ZoneName != "" && !slices.Contains(rd.ZoneNames, rd.ZoneName) {
		rd.ZoneNames = append(rd.ZoneNames, rd.ZoneName)
	}

	if r.MasterData != nil {
		for _, a := range r.MasterData.Actors {
			if a.Type != "" && a.Type != "Player" {
				continue
			}
			rd.Players = append(rd.Players, models.Player{ID: a.ID, Name: a.Name, Class: a.SubType})
		}
	}
	return rd
}

func statEntries(t rawTable) []models.StatEntry {
	out := make([]models.StatEntry, 0, len(t.Entries))
	for _, e := range t.Entries {
		out = append(out, models.StatEntry{PlayerID: e.ID, PlayerName: e.Name, Total: e.Total})
	}
	return out
}

// auraEntries reads a buffs table filtered to one ability: each aura is a player.
func auraEntries(t rawTable, abilityID int) []models.AuraEntry {
	out := make([]models.AuraEntry, 0, len(t.Auras))
	for _, a := range t.Auras {
		out = append(out, models.AuraEntry{PlayerID: a.ID, AbilityID: abilityID, TotalUptime: a.TotalUptime})
	}
	return out
}

// participantIDs reads playerDetails, nested ({"data":{"playerDetails":{...}}})
// or flat ({"tanks":[...],...}).
func participantIDs(raw json.RawMessage) ([]int, error) {
	if isNull(raw) {
		return nil, nil
	}
	body := unwrapData(raw)

	var nested struct {
		PlayerDetails *rawDetails `json:"playerDetails"`
	}
	if err := json.Unmarshal(body, &nested); err != nil {
		return nil, fmt.Errorf("failed to decode playerDetails: %w", err)
	}
	details := nested.PlayerDetails
	if details == nil {
		details = &rawDetails{}
		if err := json.Unmarshal(body, details); err != nil {
			return nil, fmt.Errorf("failed to decode playerDetails: %w", err)
		}
	}

	var ids []int
	for _, group := range [][]rawActor{details.Tanks, details.Healers, details.DPS} {
		for _, a := range group {
			if !slices.Contains(ids, a.ID) {
				ids = append(ids, a.ID)
			}
		}
	}
	return ids, nil
}

func decodeEvents(raw json.RawMessage) ([]rawEvent, error) {
	if isNull(raw) {
		return nil, nil
	}
	var events []rawEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// damageSamples keeps damage events of one ability. Absorbed damage counts as
// dealt; the pre-mitigation amount falls back to dealt plus resisted.
func damageSamples(events []rawEvent, abilityID int) []models.DamageSample {
	var out []models.DamageSample
	for _, e := range events {
		if e.Type != "damage" || e.AbilityGameID != abilityID {
			continue
		}
		dealt := e.Amount + e.Absorbed
		before := e.UnmitigatedAmount
		if before <= 0 {
			before = dealt + e.Resisted
		}
		out = append(out, models.DamageSample{
			TargetID:               e.TargetID,
			AbilityID:              e.AbilityGameID,
			AmountDealt:            dealt,
			AmountBeforeMitigation: math.Max(before, dealt),
		})
	}
	return out
}

func gearSnapshots(events []rawEvent) []models.GearSnapshot {
	var out []models.GearSnapshot
	for _, e := range events {
		if e.Type != "combatantinfo" || len(e.Gear) == 0 {
			continue
		}
		snap := models.GearSnapshot{PlayerID: e.SourceID, FightID: e.Fight}
		for _, g := range e.Gear {
			if g.ID == 0 {
				continue
			}
			snap.Items = append(snap.Items, models.EquippedItem{ItemID: g.ID, EnchantID: g.PermanentEnchant})
		}
		out = append(out, snap)
	}
	return out
}
