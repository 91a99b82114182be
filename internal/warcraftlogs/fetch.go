package warcraftlogs

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/raidsplit/internal/bonus"
	"github.com/mmynk/raidsplit/internal/models"
)

const (
	defaultConcurrency = 6
	maxEventPages      = 50
)

// Plan lists the raid-specific data FetchDetails should load.
type Plan struct {
	// CastGroups maps a cast group id to the spells whose casts are merged.
	CastGroups map[string][]int

	// AuraSpells are the buff spell ids whose uptimes are fetched.
	AuraSpells []int

	// EncounterName selects the fights scanned for damage samples and gear.
	EncounterName string

	// MechanicAbilityID is the damaging ability sampled during the encounter.
	MechanicAbilityID int
}

// Fetcher loads reports through a Client.
type Fetcher struct {
	client      *Client
	concurrency int
}

func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client, concurrency: defaultConcurrency}
}

// Planner chooses what FetchReport loads once the report summary is known.
// An error aborts the fetch before any table query is sent.
type Planner func(summary *models.ReportData) (Plan, error)

// FetchReport loads the summary, asks plan what else is needed, then loads
// the details.
func (f *Fetcher) FetchReport(ctx context.Context, code string, plan Planner) (*models.ReportData, error) {
	report, err := f.FetchSummary(ctx, code)
	if err != nil {
		return nil, err
	}
	p, err := plan(report)
	if err != nil {
		return nil, err
	}
	if err := f.FetchDetails(ctx, report, p); err != nil {
		return nil, err
	}
	return report, nil
}

// FetchSummary loads the report metadata, fights and roster.
func (f *Fetcher) FetchSummary(ctx context.Context, code string) (*models.ReportData, error) {
	code, err := ParseReportCode(code)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := f.client.Query(ctx, "report", reportQuery, map[string]any{"code": code}, &env); err != nil {
		return nil, err
	}
	raw, err := env.report("report")
	if err != nil {
		return nil, err
	}
	return normalizeSummary(code, raw), nil
}

// FetchDetails fills the statistic tables of report in place. Queries run
// concurrently; the first failure cancels the rest.
func (f *Fetcher) FetchDetails(ctx context.Context, report *models.ReportData, plan Plan) error {
	duration := float64(report.EndTime - report.StartTime)
	if duration <= 0 {
		duration = maxFightEnd(report.Fights)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	table := func(dataType string, abilityID int, dst *rawTable) {
		g.Go(func() error {
			t, err := f.table(ctx, report.Code, dataType, abilityID, duration)
			if err != nil {
				return err
			}
			*dst = t
			return nil
		})
	}

	var damageDone, damageTaken, healing, dispels rawTable
	table(tableDamageDone, 0, &damageDone)
	table(tableDamageTaken, 0, &damageTaken)
	table(tableHealing, 0, &healing)
	table(tableDispels, 0, &dispels)

	var mu sync.Mutex
	casts := make(map[int][]models.StatEntry)
	for _, spell := range castSpells(plan.CastGroups) {
		g.Go(func() error {
			t, err := f.table(ctx, report.Code, tableCasts, spell, duration)
			if err != nil {
				return err
			}
			mu.Lock()
			casts[spell] = statEntries(t)
			mu.Unlock()
			return nil
		})
	}

	auras := make(map[int][]models.AuraEntry)
	for _, spell := range uniqueSorted(plan.AuraSpells) {
		g.Go(func() error {
			t, err := f.table(ctx, report.Code, tableBuffs, spell, duration)
			if err != nil {
				return err
			}
			mu.Lock()
			auras[spell] = auraEntries(t, spell)
			mu.Unlock()
			return nil
		})
	}

	var participants []int
	g.Go(func() error {
		ids, err := f.playerDetails(ctx, report.Code, duration)
		if err != nil {
			return err
		}
		participants = ids
		return nil
	})

	var samples []models.DamageSample
	var gear []models.GearSnapshot
	fightIDs := encounterFights(report.Fights, plan.EncounterName)
	if len(fightIDs) > 0 && plan.MechanicAbilityID != 0 {
		g.Go(func() error {
			events, err := f.events(ctx, report.Code, fightIDs, eventsDamageTaken, plan.MechanicAbilityID, duration)
			if err != nil {
				return err
			}
			samples = damageSamples(events, plan.MechanicAbilityID)
			return nil
		})
		g.Go(func() error {
			events, err := f.events(ctx, report.Code, fightIDs, eventsCombatantInfo, 0, duration)
			if err != nil {
				return err
			}
			gear = gearSnapshots(events)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	report.DamageDone = statEntries(damageDone)
	report.DamageTaken = statEntries(damageTaken)
	report.HealingDone = statEntries(healing)
	report.Dispels = statEntries(dispels)

	report.Casts = make(map[string][]models.StatEntry, len(plan.CastGroups))
	for group, spells := range plan.CastGroups {
		tables := make([][]models.StatEntry, 0, len(spells))
		for _, spell := range spells {
			tables = append(tables, casts[spell])
		}
		report.Casts[group] = bonus.MergeCasts(tables...)
	}

	report.Auras = nil
	for _, spell := range uniqueSorted(plan.AuraSpells) {
		report.Auras = append(report.Auras, auras[spell]...)
	}

	report.DamageSamples = samples
	report.GearSnapshots = gear

	if len(participants) > 0 {
		before := len(report.Players)
		report.Players = slices.DeleteFunc(report.Players, func(p models.Player) bool {
			return !slices.Contains(participants, p.ID)
		})
		if dropped := before - len(report.Players); dropped > 0 {
			slog.Debug("dropped non-participating actors", "report", report.Code, "count", dropped)
		}
	}

	slog.Info("fetched report details",
		"report", report.Code,
		"players", len(report.Players),
		"castGroups", len(report.Casts),
		"auras", len(report.Auras),
		"damageSamples", len(report.DamageSamples),
		"gearSnapshots", len(report.GearSnapshots),
	)
	return nil
}

func (f *Fetcher) table(ctx context.Context, code, dataType string, abilityID int, endTime float64) (rawTable, error) {
	vars := map[string]any{
		"code":      code,
		"dataType":  dataType,
		"startTime": 0,
		"endTime":   endTime,
	}
	if abilityID != 0 {
		vars["abilityID"] = abilityID
	}

	name := "table:" + dataType
	var env envelope
	if err := f.client.Query(ctx, name, tableQuery, vars, &env); err != nil {
		return rawTable{}, err
	}
	raw, err := env.report(name)
	if err != nil {
		return rawTable{}, err
	}
	t, err := decodeTable(raw.Table)
	if err != nil {
		return rawTable{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func (f *Fetcher) playerDetails(ctx context.Context, code string, endTime float64) ([]int, error) {
	vars := map[string]any{"code": code, "startTime": 0, "endTime": endTime}
	var env envelope
	if err := f.client.Query(ctx, "playerDetails", playerDetailsQuery, vars, &env); err != nil {
		return nil, err
	}
	raw, err := env.report("playerDetails")
	if err != nil {
		return nil, err
	}
	return participantIDs(raw.PlayerDetails)
}

// events pages through an event stream until nextPageTimestamp is empty.
func (f *Fetcher) events(ctx context.Context, code string, fightIDs []int, dataType string, abilityID int, endTime float64) ([]rawEvent, error) {
	name := "events:" + dataType
	vars := map[string]any{
		"code":      code,
		"fightIDs":  fightIDs,
		"dataType":  dataType,
		"startTime": float64(0),
		"endTime":   endTime,
	}
	if abilityID != 0 {
		vars["abilityID"] = abilityID
	}

	var all []rawEvent
	for page := 0; page < maxEventPages; page++ {
		var env envelope
		if err := f.client.Query(ctx, name, eventsQuery, vars, &env); err != nil {
			return nil, err
		}
		raw, err := env.report(name)
		if err != nil {
			return nil, err
		}
		if raw.Events == nil {
			break
		}
		events, err := decodeEvents(raw.Events.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		all = append(all, events...)

		next := raw.Events.NextPageTimestamp
		if next == nil || *next <= vars["startTime"].(float64) {
			return all, nil
		}
		vars["startTime"] = *next
	}
	slog.Warn("event pagination truncated", "report", code, "dataType", dataType, "pages", maxEventPages)
	return all, nil
}

// encounterFights returns the ids of fights whose name contains encounter.
func encounterFights(fights []models.Fight, encounter string) []int {
	if encounter == "" {
		return nil
	}
	want := strings.ToLower(encounter)
	var ids []int
	for _, f := range fights {
		if strings.Contains(strings.ToLower(f.Name), want) {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func castSpells(groups map[string][]int) []int {
	var all []int
	for _, spells := range groups {
		all = append(all, spells...)
	}
	return uniqueSorted(all)
}

func uniqueSorted(ids []int) []int {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func maxFightEnd(fights []models.Fight) float64 {
	var end int64
	for _, f := range fights {
		end = max(end, f.EndTime)
	}
	return float64(end)
}
