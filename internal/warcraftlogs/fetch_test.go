package warcraftlogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/raidsplit/internal/models"
)

// fakeAPI answers the queries FetchSummary and FetchDetails send.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vars := req.Variables

	var report string
	switch {
	case strings.Contains(req.Query, "query Report("):
		report = `{
			"title": "Naxx clear", "startTime": 1000, "endTime": 901000,
			"zone": {"name": "Naxxramas"},
			"fights": [
				{"id": 1, "name": "Patchwerk", "kill": true, "startTime": 0, "endTime": 100000, "gameZone": {"name": "Naxxramas"}},
				{"id": 2, "name": "Sapphiron", "kill": true, "startTime": 200000, "endTime": 300000, "gameZone": {"name": "Naxxramas"}}
			],
			"masterData": {"actors": [
				{"id": 1, "name": "Tank", "type": "Player", "subType": "Warrior"},
				{"id": 2, "name": "Healer", "type": "Player", "subType": "Priest"},
				{"id": 3, "name": "Pet", "type": "Player", "subType": "Unknown"}
			]}
		}`
	case strings.Contains(req.Query, "query Table("):
		report = fmt.Sprintf(`{"table": %s}`, f.table(vars))
	case strings.Contains(req.Query, "query PlayerDetails("):
		report = `{"playerDetails": {"data": {"playerDetails": {"tanks": [{"id": 1}], "healers": [{"id": 2}], "dps": []}}}}`
	case strings.Contains(req.Query, "query Events("):
		report = fmt.Sprintf(`{"events": %s}`, f.events(vars))
	default:
		http.Error(w, "unknown query", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	name, _, _ := strings.Cut(strings.Fields(req.Query)[1], "(")
	f.calls[name]++
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"data":{"reportData":{"report":%s}}}`, report)
}

func (f *fakeAPI) table(vars map[string]any) string {
	ability, _ := vars["abilityID"].(float64)
	switch vars["dataType"] {
	case tableDamageTaken:
		return `{"data":{"entries":[{"id":1,"name":"Tank","total":9000},{"id":2,"name":"Healer","total":100}]}}`
	case tableHealing:
		return `{"data":{"entries":[{"id":2,"name":"Healer","total":50000}]}}`
	case tableCasts:
		switch int(ability) {
		case 11597:
			return `{"data":{"entries":[{"id":1,"name":"Tank","total":10}]}}`
		case 7386:
			return `{"data":{"entries":[{"id":1,"name":"Tank","total":5},{"id":2,"name":"Healer","total":1}]}}`
		}
	case tableBuffs:
		if int(ability) == 17627 {
			return `{"data":{"auras":[{"id":1,"name":"Tank","totalUptime":5000}]}}`
		}
	}
	return `{"data":{"entries":[]}}`
}

func (f *fakeAPI) events(vars map[string]any) string {
	start, _ := vars["startTime"].(float64)
	switch vars["dataType"] {
	case eventsDamageTaken:
		if start == 0 {
			return `{"data":[{"type":"damage","targetID":1,"abilityGameID":28531,"amount":500,"unmitigatedAmount":1000}],"nextPageTimestamp":250000}`
		}
		return `{"data":[{"type":"damage","targetID":2,"abilityGameID":28531,"amount":1000,"unmitigatedAmount":1000}],"nextPageTimestamp":null}`
	case eventsCombatantInfo:
		return `{"data":[{"type":"combatantinfo","sourceID":1,"fight":2,"gear":[{"id":22659}]}]}`
	}
	return `{"data":[]}`
}

func TestFetchSummaryAndDetails(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	f := NewFetcher(NewClient(srv.URL, staticToken("tok")))
	ctx := context.Background()

	report, err := f.FetchSummary(ctx, "https://classic.warcraftlogs.com/reports/abcDEF123")
	require.NoError(t, err)
	assert.Equal(t, "abcDEF123", report.Code)
	assert.Equal(t, "Naxxramas", report.ZoneName)
	assert.Len(t, report.Players, 3)

	err = f.FetchDetails(ctx, report, Plan{
		CastGroups:        map[string][]int{"sunder": {11597, 7386}},
		AuraSpells:        []int{17627, 17627},
		EncounterName:     "Sapphiron",
		MechanicAbilityID: 28531,
	})
	require.NoError(t, err)

	// the pet is not a participant
	assert.Equal(t, []models.Player{
		{ID: 1, Name: "Tank", Class: "Warrior"},
		{ID: 2, Name: "Healer", Class: "Priest"},
	}, report.Players)

	assert.Len(t, report.DamageTaken, 2)
	assert.Equal(t, []models.StatEntry{{PlayerID: 2, PlayerName: "Healer", Total: 50000}}, report.HealingDone)
	assert.Empty(t, report.DamageDone)

	require.Len(t, report.Casts["sunder"], 2)
	assert.Equal(t, 1, report.Casts["sunder"][0].PlayerID)
	assert.Equal(t, 15.0, report.Casts["sunder"][0].Total)

	assert.Equal(t, []models.AuraEntry{{PlayerID: 1, AbilityID: 17627, TotalUptime: 5000}}, report.Auras)

	require.Len(t, report.DamageSamples, 2)
	assert.Equal(t, 1000.0, report.DamageSamples[0].AmountBeforeMitigation)
	require.Len(t, report.GearSnapshots, 1)
	assert.Equal(t, 22659, report.GearSnapshots[0].Items[0].ItemID)

	assert.Equal(t, 1, api.calls["PlayerDetails"])
	assert.Equal(t, 3, api.calls["Events"])
	assert.Equal(t, 7, api.calls["Table"])
}

func TestFetchDetailsWithoutEncounter(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	f := NewFetcher(NewClient(srv.URL, staticToken("tok")))
	report, err := f.FetchSummary(context.Background(), "abcDEF123")
	require.NoError(t, err)

	require.NoError(t, f.FetchDetails(context.Background(), report, Plan{EncounterName: "Kel'Thuzad", MechanicAbilityID: 28531}))
	assert.Empty(t, report.DamageSamples)
	assert.Empty(t, report.GearSnapshots)
	assert.Zero(t, api.calls["Events"])
}

func TestFetchSummaryInvalidCode(t *testing.T) {
	f := NewFetcher(NewClient("http://127.0.0.1:0", staticToken("tok")))
	_, err := f.FetchSummary(context.Background(), "???")
	assert.ErrorIs(t, err, ErrInvalidReportCode)
}

func TestEncounterFights(t *testing.T) {
	fights := []models.Fight{{ID: 1, Name: "Patchwerk"}, {ID: 4, Name: "sapphiron"}, {ID: 7, Name: "Sapphiron"}}
	assert.Equal(t, []int{4, 7}, encounterFights(fights, "Sapphiron"))
	assert.Nil(t, encounterFights(fights, ""))
}

func TestFetchReportPlannerError(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	stop := errors.New("unsupported")
	f := NewFetcher(NewClient(srv.URL, staticToken("tok")))
	_, err := f.FetchReport(context.Background(), "abcDEF123", func(*models.ReportData) (Plan, error) {
		return Plan{}, stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, api.calls["Report"])
	assert.Zero(t, api.calls["Table"])
}
