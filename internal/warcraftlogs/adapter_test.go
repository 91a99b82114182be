package warcraftlogs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/raidsplit/internal/models"
)

func TestDecodeTable(t *testing.T) {
	wrapped := json.RawMessage(`{"data":{"entries":[{"id":1,"name":"Tank","total":500}]}}`)
	bare := json.RawMessage(`{"entries":[{"id":1,"name":"Tank","total":500}]}`)

	for _, raw := range []json.RawMessage{wrapped, bare} {
		tbl, err := decodeTable(raw)
		require.NoError(t, err)
		assert.Equal(t, []models.StatEntry{{PlayerID: 1, PlayerName: "Tank", Total: 500}}, statEntries(tbl))
	}

	tbl, err := decodeTable(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, statEntries(tbl))
}

func TestAuraEntries(t *testing.T) {
	tbl, err := decodeTable(json.RawMessage(`{"data":{"auras":[{"id":7,"name":"Healer","totalUptime":12000},{"id":8,"name":"Mage","totalUptime":0}]}}`))
	require.NoError(t, err)

	got := auraEntries(tbl, 17627)
	assert.Equal(t, []models.AuraEntry{
		{PlayerID: 7, AbilityID: 17627, TotalUptime: 12000},
		{PlayerID: 8, AbilityID: 17627},
	}, got)
}

func TestParticipantIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{
			name: "nested",
			raw:  `{"data":{"playerDetails":{"tanks":[{"id":1}],"healers":[{"id":2}],"dps":[{"id":3},{"id":1}]}}}`,
			want: []int{1, 2, 3},
		},
		{
			name: "flat",
			raw:  `{"tanks":[{"id":4}],"dps":[{"id":5}]}`,
			want: []int{4, 5},
		},
		{name: "null", raw: `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := participantIDs(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDamageSamples(t *testing.T) {
	events, err := decodeEvents(json.RawMessage(`[
		{"type":"damage","targetID":1,"abilityGameID":28531,"amount":600,"unmitigatedAmount":1000},
		{"type":"damage","targetID":2,"abilityGameID":28531,"amount":300,"absorbed":100,"resisted":600},
		{"type":"damage","targetID":3,"abilityGameID":1,"amount":50},
		{"type":"heal","targetID":1,"abilityGameID":28531,"amount":600}
	]`))
	require.NoError(t, err)

	got := damageSamples(events, 28531)
	assert.Equal(t, []models.DamageSample{
		{TargetID: 1, AbilityID: 28531, AmountDealt: 600, AmountBeforeMitigation: 1000},
		{TargetID: 2, AbilityID: 28531, AmountDealt: 400, AmountBeforeMitigation: 1000},
	}, got)
}

func TestGearSnapshots(t *testing.T) {
	events, err := decodeEvents(json.RawMessage(`[
		{"type":"combatantinfo","sourceID":4,"fight":9,"gear":[{"id":22659,"permanentEnchant":2683},{"id":0},{"id":19379}]},
		{"type":"combatantinfo","sourceID":5,"fight":9,"gear":[]}
	]`))
	require.NoError(t, err)

	got := gearSnapshots(events)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].PlayerID)
	assert.Equal(t, 9, got[0].FightID)
	assert.Equal(t, []models.EquippedItem{{ItemID: 22659, EnchantID: 2683}, {ItemID: 19379}}, got[0].Items)
}

func TestNormalizeSummary(t *testing.T) {
	kill := true
	r := &rawReport{
		Title:     "Naxx clear",
		StartTime: 1000,
		EndTime:   5000,
		Fights: []rawFight{
			{ID: 1, Name: "Patchwerk", Kill: &kill, EndTime: 100, GameZone: &struct {
				Name string `json:"name"`
			}{Name: "Naxxramas"}},
			{ID: 2, Name: "Trash", EndTime: 200},
		},
	}
	r.Zone = &struct {
		Name string `json:"name"`
	}{Name: "Naxxramas"}
	r.MasterData = &struct {
		Actors []rawActor `json:"actors"`
	}{Actors: []rawActor{
		{ID: 1, Name: "Tank", Type: "Player", SubType: "Warrior"},
		{ID: 9, Name: "Boss", Type: "NPC"},
	}}

	rd := normalizeSummary("abc", r)
	assert.Equal(t, "abc", rd.Code)
	assert.Equal(t, int64(1000), rd.StartTime)
	assert.Equal(t, []string{"Naxxramas"}, rd.ZoneNames)
	require.Len(t, rd.Fights, 2)
	assert.True(t, rd.Fights[0].Kill)
	assert.False(t, rd.Fights[1].Kill)
	assert.Equal(t, []models.Player{{ID: 1, Name: "Tank", Class: "Warrior"}}, rd.Players)
}
