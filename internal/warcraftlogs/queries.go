package warcraftlogs

// GraphQL documents sent to the v2 client API. Table and event payloads come
// back as untyped JSON and are normalized in adapter.go.

const reportQuery = `
query Report($code: String!) {
  reportData {
    report(code: $code) {
      title
      startTime
      endTime
      zone { name }
      fights {
        id
        name
        kill
        startTime
        endTime
        gameZone { name }
      }
      masterData {
        actors(type: "Player") { id name type subType }
      }
    }
  }
}`

const tableQuery = `
query Table($code: String!, $dataType: TableDataType!, $startTime: Float!, $endTime: Float!, $abilityID: Float) {
  reportData {
    report(code: $code) {
      table(dataType: $dataType, startTime: $startTime, endTime: $endTime, abilityID: $abilityID)
    }
  }
}`

const playerDetailsQuery = `
query PlayerDetails($code: String!, $startTime: Float!, $endTime: Float!) {
  reportData {
    report(code: $code) {
      playerDetails(startTime: $startTime, endTime: $endTime)
    }
  }
}`

const eventsQuery = `
query Events($code: String!, $fightIDs: [Int]!, $dataType: EventDataType!, $abilityID: Float, $startTime: Float!, $endTime: Float!) {
  reportData {
    report(code: $code) {
      events(fightIDs: $fightIDs, dataType: $dataType, hostilityType: Friendlies, abilityID: $abilityID, startTime: $startTime, endTime: $endTime, limit: 10000) {
        data
        nextPageTimestamp
      }
    }
  }
}`

// Table data types.
const (
	tableDamageDone  = "DamageDone"
	tableDamageTaken = "DamageTaken"
	tableHealing     = "Healing"
	tableDispels     = "Dispels"
	tableCasts       = "Casts"
	tableBuffs       = "Buffs"
)

// Event data types.
const (
	eventsDamageTaken   = "DamageTaken"
	eventsCombatantInfo = "CombatantInfo"
)
