// Package models defines the core domain models for raidsplit.
//
// # Inputs
//
// A report fetched from the combat-log provider is normalized into ReportData:
//   - Player: one roster entry, identified by the report's actor id
//   - StatEntry: one player's aggregate in a damage/healing/dispel/cast table
//   - AuraEntry: one player's uptime of a tracked buff
//   - DamageSample / GearSnapshot: event-level data used for resistance estimates
//
// Player ids are only unique within a report; they are not stable across reports.
//
// # Session state
//
// Everything an operator edits is plain data that can be shared:
//   - Config: pot size and cut percentages
//   - BonusAssignment: catalog bonus -> player
//   - Deduction: a percentage penalty on one player
//
// # Outputs
//
// PayoutResult and PlayerCut are recomputed from scratch whenever any input changes.
// SuggestedDeduction values are advisory and never stored.
package models
