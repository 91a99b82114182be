package service

import (
	"github.com/mmynk/raidsplit/internal/deduction"
	"github.com/mmynk/raidsplit/internal/models"
)

type LoadReportRequest struct {
	// ReportCode is a bare code or a report URL.
	ReportCode string `json:"reportCode" validate:"required"`

	// Share is an optional encoded session to restore.
	Share string `json:"share,omitempty"`
}

func (r *LoadReportRequest) GetReportCode() string { return r.ReportCode }

type LoadReportResponse struct {
	ReportCode string                   `json:"reportCode"`
	Title      string                   `json:"title"`
	ZoneName   string                   `json:"zoneName"`
	RaidType   models.RaidType          `json:"raidType"`
	RaidName   string                   `json:"raidName"`
	Players    []models.Player          `json:"players"`
	Bonuses    []models.BonusDefinition `json:"bonuses"`

	Config      models.Config            `json:"config"`
	Assignments []models.BonusAssignment `json:"assignments"`
	Deductions  []models.Deduction       `json:"deductions"`

	// ShareApplied is false when no share was sent or it could not be used.
	ShareApplied bool `json:"shareApplied"`

	Resistances []models.ResistEstimate `json:"resistances"`
	Rules       []deduction.Meta        `json:"rules"`
	Suggestions []Suggestion            `json:"suggestions"`
}

type ComputePayoutRequest struct {
	ReportCode  string                   `json:"reportCode" validate:"required"`
	Config      models.Config            `json:"config"`
	Assignments []models.BonusAssignment `json:"assignments" validate:"dive"`
	Deductions  []models.Deduction       `json:"deductions" validate:"dive"`
}

func (r *ComputePayoutRequest) GetReportCode() string { return r.ReportCode }

type ComputePayoutResponse struct {
	Result     *models.PayoutResult `json:"result"`
	ImportList string               `json:"importList"`
	Sheet      string               `json:"sheet"`
	Share      string               `json:"share"`
}

type SuggestDeductionsRequest struct {
	ReportCode string             `json:"reportCode" validate:"required"`
	Deductions []models.Deduction `json:"deductions"`
}

func (r *SuggestDeductionsRequest) GetReportCode() string { return r.ReportCode }

type SuggestDeductionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// Suggestion is a suggested deduction plus whether the session already carries it.
type Suggestion struct {
	models.SuggestedDeduction
	Applied bool `json:"applied"`
}

type AcceptSuggestionRequest struct {
	Suggestion models.SuggestedDeduction `json:"suggestion"`

	// Percentage overrides the suggested percentage.
	Percentage *float64 `json:"percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type AcceptSuggestionResponse struct {
	Deduction models.Deduction `json:"deduction"`
}
