// Package models defines the registration application and its lifecycle.
// A registration moves draft -> submitted -> under_review -> approved or
// rejected; a rejected application reopens as a draft so the registrant can
// fix the disclosures and resubmit under the same entity ID.
package models

import (
	"time"

	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
)

// Status is the registration lifecycle state.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// transitions lists the allowed next states per state. Approved is terminal.
var transitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusRejected:    {StatusDraft},
	StatusApproved:    {},
}

// ParseStatus validates an external status string.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := transitions[status]; !ok {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown registration status %q", s)
	}
	return status, nil
}

// CanTransition reports whether the lifecycle allows moving to the given
// state.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Disclosures holds the registrant's answers across the form steps. Nil
// pointers mean the question was not answered; normalizers turn nil into an
// absent fact so optional controls score their floor and required ones fail
// the submission.
type Disclosures struct {
	ColdStoragePct       *float64 `json:"cold_storage_pct,omitempty"`
	CustodyInsurance     *bool    `json:"custody_insurance,omitempty"`
	FundSegregation      *bool    `json:"fund_segregation,omitempty"`
	WashTradingDetection *bool    `json:"wash_trading_detection,omitempty"`
	BotMonitoring        *bool    `json:"bot_monitoring,omitempty"`
	AbuseReporting       *string  `json:"abuse_reporting,omitempty"`
	KYCProgram           *string  `json:"kyc_program,omitempty"`
	AMLScreening         *bool    `json:"aml_screening,omitempty"`
	SanctionsScreening   *bool    `json:"sanctions_screening,omitempty"`
	TravelRule           *bool    `json:"travel_rule,omitempty"`
	JurisdictionTier     *string  `json:"jurisdiction_tier,omitempty"`
	LicenseCoveragePct   *float64 `json:"license_coverage_pct,omitempty"`
	IndependentAudit     *bool    `json:"independent_audit,omitempty"`
	ProofOfReserves      *bool    `json:"proof_of_reserves,omitempty"`
	IncidentResponsePlan *bool    `json:"incident_response_plan,omitempty"`
	ContractAudit        *bool    `json:"contract_audit,omitempty"`
	AdminKeyControls     *string  `json:"admin_key_controls,omitempty"`
}

// Merge overlays the answered fields of patch onto d. Unanswered fields in
// patch leave the existing answers alone, which is what lets the form submit
// one step at a time.
func (d *Disclosures) Merge(patch Disclosures) {
	if patch.ColdStoragePct != nil {
		d.ColdStoragePct = patch.ColdStoragePct
	}
	if patch.CustodyInsurance != nil {
		d.CustodyInsurance = patch.CustodyInsurance
	}
	if patch.FundSegregation != nil {
		d.FundSegregation = patch.FundSegregation
	}
	if patch.WashTradingDetection != nil {
		d.WashTradingDetection = patch.WashTradingDetection
	}
	if patch.BotMonitoring != nil {
		d.BotMonitoring = patch.BotMonitoring
	}
	if patch.AbuseReporting != nil {
		d.AbuseReporting = patch.AbuseReporting
	}
	if patch.KYCProgram != nil {
		d.KYCProgram = patch.KYCProgram
	}
	if patch.AMLScreening != nil {
		d.AMLScreening = patch.AMLScreening
	}
	if patch.SanctionsScreening != nil {
		d.SanctionsScreening = patch.SanctionsScreening
	}
	if patch.TravelRule != nil {
		d.TravelRule = patch.TravelRule
	}
	if patch.JurisdictionTier != nil {
		d.JurisdictionTier = patch.JurisdictionTier
	}
	if patch.LicenseCoveragePct != nil {
		d.LicenseCoveragePct = patch.LicenseCoveragePct
	}
	if patch.IndependentAudit != nil {
		d.IndependentAudit = patch.IndependentAudit
	}
	if patch.ProofOfReserves != nil {
		d.ProofOfReserves = patch.ProofOfReserves
	}
	if patch.IncidentResponsePlan != nil {
		d.IncidentResponsePlan = patch.IncidentResponsePlan
	}
	if patch.ContractAudit != nil {
		d.ContractAudit = patch.ContractAudit
	}
	if patch.AdminKeyControls != nil {
		d.AdminKeyControls = patch.AdminKeyControls
	}
}

// Registration is one application to register a market participant. EntityID
// is assigned at creation and stays stable across rejection and resubmission,
// so the assessment history survives the full review loop.
type Registration struct {
	ID          id.RegistrationID `json:"id"`
	OwnerID     id.UserID         `json:"owner_id"`
	EntityID    id.EntityID       `json:"entity_id"`
	EntityType  id.EntityType     `json:"entity_type"`
	LegalName   string            `json:"legal_name"`
	Disclosures Disclosures       `json:"disclosures"`
	Status      Status            `json:"status"`
	ReviewNote  string            `json:"review_note,omitempty"`
	ReviewedBy  *id.UserID        `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Clone returns a detached copy.
func (r *Registration) Clone() *Registration {
	out := *r
	if r.ReviewedBy != nil {
		u := *r.ReviewedBy
		out.ReviewedBy = &u
	}
	if r.ReviewedAt != nil {
		t := *r.ReviewedAt
		out.ReviewedAt = &t
	}
	if r.SubmittedAt != nil {
		t := *r.SubmittedAt
		out.SubmittedAt = &t
	}
	return &out
}
