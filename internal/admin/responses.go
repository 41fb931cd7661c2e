package admin

import (
	"time"

	assessmentmodels "chaincomply/internal/assessment/models"
	regmodels "chaincomply/internal/registration/models"
)

// AssessmentSummary is the condensed risk line shown next to each
// registration in the review queue.
type AssessmentSummary struct {
	OverallScore float64                    `json:"overall_score"`
	RiskLevel    assessmentmodels.RiskLevel `json:"risk_level"`
	Timestamp    time.Time                  `json:"timestamp"`
}

// RegistrationOverview pairs a registration with its latest assessment.
// LatestAssessment is nil for applications that were never submitted.
type RegistrationOverview struct {
	Registration     *regmodels.Registration `json:"registration"`
	LatestAssessment *AssessmentSummary      `json:"latest_assessment,omitempty"`
}

// RegistrationListResponse wraps the review queue for HTTP responses.
type RegistrationListResponse struct {
	Registrations []*RegistrationOverview `json:"registrations"`
	Total         int                     `json:"total"`
}
