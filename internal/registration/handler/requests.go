package handler

import (
	"strings"

	"chaincomply/internal/registration/models"
	dErrors "chaincomply/pkg/domain-errors"
)

// CreateRequest opens a new draft application.
type CreateRequest struct {
	EntityType string `json:"entity_type"`
	LegalName  string `json:"legal_name"`
}

// Validate checks the structural shape of the request.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.EntityType) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "entity_type is required")
	}
	if strings.TrimSpace(r.LegalName) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "legal_name is required")
	}
	return nil
}

// UpdateRequest merges one form step into a draft. All fields are optional;
// disclosure values the registrant did not touch stay as they were.
type UpdateRequest struct {
	LegalName   string             `json:"legal_name"`
	Disclosures models.Disclosures `json:"disclosures"`
}

// Validate accepts any combination of fields; field-level validation happens
// during normalization at submit time.
func (r UpdateRequest) Validate() error {
	return nil
}
