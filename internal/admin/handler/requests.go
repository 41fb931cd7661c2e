package handler

import (
	"strings"

	dErrors "chaincomply/pkg/domain-errors"
)

// ReviewRequest records a reviewer's verdict.
type ReviewRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

// Validate checks the structural shape of the request. Decision vocabulary
// and the reject-needs-note rule are enforced by the service.
func (r ReviewRequest) Validate() error {
	if strings.TrimSpace(r.Decision) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "decision is required")
	}
	return nil
}
