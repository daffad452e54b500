// Package analysis holds the client-side state of one analysis run: form
// validation, the submitted request, progress, and the rendered result.
package analysis

import (
	"errors"
	"strings"

	"prdoc/internal/model"
)

var (
	ErrRepositoryRequired = errors.New("repository is required")
	ErrPRIDRequired       = errors.New("PR ID is required")
)

// Form is the raw input of the analysis form.
type Form struct {
	Repository            string
	PRID                  string
	IssueKey              string
	GenerateDocumentation bool
	GenerateCodeReview    bool
}

// Request trims and validates the form. Repository is checked first.
func (f Form) Request() (model.AnalysisRequest, error) {
	req := model.AnalysisRequest{
		Repository:            strings.TrimSpace(f.Repository),
		PRID:                  strings.TrimSpace(f.PRID),
		GenerateDocumentation: f.GenerateDocumentation,
		GenerateCodeReview:    f.GenerateCodeReview,
	}
	if issue := strings.TrimSpace(f.IssueKey); issue != "" {
		req.IssueKey = &issue
	}

	if req.Repository == "" {
		return req, ErrRepositoryRequired
	}
	if req.PRID == "" {
		return req, ErrPRIDRequired
	}
	return req, nil
}
