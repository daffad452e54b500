// Package status probes the analysis server's configuration check endpoint
// and turns the answer into header badges.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"prdoc/internal/log"
	"prdoc/internal/model"
)

// Badge names, in display order.
const (
	BadgeJira        = "Jira"
	BadgeAzureDevOps = "Azure DevOps"
	BadgeAIProvider  = "AI"
)

// Checker performs a single configuration check. It never retries.
type Checker struct {
	URL    string
	Client *http.Client
	// Header is added to every request.
	Header http.Header
}

// NewChecker returns a Checker for statusURL with the given timeout.
func NewChecker(statusURL string, timeout time.Duration) *Checker {
	return &Checker{
		URL:    statusURL,
		Client: &http.Client{Timeout: timeout},
	}
}

// Check issues one GET and decodes the configuration status.
func (c *Checker) Check(ctx context.Context) (model.ConfigStatus, error) {
	var st model.ConfigStatus

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return st, fmt.Errorf("build status request: %w", err)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return st, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return st, fmt.Errorf("status request: unexpected HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	return st, nil
}

// Badges runs Check and classifies the outcome. Failures are logged and
// reported as three error badges.
func (c *Checker) Badges(ctx context.Context) []model.Badge {
	st, err := c.Check(ctx)
	if err != nil {
		log.Errorf("configuration check failed: %v", err)
		return Failed()
	}
	log.Debugf("configuration status: jira=%t azure_devops=%t ai_provider=%v",
		st.Jira, st.AzureDevOps, st.AIProvider != nil)
	return Classify(st)
}

// Classify maps each integration independently to a badge.
func Classify(st model.ConfigStatus) []model.Badge {
	jira := model.Badge{Name: BadgeJira, Label: "✓ Connected", State: model.BadgeConnected}
	if !st.Jira {
		jira.Label, jira.State = "⚠ Not configured", model.BadgeNotConfigured
	}

	azure := model.Badge{Name: BadgeAzureDevOps, Label: "✓ Connected", State: model.BadgeConnected}
	if !st.AzureDevOps {
		azure.Label, azure.State = "✗ Error", model.BadgeError
	}

	ai := model.Badge{Name: BadgeAIProvider, Label: "✗ Not configured", State: model.BadgeNotConfigured}
	if st.AIProvider != nil && *st.AIProvider != "" {
		ai.Label, ai.State = "✓ "+strings.ToUpper(*st.AIProvider), model.BadgeConnected
	}

	return []model.Badge{jira, azure, ai}
}

// Failed returns the badges shown when the check itself failed.
func Failed() []model.Badge {
	return []model.Badge{
		{Name: BadgeJira, Label: "✗ Error", State: model.BadgeError},
		{Name: BadgeAzureDevOps, Label: "✗ Error", State: model.BadgeError},
		{Name: BadgeAIProvider, Label: "✗ Error", State: model.BadgeError},
	}
}

// Pending returns placeholder badges for before the check completes.
func Pending() []model.Badge {
	return []model.Badge{
		{Name: BadgeJira, Label: "checking…"},
		{Name: BadgeAzureDevOps, Label: "checking…"},
		{Name: BadgeAIProvider, Label: "checking…"},
	}
}
