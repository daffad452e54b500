package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"prdoc/internal/model"
)

type azure struct{ dir string }

func (a *azure) Kind() string { return "azure" }

// azPR mirrors the fields we care about from `az repos pr list`.
type azPR struct {
	PullRequestID int    `json:"pullRequestId"`
	Title         string `json:"title"`
	Status        string `json:"status"` // "active", "completed", "abandoned"
	Repository    struct {
		WebURL string `json:"webUrl"`
	} `json:"repository"`
}

func (a *azure) FetchPR(branch string) (*model.PR, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		"az", "repos", "pr", "list",
		"--detect", "true",
		"--source-branch", branch,
		"--status", "all",
		"--output", "json",
	)
	cmd.Dir = a.dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("az repos pr list: %w", err)
	}
	return parseAzure(out)
}

func parseAzure(out []byte) (*model.PR, error) {
	var raw []azPR
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("decode az output: %w", err)
	}
	prs := make([]model.PR, len(raw))
	for i, p := range raw {
		pr := model.PR{
			Number: p.PullRequestID,
			Title:  p.Title,
			State:  azState(p.Status),
			Forge:  "azure",
		}
		if p.Repository.WebURL != "" {
			pr.WebURL = fmt.Sprintf("%s/pullrequest/%d", strings.TrimRight(p.Repository.WebURL, "/"), p.PullRequestID)
		}
		prs[i] = pr
	}
	return pickPR(prs), nil
}

// azState maps Azure DevOps PR status to our unified model.
func azState(s string) string {
	switch s {
	case "active":
		return "open"
	case "completed":
		return "merged"
	case "abandoned":
		return "closed"
	default:
		return s
	}
}
