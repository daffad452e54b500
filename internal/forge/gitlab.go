package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"prdoc/internal/model"
)

type gitLab struct{ dir string }

func (g *gitLab) Kind() string { return "gitlab" }

// glabMR mirrors the fields we care about from glab's JSON output.
type glabMR struct {
	IID    int    `json:"iid"`
	Title  string `json:"title"`
	State  string `json:"state"`
	WebURL string `json:"web_url"`
}

func (g *gitLab) FetchPR(branch string) (*model.PR, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		"glab", "mr", "list",
		"--source-branch", branch,
		"-F", "json",
	)
	cmd.Dir = g.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("glab mr list: %s", trimOutput(out))
	}
	return parseGitLab(out)
}

func parseGitLab(out []byte) (*model.PR, error) {
	var raw []glabMR
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("decode glab output: %w", err)
	}
	prs := make([]model.PR, len(raw))
	for i, mr := range raw {
		prs[i] = model.PR{
			Number: mr.IID,
			Title:  mr.Title,
			WebURL: mr.WebURL,
			State:  normaliseState(mr.State),
			Forge:  "gitlab",
		}
	}
	return pickPR(prs), nil
}

// normaliseState maps GitLab state strings to our unified model.
func normaliseState(s string) string {
	switch s {
	case "opened":
		return "open"
	default:
		return s // "merged", "closed" are already canonical
	}
}
