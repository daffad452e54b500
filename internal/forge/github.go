package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"prdoc/internal/model"
)

type gitHub struct{ dir string }

func (g *gitHub) Kind() string { return "github" }

// ghPR mirrors the fields we care about from gh's JSON output.
type ghPR struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"` // "OPEN", "MERGED", "CLOSED"
	URL    string `json:"url"`
}

func (g *gitHub) FetchPR(branch string) (*model.PR, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		"gh", "pr", "list",
		"--head", branch,
		"--state", "all",
		"--json", "number,title,state,url",
	)
	cmd.Dir = g.dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("gh pr list: %w", err)
	}
	return parseGitHub(out)
}

func parseGitHub(out []byte) (*model.PR, error) {
	var raw []ghPR
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("decode gh output: %w", err)
	}
	prs := make([]model.PR, len(raw))
	for i, p := range raw {
		prs[i] = model.PR{
			Number: p.Number,
			Title:  p.Title,
			WebURL: p.URL,
			State:  ghState(p.State),
			Forge:  "github",
		}
	}
	return pickPR(prs), nil
}

// ghState maps GitHub PR state strings to our unified model.
func ghState(s string) string {
	switch s {
	case "OPEN":
		return "open"
	case "MERGED":
		return "merged"
	case "CLOSED":
		return "closed"
	default:
		return s
	}
}
