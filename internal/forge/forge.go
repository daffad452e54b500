package forge

import (
	"os/exec"
	"strings"

	"prdoc/internal/model"
)

// Forge looks up the pull request for a branch through the host's CLI.
type Forge interface {
	Kind() string // "github" | "gitlab" | "azure"
	FetchPR(branch string) (*model.PR, error)
}

// Detect returns the appropriate Forge for the repo at repoRoot,
// or nil if the remote is unrecognised or no remote exists.
func Detect(repoRoot string) Forge {
	out, err := exec.Command("git", "-C", repoRoot, "remote", "get-url", "origin").Output()
	if err != nil {
		return nil
	}
	return forRemote(string(out), repoRoot)
}

func forRemote(remote, repoRoot string) Forge {
	remote = strings.ToLower(strings.TrimSpace(remote))
	switch {
	case strings.Contains(remote, "github.com"):
		return &gitHub{dir: repoRoot}
	case strings.Contains(remote, "dev.azure.com"), strings.Contains(remote, "visualstudio.com"):
		return &azure{dir: repoRoot}
	case strings.Contains(remote, "gitlab"):
		return &gitLab{dir: repoRoot}
	default:
		return nil
	}
}

// pickPR prefers an open PR and falls back to the first (most recent) one.
func pickPR(prs []model.PR) *model.PR {
	for i := range prs {
		if prs[i].State == "open" {
			return &prs[i]
		}
	}
	if len(prs) > 0 {
		return &prs[0]
	}
	return nil
}

func trimOutput(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "…"
	}
	return s
}
