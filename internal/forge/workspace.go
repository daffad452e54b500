package forge

import (
	"strconv"

	"prdoc/internal/git"
	"prdoc/internal/log"
	"prdoc/internal/model"
)

// DetectWorkspace inspects the checkout in the working directory. Every step
// is best-effort: a nil result means prdoc was not started inside a git
// repository.
func DetectWorkspace() *model.Workspace {
	root, err := git.RepoRoot()
	if err != nil {
		log.Debugf("workspace detection skipped: %v", err)
		return nil
	}
	ws := &model.Workspace{Root: root}

	if remote, err := git.OriginURL(root); err == nil {
		ws.Repository = git.RepositoryFromRemote(remote)
	}
	if branch, err := git.CurrentBranch(root); err == nil {
		ws.Branch = branch
	}
	if ws.Branch == "" {
		return ws
	}

	f := Detect(root)
	if f == nil {
		return ws
	}
	pr, err := f.FetchPR(ws.Branch)
	if err != nil {
		log.Debugf("%s PR lookup for %s: %v", f.Kind(), ws.Branch, err)
		return ws
	}
	ws.PR = pr
	return ws
}

// PRID returns the PR number as the form expects it, or "".
func PRID(ws *model.Workspace) string {
	if ws == nil || ws.PR == nil || ws.PR.Number == 0 {
		return ""
	}
	return strconv.Itoa(ws.PR.Number)
}
