package model

// PR holds pull/merge request metadata for the current branch, fetched via
// gh or glab. It is only used to prefill the analysis form.
type PR struct {
	Number int    // GitLab IID or GitHub PR number
	Title  string
	WebURL string
	State  string // "open", "merged", "closed"
	Forge  string // "gitlab" | "github"
}

// Workspace describes the local checkout prdoc was started from.
type Workspace struct {
	Root       string
	Branch     string
	Repository string // "org/repo" derived from the origin remote, "" if unknown
	PR         *PR    // nil if no PR found or forge CLI unavailable
}
