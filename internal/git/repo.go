package git

import (
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// RepoRoot returns the absolute path of the current git repository root.
func RepoRoot() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch returns the checked-out branch, or "" when HEAD is detached.
func CurrentBranch(repoRoot string) (string, error) {
	out, err := exec.Command("git", "-C", repoRoot, "branch", "--show-current").Output()
	if err != nil {
		return "", fmt.Errorf("git branch: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// OriginURL returns the fetch URL of the origin remote.
func OriginURL(repoRoot string) (string, error) {
	out, err := exec.Command("git", "-C", repoRoot, "remote", "get-url", "origin").Output()
	if err != nil {
		return "", fmt.Errorf("git remote get-url: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RepositoryFromRemote derives the repository identifier the analysis server
// expects from a remote URL: "org/repo" for GitHub and GitLab, the bare
// repository name for Azure DevOps. Returns "" if the URL is not understood.
func RepositoryFromRemote(remote string) string {
	host, path := splitRemote(strings.TrimSpace(remote))
	if host == "" || path == "" {
		return ""
	}
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")

	switch {
	case host == "ssh.dev.azure.com":
		// v3/<org>/<project>/<repo>
		if len(parts) == 4 && parts[0] == "v3" {
			return parts[3]
		}
		return ""
	case host == "dev.azure.com" || strings.HasSuffix(host, ".visualstudio.com"):
		// [<org>/]<project>/_git/<repo>
		for i, p := range parts {
			if p == "_git" && i+1 < len(parts) {
				return parts[i+1]
			}
		}
		return ""
	default:
		if len(parts) < 2 {
			return ""
		}
		// GitLab subgroups keep their full path.
		return strings.Join(parts, "/")
	}
}

// splitRemote handles URL remotes and scp-like "git@host:path" remotes.
func splitRemote(remote string) (host, path string) {
	if strings.Contains(remote, "://") {
		u, err := url.Parse(remote)
		if err != nil {
			return "", ""
		}
		return strings.ToLower(u.Hostname()), u.Path
	}
	at := strings.Index(remote, "@")
	colon := strings.Index(remote, ":")
	if colon < 0 || colon < at {
		return "", ""
	}
	return strings.ToLower(remote[at+1 : colon]), remote[colon+1:]
}
