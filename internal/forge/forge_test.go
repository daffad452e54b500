package forge

import (
	"testing"

	"prdoc/internal/model"
)

func TestForRemote(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"git@github.com:org/repo.git\n", "github"},
		{"https://gitlab.example.com/g/r.git", "gitlab"},
		{"https://dev.azure.com/org/p/_git/r", "azure"},
		{"https://org.visualstudio.com/p/_git/r", "azure"},
		{"/srv/git/r.git", ""},
	}
	for _, tt := range tests {
		f := forRemote(tt.remote, "/tmp")
		got := ""
		if f != nil {
			got = f.Kind()
		}
		if got != tt.want {
			t.Errorf("forRemote(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}

func TestParseGitHub_PrefersOpen(t *testing.T) {
	out := []byte(`[
		{"number": 3, "title": "old", "state": "MERGED", "url": "https://github.com/o/r/pull/3"},
		{"number": 9, "title": "new", "state": "OPEN", "url": "https://github.com/o/r/pull/9"}
	]`)
	pr, err := parseGitHub(out)
	if err != nil {
		t.Fatalf("parseGitHub: %v", err)
	}
	if pr == nil || pr.Number != 9 || pr.State != "open" || pr.Forge != "github" {
		t.Errorf("pr = %+v", pr)
	}
}

func TestParseGitLab_FallsBackToFirst(t *testing.T) {
	out := []byte(`[{"iid": 12, "title": "t", "state": "merged", "web_url": "https://gl/mr/12"}]`)
	pr, err := parseGitLab(out)
	if err != nil {
		t.Fatalf("parseGitLab: %v", err)
	}
	if pr == nil || pr.Number != 12 || pr.State != "merged" {
		t.Errorf("pr = %+v", pr)
	}
}

func TestParseAzure(t *testing.T) {
	out := []byte(`[{"pullRequestId": 42, "title": "Retry", "status": "active",
		"repository": {"webUrl": "https://dev.azure.com/org/p/_git/r/"}}]`)
	pr, err := parseAzure(out)
	if err != nil {
		t.Fatalf("parseAzure: %v", err)
	}
	if pr.Number != 42 || pr.State != "open" {
		t.Errorf("pr = %+v", pr)
	}
	if pr.WebURL != "https://dev.azure.com/org/p/_git/r/pullrequest/42" {
		t.Errorf("WebURL = %q", pr.WebURL)
	}
}

func TestParse_EmptyAndInvalid(t *testing.T) {
	if pr, err := parseGitHub([]byte(`[]`)); err != nil || pr != nil {
		t.Errorf("empty list: pr=%+v err=%v", pr, err)
	}
	if _, err := parseGitLab([]byte(`not json`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestPRID(t *testing.T) {
	if got := PRID(nil); got != "" {
		t.Errorf("PRID(nil) = %q", got)
	}
	if got := PRID(&model.Workspace{PR: &model.PR{Number: 42}}); got != "42" {
		t.Errorf("PRID = %q", got)
	}
}
