package report

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"prdoc/internal/analysis"
	"prdoc/internal/model"
)

type nopEmitter struct{}

func (nopEmitter) Emit(string, interface{}) error { return nil }

func completedSession(t *testing.T, payload string) *analysis.Session {
	t.Helper()
	s := analysis.NewSession()
	if _, err := s.Submit(analysis.Form{Repository: "org/repo", PRID: "42", IssueKey: "PROJ-7"}, nopEmitter{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := s.Dispatch(model.EventComplete, json.RawMessage(payload)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	return s
}

const payload = `{
	"documentation": "<script>alert(1)</script>",
	"code_review": null,
	"issue_data": {"key": "PROJ-7"},
	"pr_data": {"basic": {"title": "Retry"}, "commits": {"count": 2}, "files": [1, 2, 3]}
}`

func TestFromSession_NoResult(t *testing.T) {
	if _, err := FromSession(analysis.NewSession()); !errors.Is(err, ErrNoResult) {
		t.Errorf("err = %v, want ErrNoResult", err)
	}
}

func TestWrite_HTMLEscapes(t *testing.T) {
	r, err := FromSession(completedSession(t, payload))
	if err != nil {
		t.Fatalf("FromSession: %v", err)
	}

	path, err := Write(r, "html", t.TempDir())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	html := string(body)

	if strings.Contains(html, "<script>") {
		t.Error("documentation script tag was not escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Error("escaped documentation missing")
	}
	if !strings.Contains(html, `<p class="empty-state">Code review not generated</p>`) {
		t.Error("code review placeholder missing")
	}
	if !strings.Contains(html, "Issue PROJ-7") {
		t.Error("issue key missing from header")
	}
}

func TestWrite_JSONKeepsPayload(t *testing.T) {
	r, _ := FromSession(completedSession(t, payload))
	path, err := Write(r, "json", t.TempDir())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	body, _ := os.ReadFile(path)

	if !gjson.ValidBytes(body) {
		t.Fatalf("invalid json:\n%s", body)
	}
	doc := gjson.ParseBytes(body)
	if doc.Get("request.pr_id").String() != "42" {
		t.Errorf("request.pr_id = %q", doc.Get("request.pr_id").String())
	}
	if doc.Get("result.issue_data.key").String() != "PROJ-7" {
		t.Error("raw result not embedded")
	}
	if doc.Get("pr_summary.totalCommits").Int() != 2 || doc.Get("pr_summary.totalFiles").Int() != 3 {
		t.Errorf("pr_summary = %s", doc.Get("pr_summary").Raw)
	}
	if doc.Get("id").String() != r.ID {
		t.Error("id mismatch")
	}
}

func TestWrite_YAML(t *testing.T) {
	r, _ := FromSession(completedSession(t, payload))
	path, err := Write(r, "yaml", t.TempDir())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	body, _ := os.ReadFile(path)

	var doc map[string]interface{}
	if err := yaml.Unmarshal(body, &doc); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if doc["documentation"] != "<script>alert(1)</script>" {
		t.Errorf("documentation = %v", doc["documentation"])
	}
	if doc["code_review"] != nil {
		t.Errorf("code_review = %v, want null", doc["code_review"])
	}
	issue, ok := doc["issue"].(map[string]interface{})
	if !ok || issue["key"] != "PROJ-7" {
		t.Errorf("issue = %v", doc["issue"])
	}
	pr, ok := doc["pr_summary"].(map[string]interface{})
	if !ok || pr["title"] != "Retry" || pr["totalFiles"] != 3 {
		t.Errorf("pr_summary = %v", doc["pr_summary"])
	}
}

func TestWrite_MarkdownEscapesHTML(t *testing.T) {
	r, _ := FromSession(completedSession(t, payload))
	path, err := Write(r, "md", t.TempDir())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	body, _ := os.ReadFile(path)
	md := string(body)

	if strings.Contains(md, "<script>") {
		t.Errorf("raw script tag in markdown:\n%s", md)
	}
	if !strings.Contains(md, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Errorf("escaped documentation missing:\n%s", md)
	}
}

func TestWrite_Markdown(t *testing.T) {
	r, _ := FromSession(completedSession(t, `{"code_review": "Looks good.\n"}`))
	path, err := Write(r, "md", t.TempDir())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	body, _ := os.ReadFile(path)
	md := string(body)

	for _, want := range []string{
		"# PR #42 — org/repo",
		"_Documentation not generated_",
		"Looks good.",
		"_No Jira issue provided_",
		"_No pull request data_",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	r, _ := FromSession(completedSession(t, payload))
	if _, err := Write(r, "pdf", t.TempDir()); err == nil {
		t.Error("expected error for pdf")
	}
}

func TestFilename(t *testing.T) {
	r := Report{
		ID:      "0123456789abcdef",
		Request: model.AnalysisRequest{Repository: "org/my repo", PRID: "42"},
	}
	if got := Filename(r, "html"); got != "prdoc-org-my-repo-pr42-01234567.html" {
		t.Errorf("Filename = %q", got)
	}

	r = Report{ExportedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Request: model.AnalysisRequest{PRID: "7"}}
	if got := Filename(r, "md"); got != "prdoc-repo-pr7-20260102T030405.md" {
		t.Errorf("Filename = %q", got)
	}
}
