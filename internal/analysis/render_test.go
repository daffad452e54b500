package analysis

import (
	"encoding/json"
	"strings"
	"testing"

	"prdoc/internal/model"
)

func strPtr(s string) *string { return &s }

func TestRender_PlaceholdersAndSummary(t *testing.T) {
	res := model.AnalysisResult{
		Documentation: nil,
		CodeReview:    strPtr("x"),
		IssueData:     json.RawMessage(`null`),
		PRData: json.RawMessage(`{
			"basic": {
				"title": "Add retries",
				"createdBy": {"displayName": "Ana"},
				"sourceRefName": "refs/heads/feature",
				"targetRefName": "refs/heads/main",
				"status": "active"
			}
		}`),
	}

	r := Render(res)

	if !r.Documentation.Empty() || r.Documentation.Display() != NoDocumentation {
		t.Errorf("documentation = %q, want placeholder", r.Documentation.Display())
	}
	if r.CodeReview.Display() != "x" {
		t.Errorf("code review = %q", r.CodeReview.Display())
	}
	if r.HasIssue || r.Issue != NoIssue {
		t.Errorf("issue = %q, want placeholder", r.Issue)
	}
	if r.PRSummary == nil {
		t.Fatal("PRSummary is nil")
	}
	if r.PRSummary.TotalCommits != 0 || r.PRSummary.TotalFiles != 0 {
		t.Errorf("totals = %d/%d, want 0/0", r.PRSummary.TotalCommits, r.PRSummary.TotalFiles)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(r.PR), &decoded); err != nil {
		t.Fatalf("PR text is not JSON: %v\n%s", err, r.PR)
	}
	if decoded["createdBy"] != "Ana" || decoded["title"] != "Add retries" {
		t.Errorf("summary = %v", decoded)
	}
	if _, ok := decoded["description"]; ok {
		t.Error("absent description should be omitted")
	}
	if decoded["totalCommits"] != float64(0) || decoded["totalFiles"] != float64(0) {
		t.Errorf("totals missing from summary: %v", decoded)
	}
	if !strings.HasPrefix(r.PR, "{\n  \"title\"") {
		t.Errorf("summary should be 2-space indented in field order:\n%s", r.PR)
	}
}

func TestRender_SummaryKeepsExplicitNulls(t *testing.T) {
	r := Render(model.AnalysisResult{
		PRData: json.RawMessage(`{"basic":{"title":"t","description":null,"status":"active"},"commits":{"count":3}}`),
	})

	want := "{\n  \"title\": \"t\",\n  \"description\": null,\n  \"status\": \"active\",\n  \"totalCommits\": 3,\n  \"totalFiles\": 0\n}"
	if r.PR != want {
		t.Errorf("PR summary\n got %s\nwant %s", r.PR, want)
	}
}

func TestSummarizePR_Counts(t *testing.T) {
	raw := json.RawMessage(`{"basic":{"title":"t","description":null},"commits":{"count":3,"value":[]},"files":[{"path":"a"},{"path":"b"}]}`)
	s, ok := SummarizePR(raw)
	if !ok {
		t.Fatal("SummarizePR returned !ok")
	}
	if s.TotalCommits != 3 || s.TotalFiles != 2 {
		t.Errorf("totals = %d/%d, want 3/2", s.TotalCommits, s.TotalFiles)
	}
	if s.Description != nil {
		t.Errorf("null description should be nil, got %q", *s.Description)
	}
	if s.CreatedBy != nil {
		t.Error("missing createdBy should be nil")
	}

	s, _ = SummarizePR(json.RawMessage(`{"files":{"not":"an array"}}`))
	if s.TotalFiles != 0 {
		t.Errorf("non-array files should count 0, got %d", s.TotalFiles)
	}

	for _, raw := range []string{``, `null`, `false`, `""`} {
		if _, ok := SummarizePR(json.RawMessage(raw)); ok {
			t.Errorf("SummarizePR(%q) should report absent", raw)
		}
	}
}

func TestRender_IssueIndented(t *testing.T) {
	r := Render(model.AnalysisResult{IssueData: json.RawMessage(`{"key":"PROJ-1","fields":{"summary":"a<b"}}`)})
	want := "{\n  \"key\": \"PROJ-1\",\n  \"fields\": {\n    \"summary\": \"a<b\"\n  }\n}"
	if !r.HasIssue || r.Issue != want {
		t.Errorf("issue =\n%s\nwant\n%s", r.Issue, want)
	}
	if r.PR != NoPR {
		t.Errorf("PR = %q, want placeholder", r.PR)
	}
}

func TestRegion_HTMLEscapesScript(t *testing.T) {
	r := Render(model.AnalysisResult{Documentation: strPtr(`<script>alert("x")</script>`)})
	html := string(r.Documentation.HTML())
	if strings.Contains(html, "<script>") {
		t.Fatalf("script tag rendered unescaped: %s", html)
	}
	if !strings.HasPrefix(html, "<pre>&lt;script&gt;") {
		t.Errorf("html = %s", html)
	}

	empty := string(r.CodeReview.HTML())
	if empty != `<p class="empty-state">Code review not generated</p>` {
		t.Errorf("empty html = %s", empty)
	}
}

func TestEmptyStringIsAbsent(t *testing.T) {
	r := Render(model.AnalysisResult{Documentation: strPtr("")})
	if r.Documentation.Display() != NoDocumentation {
		t.Errorf("empty documentation should show placeholder, got %q", r.Documentation.Display())
	}
}
