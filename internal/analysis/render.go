package analysis

import (
	"bytes"
	"encoding/json"
	"html/template"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"prdoc/internal/model"
)

// Placeholders shown for absent result sections.
const (
	NoDocumentation = "Documentation not generated"
	NoCodeReview    = "Code review not generated"
	NoIssue         = "No Jira issue provided"
	NoPR            = "No pull request data"
)

// Region is a text section of the result that may be absent.
type Region struct {
	Text        string
	Placeholder string
}

// Empty reports whether the placeholder is shown instead of text.
func (r Region) Empty() bool { return r.Text == "" }

// Display returns terminal-safe text or the placeholder.
func (r Region) Display() string {
	if r.Empty() {
		return r.Placeholder
	}
	return SanitizeTerminal(r.Text)
}

var regionTmpl = template.Must(template.New("region").Parse(
	`{{if .Text}}<pre>{{.Text}}</pre>{{else}}<p class="empty-state">{{.Placeholder}}</p>{{end}}`))

// HTML renders the region through html/template, so the text is always
// escaped.
func (r Region) HTML() template.HTML {
	var b bytes.Buffer
	if err := regionTmpl.Execute(&b, r); err != nil {
		return template.HTML(`<p class="empty-state">` + template.HTMLEscapeString(r.Placeholder) + `</p>`)
	}
	return template.HTML(b.String())
}

// Results is a completed analysis prepared for display.
type Results struct {
	Documentation Region
	CodeReview    Region

	// Issue is the indented issue JSON, or NoIssue.
	Issue    string
	HasIssue bool

	// PR is the indented PR summary JSON, or NoPR.
	PR        string
	PRSummary *model.PRSummary
}

// Render prepares the four result regions independently.
func Render(res model.AnalysisResult) Results {
	out := Results{
		Documentation: Region{Placeholder: NoDocumentation},
		CodeReview:    Region{Placeholder: NoCodeReview},
		Issue:         NoIssue,
		PR:            NoPR,
	}
	if res.Documentation != nil {
		out.Documentation.Text = *res.Documentation
	}
	if res.CodeReview != nil {
		out.CodeReview.Text = *res.CodeReview
	}

	if truthy(gjson.ParseBytes(res.IssueData)) {
		var b bytes.Buffer
		if err := json.Indent(&b, res.IssueData, "", "  "); err == nil {
			out.Issue = b.String()
			out.HasIssue = true
		}
	}

	if summary, ok := SummarizePR(res.PRData); ok {
		if text, err := summaryJSON(gjson.ParseBytes(res.PRData), summary); err == nil {
			out.PR = text
			out.PRSummary = summary
		}
	}
	return out
}

// summaryFields maps summary keys to their pr_data paths, in display order.
var summaryFields = []struct{ key, path string }{
	{"title", "basic.title"},
	{"description", "basic.description"},
	{"createdBy", "basic.createdBy.displayName"},
	{"sourceRefName", "basic.sourceRefName"},
	{"targetRefName", "basic.targetRefName"},
	{"status", "basic.status"},
}

// summaryJSON builds the indented summary text. Fields present in pr_data are
// copied as-is, explicit nulls included; absent fields are left out.
func summaryJSON(pr gjson.Result, s *model.PRSummary) (string, error) {
	doc := []byte(`{}`)
	var err error
	for _, f := range summaryFields {
		r := pr.Get(f.path)
		if !r.Exists() {
			continue
		}
		if doc, err = sjson.SetRawBytes(doc, f.key, []byte(r.Raw)); err != nil {
			return "", err
		}
	}
	if doc, err = sjson.SetBytes(doc, "totalCommits", s.TotalCommits); err != nil {
		return "", err
	}
	if doc, err = sjson.SetBytes(doc, "totalFiles", s.TotalFiles); err != nil {
		return "", err
	}

	var b bytes.Buffer
	if err := json.Indent(&b, doc, "", "  "); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SummarizePR reduces pr_data to its display subset. Every lookup is
// optional; counts default to 0.
func SummarizePR(raw json.RawMessage) (*model.PRSummary, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	pr := gjson.ParseBytes(raw)
	if !truthy(pr) {
		return nil, false
	}

	str := func(path string) *string {
		r := pr.Get(path)
		if !r.Exists() || r.Type == gjson.Null {
			return nil
		}
		s := r.String()
		return &s
	}

	s := &model.PRSummary{
		Title:         str("basic.title"),
		Description:   str("basic.description"),
		CreatedBy:     str("basic.createdBy.displayName"),
		SourceRefName: str("basic.sourceRefName"),
		TargetRefName: str("basic.targetRefName"),
		Status:        str("basic.status"),
		TotalCommits:  pr.Get("commits.count").Int(),
	}
	if files := pr.Get("files"); files.IsArray() {
		s.TotalFiles = int64(len(files.Array()))
	}
	return s, true
}

// truthy mirrors a JavaScript truthiness test on a JSON value.
func truthy(r gjson.Result) bool {
	if !r.Exists() {
		return false
	}
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	}
	return true
}
