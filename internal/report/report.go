// Package report writes a completed analysis to disk.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"prdoc/internal/analysis"
	"prdoc/internal/model"
)

// Formats lists the supported export formats.
var Formats = []string{"html", "md", "json", "yaml"}

// Supported reports whether format is one of Formats.
func Supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ErrNoResult is returned when the session has not completed an analysis.
var ErrNoResult = errors.New("no completed analysis to export")

// Report is everything an export needs.
type Report struct {
	ID         string
	ExportedAt time.Time
	Request    model.AnalysisRequest
	Results    analysis.Results
	Raw        json.RawMessage
}

// FromSession captures the session's last completed analysis.
func FromSession(s *analysis.Session) (Report, error) {
	if s.Results() == nil || s.Request() == nil {
		return Report{}, ErrNoResult
	}
	return Report{
		ID:         s.ID,
		ExportedAt: time.Now(),
		Request:    *s.Request(),
		Results:    *s.Results(),
		Raw:        s.RawResult(),
	}, nil
}

// Write renders r in format into dir and returns the file path.
func Write(r Report, format, dir string) (string, error) {
	var (
		body []byte
		err  error
	)
	switch format {
	case "html":
		body, err = renderHTML(r)
	case "md":
		body = []byte(renderMarkdown(r))
	case "json":
		body, err = renderJSON(r)
	case "yaml":
		body, err = renderYAML(r)
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("render %s report: %w", format, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, Filename(r, format))
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename is prdoc-<repo>-pr<id>-<short id>.<ext>.
func Filename(r Report, ext string) string {
	repo := strings.Trim(unsafeName.ReplaceAllString(r.Request.Repository, "-"), "-")
	if repo == "" {
		repo = "repo"
	}
	pr := unsafeName.ReplaceAllString(r.Request.PRID, "-")
	short := r.ID
	if len(short) > 8 {
		short = short[:8]
	}
	if short == "" {
		short = r.ExportedAt.Format("20060102T150405")
	}
	return fmt.Sprintf("prdoc-%s-pr%s-%s.%s", repo, pr, short, ext)
}

func renderMarkdown(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# PR #%s — %s\n\n", r.Request.PRID, r.Request.Repository)
	fmt.Fprintf(&b, "*Exported: %s*\n\n", r.ExportedAt.Format("2006-01-02 15:04"))
	if r.Request.IssueKey != nil {
		fmt.Fprintf(&b, "- **Issue:** %s\n\n", *r.Request.IssueKey)
	}

	b.WriteString("## Documentation\n\n")
	b.WriteString(markdownRegion(r.Results.Documentation))
	b.WriteString("## Code Review\n\n")
	b.WriteString(markdownRegion(r.Results.CodeReview))

	b.WriteString("## Issue\n\n")
	if r.Results.HasIssue {
		b.WriteString("```json\n" + r.Results.Issue + "\n```\n\n")
	} else {
		b.WriteString("_" + r.Results.Issue + "_\n\n")
	}

	b.WriteString("## Pull Request\n\n")
	if r.Results.PRSummary != nil {
		b.WriteString("```json\n" + r.Results.PR + "\n```\n")
	} else {
		b.WriteString("_" + r.Results.PR + "_\n")
	}
	return b.String()
}

func markdownRegion(reg analysis.Region) string {
	if reg.Empty() {
		return "_" + reg.Placeholder + "_\n\n"
	}
	// Markdown renderers pass raw HTML through, so the text is escaped.
	return strings.TrimRight(analysis.EscapeHTML(reg.Text), "\n") + "\n\n"
}

// renderJSON keeps the server payload verbatim and adds export metadata.
func renderJSON(r Report) ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	set := func(path string, v interface{}) {
		if err == nil {
			doc, err = sjson.SetBytes(doc, path, v)
		}
	}
	setRaw := func(path string, raw []byte) {
		if err == nil && len(raw) > 0 {
			doc, err = sjson.SetRawBytes(doc, path, raw)
		}
	}

	req, mErr := json.Marshal(r.Request)
	if mErr != nil {
		return nil, mErr
	}
	set("id", r.ID)
	set("exported_at", r.ExportedAt.Format(time.RFC3339))
	setRaw("request", req)
	setRaw("result", r.Raw)
	if r.Results.PRSummary != nil {
		setRaw("pr_summary", []byte(r.Results.PR))
	}
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, doc, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

type yamlReport struct {
	ID            string                `yaml:"id"`
	ExportedAt    string                `yaml:"exported_at"`
	Request       model.AnalysisRequest `yaml:"request"`
	Documentation *string               `yaml:"documentation"`
	CodeReview    *string               `yaml:"code_review"`
	Issue         interface{}           `yaml:"issue"`
	PR            interface{}           `yaml:"pr_summary"`
}

func renderYAML(r Report) ([]byte, error) {
	doc := yamlReport{
		ID:         r.ID,
		ExportedAt: r.ExportedAt.Format(time.RFC3339),
		Request:    r.Request,
	}
	if !r.Results.Documentation.Empty() {
		doc.Documentation = &r.Results.Documentation.Text
	}
	if !r.Results.CodeReview.Empty() {
		doc.CodeReview = &r.Results.CodeReview.Text
	}
	if r.Results.HasIssue {
		var issue interface{}
		if err := json.Unmarshal([]byte(r.Results.Issue), &issue); err != nil {
			return nil, fmt.Errorf("decode issue: %w", err)
		}
		doc.Issue = issue
	}
	if r.Results.PRSummary != nil {
		var pr interface{}
		if err := json.Unmarshal([]byte(r.Results.PR), &pr); err != nil {
			return nil, fmt.Errorf("decode pr summary: %w", err)
		}
		doc.PR = pr
	}
	return yaml.Marshal(doc)
}
