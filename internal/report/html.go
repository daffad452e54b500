package report

import (
	"bytes"
	"html/template"
)

var pageTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>PR #{{.Request.PRID}} · {{.Request.Repository}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; color: #1f2933; }
pre { background: #f5f7fa; padding: 1rem; overflow-x: auto; white-space: pre-wrap; }
.empty-state { color: #7b8794; font-style: italic; }
.meta { color: #52606d; }
</style>
</head>
<body>
<h1>PR #{{.Request.PRID}} · {{.Request.Repository}}</h1>
<p class="meta">Exported {{.ExportedAt.Format "2006-01-02 15:04"}}{{with .Request.IssueKey}} · Issue {{.}}{{end}}</p>

<section id="documentation">
<h2>Documentation</h2>
{{.Results.Documentation.HTML}}
</section>

<section id="review">
<h2>Code Review</h2>
{{.Results.CodeReview.HTML}}
</section>

<section id="issue">
<h2>Issue</h2>
{{if .Results.HasIssue}}<pre>{{.Results.Issue}}</pre>{{else}}<p class="empty-state">{{.Results.Issue}}</p>{{end}}
</section>

<section id="pr">
<h2>Pull Request</h2>
{{if .Results.PRSummary}}<pre>{{.Results.PR}}</pre>{{else}}<p class="empty-state">{{.Results.PR}}</p>{{end}}
</section>
</body>
</html>
`))

func renderHTML(r Report) ([]byte, error) {
	var b bytes.Buffer
	if err := pageTmpl.Execute(&b, r); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
