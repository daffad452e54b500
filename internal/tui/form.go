package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"prdoc/internal/analysis"
	"prdoc/internal/config"
)

type formField int

const (
	fieldRepository formField = iota
	fieldPRID
	fieldIssueKey
	fieldDocs
	fieldReview
	fieldSubmit
	fieldCount
)

const (
	submitLabel  = "🚀 Start Analysis"
	runningLabel = "⏳ Analysing..."
)

// analysisForm is the input panel. While disabled it ignores edits but keeps
// its values.
type analysisForm struct {
	inputs   [3]textinput.Model
	docs     bool
	review   bool
	focus    formField
	disabled bool
	width    int
}

func newAnalysisForm(defaults config.DefaultsConfig) analysisForm {
	mk := func(placeholder string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Prompt = ""
		return ti
	}

	f := analysisForm{
		inputs: [3]textinput.Model{
			mk("e.g. MedicineOneLibrary or org/repo", 200),
			mk("e.g. 1234", 20),
			mk("optional, e.g. PROJ-182", 50),
		},
		docs:   defaults.GenerateDocumentation,
		review: defaults.GenerateCodeReview,
		width:  60,
	}
	f.inputs[fieldRepository].SetValue(defaults.Repository)
	f.inputs[fieldRepository].Focus()
	return f
}

// Values returns the current input as an analysis form.
func (f analysisForm) Values() analysis.Form {
	return analysis.Form{
		Repository:            f.inputs[fieldRepository].Value(),
		PRID:                  f.inputs[fieldPRID].Value(),
		IssueKey:              f.inputs[fieldIssueKey].Value(),
		GenerateDocumentation: f.docs,
		GenerateCodeReview:    f.review,
	}
}

// Prefill sets empty text fields from a detected workspace.
func (f *analysisForm) Prefill(repository, prID string) {
	if repository != "" && strings.TrimSpace(f.inputs[fieldRepository].Value()) == "" {
		f.inputs[fieldRepository].SetValue(repository)
	}
	if prID != "" && strings.TrimSpace(f.inputs[fieldPRID].Value()) == "" {
		f.inputs[fieldPRID].SetValue(prID)
	}
}

// SetDisabled toggles the whole form. Calling it twice is harmless.
func (f *analysisForm) SetDisabled(disabled bool) {
	f.disabled = disabled
	f.syncFocus()
}

func (f *analysisForm) SetWidth(w int) {
	f.width = w
	for i := range f.inputs {
		f.inputs[i].Width = max(w-20, 10)
	}
}

func (f *analysisForm) move(delta int) {
	f.focus = formField((int(f.focus) + delta + int(fieldCount)) % int(fieldCount))
	f.syncFocus()
}

func (f *analysisForm) syncFocus() {
	for i := range f.inputs {
		if !f.disabled && formField(i) == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// Update handles one message. submit is true when the user asked to submit.
func (f analysisForm) Update(msg tea.Msg) (analysisForm, tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if f.focus < fieldDocs && !f.disabled {
			var cmd tea.Cmd
			f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
			return f, cmd, false
		}
		return f, nil, false
	}

	switch key.String() {
	case "tab", "down":
		f.move(1)
		return f, textinput.Blink, false
	case "shift+tab", "up":
		f.move(-1)
		return f, textinput.Blink, false
	case "enter":
		return f, nil, true
	}

	if f.disabled {
		return f, nil, false
	}

	switch f.focus {
	case fieldDocs, fieldReview:
		if key.String() == " " || key.String() == "x" {
			if f.focus == fieldDocs {
				f.docs = !f.docs
			} else {
				f.review = !f.review
			}
		}
		return f, nil, false
	case fieldSubmit:
		if key.String() == " " {
			return f, nil, true
		}
		return f, nil, false
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

// View renders the full form.
func (f analysisForm) View() string {
	row := func(field formField, label, value string) string {
		marker := "  "
		if f.focus == field && !f.disabled {
			marker = focusStyle.Render("▸ ")
		}
		return marker + labelStyle.Render(label) + value + "\n"
	}
	text := func(field formField) string {
		if f.disabled {
			v := f.inputs[field].Value()
			if v == "" {
				v = f.inputs[field].Placeholder
			}
			return dimStyle.Render(v)
		}
		return f.inputs[field].View()
	}
	check := func(on bool, label string) string {
		box := "[ ] "
		if on {
			box = "[x] "
		}
		if f.disabled {
			return dimStyle.Render(box + label)
		}
		return box + label
	}

	var b strings.Builder
	b.WriteString(row(fieldRepository, "Repository  ", text(fieldRepository)))
	b.WriteString(row(fieldPRID, "PR ID       ", text(fieldPRID)))
	b.WriteString(row(fieldIssueKey, "Jira issue  ", text(fieldIssueKey)))
	b.WriteString(row(fieldDocs, "            ", check(f.docs, "Generate documentation")))
	b.WriteString(row(fieldReview, "            ", check(f.review, "Generate code review")))

	button := buttonStyle.Render(submitLabel)
	switch {
	case f.disabled:
		button = buttonDisabledStyle.Render(runningLabel)
	case f.focus == fieldSubmit:
		button = buttonFocusStyle.Render(submitLabel)
	}
	b.WriteString("\n" + row(fieldSubmit, "            ", button))

	return formStyle.Width(max(f.width-2, 20)).Render(strings.TrimRight(b.String(), "\n"))
}

// Summary renders the one-line form shown while results have focus.
func (f analysisForm) Summary() string {
	v := f.Values()
	parts := []string{labelStyle.Render("Repository ") + v.Repository, labelStyle.Render("PR ") + v.PRID}
	if strings.TrimSpace(v.IssueKey) != "" {
		parts = append(parts, labelStyle.Render("Issue ")+v.IssueKey)
	}
	return "  " + strings.Join(parts, dimStyle.Render("  ·  "))
}
