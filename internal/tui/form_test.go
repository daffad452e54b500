package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"prdoc/internal/config"
)

func updateForm(f analysisForm, msgs ...tea.Msg) (analysisForm, bool) {
	var submit bool
	for _, msg := range msgs {
		var s bool
		f, _, s = f.Update(msg)
		submit = submit || s
	}
	return f, submit
}

func TestAnalysisForm_Defaults(t *testing.T) {
	f := newAnalysisForm(config.DefaultsConfig{Repository: "MedicineOneLibrary", GenerateDocumentation: true})
	v := f.Values()
	if v.Repository != "MedicineOneLibrary" || !v.GenerateDocumentation || v.GenerateCodeReview {
		t.Errorf("values = %+v", v)
	}
}

func TestAnalysisForm_FocusWraps(t *testing.T) {
	f := newAnalysisForm(config.DefaultsConfig{})
	f, _ = updateForm(f, tea.KeyMsg{Type: tea.KeyShiftTab})
	if f.focus != fieldSubmit {
		t.Errorf("focus = %d, want submit", f.focus)
	}
	f, _ = updateForm(f, keyTab)
	if f.focus != fieldRepository {
		t.Errorf("focus = %d, want repository", f.focus)
	}
}

func TestAnalysisForm_SpaceOnSubmitButton(t *testing.T) {
	f := newAnalysisForm(config.DefaultsConfig{})
	f, submit := updateForm(f, tea.KeyMsg{Type: tea.KeyShiftTab}, keySpace)
	if !submit {
		t.Error("space on the button did not submit")
	}
	_ = f
}

func TestAnalysisForm_DisabledIgnoresEdits(t *testing.T) {
	f := newAnalysisForm(config.DefaultsConfig{GenerateDocumentation: true})
	f.SetDisabled(true)

	f, _ = updateForm(f, typeText("abc"), keyTab, keyTab, keyTab, keySpace)
	v := f.Values()
	if v.Repository != "" {
		t.Errorf("repository = %q, want unchanged", v.Repository)
	}
	if !v.GenerateDocumentation {
		t.Error("checkbox toggled while disabled")
	}
}

func TestAnalysisForm_Prefill(t *testing.T) {
	f := newAnalysisForm(config.DefaultsConfig{Repository: "configured"})
	f.Prefill("detected", "12")
	v := f.Values()
	if v.Repository != "configured" || v.PRID != "12" {
		t.Errorf("values = %+v", v)
	}
}
