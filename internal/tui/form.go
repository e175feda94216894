package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/connex/contact-manager/internal/core/domain"
	"github.com/connex/contact-manager/internal/core/validation"
	"github.com/connex/contact-manager/internal/view/form"
)

// formModel binds one text input per contact field to a form.Form.
type formModel struct {
	form   form.Form
	inputs []textinput.Model
	focus  int
}

func newFormModel(f form.Form) formModel {
	inputs := make([]textinput.Model, len(domain.FieldNames))
	for i, name := range domain.FieldNames {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = validation.Label(name)
		ti.CharLimit = 120
		ti.SetValue(f.Fields.Get(name))
		inputs[i] = ti
	}
	inputs[0].Focus()
	return formModel{form: f, inputs: inputs}
}

// move shifts focus by delta, wrapping around.
func (fm formModel) move(delta int) formModel {
	fm.inputs = slices.Clone(fm.inputs)
	fm.inputs[fm.focus].Blur()
	fm.focus = (fm.focus + delta + len(fm.inputs)) % len(fm.inputs)
	fm.inputs[fm.focus].Focus()
	return fm
}

// update forwards msg to the focused input and copies its value into the form.
func (fm formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	if fm.form.Submitting {
		return fm, nil
	}
	fm.inputs = slices.Clone(fm.inputs)

	var cmd tea.Cmd
	fm.inputs[fm.focus], cmd = fm.inputs[fm.focus].Update(msg)

	name := domain.FieldNames[fm.focus]
	if v := fm.inputs[fm.focus].Value(); v != fm.form.Fields.Get(name) {
		fm.form = fm.form.SetField(name, v)
	}
	return fm, cmd
}

func (fm formModel) view(spinner string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fm.form.Title()))
	b.WriteString("\n\n")

	for i, name := range domain.FieldNames {
		label := labelStyle
		if i == fm.focus {
			label = focusedLabelStyle
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label.Render(validation.Label(name)), fm.inputs[i].View()))
		b.WriteString("\n")
		if msg, ok := fm.form.Errors[name]; ok {
			b.WriteString(labelStyle.Render(""))
			b.WriteString(fieldErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	switch {
	case fm.form.Submitting:
		b.WriteString("\n" + spinner + " Saving...")
	case fm.form.SubmitErr != nil:
		b.WriteString("\n" + errorBannerStyle.Render(fm.form.SubmitErr.Error()))
	}

	return dialogStyle.Render(b.String())
}
