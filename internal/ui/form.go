package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/domain"
	"github.com/safarline/busadmin/internal/validate"
)

// formModal edits a draft of one record. The schema is rebuilt from the
// draft on every field change and on submit, so a discriminator such as a
// user's role adds or drops fields as soon as it is typed.
type formModal struct {
	ctx    context.Context
	screen screen
	mode   validate.Mode
	id     int64
	locale string

	draft  map[string]string
	schema validate.Schema
	inputs map[string]textinput.Model
	focus  int

	errs    domain.FieldErrors
	message string
	saving  bool
}

func newFormModal(ctx context.Context, s screen, mode validate.Mode, id int64, draft map[string]string, locale string) *formModal {
	if draft == nil {
		draft = map[string]string{}
	}
	f := &formModal{
		ctx:    ctx,
		screen: s,
		mode:   mode,
		id:     id,
		locale: locale,
		draft:  draft,
		inputs: map[string]textinput.Model{},
	}
	f.rebuild()
	f.focusField(0)
	return f
}

// rebuild recomputes the schema from the draft and creates inputs for any
// field that appeared.
func (f *formModal) rebuild() {
	f.schema = f.screen.Form(f.draft, f.mode, f.locale)
	for _, field := range f.schema.Fields {
		if _, ok := f.inputs[field.Name]; ok {
			continue
		}
		f.inputs[field.Name] = newFieldInput(field, f.draft[field.Name])
	}
	if f.focus >= len(f.schema.Fields) {
		f.focus = max(len(f.schema.Fields)-1, 0)
	}
}

func newFieldInput(field validate.Field, value string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Width = formWidth - 26
	in.CharLimit = 2000
	if field.MaxLen > 0 {
		in.CharLimit = field.MaxLen
	}
	switch field.Kind {
	case validate.KindPassword:
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	case validate.KindEnum:
		in.Placeholder = strings.Join(field.Options, " | ")
	case validate.KindDateTime:
		in.Placeholder = validate.DateTimeLayout
	case validate.KindFile:
		in.Placeholder = "path to file"
	case validate.KindID:
		in.Placeholder = "id"
	}
	in.SetValue(value)
	return in
}

func (f *formModal) focused() string {
	if len(f.schema.Fields) == 0 {
		return ""
	}
	return f.schema.Fields[f.focus].Name
}

func (f *formModal) focusField(i int) {
	if name := f.focused(); name != "" {
		in := f.inputs[name]
		in.Blur()
		f.inputs[name] = in
	}
	f.focus = i
	if name := f.focused(); name != "" {
		in := f.inputs[name]
		in.Focus()
		f.inputs[name] = in
	}
}

// syncDraft copies input values into the draft.
func (f *formModal) syncDraft() {
	for name, in := range f.inputs {
		f.draft[name] = in.Value()
	}
}

func (f *formModal) move(delta int) {
	f.syncDraft()
	current := f.focused()
	f.rebuild()
	// The focused field may have moved when the schema changed.
	idx := f.focus
	for i, field := range f.schema.Fields {
		if field.Name == current {
			idx = i
			break
		}
	}
	n := len(f.schema.Fields)
	if n == 0 {
		return
	}
	f.focus = idx
	f.focusField((idx + delta + n) % n)
}

// submit validates the draft and, when clean, starts the save. Local and
// server field errors land in the same map.
func (f *formModal) submit() tea.Cmd {
	f.syncDraft()
	f.rebuild()
	if errs := f.schema.Validate(f.draft); errs != nil {
		f.errs = errs
		f.message = "Please correct the highlighted fields"
		return nil
	}
	f.errs = nil
	f.message = ""

	payload := api.NewPayload(f.schema.Values(f.draft))
	for field, path := range f.schema.Files(f.draft) {
		payload = payload.WithFile(field, api.FileFromPath(path))
	}
	f.saving = true
	return saveCmd(f.ctx, f.screen, f.id, payload)
}

func (f *formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case opDoneMsg:
		if msg.op != opSave || msg.resource != f.screen.Endpoint().Name {
			return f, nil, false
		}
		f.saving = false
		if msg.err == nil {
			return f, nil, true
		}
		f.errs = api.FieldErrorsOf(msg.err)
		f.message = api.Message(msg.err)
		return f, nil, false

	case tea.KeyMsg:
		if f.saving {
			return f, nil, false
		}
		switch {
		case key.Matches(msg, keys.Escape):
			return f, nil, true
		case key.Matches(msg, keys.Submit):
			return f, f.submit(), false
		case key.Matches(msg, keys.Confirm):
			if f.focus == len(f.schema.Fields)-1 {
				return f, f.submit(), false
			}
			f.move(1)
			return f, nil, false
		case key.Matches(msg, keys.NextField):
			f.move(1)
			return f, nil, false
		case key.Matches(msg, keys.PrevField):
			f.move(-1)
			return f, nil, false
		}

		name := f.focused()
		if name == "" {
			return f, nil, false
		}
		in, cmd := f.inputs[name].Update(msg)
		f.inputs[name] = in
		return f, cmd, false
	}
	return f, nil, false
}

func (f *formModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	title := "New " + singular(f.screen.Title())
	if f.mode == validate.Edit {
		title = "Edit " + singular(f.screen.Title())
	}

	var b strings.Builder
	if f.message != "" {
		b.WriteString(styles.DangerText.Render(f.message))
		b.WriteString("\n\n")
	}
	for i, field := range f.schema.Fields {
		label := field.Title()
		if field.Required {
			label += " *"
		}
		label = lipgloss.NewStyle().Width(22).Render(truncate(label, 21))
		if i == f.focus {
			b.WriteString(styles.AccentText.Render(label))
		} else {
			b.WriteString(styles.MutedText.Render(label))
		}
		b.WriteString(f.inputs[field.Name].View())
		b.WriteString("\n")
		if msg, ok := f.errs[field.Name]; ok {
			b.WriteString(strings.Repeat(" ", 22))
			b.WriteString(styles.DangerText.Render(msg))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	if f.saving {
		b.WriteString(styles.WarningText.Render("Saving..."))
	} else {
		b.WriteString(styles.FaintText.Render("Tab: Next  •  Ctrl+S: Save  •  Esc: Cancel"))
	}
	return placeModal(theme, title, b.String(), formWidth, width, height)
}

// singular turns a tab title into a record noun for dialog titles.
func singular(title string) string {
	switch {
	case title == "Buses":
		return "Bus"
	case strings.HasSuffix(title, "ies"):
		return strings.TrimSuffix(title, "ies") + "y"
	case strings.HasSuffix(title, "s"):
		return strings.TrimSuffix(title, "s")
	}
	return title
}
