package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/stockroom/internal/api"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldQty
	fieldMoney
	fieldCategory
)

// fieldSpec describes one input of an add or edit form.
type fieldSpec struct {
	Label    string
	Kind     fieldKind
	Value    string
	Optional bool
}

// form is the add/edit dialog for one record.
type form struct {
	title   string
	view    *resourceView
	id      int64 // zero when adding
	specs   []fieldSpec
	inputs  []textinput.Model
	focus   int
	err     string
	pending bool
}

func newForm(view *resourceView, id int64, specs []fieldSpec) form {
	verb := "Add"
	if id != 0 {
		verb = fmt.Sprintf("Edit #%d", id)
	}
	f := form{
		title:  fmt.Sprintf("%s %s", verb, view.singular),
		view:   view,
		id:     id,
		specs:  specs,
		inputs: make([]textinput.Model, len(specs)),
	}
	for i, spec := range specs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		in.Width = 32
		in.SetValue(spec.Value)
		switch spec.Kind {
		case fieldQty:
			in.Placeholder = "0"
		case fieldMoney:
			in.Placeholder = "0.00"
		case fieldCategory:
			in.Placeholder = "name or id"
		}
		f.inputs[i] = in
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
	}
	return out
}

func (f *form) move(delta int) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// update feeds a key to the focused input. It reports whether the form
// should be submitted.
func (f form) update(msg tea.KeyMsg) (form, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "down":
		f.move(1)
		return f, nil, false
	case "shift+tab", "up":
		f.move(-1)
		return f, nil, false
	case "enter":
		if f.focus < len(f.inputs)-1 {
			f.move(1)
			return f, nil, false
		}
		return f, nil, true
	case "ctrl+s":
		return f, nil, true
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return f, cmd, false
}

func (f form) render(styles Styles, width int) string {
	labelWidth := 0
	for _, spec := range f.specs {
		labelWidth = max(labelWidth, len(spec.Label))
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(f.title))
	b.WriteString("\n\n")
	for i, spec := range f.specs {
		label := fmt.Sprintf("%-*s", labelWidth, spec.Label)
		if i == f.focus {
			b.WriteString(styles.AccentText.Render("> " + label))
		} else {
			b.WriteString(styles.MutedText.Render("  " + label))
		}
		b.WriteString("  ")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	if f.view.preview != nil {
		if p := f.view.preview(f.values()); p != "" {
			b.WriteString("\n")
			b.WriteString(styles.InfoText.Render(p))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	switch {
	case f.pending:
		b.WriteString(styles.WarningText.Render("Saving..."))
	case f.err != "":
		b.WriteString(styles.DangerText.Render(f.err))
	default:
		b.WriteString(styles.FaintText.Render("enter next/save  tab move  esc cancel"))
	}
	return styles.Dialog.Width(min(width-4, 64)).Render(b.String())
}

// Field parsing shared by the record builders.

func requireText(label, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return v, nil
}

func parseQty(label, value string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("%s is required", strings.ToLower(label))
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", strings.ToLower(label))
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", strings.ToLower(label))
	}
	return n, nil
}

func parseMoney(label, value string) (float64, error) {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "$"))
	if v == "" {
		return 0, fmt.Errorf("%s is required", strings.ToLower(label))
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", strings.ToLower(label))
	}
	if f < 0 {
		return 0, fmt.Errorf("%s must not be negative", strings.ToLower(label))
	}
	return f, nil
}

var errUnknownCategory = errors.New("unknown category")

// resolveCategory accepts a category id or a case-insensitive name.
func resolveCategory(value string, categories []api.Category) (int64, error) {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "#"))
	if v == "" {
		return 0, errors.New("category is required")
	}
	if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, v) {
			return c.ID, nil
		}
	}
	return 0, fmt.Errorf("%w %q", errUnknownCategory, v)
}

func buildCategoryInput(values []string) (api.CategoryInput, error) {
	name, err := requireText("Name", values[0])
	if err != nil {
		return api.CategoryInput{}, err
	}
	return api.CategoryInput{Name: name}, nil
}

func buildProductInput(values []string, categories []api.Category) (api.ProductInput, error) {
	var in api.ProductInput
	var err error
	if in.Name, err = requireText("Name", values[0]); err != nil {
		return in, err
	}
	if in.CategoryID, err = resolveCategory(values[1], categories); err != nil {
		return in, err
	}
	if in.SKU, err = requireText("SKU", values[2]); err != nil {
		return in, err
	}
	if in.Price, err = parseMoney("Price", values[3]); err != nil {
		return in, err
	}
	if in.Qty, err = parseQty("Qty", values[4]); err != nil {
		return in, err
	}
	in.Description = strings.TrimSpace(values[5])
	return in, nil
}

func buildLineInput(values []string) (api.LineInput, error) {
	item, err := requireText("Item", values[0])
	if err != nil {
		return api.LineInput{}, err
	}
	qty, err := parseQty("Qty", values[1])
	if err != nil {
		return api.LineInput{}, err
	}
	if qty == 0 {
		return api.LineInput{}, errors.New("qty must be at least 1")
	}
	price, err := parseMoney("Price", values[2])
	if err != nil {
		return api.LineInput{}, err
	}
	return api.NewLineInput(item, qty, price), nil
}

// linePreview shows the computed total while a line form is being edited.
func linePreview(values []string) string {
	qty, errQ := strconv.Atoi(strings.TrimSpace(values[1]))
	price, errP := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(values[2]), "$")), 64)
	if errQ != nil || errP != nil {
		return ""
	}
	return "Total " + formatMoney(float64(qty)*price)
}
