package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type recordKind int

const (
	recordIncome recordKind = iota
	recordExtraIncome
	recordExtraExpense
)

var recordKinds = []struct {
	label string
	hint  string
}{
	{"Daily income", "What you earned today. Replaces any earlier value for the day."},
	{"Extra income", "A one-off amount on top of the daily income."},
	{"Extra expense", "A one-off cost, subtracted from the day's net."},
}

const (
	fieldAmount = iota
	fieldDescription
	fieldDate
	recordFieldCount
)

// recordState tracks the record tab form.
type recordState struct {
	kind    recordKind
	editing bool
	focus   int
	inputs  [recordFieldCount]textinput.Model
	// confirm is set while waiting for y/n on a daily income overwrite.
	confirm bool
	pending pendingRecord
}

func (r recordState) fields() []int {
	if r.kind == recordIncome {
		return []int{fieldAmount, fieldDate}
	}
	return []int{fieldAmount, fieldDescription, fieldDate}
}

func (r *recordState) move(step int) {
	fields := r.fields()
	idx := 0
	for i, f := range fields {
		if f == r.focus {
			idx = i
		}
	}
	idx = (idx + step + len(fields)) % len(fields)
	r.focus = fields[idx]
	for i := range r.inputs {
		if i == r.focus {
			r.inputs[i].Focus()
		} else {
			r.inputs[i].Blur()
		}
	}
}

func newRecordInputs(today string) [recordFieldCount]textinput.Model {
	var in [recordFieldCount]textinput.Model
	for i := range in {
		in[i] = textinput.New()
		in[i].Width = 40
	}
	in[fieldAmount].Placeholder = "0.00"
	in[fieldAmount].CharLimit = 16
	in[fieldDescription].Placeholder = "what was it?"
	in[fieldDescription].CharLimit = 120
	in[fieldDate].Placeholder = "YYYY-MM-DD"
	in[fieldDate].CharLimit = 10
	in[fieldDate].SetValue(today)
	return in
}

func (a App) updateRecordKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "1", "2", "3":
		a.record.kind = recordKind(key[0] - '1')
	case "j", "down":
		a.record.kind = (a.record.kind + 1) % recordKind(len(recordKinds))
	case "k", "up":
		a.record.kind = (a.record.kind + recordKind(len(recordKinds)) - 1) % recordKind(len(recordKinds))
	case "enter":
		if a.snap == nil || a.snap.Settings == nil {
			a.setFlash(model.ErrSetupRequired.Error(), true)
			return a, nil, true
		}
		a.record.editing = true
		a.record.inputs = newRecordInputs(model.DateKey(a.today()))
		a.record.focus = fieldAmount
		a.record.inputs[fieldAmount].Focus()
		return a, textinput.Blink, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateRecordInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.record.confirm {
		switch key {
		case "y", "Y":
			a.record.confirm = false
			a.record.editing = false
			return a, recordCmd(a.opts.DBPath, a.record.pending)
		case "n", "N", "esc":
			a.record.confirm = false
			a.setFlash("Kept the existing income", false)
		}
		return a, nil
	}

	switch key {
	case "esc":
		a.record.editing = false
		return a, nil
	case "tab", "down":
		a.record.move(1)
		return a, nil
	case "shift+tab", "up":
		a.record.move(-1)
		return a, nil
	case "enter":
		p, err := a.record.parse(a.today())
		if err != nil {
			a.setFlash(err.Error(), true)
			return a, nil
		}
		if p.kind == recordIncome {
			if rec, ok := a.snap.Records[model.DateKey(p.date)]; ok && rec.HasDailyIncome() {
				a.record.pending = p
				a.record.confirm = true
				return a, nil
			}
		}
		a.record.editing = false
		return a, recordCmd(a.opts.DBPath, p)
	}

	var cmd tea.Cmd
	a.record.inputs[a.record.focus], cmd = a.record.inputs[a.record.focus].Update(msg)
	return a, cmd
}

// parse validates the form into a write.
func (r recordState) parse(today time.Time) (pendingRecord, error) {
	p := pendingRecord{kind: r.kind}
	var err error

	if p.amount, err = cli.ParseAmount(r.inputs[fieldAmount].Value(), false); err != nil {
		return p, err
	}
	if p.date, err = cli.ParseDate(r.inputs[fieldDate].Value(), today); err != nil {
		return p, err
	}
	if r.kind != recordIncome {
		p.description = strings.TrimSpace(r.inputs[fieldDescription].Value())
		if err := model.ValidateEntry(p.amount, p.description); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (a App) renderRecordTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	primary := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selected := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).Bold(true)

	var kinds strings.Builder
	for i, k := range recordKinds {
		line := fmt.Sprintf(" %d  %-14s", i+1, k.label)
		if recordKind(i) == a.record.kind {
			kinds.WriteString(selected.Render("▸" + line))
		} else {
			kinds.WriteString(muted.Render(" " + line))
		}
		kinds.WriteString("\n")
	}
	kinds.WriteString("\n")
	kinds.WriteString(muted.Render(recordKinds[a.record.kind].hint))

	var form strings.Builder
	switch {
	case a.record.confirm:
		p := a.record.pending
		existing := 0.0
		if rec, ok := a.snap.Records[model.DateKey(p.date)]; ok && rec.DailyIncome != nil {
			existing = *rec.DailyIncome
		}
		form.WriteString(warn.Render(fmt.Sprintf("Income for %s is already %s.", model.DateKey(p.date), cli.FormatMoney(existing))))
		form.WriteString("\n")
		form.WriteString(primary.Render(fmt.Sprintf("Replace it with %s? ", cli.FormatMoney(p.amount))))
		form.WriteString(accent.Render("[y/n]"))

	case a.record.editing:
		labels := map[int]string{fieldAmount: "Amount", fieldDescription: "Description", fieldDate: "Date"}
		for _, f := range a.record.fields() {
			marker := "  "
			style := muted
			if f == a.record.focus {
				marker = "▸ "
				style = accent
			}
			form.WriteString(style.Render(fmt.Sprintf("%s%-12s ", marker, labels[f])))
			form.WriteString(a.record.inputs[f].View())
			form.WriteString("\n")
		}
		form.WriteString("\n")
		form.WriteString(muted.Render("[Tab] next field  [Enter] save  [Esc] cancel"))

	default:
		form.WriteString(muted.Render("[1-3] or [j/k] choose  [Enter] start"))
		if a.snap != nil && a.snap.Settings != nil {
			today := model.DateKey(a.today())
			if rec, ok := a.snap.Records[today]; ok && rec.HasDailyIncome() {
				form.WriteString("\n\n")
				form.WriteString(primary.Render("Today's income: " + cli.FormatMoney(*rec.DailyIncome)))
			}
		}
	}

	if a.isCompactLayout() {
		return components.ContentCard("Record", kinds.String(), cw) + "\n" +
			components.ContentCard(recordKinds[a.record.kind].label, form.String(), cw)
	}
	halves := components.LayoutRow(cw, 2)
	return components.CardRow([]string{
		components.ContentCard("Record", kinds.String(), halves[0]),
		components.ContentCard(recordKinds[a.record.kind].label, form.String(), halves[1]),
	})
}
