package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTotal = iota
	settingsFieldExpense
	settingsFieldIncome
	settingsFieldMode
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldSetup
	settingsFieldClear
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab.
type settingsState struct {
	cursor       int
	editing      bool
	input        textinput.Model
	confirmClear bool
}

func isAmountField(f int) bool {
	return f == settingsFieldTotal || f == settingsFieldExpense || f == settingsFieldIncome
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
		return a, nil, true
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
		return a, nil, true
	case "enter":
		m, cmd := a.settingsActivate()
		return m, cmd, true
	}
	return a, nil, false
}

// settingsActivate handles Enter on the selected row: text fields open an
// input, toggles flip in place.
func (a App) settingsActivate() (tea.Model, tea.Cmd) {
	st := a.currentSettings()
	cfg := loadConfigOrDefault()

	switch f := a.settings.cursor; {
	case isAmountField(f):
		if st == nil {
			a.setFlash(model.ErrSetupRequired.Error(), true)
			return a, nil
		}
		ti := textinput.New()
		ti.CharLimit = 16
		ti.Width = 20
		switch f {
		case settingsFieldTotal:
			ti.SetValue(fmt.Sprintf("%.2f", st.TotalAmount))
		case settingsFieldExpense:
			ti.SetValue(fmt.Sprintf("%.2f", st.MonthlyExpense))
		case settingsFieldIncome:
			ti.SetValue(fmt.Sprintf("%.2f", st.DailyIncome))
		}
		ti.Focus()
		a.settings.input = ti
		a.settings.editing = true
		return a, textinput.Blink

	case f == settingsFieldRefreshInterval:
		ti := textinput.New()
		ti.CharLimit = 5
		ti.Width = 10
		ti.Placeholder = "30 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
		ti.Focus()
		a.settings.input = ti
		a.settings.editing = true
		return a, textinput.Blink

	case f == settingsFieldMode:
		next := model.ModeSaving
		if a.snap != nil && a.snap.Mode == model.ModeSaving {
			next = model.ModeDebt
		}
		return a, saveModeCmd(a.opts.DBPath, next)

	case f == settingsFieldTheme:
		names := theme.Names()
		next := names[0]
		for i, n := range names {
			if n == theme.Active.Name {
				next = names[(i+1)%len(names)]
			}
		}
		theme.SetActive(next)
		cfg.Appearance.Theme = next
		a.saveConfig(cfg, "Theme set to "+next)
		return a, nil

	case f == settingsFieldAutoRefresh:
		a.autoRefresh = !a.autoRefresh
		cfg.TUI.AutoRefresh = a.autoRefresh
		a.saveConfig(cfg, fmt.Sprintf("Auto refresh %v", a.autoRefresh))
		return a, nil

	case f == settingsFieldSetup:
		return a, a.openSetup()

	case f == settingsFieldClear:
		a.settings.confirmClear = true
		return a, nil
	}
	return a, nil
}

func (a *App) saveConfig(cfg config.Config, flash string) {
	if err := config.Save(cfg); err != nil {
		a.setFlash("Save failed: "+err.Error(), true)
		return
	}
	a.setFlash(flash, false)
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.settings.confirmClear {
		a.settings.confirmClear = false
		if key == "y" || key == "Y" {
			a.setupAfterLoad = true
			return a, clearAllCmd(a.opts.DBPath)
		}
		a.setFlash("Nothing was deleted", false)
		return a, nil
	}

	switch key {
	case "enter":
		a.settings.editing = false
		return a.settingsSave()
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a App) settingsSave() (tea.Model, tea.Cmd) {
	val := strings.TrimSpace(a.settings.input.Value())

	if a.settings.cursor == settingsFieldRefreshInterval {
		sec, err := strconv.Atoi(val)
		if err != nil || sec < 10 {
			a.setFlash("Refresh interval must be a whole number of seconds, at least 10", true)
			return a, nil
		}
		a.refreshInterval = time.Duration(sec) * time.Second
		cfg := loadConfigOrDefault()
		cfg.TUI.RefreshIntervalSec = sec
		a.saveConfig(cfg, fmt.Sprintf("Refreshing every %ds", sec))
		return a, nil
	}

	cur := a.currentSettings()
	if cur == nil {
		a.setFlash(model.ErrSetupRequired.Error(), true)
		return a, nil
	}
	amount, err := cli.ParseAmount(val, a.settings.cursor == settingsFieldExpense)
	if err != nil {
		a.setFlash(err.Error(), true)
		return a, nil
	}

	next := *cur
	switch a.settings.cursor {
	case settingsFieldTotal:
		next.TotalAmount = amount
	case settingsFieldExpense:
		next.MonthlyExpense = amount
	case settingsFieldIncome:
		next.DailyIncome = amount
	}
	return a, correctCmd(a.opts.DBPath, next)
}

func (a App) currentSettings() *model.Settings {
	if a.snap == nil {
		return nil
	}
	return a.snap.Settings
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	st := a.currentSettings()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).Bold(true)

	amount := func(get func(model.Settings) float64) string {
		if st == nil {
			return "(not set)"
		}
		return cli.FormatMoney(get(*st))
	}
	mode := "-"
	if a.snap != nil {
		mode = cli.FormatModeLabel(a.snap.Mode)
	}

	fields := []struct{ label, value string }{
		{"Total amount", amount(func(s model.Settings) float64 { return s.TotalAmount })},
		{"Monthly expense", amount(func(s model.Settings) float64 { return s.MonthlyExpense })},
		{"Daily income", amount(func(s model.Settings) float64 { return s.DailyIncome })},
		{"Mode", mode},
		{"Theme", theme.Active.Name},
		{"Auto refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
		{"Run setup", "change target date or start over"},
		{"Clear all data", "settings, records and mode"},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}
		if i == a.settings.cursor {
			row := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")) +
				selectedStyle.Render(f.value)
			if pad := innerW - lipgloss.Width(row); pad > 0 {
				row += lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad))
			}
			form.WriteString(row)
		} else {
			form.WriteString(labelStyle.Render("  " + fmt.Sprintf("%-18s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	form.WriteString("\n")
	if a.settings.confirmClear {
		form.WriteString(warnStyle.Render("Delete every setting and record? This cannot be undone. [y/N]"))
	} else {
		form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit or toggle  [Esc] cancel"))
	}

	target := "-"
	if st != nil {
		target = cli.FormatDate(st.TargetDate, a.opts.DateFormat)
	}
	recorded := 0
	if a.snap != nil {
		recorded = len(a.snap.Records)
	}
	var info strings.Builder
	info.WriteString(labelStyle.Render("Target date:    ") + valueStyle.Render(target) + "\n")
	info.WriteString(labelStyle.Render("Days recorded:  ") + valueStyle.Render(strconv.Itoa(recorded)) + "\n")
	info.WriteString(labelStyle.Render("Average window: ") + valueStyle.Render(fmt.Sprintf("%d days", a.opts.WindowDays)) + "\n")
	info.WriteString(labelStyle.Render("Database:       ") + valueStyle.Render(a.opts.DBPath) + "\n")
	info.WriteString(labelStyle.Render("Load time:      ") + valueStyle.Render(fmt.Sprintf("%dms", a.loadTime.Milliseconds())) + "\n")
	info.WriteString(labelStyle.Render("Config file:    ") + valueStyle.Render(config.ConfigPath()))

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("General", info.String(), cw)
}
