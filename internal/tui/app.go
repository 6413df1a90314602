// Package tui provides the interactive Bubble Tea dashboard for payoff.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const (
	tabOverview = iota
	tabHistory
	tabRecord
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160
	minContentHeight = 5

	flashTTL = 5 * time.Second
)

// Options configures the dashboard.
type Options struct {
	DBPath string
	// Today pins the reference date; zero follows the wall clock.
	Today       time.Time
	WindowDays  int
	DateFormat  string
	DefaultMode model.Mode
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	snap     *pipeline.Snapshot
	progress model.Progress
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	history  historyState
	record   recordState
	settings settingsState

	// Goal setup (huh form), shown on first run and on demand
	setupForm      *huh.Form
	setupVals      *SetupValues
	needSetup      bool
	setupAfterLoad bool

	flash    string
	flashErr bool
	flashAt  time.Time

	spinner spinner.Model
}

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates the dashboard model.
func NewApp(opts Options) App {
	if opts.WindowDays <= 0 {
		opts.WindowDays = engine.DefaultWindowDays
	}
	if opts.DateFormat == "" {
		opts.DateFormat = model.DateLayout
	}
	if !opts.DefaultMode.Valid() {
		opts.DefaultMode = model.ModeDebt
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	cfg := loadConfigOrDefault()
	refreshInterval := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < 10*time.Second {
		refreshInterval = 30 * time.Second
	}

	return App{
		opts:            opts,
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		history:         historyState{period: model.PeriodDay},
		spinner:         sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts.DBPath),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a App) today() time.Time {
	if a.opts.Today.IsZero() {
		return time.Now()
	}
	return a.opts.Today
}

func (a *App) recompute() {
	if a.snap == nil {
		a.progress = model.Progress{}
		return
	}
	a.progress = a.snap.Progress(a.today(), engine.Options{WindowDays: a.opts.WindowDays})
	a.history.clamp(len(a.historyLines()))
}

func (a *App) setFlash(msg string, isErr bool) {
	a.flash = msg
	a.flashErr = isErr
	a.flashAt = time.Now()
}

func (a *App) openSetup() tea.Cmd {
	var st *model.Settings
	mode := a.opts.DefaultMode
	if a.snap != nil {
		st = a.snap.Settings
		if st != nil {
			mode = a.snap.Mode
		}
	}
	a.setupVals = NewSetupValues(st, mode)
	a.setupForm = NewSetupForm(a.setupVals, a.today())
	a.needSetup = true
	if a.width > 0 {
		a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
	}
	return a.setupForm.Init()
}

func (a App) setupActive() bool {
	return a.needSetup && a.setupForm != nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// tab bar, status bar and the history card chrome
		a.history.viewH = max(1, msg.Height-2-6)
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupActive() {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabHistory {
				a.history.scroll(-3, len(a.historyLines()))
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabHistory {
				a.history.scroll(3, len(a.historyLines()))
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.loadErr = msg.Err
		if msg.Err != nil {
			return a, nil
		}
		a.snap = msg.Snapshot
		a.recompute()
		if a.snap.Settings == nil {
			return a, a.openSetup()
		}
		return a, nil

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.loadTime = msg.LoadTime
		if msg.Err != nil {
			a.setFlash("Refresh failed: "+msg.Err.Error(), true)
			return a, nil
		}
		retried := a.loadErr != nil
		a.loadErr = nil
		a.snap = msg.Snapshot
		a.recompute()
		if (a.setupAfterLoad || retried) && a.snap.Settings == nil {
			a.setupAfterLoad = false
			return a, a.openSetup()
		}
		a.setupAfterLoad = false
		return a, nil

	case savedMsg:
		if msg.err != nil {
			a.setFlash(msg.err.Error(), true)
			return a, nil
		}
		a.setFlash(msg.flash, false)
		a.refreshing = true
		return a, refreshDataCmd(a.opts.DBPath)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.flash != "" && time.Since(a.flashAt) > flashTTL {
			a.flash = ""
		}
		if a.loaded && a.autoRefresh && !a.refreshing && !a.setupActive() &&
			time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.opts.DBPath))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks) to whatever has focus.
	if a.setupActive() {
		return a.updateSetupForm(msg)
	}
	var cmd tea.Cmd
	switch {
	case a.activeTab == tabRecord && a.record.editing:
		a.record.inputs[a.record.focus], cmd = a.record.inputs[a.record.focus].Update(msg)
	case a.activeTab == tabSettings && a.settings.editing:
		a.settings.input, cmd = a.settings.input.Update(msg)
	}
	return a, cmd
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.setupActive() {
		return a.updateSetupForm(msg)
	}

	// Text entry and confirmations own the keyboard.
	if a.activeTab == tabRecord && (a.record.editing || a.record.confirm) {
		return a.updateRecordInput(msg)
	}
	if a.activeTab == tabSettings && (a.settings.editing || a.settings.confirmClear) {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if m, cmd, handled := a.updateTabKey(key); handled {
		return m, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.opts.DBPath)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		cfg := loadConfigOrDefault()
		cfg.TUI.AutoRefresh = a.autoRefresh
		_ = config.Save(cfg)
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if r := []rune(key); len(r) == 1 {
		if idx := components.TabIdxByKey(r[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// updateTabKey dispatches keys that only mean something on the active tab.
func (a App) updateTabKey(key string) (tea.Model, tea.Cmd, bool) {
	switch a.activeTab {
	case tabHistory:
		return a.updateHistoryKey(key)
	case tabRecord:
		return a.updateRecordKey(key)
	case tabSettings:
		return a.updateSettingsKey(key)
	}
	return a, nil, false
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil
		st, mode, err := a.setupVals.Parse(a.today())
		if err != nil {
			a.setFlash(err.Error(), true)
			return a, nil
		}
		return a, saveSetupCmd(a.opts.DBPath, st, mode)

	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		if a.snap == nil || a.snap.Settings == nil {
			a.setFlash("Setup skipped. Open Settings to run it later.", true)
		}
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupActive() {
		return a.setupForm.View()
	}
	if a.loadErr != nil {
		return a.viewLoadError()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  payoff needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) centeredCard(body string, border lipgloss.Color, padV, padH int) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Background(t.Surface).
		Padding(padV, padH).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logo.Render("◈ payoff"))
	b.WriteString(sub.Render(" · debt & savings progress"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(sub.Render(" Opening ledger..."))
	return a.centeredCard(b.String(), t.BorderAccent, 2, 4)
}

func (a App) viewLoadError() string {
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := title.Render("Could not open the ledger") + "\n\n" +
		sub.Render(a.loadErr.Error()) + "\n" +
		sub.Render(a.opts.DBPath) + "\n\n" +
		sub.Render("[r] retry  [q] quit")
	return a.centeredCard(body, t.Expense, 1, 3)
}

func (a App) viewHelp() string {
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	groups := []struct {
		name     string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o h e x", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move / scroll"},
			{"g G", "Top / bottom of history"},
		}},
		{"History", [][2]string{
			{"d w m", "Group by day, week, month"},
		}},
		{"Record", [][2]string{
			{"1 2 3", "Income, extra income, expense"},
			{"Enter", "Start / submit entry"},
			{"Esc", "Cancel"},
		}},
		{"General", [][2]string{
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, g := range groups {
		b.WriteString("\n")
		b.WriteString(section.Render(g.name))
		b.WriteString("\n")
		for _, kb := range g.bindings {
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", kb[0])), desc.Render(kb[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("Press any key to close"))
	return a.centeredCard(b.String(), t.BorderAccent, 1, 3)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	mode := ""
	if a.snap != nil {
		mode = cli.FormatModeLabel(a.snap.Mode)
	}
	statusBar := components.RenderStatusBar(w, components.Status{
		Mode:        mode,
		Today:       model.DateKey(a.today()),
		DataAge:     dataAge(time.Since(a.lastRefresh)),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Flash:       a.flash,
		FlashErr:    a.flashErr,
	})

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case tabRecord:
		content = a.renderRecordTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func dataAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

// chartDateLabels builds compact x-axis labels for consecutive days,
// oldest first: month names at the start and at month boundaries,
// day numbers elsewhere.
func chartDateLabels(dates []time.Time) []string {
	labels := make([]string, len(dates))
	prevMonth := time.Month(0)
	for i, dt := range dates {
		switch {
		case i == len(dates)-1 && i > 0:
			labels[i] = strconv.Itoa(dt.Day())
		case dt.Month() != prevMonth:
			labels[i] = dt.Format("Jan")
		default:
			labels[i] = strconv.Itoa(dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads every line to w so gaps between cards
// carry the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab under column x, or -1. Hitboxes follow the
// widths RenderTabBar draws, with a one-column separator between tabs.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
