package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/payoff/internal/tui/theme"
)

func TestSparklineRange(t *testing.T) {
	out := Sparkline([]float64{-10, 0, 10}, theme.Active.Chart)
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Errorf("Sparkline should span lowest to highest block, got %q", out)
	}
	if Sparkline(nil, theme.Active.Chart) != "" {
		t.Error("Sparkline(nil) should be empty")
	}
}

func TestNetChartHeight(t *testing.T) {
	vals := []float64{100, -40, 250, 0, 80}
	labels := []string{"Apr", "2", "3", "4", "5"}
	out := NetChart(vals, labels, theme.Active.Income, theme.Active.Expense, 60, 8)

	lines := strings.Split(out, "\n")
	// at least two tick rows, the x axis and labels
	if len(lines) < 4 {
		t.Fatalf("NetChart produced %d lines, want at least 4", len(lines))
	}
	if !strings.Contains(lines[len(lines)-2], "└") {
		t.Errorf("x axis missing: %q", lines[len(lines)-2])
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, "Apr") || !strings.Contains(last, "5") {
		t.Errorf("x labels = %q", last)
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w > 60 {
			t.Errorf("line %d width %d exceeds 60", i, w)
		}
	}
}

func TestNetChartDownsamples(t *testing.T) {
	vals := make([]float64, 200)
	for i := range vals {
		vals[i] = float64(i)
	}
	out := NetChart(vals, nil, theme.Active.Income, theme.Active.Expense, 40, 6)
	for i, l := range strings.Split(out, "\n") {
		if w := lipgloss.Width(l); w > 40 {
			t.Errorf("line %d width %d exceeds 40", i, w)
		}
	}
}

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		peak, want float64
	}{
		{0, 1},
		{10, 2},
		{100, 20},
		{450, 50},
		{1000, 200},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.peak); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.peak, got, tt.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.5, "0.50"},
		{20, "20"},
		{1500, "1.5k"},
		{2000, "2k"},
		{3_000_000, "3M"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.in); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
