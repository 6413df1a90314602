package cli

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "History",
		Headers: []string{"Date", "Net"},
		Rows: [][]string{
			{"2025-04-15", "+¥1,200.00"},
			{"---"},
			{"Total", "+¥1,200.00"},
		},
	})

	for _, want := range []string{"History", "Date", "2025-04-15", "+¥1,200.00", "├", "╰"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderTable output missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title, top, header, header sep, row, sep, row, bottom
	if len(lines) != 8 {
		t.Errorf("RenderTable produced %d lines, want 8:\n%s", len(lines), out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q, want empty", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("RenderSparkline(nil) = %q", got)
	}
	got := []rune(RenderSparkline([]float64{-100, 0, 100}))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] != '▁' || got[2] != '█' {
		t.Errorf("RenderSparkline = %q, want lowest first and highest last", string(got))
	}
	flat := RenderSparkline([]float64{5, 5})
	if flat != "▁▁" {
		t.Errorf("flat series = %q, want ▁▁", flat)
	}
}

func TestRenderProgressBar(t *testing.T) {
	out := RenderProgressBar(150, 10)
	if !strings.Contains(out, "100.0%") {
		t.Errorf("over-100 bar should clamp, got %q", out)
	}
	if strings.Count(out, "█") != 10 {
		t.Errorf("full bar should have 10 filled cells: %q", out)
	}
	half := RenderProgressBar(50, 10)
	if strings.Count(half, "█") != 5 || strings.Count(half, "░") != 5 {
		t.Errorf("half bar = %q", half)
	}
	if RenderProgressBar(50, 0) != "" {
		t.Error("zero-width bar should be empty")
	}
}

func TestRenderKV(t *testing.T) {
	out := RenderKV([][2]string{{"Remaining", "$10.00"}, {"Target", "2025-12-31"}})
	if !strings.Contains(out, "Remaining") || !strings.Contains(out, "2025-12-31") {
		t.Errorf("RenderKV output = %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("RenderKV lines = %d, want 2", strings.Count(out, "\n"))
	}
}

func TestRenderTableAlignsWideSymbols(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Day", "Net"},
		Rows: [][]string{
			{"a", "¥1.00"},
			{"b", "¥10.00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	width := len([]rune(lines[0]))
	for _, l := range lines[1:] {
		if got := len([]rune(l)); got != width {
			t.Errorf("line %q is %d runes wide, want %d", l, got, width)
		}
	}
}
