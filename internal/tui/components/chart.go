package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values scaled between their minimum and maximum.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkBlocks)-1))
		}
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// NetChart draws one bar per value, bar height by magnitude. Values below
// zero use negColor so net-loss days stand out from the rest.
func NetChart(values []float64, labels []string, posColor, negColor lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, posColor)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		peak = 1
	}

	step := chartTickStep(peak)
	for int(math.Ceil(peak/step)) > max(2, height/2) {
		step *= 2
	}
	ceiling := math.Ceil(peak/step) * step
	ticks := max(1, int(math.Round(ceiling/step)))
	rowsPerTick := max(2, height/ticks)
	chartH := rowsPerTick * ticks

	labelW := max(4, len(formatChartLabel(ceiling))+1)
	tickLabels := make(map[int]string, ticks)
	for i := 1; i <= ticks; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(step * float64(i))
	}

	chartW := max(5, width-labelW-1)
	values, labels, barW := fitBars(values, labels, chartW)
	n := len(values)
	gap := 1
	if n == 1 {
		gap = 0
	}
	axisLen := n*barW + max(0, n-1)*gap

	eighths := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	posStyle := lipgloss.NewStyle().Foreground(posColor).Background(t.Surface)
	negStyle := lipgloss.NewStyle().Foreground(negColor).Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", labelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))
		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			style := posStyle
			if v < 0 {
				style = negStyle
			}
			mag := math.Abs(v)
			switch {
			case mag >= top:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case mag > bottom:
				idx := int((mag - bottom) / (top - bottom) * 8)
				idx = max(1, min(idx, 8))
				b.WriteString(style.Render(strings.Repeat(string(eighths[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", labelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", labelW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(xAxisLabels(labels, barW, gap, axisLen), " ")))
	}
	return b.String()
}

// fitBars picks a bar width for chartW and downsamples when the bars
// would be narrower than two columns.
func fitBars(values []float64, labels []string, chartW int) ([]float64, []string, int) {
	n := len(values)
	if n == 1 {
		return values, labels, min(chartW, 6)
	}
	barW := (chartW - (n - 1)) / n
	if barW >= 2 {
		return values, labels, min(barW, 6)
	}

	keep := max(2, (chartW+1)/3)
	sampled := make([]float64, keep)
	var sampledLabels []string
	if len(labels) == n {
		sampledLabels = make([]string, keep)
	}
	for i := range sampled {
		src := i * (n - 1) / (keep - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels, 2
}

// xAxisLabels lays out labels under their bars without overlap, always
// keeping the final label when it fits.
func xAxisLabels(labels []string, barW, gap, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	n := len(labels)
	every := max(1, (n*8)/(axisLen+1))

	lastEnd := -1
	place := func(pos int, lbl string) {
		end := pos + len(lbl)
		if end > axisLen {
			pos = axisLen - len(lbl)
			end = axisLen
		}
		if pos <= lastEnd || pos < 0 {
			return
		}
		copy(buf[pos:end], lbl)
		lastEnd = end
	}
	for i := 0; i < n-1; i += every {
		place(i*(barW+gap), labels[i])
	}
	place((n-1)*(barW+gap), labels[n-1])
	return string(buf)
}

// chartTickStep picks a 1/2/5 interval giving about five ticks.
func chartTickStep(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	scaled := func(div float64, suffix string) string {
		if v == math.Trunc(v/div)*div {
			return fmt.Sprintf("%.0f%s", v/div, suffix)
		}
		return fmt.Sprintf("%.1f%s", v/div, suffix)
	}
	switch {
	case v >= 1e6:
		return scaled(1e6, "M")
	case v >= 1e3:
		return scaled(1e3, "k")
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
