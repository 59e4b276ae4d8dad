// Package stats contains statistics calculations and reporting for
// archived results.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/speedtype/internal/history"
	"github.com/verte-zerg/speedtype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
// A positive width keeps only the most recent values that fit.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the aggregate line block for results.
func RenderSummary(w io.Writer, results []model.TestResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	sum := history.Summarize(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", sum.TotalTests),
		fmt.Sprintf("Avg WPM: %.2f", sum.AvgWPM),
		fmt.Sprintf("Best WPM: %.2f", sum.MaxWPM),
		fmt.Sprintf("Lowest WPM: %.2f", sum.MinWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", sum.AvgAccuracy),
		fmt.Sprintf("Typing Time: %.1f min", sum.TotalTime/60),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

const trendLabelWidth = len("Accuracy ")

// RenderTrends prints WPM and accuracy sparklines smoothed over window
// results and sized to totalWidth columns.
func RenderTrends(w io.Writer, results []model.TestResult, window, totalWidth int, useColor bool) error {
	if len(results) == 0 {
		return nil
	}
	wpms := make([]float64, len(results))
	accs := make([]float64, len(results))
	for i, r := range results {
		wpms[i] = r.WPM
		accs[i] = float64(r.Accuracy)
	}
	width := totalWidth - trendLabelWidth
	if width < minSparkWidth {
		width = minSparkWidth
	}
	if _, err := fmt.Fprintln(w, "Trends"); err != nil {
		return err
	}
	rows := []struct {
		name   string
		values []float64
		color  string
	}{
		{"WPM", MovingAverage(wpms, window), colorCyan},
		{"Accuracy", MovingAverage(accs, window), colorMagenta},
	}
	for _, row := range rows {
		line := Sparkline(row.values, width)
		if useColor {
			line = row.color + line + colorReset
		}
		if _, err := fmt.Fprintf(w, "%-*s%s\n", trendLabelWidth, row.name, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderResultTable prints results as an aligned table, oldest first.
func RenderResultTable(w io.Writer, title string, results []model.TestResult) error {
	if len(results) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	headers, rows := ResultRows(results)
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// ResultRows formats results the way the history export does.
func ResultRows(results []model.TestResult) ([]string, [][]string) {
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, history.Row(i+1, r))
	}
	return append([]string(nil), history.Header...), rows
}
