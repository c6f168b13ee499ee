// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/arithmetictrainer/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RunMetrics computes correct tasks per minute and accuracy for a run.
func RunMetrics(correct, incorrect int, durationMs int64) (tpm, accuracy float64) {
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	tpm = float64(correct) / minutes
	return tpm, accuracy
}

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
func Sparkline(values []float64) string {
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

// RenderSummary prints a summary for runs.
func RenderSummary(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var totalTPM, totalAcc float64
	var solved, missed int
	bestTPM := 0.0
	for _, r := range runs {
		tpm, acc := RunMetrics(r.Correct, r.Incorrect, r.DurationMs)
		totalTPM += tpm
		totalAcc += acc
		solved += r.Correct
		missed += r.Incorrect
		bestTPM = math.Max(bestTPM, tpm)
	}
	count := float64(len(runs))
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", len(runs)),
		fmt.Sprintf("Solved: %d", solved),
		fmt.Sprintf("Incorrect: %d", missed),
		fmt.Sprintf("Avg tasks/min: %.2f", totalTPM/count),
		fmt.Sprintf("Best tasks/min: %.2f", bestTPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", (totalAcc/count)*100),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints moving-average sparklines for speed and accuracy.
func RenderCurves(w io.Writer, runs []model.RunAggregate, window int) error {
	if len(runs) == 0 {
		return nil
	}
	tpms := make([]float64, len(runs))
	accs := make([]float64, len(runs))
	for i, r := range runs {
		tpm, acc := RunMetrics(r.Correct, r.Incorrect, r.DurationMs)
		tpms[i] = tpm
		accs[i] = acc * 100
	}
	tpms = MovingAverage(tpms, window)
	accs = MovingAverage(accs, window)
	rows := [][]string{
		{"Tasks/min", "|" + Sparkline(tpms) + "|", fmt.Sprintf("%.2f", tpms[len(tpms)-1])},
		{"Accuracy", "|" + Sparkline(accs) + "|", fmt.Sprintf("%.2f%%", accs[len(accs)-1])},
	}
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", window); err != nil {
		return err
	}
	for _, line := range formatTable(nil, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderOperatorTable prints per-operator aggregates under title, weakest first.
func RenderOperatorTable(w io.Writer, title string, aggs []model.OperatorStats) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No operator stats found.")
		return err
	}
	rows := make([]model.OperatorStats, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := operatorAccuracy(rows[i]), operatorAccuracy(rows[j])
		if ai == aj {
			return rows[i].Operator < rows[j].Operator
		}
		return ai < aj
	})

	headers := []string{"Operator", "Accuracy", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			string(r.Operator),
			fmt.Sprintf("%.2f%%", operatorAccuracy(r)*100),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func operatorAccuracy(agg model.OperatorStats) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
