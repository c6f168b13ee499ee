package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/arithmetictrainer/internal/model"
)

func TestRunMetrics(t *testing.T) {
	tpm, acc := RunMetrics(10, 10, 120000)
	if tpm != 5 {
		t.Fatalf("expected 5 tasks/min, got %v", tpm)
	}
	if acc != 0.5 {
		t.Fatalf("expected accuracy 0.5, got %v", acc)
	}
	tpm, acc = RunMetrics(3, 1, 0)
	if tpm != 0 || acc != 0.75 {
		t.Fatalf("unexpected zero-duration metrics: %v %v", tpm, acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	got := Sparkline([]float64{0, 10})
	if got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestRenderOperatorTableWeakestFirst(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.OperatorStats{
		{Operator: model.OpAdd, Correct: 9, Incorrect: 1},
		{Operator: model.OpDivide, Correct: 1, Incorrect: 1},
	}
	if err := RenderOperatorTable(&buf, "Per-Operator", aggs); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	div := strings.Index(out, "50.00%")
	add := strings.Index(out, "90.00%")
	if div < 0 || add < 0 || div > add {
		t.Fatalf("expected / before +:\n%s", out)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No runs found.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
