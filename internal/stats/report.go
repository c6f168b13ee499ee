package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/arithmetictrainer/internal/model"
	"github.com/verte-zerg/arithmetictrainer/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs         []model.RunAggregate
	WindowRunIDs []int64
	OperatorsAll []model.OperatorStats
	OperatorsWin []model.OperatorStats
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}

	windowIDs := lastRunIDs(runs, cfg.CurveWindow)
	opsAll, err := st.ListOperatorAggregatesForRuns(ctx, runIDs(runs))
	if err != nil {
		return Report{}, err
	}
	opsWin, err := st.ListOperatorAggregatesForRuns(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Runs:         runs,
		WindowRunIDs: windowIDs,
		OperatorsAll: opsAll,
		OperatorsWin: opsWin,
	}, nil
}

// Render writes the full text report.
func (r Report) Render(w io.Writer, window int) error {
	if err := RenderSummary(w, r.Runs); err != nil {
		return err
	}
	if len(r.Runs) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Runs, window); err != nil {
		return err
	}
	winTitle := fmt.Sprintf("Per-Operator (last %d runs)", len(r.WindowRunIDs))
	if err := RenderOperatorTable(w, winTitle, r.OperatorsWin); err != nil {
		return err
	}
	return RenderOperatorTable(w, "Per-Operator (all runs)", r.OperatorsAll)
}

func runIDs(runs []model.RunAggregate) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	return ids
}

func lastRunIDs(runs []model.RunAggregate, window int) []int64 {
	if window <= 0 || len(runs) <= window {
		return runIDs(runs)
	}
	return runIDs(runs[len(runs)-window:])
}
