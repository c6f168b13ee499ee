package practice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/arithmetictrainer/internal/model"
	"github.com/verte-zerg/arithmetictrainer/internal/trainer"
)

type fakeRecorder struct {
	runs []model.RunStats
	ops  [][]model.OperatorStats
}

func (f *fakeRecorder) InsertRun(_ context.Context, run model.RunStats, ops []model.OperatorStats) (int64, error) {
	f.runs = append(f.runs, run)
	f.ops = append(f.ops, ops)
	return int64(len(f.runs)), nil
}

func newRun(t *testing.T, target int) *Run {
	t.Helper()
	s, err := trainer.New([]model.OperatorConfig{{
		Operator:    model.OpAdd,
		VariableNum: 2,
		VariableMin: 1,
		VariableMax: 1,
	}})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return NewRun(s, target, "cli")
}

func TestIsQuit(t *testing.T) {
	for _, in := range []string{"q", "quit", "exit", " q "} {
		if !IsQuit(in) {
			t.Fatalf("expected %q to quit", in)
		}
	}
	for _, in := range []string{"", "Q", "2", "quitting"} {
		if IsQuit(in) {
			t.Fatalf("expected %q not to quit", in)
		}
	}
}

func TestRunReachesTarget(t *testing.T) {
	run := newRun(t, 2)
	if run.Done() {
		t.Fatalf("run done before any answer")
	}
	if _, err := run.Submit("3"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	for i := 0; i < 2; i++ {
		ok, err := run.Submit("2")
		if err != nil || !ok {
			t.Fatalf("expected correct answer, ok=%v err=%v", ok, err)
		}
	}
	if !run.Done() {
		t.Fatalf("expected run to be done")
	}
	if run.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", run.Remaining())
	}
	ops := run.OperatorStats()
	if len(ops) != 1 || ops[0].Operator != model.OpAdd || ops[0].Correct != 2 || ops[0].Incorrect != 1 {
		t.Fatalf("unexpected operator stats: %+v", ops)
	}
}

func TestRecordSkipsEmptyRun(t *testing.T) {
	rec := &fakeRecorder{}
	run := newRun(t, 1)
	if err := run.Record(context.Background(), rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(rec.runs) != 0 {
		t.Fatalf("expected empty run to be skipped")
	}
	if _, err := run.Submit("2"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := run.Record(context.Background(), rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(rec.runs) != 1 || rec.runs[0].Correct != 1 || rec.runs[0].Mode != "cli" {
		t.Fatalf("unexpected recorded runs: %+v", rec.runs)
	}
}

func TestSharedSerializesSubmissions(t *testing.T) {
	shared := NewShared(newRun(t, 0))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view := shared.View()
			if _, err := shared.Submit(view.Task.CorrectAnswer); err != nil {
				t.Errorf("submit: %v", err)
			}
		}()
	}
	wg.Wait()
	state := shared.View().State
	if state.NumCorrectAnswers != 50 {
		t.Fatalf("expected 50 correct answers, got %+v", state)
	}
}

func TestResumedRunRecordsOwnAnswers(t *testing.T) {
	s, err := trainer.New([]model.OperatorConfig{{
		Operator:    model.OpAdd,
		VariableNum: 2,
		VariableMin: 1,
		VariableMax: 1,
	}}, trainer.WithState(model.State{
		StartedAt:           time.Now().Add(-time.Hour),
		NumCorrectAnswers:   3,
		NumIncorrectAnswers: 2,
	}))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	run := NewRun(s, 4, "cli")
	if run.Remaining() != 1 {
		t.Fatalf("expected 1 remaining, got %d", run.Remaining())
	}
	if _, err := run.Submit("2"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !run.Done() {
		t.Fatalf("expected run to be done")
	}
	stats := run.Stats()
	if stats.Correct != 1 || stats.Incorrect != 0 {
		t.Fatalf("unexpected run stats: %+v", stats)
	}
	if stats.DurationMs >= time.Hour.Milliseconds() {
		t.Fatalf("expected duration of this run only, got %dms", stats.DurationMs)
	}
}

func TestSubmitForRejectsStaleTask(t *testing.T) {
	shared := NewShared(newRun(t, 0))
	first := shared.View()
	if ok, err := shared.SubmitFor(first.Seq, "2"); err != nil || !ok {
		t.Fatalf("expected correct answer, ok=%v err=%v", ok, err)
	}
	second := shared.View()
	if second.Seq == first.Seq {
		t.Fatalf("expected task id to change after a correct answer")
	}
	if _, err := shared.SubmitFor(first.Seq, "7"); !errors.Is(err, ErrStaleTask) {
		t.Fatalf("expected ErrStaleTask, got %v", err)
	}
	state := shared.View().State
	if state.NumCorrectAnswers != 1 || state.NumIncorrectAnswers != 0 {
		t.Fatalf("stale answer was counted: %+v", state)
	}
	if ok, err := shared.SubmitFor(second.Seq, "7"); err != nil || ok {
		t.Fatalf("expected incorrect answer, ok=%v err=%v", ok, err)
	}
	if shared.View().Seq != second.Seq {
		t.Fatalf("incorrect answer must keep the task id")
	}
}
