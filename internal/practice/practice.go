// Package practice drives a trainer session toward a target number of
// correct answers and records per-operator results.
package practice

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/arithmetictrainer/internal/model"
	"github.com/verte-zerg/arithmetictrainer/internal/trainer"
)

// ErrStaleTask is returned when an answer targets a task that is no longer current.
var ErrStaleTask = errors.New("answer is for a task that is no longer current")

// QuitWords end a run early when entered as an answer.
var QuitWords = []string{"q", "quit", "exit"}

// IsQuit reports whether input asks to stop the run.
func IsQuit(input string) bool {
	input = strings.TrimSpace(input)
	for _, w := range QuitWords {
		if input == w {
			return true
		}
	}
	return false
}

// RunRecorder persists finished runs.
type RunRecorder interface {
	InsertRun(ctx context.Context, run model.RunStats, ops []model.OperatorStats) (int64, error)
}

// Run tracks a session against a target. It is not safe for concurrent use.
type Run struct {
	Session *trainer.Session
	Target  int
	Mode    string

	ops map[model.Operator]*model.OperatorStats
	now func() time.Time
	seq int

	// Counters of a resumed session before this run started.
	baseCorrect   int
	baseIncorrect int
	startedAt     time.Time
}

// NewRun wraps a session. A target <= 0 means no limit. The target counts
// all correct answers of the session, including those of a resumed one.
func NewRun(session *trainer.Session, target int, mode string) *Run {
	state := session.State()
	startedAt := time.Now()
	if state.NumCorrectAnswers+state.NumIncorrectAnswers == 0 {
		startedAt = state.StartedAt
	}
	return &Run{
		Session:       session,
		Target:        target,
		Mode:          mode,
		ops:           map[model.Operator]*model.OperatorStats{},
		now:           time.Now,
		baseCorrect:   state.NumCorrectAnswers,
		baseIncorrect: state.NumIncorrectAnswers,
		startedAt:     startedAt,
	}
}

// Submit answers the current task and tallies the result under its operator.
func (r *Run) Submit(answer string) (bool, error) {
	op := r.Session.Task().Operator
	ok, err := r.Session.Answer(answer)
	entry := r.opEntry(op)
	if ok {
		entry.Correct++
		r.seq++
	} else {
		entry.Incorrect++
	}
	return ok, err
}

// TaskSeq identifies the current task. It changes every time the run
// advances to a new task.
func (r *Run) TaskSeq() int {
	return r.seq
}

// Done reports whether the target number of correct answers was reached.
func (r *Run) Done() bool {
	if r.Target <= 0 {
		return false
	}
	return r.Session.State().NumCorrectAnswers >= r.Target
}

// Remaining returns how many correct answers are still needed.
func (r *Run) Remaining() int {
	if r.Target <= 0 {
		return 0
	}
	left := r.Target - r.Session.State().NumCorrectAnswers
	if left < 0 {
		return 0
	}
	return left
}

// OperatorStats returns the per-operator tallies sorted by operator.
func (r *Run) OperatorStats() []model.OperatorStats {
	out := make([]model.OperatorStats, 0, len(r.ops))
	for _, entry := range r.ops {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Operator < out[j].Operator
	})
	return out
}

// Stats builds the summary stored for a finished run. Only answers given
// during this run are counted.
func (r *Run) Stats() model.RunStats {
	state := r.Session.State()
	endedAt := r.now()
	return model.RunStats{
		StartedAt:  r.startedAt,
		EndedAt:    endedAt,
		Mode:       r.Mode,
		Target:     r.Target,
		Correct:    state.NumCorrectAnswers - r.baseCorrect,
		Incorrect:  state.NumIncorrectAnswers - r.baseIncorrect,
		DurationMs: endedAt.Sub(r.startedAt).Milliseconds(),
	}
}

// Record saves the run unless nothing was answered.
func (r *Run) Record(ctx context.Context, rec RunRecorder) error {
	stats := r.Stats()
	if stats.Correct+stats.Incorrect == 0 {
		return nil
	}
	_, err := rec.InsertRun(ctx, stats, r.OperatorStats())
	return err
}

func (r *Run) opEntry(op model.Operator) *model.OperatorStats {
	if op == "" {
		op = "?"
	}
	entry, ok := r.ops[op]
	if !ok {
		entry = &model.OperatorStats{Operator: op}
		r.ops[op] = entry
	}
	return entry
}

// View is a consistent snapshot of the current task and statistics.
type View struct {
	Task  model.Task
	State model.State
	Seq   int
}

// Shared serializes access to a Run for concurrent front-ends.
type Shared struct {
	mu  sync.Mutex
	run *Run
}

// NewShared wraps run with a mutex.
func NewShared(run *Run) *Shared {
	return &Shared{run: run}
}

// View returns the current task and state under the lock.
func (s *Shared) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{Task: s.run.Session.Task(), State: s.run.Session.State(), Seq: s.run.TaskSeq()}
}

// Submit answers the current task under the lock.
func (s *Shared) Submit(answer string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.Submit(answer)
}

// SubmitFor answers the task identified by seq. Answers to a task that was
// already replaced return ErrStaleTask and are not counted.
func (s *Shared) SubmitFor(seq int, answer string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.run.TaskSeq() {
		return false, ErrStaleTask
	}
	return s.run.Submit(answer)
}

// Snapshot serializes the session under the lock.
func (s *Shared) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.Session.MarshalJSON()
}

// Record saves the run under the lock.
func (s *Shared) Record(ctx context.Context, rec RunRecorder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run.Record(ctx, rec)
}
