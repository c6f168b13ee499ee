package trainer

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/arithmetictrainer/internal/generator"
	"github.com/verte-zerg/arithmetictrainer/internal/model"
)

func onePlusOne() model.OperatorConfig {
	return model.OperatorConfig{
		Operator:              model.OpAdd,
		VariableNum:           2,
		VariableMin:           1,
		VariableMax:           1,
		VariableDecimalPoints: 0,
		ResultDecimalPoints:   0,
	}
}

func mixedConfig() []model.OperatorConfig {
	return []model.OperatorConfig{
		{Operator: model.OpAdd, VariableNum: 3, VariableMin: -50, VariableMax: 50, VariableDecimalPoints: 1, ResultDecimalPoints: 1},
		{Operator: model.OpSubtract, VariableNum: 2, VariableMin: 0, VariableMax: 100, VariableDecimalPoints: 0, ResultDecimalPoints: 0},
		{Operator: model.OpMultiply, VariableNum: 2, VariableMin: 1, VariableMax: 12, VariableDecimalPoints: 0, ResultDecimalPoints: 0},
		{Operator: model.OpDivide, VariableNum: 3, VariableMin: -20, VariableMax: 20, VariableDecimalPoints: 2, ResultDecimalPoints: 2},
	}
}

func seeded(seed int64) Option {
	return WithGenerator(generator.NewWithSource(rand.NewSource(seed)))
}

func TestNewRejectsEmptyConfig(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptyConfig) {
		t.Fatalf("expected ErrEmptyConfig, got %v", err)
	}
}

func TestNewGeneratesInitialTask(t *testing.T) {
	s, err := New([]model.OperatorConfig{onePlusOne()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	task := s.Task()
	if task.Task != "1 + 1" {
		t.Fatalf("unexpected task %q", task.Task)
	}
	if task.CorrectAnswer != "2" {
		t.Fatalf("unexpected answer %q", task.CorrectAnswer)
	}
	if task.ResultDecimalPoints != 0 {
		t.Fatalf("unexpected result decimal points %d", task.ResultDecimalPoints)
	}
}

func TestNewKeepsSuppliedTask(t *testing.T) {
	task := model.Task{Task: "7 * 6", CorrectAnswer: "42", Operator: model.OpMultiply}
	s, err := New([]model.OperatorConfig{onePlusOne()}, WithTask(task))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Task() != task {
		t.Fatalf("expected supplied task, got %+v", s.Task())
	}
}

func TestInvalidOperatorNamesSymbol(t *testing.T) {
	conf := onePlusOne()
	conf.Operator = "^"
	_, err := New([]model.OperatorConfig{conf})
	var opErr *InvalidOperatorError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected InvalidOperatorError, got %v", err)
	}
	if opErr.Operator != "^" {
		t.Fatalf("expected operator ^ in error, got %q", opErr.Operator)
	}
}

func TestApplyReducesLeftToRight(t *testing.T) {
	d := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	cases := []struct {
		op       model.Operator
		operands []decimal.Decimal
		want     string
	}{
		{model.OpAdd, []decimal.Decimal{d(3), d(4), d(2)}, "9"},
		{model.OpSubtract, []decimal.Decimal{d(3), d(4), d(2)}, "-3"},
		{model.OpMultiply, []decimal.Decimal{d(3), d(4), d(2)}, "24"},
		{model.OpDivide, []decimal.Decimal{d(10), d(2), d(5)}, "1"},
		{model.OpDivideAlt, []decimal.Decimal{d(10), d(4)}, "2.5"},
	}
	for _, tc := range cases {
		got, err := apply(tc.op, tc.operands)
		if err != nil {
			t.Fatalf("apply %s: %v", tc.op, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("apply %s %v: expected %s, got %s", tc.op, tc.operands, tc.want, got)
		}
	}
}

func TestApplyDivisionByZero(t *testing.T) {
	_, err := apply(model.OpDivide, []decimal.Decimal{decimal.NewFromInt(1), decimal.Zero})
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestFormatExpression(t *testing.T) {
	operands := []decimal.Decimal{decimal.NewFromInt(3), decimal.NewFromInt(4), decimal.NewFromInt(2)}
	if got := formatExpression(model.OpSubtract, operands, 0); got != "3 - 4 - 2" {
		t.Fatalf("unexpected expression %q", got)
	}
	operands = []decimal.Decimal{decimal.RequireFromString("1.5"), decimal.NewFromInt(2)}
	if got := formatExpression(model.OpMultiply, operands, 2); got != "1.50 * 2.00" {
		t.Fatalf("unexpected expression %q", got)
	}
}

func TestDivideTasksNeverFail(t *testing.T) {
	conf := model.OperatorConfig{Operator: model.OpDivide, VariableNum: 4, VariableMin: -2, VariableMax: 2, VariableDecimalPoints: 0, ResultDecimalPoints: 0}
	s, err := New([]model.OperatorConfig{conf}, seeded(5))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 500; i++ {
		if _, err := s.Next(); err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
	}
}

func TestCorrectAnswerAdvances(t *testing.T) {
	s, err := New(mixedConfig(), seeded(1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	before := s.Task()
	ok, err := s.Answer(before.CorrectAnswer)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !ok {
		t.Fatalf("expected correct answer for %+v", before)
	}
	state := s.State()
	if state.NumCorrectAnswers != 1 || state.NumIncorrectAnswers != 0 {
		t.Fatalf("unexpected counters %+v", state)
	}
}

func TestAnswerComparesByValue(t *testing.T) {
	for _, candidate := range []string{"2", "2.0", "2.00", " 2 "} {
		s, err := New([]model.OperatorConfig{onePlusOne()})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		ok, err := s.Answer(candidate)
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
		if !ok {
			t.Fatalf("expected %q to match 2", candidate)
		}
	}
}

func TestAnswerDecimal(t *testing.T) {
	s, err := New([]model.OperatorConfig{onePlusOne()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ok, err := s.AnswerDecimal(decimal.RequireFromString("2.000"))
	if err != nil || !ok {
		t.Fatalf("expected decimal 2.000 to be correct, ok=%v err=%v", ok, err)
	}
}

func TestMalformedAnswerCountsIncorrect(t *testing.T) {
	s, err := New(mixedConfig(), seeded(2))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	before := s.Task()
	ok, err := s.Answer("abc")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if ok {
		t.Fatalf("expected abc to be incorrect")
	}
	state := s.State()
	if state.NumIncorrectAnswers != 1 || state.NumCorrectAnswers != 0 {
		t.Fatalf("unexpected counters %+v", state)
	}
	if s.Task() != before {
		t.Fatalf("task changed after incorrect answer")
	}
}

func TestAccessorsIdempotent(t *testing.T) {
	s, err := New(mixedConfig(), seeded(3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	task := s.Task()
	config := s.Config()
	first := s.State()
	for i := 0; i < 3; i++ {
		if s.Task() != task {
			t.Fatalf("task changed between reads")
		}
		if len(s.Config()) != len(config) || s.Config()[0] != config[0] {
			t.Fatalf("config changed between reads")
		}
	}
	if s.State().SecondsSinceStarted < first.SecondsSinceStarted {
		t.Fatalf("elapsed time went backwards")
	}
}

func TestStateRecomputesElapsed(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return now }
	s, err := New([]model.OperatorConfig{onePlusOne()}, WithClock(clock))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := s.State().SecondsSinceStarted; got != 0 {
		t.Fatalf("expected 0 elapsed, got %v", got)
	}
	now = now.Add(90 * time.Second)
	if got := s.State().SecondsSinceStarted; got != 90 {
		t.Fatalf("expected 90 elapsed, got %v", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s, err := New(mixedConfig(), seeded(4))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.Answer("not a number"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	data, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := FromJSON(data)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if !s.Equal(restored) {
		t.Fatalf("restored session differs:\n%+v\n%+v", s.Task(), restored.Task())
	}
	if restored.State().NumIncorrectAnswers != 1 {
		t.Fatalf("expected counters to be restored, got %+v", restored.State())
	}
}

func TestFromJSONRejectsMalformed(t *testing.T) {
	for _, input := range []string{`{}`, `[1, 2]`, `[[], {}, {}]`} {
		if _, err := FromJSON([]byte(input)); err == nil {
			t.Fatalf("expected error for %s", input)
		}
	}
}

func TestEqualIgnoresCounters(t *testing.T) {
	s, err := New([]model.OperatorConfig{onePlusOne()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	other, err := New(s.Config(), WithTask(s.Task()), WithState(model.State{StartedAt: s.State().StartedAt, NumIncorrectAnswers: 9}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !s.Equal(other) {
		t.Fatalf("expected sessions to be equal despite counters")
	}
	later, err := New(s.Config(), WithTask(s.Task()), WithState(model.State{StartedAt: s.State().StartedAt.Add(time.Second)}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Equal(later) {
		t.Fatalf("expected different start times to differ")
	}
}

func TestNewRejectsBadTemplate(t *testing.T) {
	conf := model.OperatorConfig{Operator: model.OpAdd, VariableNum: 0, VariableMin: 1, VariableMax: 5}
	if _, err := New([]model.OperatorConfig{conf}); err == nil {
		t.Fatalf("expected error for variable_num 0")
	}
}
