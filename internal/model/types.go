// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Operator is the symbol applied across a task's operands.
type Operator string

// Supported operators. OpDivideAlt is accepted as an alias of OpDivide.
const (
	OpAdd       Operator = "+"
	OpSubtract  Operator = "-"
	OpMultiply  Operator = "*"
	OpDivide    Operator = "/"
	OpDivideAlt Operator = ":"
)

// Valid reports whether op is one of the supported operator symbols.
func (op Operator) Valid() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpDivideAlt:
		return true
	default:
		return false
	}
}

// IsDivide reports whether op divides.
func (op Operator) IsDivide() bool {
	return op == OpDivide || op == OpDivideAlt
}

// OperatorConfig is one template of generatable tasks.
type OperatorConfig struct {
	Operator              Operator `json:"operator"`
	VariableNum           int      `json:"variable_num"`
	VariableMin           int      `json:"variable_min"`
	VariableMax           int      `json:"variable_max"`
	VariableDecimalPoints int      `json:"variable_decimal_points"`
	ResultDecimalPoints   int      `json:"result_decimal_points"`
}

// Validate checks the fields of a single operator template.
func (c OperatorConfig) Validate() error {
	if !c.Operator.Valid() {
		return fmt.Errorf("operator %q is not one of + - * / :", c.Operator)
	}
	if c.VariableNum < 1 {
		return fmt.Errorf("variable_num must be >= 1")
	}
	if c.VariableMin > c.VariableMax {
		return fmt.Errorf("variable_min must be <= variable_max")
	}
	if c.VariableDecimalPoints < 0 {
		return fmt.Errorf("variable_decimal_points must be >= 0")
	}
	if c.ResultDecimalPoints < 0 {
		return fmt.Errorf("result_decimal_points must be >= 0")
	}
	if c.Operator.IsDivide() && c.VariableNum > 1 && c.VariableMin == 0 && c.VariableMax == 0 {
		return fmt.Errorf("divide range [0, 0] can only produce zero divisors")
	}
	return nil
}

// Task is one generated problem.
type Task struct {
	Task                string   `json:"task"`
	ResultDecimalPoints int      `json:"result_decimal_points"`
	CorrectAnswer       string   `json:"correct_answer"`
	Operator            Operator `json:"operator,omitempty"`
}

// State holds running statistics of a practice session.
// SecondsSinceStarted is derived on read and never used for equality.
type State struct {
	StartedAt           time.Time
	SecondsSinceStarted float64
	NumCorrectAnswers   int
	NumIncorrectAnswers int
}

type stateJSON struct {
	StartedAt           float64 `json:"started_at"`
	SecondsSinceStarted float64 `json:"seconds_since_started"`
	NumCorrectAnswers   int     `json:"num_correct_answers"`
	NumIncorrectAnswers int     `json:"num_incorrect_answers"`
}

// MarshalJSON encodes StartedAt as fractional unix seconds.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		StartedAt:           float64(s.StartedAt.UnixMicro()) / 1e6,
		SecondsSinceStarted: s.SecondsSinceStarted,
		NumCorrectAnswers:   s.NumCorrectAnswers,
		NumIncorrectAnswers: s.NumIncorrectAnswers,
	})
}

// UnmarshalJSON decodes fractional unix seconds with microsecond resolution.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.StartedAt = time.UnixMicro(int64(math.Round(raw.StartedAt * 1e6)))
	s.SecondsSinceStarted = raw.SecondsSinceStarted
	s.NumCorrectAnswers = raw.NumCorrectAnswers
	s.NumIncorrectAnswers = raw.NumIncorrectAnswers
	return nil
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RunStats captures a finished practice run.
type RunStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Mode       string
	Target     int
	Correct    int
	Incorrect  int
	DurationMs int64
}

// OperatorStats stores per-operator answer counts for a run.
type OperatorStats struct {
	Operator  Operator
	Correct   int
	Incorrect int
}

// RunAggregate summarizes a run for reporting.
type RunAggregate struct {
	RunID      int64
	EndedAt    time.Time
	Mode       string
	Correct    int
	Incorrect  int
	DurationMs int64
}
