// Package trainer holds the practice session: operator templates, the
// current task and running answer statistics.
package trainer

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/verte-zerg/arithmetictrainer/internal/generator"
	"github.com/verte-zerg/arithmetictrainer/internal/model"
)

// divisionScale is the number of fractional digits kept by intermediate quotients.
const divisionScale = 32

var (
	// ErrEmptyConfig is returned when a session has no operator templates.
	ErrEmptyConfig = errors.New("config must contain at least one operator")
	// ErrDivisionByZero is returned when a divisor operand is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// InvalidOperatorError names an operator symbol outside the supported set.
type InvalidOperatorError struct {
	Operator model.Operator
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("[%s] is not a valid operator", string(e.Operator))
}

// Session is a single practice run. It is not safe for concurrent use.
type Session struct {
	config []model.OperatorConfig
	task   model.Task
	state  model.State
	gen    *generator.Generator
	now    func() time.Time
}

type options struct {
	task  *model.Task
	state *model.State
	gen   *generator.Generator
	now   func() time.Time
}

// Option customizes session construction.
type Option func(*options)

// WithTask resumes with an already generated task.
func WithTask(task model.Task) Option {
	return func(o *options) { o.task = &task }
}

// WithState resumes with prior statistics.
func WithState(state model.State) Option {
	return func(o *options) { o.state = &state }
}

// WithGenerator sets the operand source.
func WithGenerator(gen *generator.Generator) Option {
	return func(o *options) { o.gen = gen }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a session from a non-empty template list. Unless a task is
// supplied the first task is generated immediately.
func New(config []model.OperatorConfig, opts ...Option) (*Session, error) {
	if len(config) == 0 {
		return nil, ErrEmptyConfig
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.gen == nil {
		o.gen = generator.New()
	}
	if o.now == nil {
		o.now = time.Now
	}
	s := &Session{
		config: slices.Clone(config),
		gen:    o.gen,
		now:    o.now,
	}
	if o.state != nil {
		s.state = *o.state
	} else {
		// Microsecond resolution survives the JSON round trip.
		s.state = model.State{StartedAt: s.now().Truncate(time.Microsecond)}
	}
	if o.task != nil {
		s.task = *o.task
		return s, nil
	}
	if _, err := s.Next(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromJSON rebuilds a session from the output of MarshalJSON.
func FromJSON(data []byte, opts ...Option) (*Session, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("failed to decode session: expected [config, task, state], got %d elements", len(raw))
	}
	var config []model.OperatorConfig
	if err := json.Unmarshal(raw[0], &config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	var task model.Task
	if err := json.Unmarshal(raw[1], &task); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	var state model.State
	if err := json.Unmarshal(raw[2], &state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	opts = append([]Option{WithTask(task), WithState(state)}, opts...)
	return New(config, opts...)
}

// Config returns the operator templates.
func (s *Session) Config() []model.OperatorConfig {
	return s.config
}

// Task returns the current task.
func (s *Session) Task() model.Task {
	return s.task
}

// State returns a statistics snapshot with elapsed time computed now.
func (s *Session) State() model.State {
	s.state.SecondsSinceStarted = s.now().Sub(s.state.StartedAt).Seconds()
	return s.state
}

// Next generates a new task from a randomly chosen template and makes it current.
func (s *Session) Next() (model.Task, error) {
	conf := s.config[s.gen.Intn(len(s.config))]
	task, err := buildTask(s.gen, conf)
	if err != nil {
		return model.Task{}, err
	}
	s.task = task
	return task, nil
}

// Answer validates a textual answer. Text that is not a decimal counts as
// incorrect. The returned error only reports a failure to advance after a
// correct answer.
func (s *Session) Answer(candidate string) (bool, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(candidate))
	if err != nil {
		s.state.NumIncorrectAnswers++
		return false, nil
	}
	return s.AnswerDecimal(d)
}

// AnswerDecimal validates a numeric answer by value, so 2, 2.0 and 2.00 match.
func (s *Session) AnswerDecimal(candidate decimal.Decimal) (bool, error) {
	correct, err := decimal.NewFromString(s.task.CorrectAnswer)
	if err != nil || !candidate.Equal(correct) {
		s.state.NumIncorrectAnswers++
		return false, nil
	}
	s.state.NumCorrectAnswers++
	if _, err := s.Next(); err != nil {
		return true, fmt.Errorf("failed to generate next task: %w", err)
	}
	return true, nil
}

// MarshalJSON encodes the session as [config, task, state].
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Config(), s.Task(), s.State()})
}

// Equal compares templates, current task and start time. Answer counters are
// not part of session identity.
func (s *Session) Equal(other *Session) bool {
	if s == nil || other == nil {
		return s == other
	}
	if !slices.Equal(s.config, other.config) {
		return false
	}
	if s.task != other.task {
		return false
	}
	return s.state.StartedAt.Equal(other.state.StartedAt)
}
