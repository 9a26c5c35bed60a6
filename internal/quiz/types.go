// Package quiz implements the bomb-defusal quiz session state machine.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

var (
	// ErrNoQuestions is reported when a source returns an empty batch.
	ErrNoQuestions = errors.New("no questions available")
	// ErrNoSource is reported when a controller has no question source.
	ErrNoSource = errors.New("question source is not configured")
)

// Question is a single multiple-choice question.
type Question struct {
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Text    string   `json:"question" yaml:"question"`
	Options []string `json:"options" yaml:"options"`
	Correct string   `json:"answer" yaml:"answer"`
}

// IsCorrect reports whether the option at idx is the correct answer.
func (q Question) IsCorrect(idx int) bool {
	if idx < 0 || idx >= len(q.Options) {
		return false
	}
	return q.Options[idx] == q.Correct
}

// CorrectIndex returns the position of the correct option, or -1.
func (q Question) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt == q.Correct {
			return i
		}
	}
	return -1
}

// Source supplies an unordered batch of questions.
type Source interface {
	Questions(ctx context.Context) ([]Question, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Question, error)

// Questions implements Source.
func (f SourceFunc) Questions(ctx context.Context) ([]Question, error) {
	return f(ctx)
}

// Clock provides the current time to the controller.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Phase is the lifecycle stage of a session.
type Phase int

// Session phases.
const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseInProgress:
		return "in-progress"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Outcome is the final result of a session.
type Outcome int

// Session outcomes.
const (
	OutcomeNone Outcome = iota
	OutcomeDefused
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeDefused:
		return "defused"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Reason records which termination condition ended a session.
type Reason int

// Termination reasons.
const (
	ReasonNone Reason = iota
	ReasonThreshold
	ReasonTimeExpired
	ReasonExhausted
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonThreshold:
		return "threshold"
	case ReasonTimeExpired:
		return "time-expired"
	case ReasonExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Request identifies one question fetch issued by the controller.
// The zero Request means no fetch is needed.
type Request struct {
	ID uint64
}

// Pending reports whether the request must be executed.
func (r Request) Pending() bool {
	return r.ID != 0
}

// Batch is the result of executing a Request.
type Batch struct {
	Request   Request
	Questions []Question
	Err       error
}

// Advance is a deferred move to the next question.
type Advance struct {
	Epoch uint64
	Seq   uint64
	Delay time.Duration
}

// Snapshot is the read model consumed by the presentation layer.
type Snapshot struct {
	Phase           Phase
	Loading         bool
	Ready           bool
	FetchErr        error
	Remaining       time.Duration
	CurrentIndex    int
	Total           int
	Question        *Question
	Selection       int
	HasSelection    bool
	LastCorrect     bool
	Correct         int
	Required        int
	Penalties       int
	Outcome         Outcome
	Reason          Reason
	TimeAtFinish    time.Duration
	HasTimeAtFinish bool
	Epoch           uint64
	Ticking         bool
}

// DisplayTime returns the time the bomb timer should show: the defuse
// snapshot once the bomb is defused, otherwise the live remaining time.
func (s Snapshot) DisplayTime() time.Duration {
	if s.Outcome == OutcomeDefused && s.HasTimeAtFinish {
		return s.TimeAtFinish
	}
	return s.Remaining
}

// FormatClock renders d as MM:SS:CC (minutes, seconds, hundredths).
func FormatClock(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	centis := (ms % 1000) / 10
	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, centis)
}
