package quiz

import (
	"fmt"
	"time"
)

// Default game rules.
const (
	DefaultRequiredCorrect = 6
	DefaultBudget          = 60 * time.Second
	DefaultPenalty         = 5 * time.Second
	DefaultAdvanceDelay    = 800 * time.Millisecond
	DefaultTickInterval    = 50 * time.Millisecond
	DefaultQuestionLimit   = 10
)

// Settings configures the rules of a session.
type Settings struct {
	RequiredCorrect int
	Budget          time.Duration
	Penalty         time.Duration
	AdvanceDelay    time.Duration
	TickInterval    time.Duration
	// QuestionLimit caps the questions drawn per session; 0 uses the whole source.
	QuestionLimit int
}

// DefaultSettings returns the standard game rules.
func DefaultSettings() Settings {
	return Settings{
		RequiredCorrect: DefaultRequiredCorrect,
		Budget:          DefaultBudget,
		Penalty:         DefaultPenalty,
		AdvanceDelay:    DefaultAdvanceDelay,
		TickInterval:    DefaultTickInterval,
		QuestionLimit:   DefaultQuestionLimit,
	}
}

// Validate checks that the settings describe a playable game.
func (s Settings) Validate() error {
	if s.RequiredCorrect <= 0 {
		return fmt.Errorf("required correct answers must be > 0")
	}
	if s.Budget <= 0 {
		return fmt.Errorf("time budget must be > 0")
	}
	if s.Penalty < 0 {
		return fmt.Errorf("penalty must be >= 0")
	}
	if s.AdvanceDelay < 0 {
		return fmt.Errorf("advance delay must be >= 0")
	}
	if s.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be > 0")
	}
	if s.QuestionLimit < 0 {
		return fmt.Errorf("question limit must be >= 0")
	}
	if s.QuestionLimit > 0 && s.QuestionLimit < s.RequiredCorrect {
		return fmt.Errorf("question limit %d is below required correct answers %d", s.QuestionLimit, s.RequiredCorrect)
	}
	return nil
}
