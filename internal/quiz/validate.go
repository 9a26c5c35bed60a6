package quiz

import (
	"fmt"
	"strings"
)

// Issue is a single problem found in a question set.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports every issue found in a question set.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("invalid questions: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

// ValidateQuestions checks that every question has text, exactly
// OptionCount unique non-empty options, and an answer among its options.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	c := &issueCollector{}
	seenIDs := map[string]struct{}{}
	for i, q := range questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		if q.ID != "" {
			if _, ok := seenIDs[q.ID]; ok {
				c.add(prefix+".id", fmt.Sprintf("duplicate id %q", q.ID))
			}
			seenIDs[q.ID] = struct{}{}
		}
		if strings.TrimSpace(q.Text) == "" {
			c.add(prefix+".question", "is required")
		}
		if len(q.Options) != OptionCount {
			c.add(prefix+".options", fmt.Sprintf("must have %d entries, got %d", OptionCount, len(q.Options)))
		}
		seen := map[string]struct{}{}
		for j, opt := range q.Options {
			field := fmt.Sprintf("%s.options[%d]", prefix, j)
			if strings.TrimSpace(opt) == "" {
				c.add(field, "is required")
				continue
			}
			if _, ok := seen[opt]; ok {
				c.add(field, fmt.Sprintf("duplicate option %q", opt))
			}
			seen[opt] = struct{}{}
		}
		if q.Correct == "" {
			c.add(prefix+".answer", "is required")
		} else if _, ok := seen[q.Correct]; !ok {
			c.add(prefix+".answer", fmt.Sprintf("%q is not one of the options", q.Correct))
		}
	}
	return c.result()
}

// NormalizeQuestions trims surrounding whitespace from text fields.
func NormalizeQuestions(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		opts := make([]string, len(q.Options))
		for j, opt := range q.Options {
			opts[j] = strings.TrimSpace(opt)
		}
		out[i] = Question{
			ID:      strings.TrimSpace(q.ID),
			Text:    strings.TrimSpace(q.Text),
			Options: opts,
			Correct: strings.TrimSpace(q.Correct),
		}
	}
	return out
}
