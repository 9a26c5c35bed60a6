package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/verte-zerg/defuse/internal/quiz"
)

// Open resolves a question source location:
//
//	""/builtin       compiled-in questions
//	bank[:path]      SQLite question bank (defaultBank when no path)
//	http(s)://...    static document over HTTP
//	file:path, path  JSON or YAML file
func Open(loc, defaultBank string) (quiz.Source, error) {
	loc = strings.TrimSpace(loc)
	switch {
	case loc == "" || loc == "builtin":
		return Builtin{}, nil
	case loc == "bank":
		if defaultBank == "" {
			return nil, fmt.Errorf("question bank path is empty")
		}
		return BankFile{Path: defaultBank}, nil
	case strings.HasPrefix(loc, "bank:"):
		path := strings.TrimPrefix(loc, "bank:")
		if path == "" {
			return nil, fmt.Errorf("question bank path is empty")
		}
		return BankFile{Path: path}, nil
	case strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://"):
		if _, err := url.ParseRequestURI(loc); err != nil {
			return nil, fmt.Errorf("invalid question URL: %w", err)
		}
		return HTTP{URL: loc}, nil
	case strings.HasPrefix(loc, "file:"):
		path := strings.TrimPrefix(loc, "file:")
		if path == "" {
			return nil, fmt.Errorf("question file path is empty")
		}
		return File{Path: path}, nil
	default:
		return File{Path: loc}, nil
	}
}

// Load fetches, normalizes, and validates questions from src.
func Load(ctx context.Context, src quiz.Source) ([]quiz.Question, error) {
	questions, err := src.Questions(ctx)
	if err != nil {
		return nil, err
	}
	questions = quiz.NormalizeQuestions(questions)
	if err := quiz.ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Describe returns a short label for a source.
func Describe(src quiz.Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}
