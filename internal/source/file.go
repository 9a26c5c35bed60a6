package source

import (
	"context"
	"fmt"
	"os"

	"github.com/verte-zerg/defuse/internal/quiz"
)

// File reads questions from a JSON or YAML file on every fetch.
type File struct {
	Path string
}

// Questions implements quiz.Source.
func (f File) Questions(ctx context.Context) ([]quiz.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question file: %w", err)
	}
	questions, err := Decode(data, FormatForPath(f.Path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return questions, nil
}

func (f File) String() string {
	return "file:" + f.Path
}
