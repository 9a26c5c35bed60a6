package source

import (
	"context"
	_ "embed"

	"github.com/verte-zerg/defuse/internal/quiz"
)

//go:embed questions.json
var builtinQuestions []byte

// Builtin serves the question bank compiled into the binary.
type Builtin struct{}

// Questions implements quiz.Source.
func (Builtin) Questions(ctx context.Context) ([]quiz.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(builtinQuestions, FormatJSON)
}

func (Builtin) String() string {
	return "builtin"
}
