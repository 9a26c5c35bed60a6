// Package source provides question sources for the quiz.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/defuse/internal/quiz"
)

// Format is a question document encoding.
type Format int

// Supported formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

// document is the versioned envelope form of a question file.
type document struct {
	Version   int             `json:"version" yaml:"version"`
	Questions []quiz.Question `json:"questions" yaml:"questions"`
}

// FormatForPath picks a format from the file extension; JSON is the default.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a question document. Both a bare list of questions and a
// {version, questions} envelope are accepted.
func Decode(data []byte, format Format) ([]quiz.Question, error) {
	if format == FormatYAML {
		return decodeYAML(data)
	}
	return decodeJSON(data)
}

func decodeJSON(data []byte) ([]quiz.Question, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("parse json: document is empty")
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()

	var questions []quiz.Question
	if trimmed[0] == '[' {
		if err := decoder.Decode(&questions); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	} else {
		var doc document
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if err := checkVersion(doc.Version); err != nil {
			return nil, err
		}
		questions = doc.Questions
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return questions, nil
}

func decodeYAML(data []byte) ([]quiz.Question, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("parse yaml: document is empty")
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var questions []quiz.Question
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		if err := decoder.Decode(&questions); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case yaml.MappingNode:
		var doc document
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if err := checkVersion(doc.Version); err != nil {
			return nil, err
		}
		questions = doc.Questions
	default:
		return nil, fmt.Errorf("parse yaml: expected a list or a mapping at the top level")
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return questions, nil
}

func checkVersion(version int) error {
	switch version {
	case 0, 1:
		return nil
	default:
		return fmt.Errorf("unsupported question file version %d", version)
	}
}
