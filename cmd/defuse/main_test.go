package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/defuse/internal/config"
	"github.com/verte-zerg/defuse/internal/quiz"
)

const importJSON = `{"version": 1, "questions": [
  {"id": "paris", "question": "Capital of France?", "options": ["Paris", "Rome", "Oslo", "Bern"], "answer": "Paris"},
  {"question": "2 + 2?", "options": ["4", "3", "5", "22"], "answer": "4"}
]}`

func TestConfigOverlayRespectsFlags(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfgPath := filepath.Join(dir, "defuse", "config.toml")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data := "[game]\nrequired = 3\nbudget-ms = 30000\nquick-retry = true\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--required", "4"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	applyGameConfig(cmd, fileCfg.Game)

	if playRequired != 4 {
		t.Fatalf("flag must win over config, got required=%d", playRequired)
	}
	if playBudget != 30*time.Second {
		t.Fatalf("expected budget from config, got %v", playBudget)
	}
	if !playQuickRetry {
		t.Fatalf("expected quick-retry from config")
	}
	if playPenalty != 5*time.Second {
		t.Fatalf("expected default penalty, got %v", playPenalty)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if cfg.Game.BudgetMs == nil || *cfg.Game.BudgetMs != 60000 {
		t.Fatalf("unexpected budget: %v", cfg.Game.BudgetMs)
	}
	if cfg.Game.Questions == nil || *cfg.Game.Questions != defaultQuestions {
		t.Fatalf("unexpected questions: %v", cfg.Game.Questions)
	}
}

func TestQuestionsImportValidateList(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	file := filepath.Join(dir, "qs.json")
	if err := os.WriteFile(file, []byte(importJSON), 0o644); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	bank := filepath.Join(dir, "bank.db")

	run := func(args ...string) (string, error) {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	if _, err := run("questions", "import", file, "--bank", bank); err != nil {
		t.Fatalf("import: %v", err)
	}
	out, err := run("questions", "validate", "bank:"+bank)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "2 questions OK") {
		t.Fatalf("unexpected validate output: %q", out)
	}
	out, err = run("questions", "validate", "bank:"+bank, file, "builtin")
	if err != nil {
		t.Fatalf("validate many: %v", err)
	}
	for _, want := range []string{"bank:" + bank, "file:" + file, "builtin:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("validate output missing %q:\n%s", want, out)
		}
	}
	out, err = run("questions", "list", "--questions", "bank:"+bank)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Question", "Capital of France?", "Paris", "2 + 2?"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`[{"question": "Q?", "options": ["a", "a", "b", "c"], "answer": "z"}]`), 0o644); err != nil {
		t.Fatalf("write broken: %v", err)
	}
	if _, err := run("questions", "validate", broken); err == nil || !strings.Contains(err.Error(), "issue(s) found") {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestQuestionTableClipsText(t *testing.T) {
	lines := questionTable(nil, 40)
	if len(lines) != 1 || lines[0] != "# Question Answer" {
		t.Fatalf("unexpected empty table: %q", lines)
	}

	questions := []quiz.Question{{
		Text:    strings.Repeat("very long question ", 5),
		Options: []string{"yes", "no", "maybe", "never"},
		Correct: "yes",
	}}
	lines = questionTable(questions, 40)
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", lines)
	}
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > 40 {
			t.Fatalf("line %q is %d cells wide", line, w)
		}
	}
	if !strings.Contains(lines[1], "…") {
		t.Fatalf("expected clipped text: %q", lines[1])
	}
}
