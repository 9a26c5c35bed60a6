// Package main provides the CLI entrypoint for defuse.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/defuse/internal/config"
	"github.com/verte-zerg/defuse/internal/quiz"
	"github.com/verte-zerg/defuse/internal/source"
	"github.com/verte-zerg/defuse/internal/tui"
)

const (
	defaultQuestions    = "builtin"
	defaultFetchTimeout = 20 * time.Second
)

var (
	playQuestions    string
	playRequired     int
	playBudget       time.Duration
	playPenalty      time.Duration
	playAdvanceDelay time.Duration
	playTick         time.Duration
	playLimit        int
	playSeed         int64
	playQuickRetry   bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "defuse",
		Short:         "Defuse the bomb by answering trivia before the timer runs out",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playQuestions, "questions", defaultQuestions, "question source: builtin, bank[:path], file path or http(s) URL")
	rootCmd.Flags().IntVar(&playRequired, "required", quiz.DefaultRequiredCorrect, "correct answers needed to defuse the bomb")
	rootCmd.Flags().DurationVar(&playBudget, "budget", quiz.DefaultBudget, "countdown length")
	rootCmd.Flags().DurationVar(&playPenalty, "penalty", quiz.DefaultPenalty, "time lost per wrong answer")
	rootCmd.Flags().DurationVar(&playAdvanceDelay, "advance-delay", quiz.DefaultAdvanceDelay, "pause before the next question")
	rootCmd.Flags().DurationVar(&playTick, "tick", quiz.DefaultTickInterval, "timer refresh interval")
	rootCmd.Flags().IntVar(&playLimit, "limit", quiz.DefaultQuestionLimit, "questions per game (0 = all)")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "shuffle seed (0 = random)")
	rootCmd.Flags().BoolVar(&playQuickRetry, "quick-retry", false, "start a new game right after retry")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newQuestionsCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyGameConfig(cmd, fileCfg.Game)

	settings := quiz.Settings{
		RequiredCorrect: playRequired,
		Budget:          playBudget,
		Penalty:         playPenalty,
		AdvanceDelay:    playAdvanceDelay,
		TickInterval:    playTick,
		QuestionLimit:   playLimit,
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	src, err := source.Open(playQuestions, bankPath(fileCfg.Game))
	if err != nil {
		return err
	}

	ctrl := quiz.NewController(settings, src, nil, quiz.NewShuffler(playSeed))
	model := tui.NewModel(ctrl, tui.Options{
		QuickRetry:   playQuickRetry,
		FetchTimeout: defaultFetchTimeout,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := model.Err(); err != nil {
		logErrf("failed to load questions from %s: %v\n", source.Describe(src), err)
	}
	return nil
}

func applyGameConfig(cmd *cobra.Command, game config.GameConfig) {
	applyStringConfig(cmd, "questions", &playQuestions, game.Questions)
	applyIntConfig(cmd, "required", &playRequired, game.Required)
	applyDurationMsConfig(cmd, "budget", &playBudget, game.BudgetMs)
	applyDurationMsConfig(cmd, "penalty", &playPenalty, game.PenaltyMs)
	applyDurationMsConfig(cmd, "advance-delay", &playAdvanceDelay, game.AdvanceDelayMs)
	applyDurationMsConfig(cmd, "tick", &playTick, game.TickMs)
	applyIntConfig(cmd, "limit", &playLimit, game.Limit)
	applyInt64Config(cmd, "seed", &playSeed, game.Seed)
	applyBoolConfig(cmd, "quick-retry", &playQuickRetry, game.QuickRetry)
}

func bankPath(game config.GameConfig) string {
	if game.Bank != nil && strings.TrimSpace(*game.Bank) != "" {
		return *game.Bank
	}
	return config.DefaultBankPath()
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationMsConfig(cmd *cobra.Command, name string, target *time.Duration, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = time.Duration(*value) * time.Millisecond
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# defuse configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# questions = %q       # builtin, bank, bank:<path>, file path or http(s) URL
# bank = %q
# required = %d                 # Correct answers needed to defuse the bomb
# budget-ms = %d            # Countdown length
# penalty-ms = %d            # Time lost per wrong answer
# advance-delay-ms = %d       # Pause before the next question
# tick-ms = %d                 # Timer refresh interval
# limit = %d                   # Questions per game (0 = all)
# seed = 0                      # Shuffle seed (0 = random)
# quick-retry = false           # Start a new game right after retry
`,
		defaultQuestions,
		config.DefaultBankPath(),
		quiz.DefaultRequiredCorrect,
		quiz.DefaultBudget.Milliseconds(),
		quiz.DefaultPenalty.Milliseconds(),
		quiz.DefaultAdvanceDelay.Milliseconds(),
		quiz.DefaultTickInterval.Milliseconds(),
		quiz.DefaultQuestionLimit,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
