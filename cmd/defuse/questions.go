package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/verte-zerg/defuse/internal/config"
	"github.com/verte-zerg/defuse/internal/quiz"
	"github.com/verte-zerg/defuse/internal/source"
	"github.com/verte-zerg/defuse/internal/table"
)

const defaultListWidth = 100

var (
	listQuestions string

	importBank    string
	importReplace bool
)

func newQuestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Inspect and manage question sources",
	}
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newImportCmd())
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <source>...",
		Short: "Check question sources for problems",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidateCmd,
	}
}

type validateResult struct {
	label  string
	count  int
	issues []quiz.Issue
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	bank, err := configuredBankPath()
	if err != nil {
		return err
	}
	sources := make([]quiz.Source, len(args))
	for i, arg := range args {
		if sources[i], err = source.Open(arg, bank); err != nil {
			return err
		}
	}

	results := make([]validateResult, len(sources))
	g, ctx := errgroup.WithContext(cmdContext(cmd))
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			res, err := validateSource(ctx, src)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	out := cmd.OutOrStdout()
	for _, res := range results {
		if len(res.issues) > 0 {
			failed++
			for _, issue := range res.issues {
				logErrf("%s: %s: %s\n", res.label, issue.Field, issue.Message)
			}
			continue
		}
		if _, err := fmt.Fprintf(out, "%s: %d questions OK\n", res.label, res.count); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("issue(s) found in %d of %d source(s)", failed, len(results))
	}
	return nil
}

func validateSource(ctx context.Context, src quiz.Source) (validateResult, error) {
	res := validateResult{label: source.Describe(src)}
	questions, err := src.Questions(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to read %s: %w", res.label, err)
	}
	questions = quiz.NormalizeQuestions(questions)
	res.count = len(questions)
	if err := quiz.ValidateQuestions(questions); err != nil {
		var verr *quiz.ValidationError
		if !errors.As(err, &verr) {
			return res, fmt.Errorf("%s: %w", res.label, err)
		}
		res.issues = verr.Issues
	}
	return res, nil
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the questions of a source",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
	cmd.Flags().StringVar(&listQuestions, "questions", defaultQuestions, "question source")
	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "questions", &listQuestions, fileCfg.Game.Questions)

	src, err := source.Open(listQuestions, bankPath(fileCfg.Game))
	if err != nil {
		return err
	}
	questions, err := source.Load(cmdContext(cmd), src)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", source.Describe(src), err)
	}

	lines := questionTable(questions, outputWidth())
	out := cmd.OutOrStdout()
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// questionTable renders questions, clipping the text column so rows fit width.
func questionTable(questions []quiz.Question, width int) []string {
	answerWidth := len("Answer")
	for _, q := range questions {
		if w := runewidth.StringWidth(q.Correct); w > answerWidth {
			answerWidth = w
		}
	}
	numWidth := len(strconv.Itoa(len(questions)))
	textWidth := width - numWidth - answerWidth - 2
	if textWidth < 10 {
		textWidth = 10
	}

	rows := make([][]string, 0, len(questions))
	for i, q := range questions {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			table.Fit(q.Text, textWidth),
			q.Correct,
		})
	}
	return table.Format([]string{"#", "Question", "Answer"}, rows, map[int]bool{0: true})
}

func outputWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultListWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultListWidth
	}
	return width
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON or YAML question file into the question bank",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importBank, "bank", "", "question bank path (default: $XDG_DATA_HOME/defuse/questions.db)")
	cmd.Flags().BoolVar(&importReplace, "replace", false, "remove existing questions first")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	path := importBank
	if path == "" {
		var err error
		if path, err = configuredBankPath(); err != nil {
			return err
		}
	}

	questions, err := source.Load(cmdContext(cmd), source.File{Path: args[0]})
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	bank, err := source.OpenBank(path)
	if err != nil {
		return fmt.Errorf("failed to open question bank: %w", err)
	}
	defer func() {
		if cerr := bank.Close(); cerr != nil {
			logErrf("failed to close question bank: %v\n", cerr)
		}
	}()

	ctx := cmdContext(cmd)
	n, err := bank.Import(ctx, questions, importReplace)
	if err != nil {
		return fmt.Errorf("failed to import questions: %w", err)
	}
	total, err := bank.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	logErrln(fmt.Sprintf("Imported %d questions into %s (%d total)", n, path, total))
	return nil
}

func configuredBankPath() (string, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return bankPath(fileCfg.Game), nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
