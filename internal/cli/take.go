package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/score"
	"quiz-runner/internal/session"
)

// NewTakeCmd builds the interactive runner subcommand.
func NewTakeCmd(configPath *string) *cobra.Command {
	var randomOrder bool
	cmd := &cobra.Command{
		Use:   "take <document>",
		Short: "Take a quiz interactively, with resumable progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runTake(cmd.Context(), cmd, *configPath, args[0], randomOrder)
		},
	}
	cmd.Flags().BoolVar(&randomOrder, "random", false, "shuffle question order without prompting")
	return cmd
}

func runTake(ctx context.Context, cmd *cobra.Command, configPath, docPath string, randomOrder bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	cache := app.NewDocumentCache(5 * time.Minute)
	doc, err := cache.Load(ctx, docPath)
	if err != nil {
		printDiagnostics(cmd, err)
		return fmt.Errorf("%s is not a valid quiz document", docPath)
	}

	runner := app.NewRunner(store, log,
		app.WithDebounce(config.Duration(cfg.Autosave.Debounce, app.DefaultDebounce)),
		app.WithStaleAfter(config.Duration(cfg.Resume.StaleAfter, app.DefaultStaleAfter)),
	)
	defer runner.Close(ctx)

	in := bufio.NewReader(cmd.InOrStdin())
	ui := &takeUI{cmd: cmd, in: in}

	resumed := false
	if snap, ok := runner.PeekResumable(ctx); ok {
		ui.printf("Found an in-progress session of %q from %s.\n",
			snap.Document.Metadata.Name, snap.Timestamp.Format("2006-01-02 15:04"))
		if ui.confirm("Resume it?") {
			_, resumed = runner.ResumeLatest(ctx, doc)
		}
	}

	if !resumed {
		runner.Load(doc)
		settings := domain.Settings{RandomOrder: randomOrder}
		if !randomOrder {
			settings.RandomOrder = ui.confirm("Shuffle question order?")
		}
		if err := runner.Start(settings); err != nil {
			return err
		}
	}

	ui.printf("\n%s", renderHeader(doc.Metadata))

	for runner.State().Phase == session.PhaseActive {
		if err := stepQuestion(ctx, runner, ui); err != nil {
			if errors.Is(err, io.EOF) {
				// Treat a closed stdin like quit: snapshot and leave.
				return runner.Quit(ctx)
			}
			return err
		}
	}

	if runner.State().Phase == session.PhaseResults {
		return showResults(runner, ui)
	}
	return nil
}

// stepQuestion renders the current question and handles one line of input.
func stepQuestion(ctx context.Context, runner *app.Runner, ui *takeUI) error {
	state := runner.State()
	q, ok := state.CurrentQuestion()
	if !ok {
		_, err := runner.Finish(ctx, nil)
		return err
	}

	ui.printf("\nQuestion %d of %d: %s\n", state.Position+1, len(state.ActiveOrder), q.Prompt)
	if q.Type == domain.TypeMultipleChoice {
		for i, opt := range q.Options {
			ui.printf("  %d) %s\n", i+1, opt)
		}
		ui.printf("Answer with an option number")
	} else {
		ui.printf("Answer with t(rue) or f(alse)")
	}
	if a, answered := state.Answers[q.ID]; answered {
		ui.printf(" (current: %s)", answerEcho(q, a))
	}
	ui.printf("; or next, back, done, quit: ")

	line, err := ui.readLine()
	if err != nil {
		return err
	}

	switch strings.ToLower(line) {
	case "":
		return nil
	case "n", "next":
		if err := runner.Advance(); errors.Is(err, domain.ErrUnanswered) {
			ui.printf("Answer this question before moving on.\n")
		}
		return nil
	case "b", "back":
		return runner.Retreat()
	case "done":
		_, err := runner.Finish(ctx, func(unanswered int) bool {
			return ui.confirm(fmt.Sprintf("%d question(s) unanswered. Finish anyway?", unanswered))
		})
		return err
	case "quit":
		if err := runner.Quit(ctx); err != nil {
			return err
		}
		ui.printf("Progress saved. Run the same command to resume.\n")
		return nil
	}

	value, ok := parseAnswer(q, line)
	if !ok {
		ui.printf("Did not understand %q.\n", line)
		return nil
	}
	if err := runner.Answer(q.ID, value); err != nil {
		// Mismatches are ignored, never stored.
		ui.printf("That answer does not fit this question.\n")
		return nil
	}
	if state.Position < len(state.ActiveOrder)-1 {
		return runner.Advance()
	}
	if state.Completed() {
		ui.printf("All questions answered. Type done to see your results.\n")
	}
	return nil
}

// parseAnswer converts user input into the question's answer variant:
// 1-based option numbers for mc, t/f words for tf.
func parseAnswer(q domain.Question, line string) (domain.Answer, bool) {
	switch q.Type {
	case domain.TypeMultipleChoice:
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(q.Options) {
			return domain.Answer{}, false
		}
		return domain.ChoiceAnswer(n - 1), true
	case domain.TypeTrueFalse:
		switch strings.ToLower(line) {
		case "t", "true":
			return domain.BoolAnswer(true), true
		case "f", "false":
			return domain.BoolAnswer(false), true
		}
	}
	return domain.Answer{}, false
}

func showResults(runner *app.Runner, ui *takeUI) error {
	state := runner.State()
	results := score.Score(state.Document, state.Answers)
	summary := score.Summarize(results)

	ui.printf("\nResults for %q\n", state.Document.Metadata.Name)
	for _, r := range results {
		mark := "✗"
		if r.IsCorrect {
			mark = "✓"
		}
		ui.printf("  %s %d. %s\n", mark, r.Number, r.Prompt)
		ui.printf("      your answer: %s | correct: %s\n", r.UserAnswerLabel, r.CorrectAnswerLabel)
		if !r.IsCorrect && r.Explanation != "" {
			ui.printf("      %s\n", r.Explanation)
		}
	}
	ui.printf("Score: %d/%d (%.1f%%)\n", summary.Correct, summary.Total, summary.Percent)

	for {
		ui.printf("Export results as json, csv, or skip: ")
		choice, err := ui.readLine()
		if err != nil {
			return nil
		}
		switch strings.ToLower(choice) {
		case "", "skip", "n", "no":
			return nil
		case "json":
			data, err := score.ExportJSON(results)
			if err != nil {
				return err
			}
			return writeExport(ui, score.ExportFilename("json", time.Now()), data)
		case "csv":
			data, err := score.ExportCSV(results)
			if err != nil {
				return err
			}
			return writeExport(ui, score.ExportFilename("csv", time.Now()), data)
		}
	}
}

func writeExport(ui *takeUI, name string, data []byte) error {
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return err
	}
	ui.printf("Wrote %s\n", name)
	return nil
}

func renderHeader(meta domain.Metadata) string {
	if meta.Author == "" {
		return fmt.Sprintf("%s\n", meta.Name)
	}
	return fmt.Sprintf("%s by %s\n", meta.Name, meta.Author)
}

func answerEcho(q domain.Question, a domain.Answer) string {
	switch a.Kind {
	case domain.AnswerChoice:
		if a.Choice >= 0 && a.Choice < len(q.Options) {
			return q.Options[a.Choice]
		}
	case domain.AnswerBoolean:
		return strconv.FormatBool(a.Bool)
	}
	return "none"
}

// takeUI bundles prompt output and line input for the interactive loop.
type takeUI struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func (u *takeUI) printf(format string, args ...any) {
	u.cmd.Printf(format, args...)
}

func (u *takeUI) readLine() (string, error) {
	line, err := u.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (u *takeUI) confirm(prompt string) bool {
	u.printf("%s [y/N] ", prompt)
	line, err := u.readLine()
	if err != nil {
		return false
	}
	line = strings.ToLower(line)
	return line == "y" || line == "yes"
}
