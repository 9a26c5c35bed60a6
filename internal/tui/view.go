package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/defuse/internal/quiz"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	timerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	defusedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	bombStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E")).Padding(0, 2)
	penaltyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	optionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C8C8C8"))
	correctStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.ctrl.Snapshot()
	width := m.contentWidth()

	sections := []string{titleStyle.Render("DEFUSE THE BOMB!"), m.renderBomb(snap)}
	switch {
	case snap.Phase == quiz.PhaseFinished:
		sections = append(sections, renderResult(snap, width))
	case snap.Phase == quiz.PhaseInProgress && snap.Loading:
		sections = append(sections, m.spinner.View()+" "+mutedStyle.Render("Loading..."))
	case snap.Phase == quiz.PhaseInProgress:
		sections = append(sections, renderQuestion(snap, width))
	default:
		sections = append(sections, renderIntro(m.ctrl.Settings(), width))
	}
	if snap.FetchErr != nil {
		msg := fmt.Sprintf("Failed to load questions: %v (press enter or r to retry)", snap.FetchErr)
		sections = append(sections, errorStyle.Render(wrapText(msg, width)))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.help.View(m.keys.forPhase(snap))
	}
	footer := footerStyle.Render(m.help.View(m.keys.forPhase(snap)))
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderBomb(snap quiz.Snapshot) string {
	var face string
	switch {
	case snap.Outcome == quiz.OutcomeDefused:
		face = defusedStyle.Render(quiz.FormatClock(snap.DisplayTime()))
	case snap.Outcome == quiz.OutcomeFailed && snap.Reason == quiz.ReasonTimeExpired:
		face = timerStyle.Render("UNLUCKY!")
	default:
		face = timerStyle.Render(quiz.FormatClock(snap.DisplayTime()))
	}
	if m.flashing {
		face = lipgloss.JoinHorizontal(lipgloss.Center, face, "  ", penaltyStyle.Render(penaltyLabel(m.ctrl.Settings().Penalty)))
	}
	return bombStyle.Render(face)
}

func renderIntro(settings quiz.Settings, width int) string {
	lines := []string{
		headingStyle.Render("How to play?"),
		wrapText(fmt.Sprintf("Answer %d questions correctly before the timer runs out to defuse the bomb.", settings.RequiredCorrect), width),
		wrapText(fmt.Sprintf("You have %s. Every wrong answer costs %s.", formatSeconds(settings.Budget), formatSeconds(settings.Penalty)), width),
		mutedStyle.Render("Press enter to start."),
	}
	return strings.Join(lines, "\n")
}

func renderQuestion(snap quiz.Snapshot, width int) string {
	if snap.Question == nil {
		return ""
	}
	q := snap.Question
	lines := []string{
		mutedStyle.Render(fmt.Sprintf("Question %d of %d", snap.CurrentIndex+1, snap.Total)),
		questionStyle.Render(wrapText(q.Text, width)),
		"",
	}
	for i, opt := range q.Options {
		label := wrapText(fmt.Sprintf("%d) %s", i+1, opt), width)
		lines = append(lines, optionLine(snap, i, label))
	}
	lines = append(lines, "", fmt.Sprintf("Correct answers: %d / %d", snap.Correct, snap.Required))
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// optionLine highlights the chosen option and, once answered, the right one.
func optionLine(snap quiz.Snapshot, idx int, label string) string {
	if !snap.HasSelection {
		return optionStyle.Render(label)
	}
	switch {
	case snap.Question.IsCorrect(idx):
		return correctStyle.Render(label)
	case idx == snap.Selection:
		return incorrectStyle.Render(label)
	default:
		return mutedStyle.Render(label)
	}
}

func renderResult(snap quiz.Snapshot, width int) string {
	var lines []string
	if snap.Outcome == quiz.OutcomeDefused {
		lines = append(lines,
			defusedStyle.Render("Congratulations!"),
			"You defused the bomb in time!",
			"Time remaining: "+quiz.FormatClock(snap.DisplayTime()),
		)
	} else {
		lines = append(lines,
			incorrectStyle.Render("Unlucky!"),
			"You failed to defuse the bomb in time.",
		)
		if snap.Reason == quiz.ReasonExhausted {
			lines = append(lines, mutedStyle.Render(wrapText(fmt.Sprintf("Out of questions with %d of %d correct.", snap.Correct, snap.Required), width)))
		}
	}
	lines = append(lines, fmt.Sprintf("Correct answers: %d / %d", snap.Correct, snap.Required))
	if snap.Penalties > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("Wrong answers: %d", snap.Penalties)))
	}
	if snap.Remaining > 0 {
		lines = append(lines, mutedStyle.Render("Press enter to play again or r for new questions."))
	} else {
		lines = append(lines, mutedStyle.Render("Press r to try again."))
	}
	return strings.Join(lines, "\n")
}

func penaltyLabel(d time.Duration) string {
	return fmt.Sprintf("-%g", d.Seconds())
}

func formatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		n := int(d / time.Second)
		if n == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", n)
	}
	return fmt.Sprintf("%.1f seconds", d.Seconds())
}
