package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/defuse/internal/quiz"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func testQuestions(n int) []quiz.Question {
	out := make([]quiz.Question, n)
	for i := range out {
		out[i] = quiz.Question{
			Text:    "Question " + strconv.Itoa(i) + "?",
			Options: []string{"right" + strconv.Itoa(i), "w1-" + strconv.Itoa(i), "w2-" + strconv.Itoa(i), "w3-" + strconv.Itoa(i)},
			Correct: "right" + strconv.Itoa(i),
		}
	}
	return out
}

func testSettings() quiz.Settings {
	s := quiz.DefaultSettings()
	s.AdvanceDelay = time.Millisecond
	s.TickInterval = time.Millisecond
	return s
}

func newTestModel(t *testing.T, src quiz.Source, opts Options) (*Model, *quiz.Controller, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	ctrl := quiz.NewController(testSettings(), src, clock, quiz.NewShuffler(7))
	m := NewModel(ctrl, opts)
	feed(m, collect(m.Init()))
	return m, ctrl, clock
}

func staticSource(n int) quiz.Source {
	qs := testQuestions(n)
	return quiz.SourceFunc(func(context.Context) ([]quiz.Question, error) {
		return qs, nil
	})
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func feed(m *Model, msgs []tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func press(m *Model, s string) tea.Cmd {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func answerKey(t *testing.T, ctrl *quiz.Controller, correct bool) string {
	t.Helper()
	snap := ctrl.Snapshot()
	if snap.Question == nil {
		t.Fatalf("no current question")
	}
	idx := snap.Question.CorrectIndex()
	if !correct {
		idx = (idx + 1) % len(snap.Question.Options)
	}
	return strconv.Itoa(idx + 1)
}

func TestIntroScreen(t *testing.T) {
	m, ctrl, _ := newTestModel(t, staticSource(10), Options{})
	if !ctrl.Snapshot().Ready {
		t.Fatalf("expected questions to be prefetched on init")
	}
	view := m.View()
	for _, want := range []string{"DEFUSE THE BOMB!", "How to play?", "60 seconds", "5 seconds", "01:00:00"} {
		if !strings.Contains(view, want) {
			t.Fatalf("intro view missing %q:\n%s", want, view)
		}
	}
}

func TestStartAndAdvance(t *testing.T) {
	m, ctrl, _ := newTestModel(t, staticSource(10), Options{})
	if cmd := press(m, "enter"); cmd == nil {
		t.Fatalf("expected start to schedule the countdown")
	}
	snap := ctrl.Snapshot()
	if snap.Phase != quiz.PhaseInProgress || snap.Loading {
		t.Fatalf("expected in-progress session with questions, got %+v", snap)
	}
	if !strings.Contains(m.View(), "Question 1 of 10") {
		t.Fatalf("expected first question in view:\n%s", m.View())
	}

	cmd := press(m, answerKey(t, ctrl, true))
	if ctrl.Snapshot().CurrentIndex != 0 || !ctrl.Snapshot().HasSelection {
		t.Fatalf("expected selection to hold the current question")
	}
	feed(m, collect(cmd))
	snap = ctrl.Snapshot()
	if snap.CurrentIndex != 1 || snap.Correct != 1 || snap.HasSelection {
		t.Fatalf("expected advance to question 2, got %+v", snap)
	}
	if !strings.Contains(m.View(), "Correct answers: 1 / 6") {
		t.Fatalf("expected progress line:\n%s", m.View())
	}
}

func TestWrongAnswerFlashesPenalty(t *testing.T) {
	m, ctrl, _ := newTestModel(t, staticSource(10), Options{})
	press(m, "enter")
	press(m, answerKey(t, ctrl, false))

	if ctrl.Snapshot().Remaining != 55*time.Second {
		t.Fatalf("expected penalty, got %v", ctrl.Snapshot().Remaining)
	}
	if !m.flashing || !strings.Contains(m.View(), "-5") {
		t.Fatalf("expected penalty flash:\n%s", m.View())
	}
	m.Update(flashDoneMsg{id: m.flashID - 1})
	if !m.flashing {
		t.Fatalf("stale flash message cleared the flash")
	}
	m.Update(flashDoneMsg{id: m.flashID})
	if m.flashing {
		t.Fatalf("expected flash to clear")
	}
}

func TestDefuseScreen(t *testing.T) {
	m, ctrl, clock := newTestModel(t, staticSource(10), Options{})
	press(m, "enter")
	for i := 0; i < 6; i++ {
		clock.now = clock.now.Add(time.Second)
		cmd := press(m, answerKey(t, ctrl, true))
		if i < 5 {
			feed(m, collect(cmd))
		}
	}
	snap := ctrl.Snapshot()
	if snap.Outcome != quiz.OutcomeDefused {
		t.Fatalf("expected defused, got %+v", snap)
	}
	view := m.View()
	for _, want := range []string{"Congratulations!", "You defused the bomb in time!", "Time remaining: 00:54:00"} {
		if !strings.Contains(view, want) {
			t.Fatalf("result view missing %q:\n%s", want, view)
		}
	}
}

func TestTimeExpiry(t *testing.T) {
	m, ctrl, clock := newTestModel(t, staticSource(10), Options{})
	press(m, "enter")
	epoch := ctrl.Snapshot().Epoch

	if _, cmd := m.Update(tickMsg{epoch: epoch - 1}); cmd != nil {
		t.Fatalf("stale tick must not reschedule")
	}
	if _, cmd := m.Update(tickMsg{epoch: epoch}); cmd == nil {
		t.Fatalf("expected tick to reschedule while running")
	}

	clock.now = clock.now.Add(61 * time.Second)
	if _, cmd := m.Update(tickMsg{epoch: epoch}); cmd != nil {
		t.Fatalf("expected countdown to stop at zero")
	}
	view := m.View()
	for _, want := range []string{"UNLUCKY!", "You failed to defuse the bomb in time.", "Press r to try again."} {
		if !strings.Contains(view, want) {
			t.Fatalf("expiry view missing %q:\n%s", want, view)
		}
	}
	if cmd := press(m, "enter"); cmd != nil {
		t.Fatalf("start must be ignored once the clock ran out")
	}
}

func TestQuickRetryStartsNewSession(t *testing.T) {
	m, ctrl, clock := newTestModel(t, staticSource(10), Options{QuickRetry: true})
	press(m, "enter")
	clock.now = clock.now.Add(61 * time.Second)
	m.Update(tickMsg{epoch: ctrl.Snapshot().Epoch})

	cmd := press(m, "r")
	snap := ctrl.Snapshot()
	if snap.Phase != quiz.PhaseInProgress || !snap.Loading {
		t.Fatalf("expected a loading session after quick retry, got %+v", snap)
	}
	if !strings.Contains(m.View(), "Loading...") {
		t.Fatalf("expected loading view:\n%s", m.View())
	}
	feed(m, collect(cmd))
	snap = ctrl.Snapshot()
	if snap.Loading || snap.Question == nil || snap.Remaining != 60*time.Second {
		t.Fatalf("expected fresh session, got %+v", snap)
	}
}

func TestRetryWithoutQuickRetry(t *testing.T) {
	m, ctrl, _ := newTestModel(t, staticSource(10), Options{})
	press(m, "enter")
	feed(m, collect(press(m, "r")))
	snap := ctrl.Snapshot()
	if snap.Phase != quiz.PhaseNotStarted || !snap.Ready {
		t.Fatalf("expected not-started with prefetched questions, got %+v", snap)
	}
}

func TestFetchFailureIsReported(t *testing.T) {
	src := quiz.SourceFunc(func(context.Context) ([]quiz.Question, error) {
		return nil, errors.New("boom")
	})
	m, _, _ := newTestModel(t, src, Options{})
	if m.Err() == nil {
		t.Fatalf("expected fetch error")
	}
	if !strings.Contains(m.View(), "Failed to load questions: boom") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}
	press(m, "r")
	if m.Err() != nil {
		t.Fatalf("expected retry to clear the error")
	}
}

func TestErrorClearsAfterSuccessfulFetch(t *testing.T) {
	fail := true
	src := quiz.SourceFunc(func(context.Context) ([]quiz.Question, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return testQuestions(10), nil
	})
	m, ctrl, _ := newTestModel(t, src, Options{})
	if m.Err() == nil {
		t.Fatalf("expected prefetch error")
	}

	fail = false
	feed(m, collect(press(m, "enter")))
	snap := ctrl.Snapshot()
	if snap.Phase != quiz.PhaseInProgress || snap.Loading || snap.Question == nil {
		t.Fatalf("expected a playable session, got %+v", snap)
	}
	if m.Err() != nil {
		t.Fatalf("expected error to clear after a successful fetch, got %v", m.Err())
	}
}

func TestEnterRefetchesFailedLoad(t *testing.T) {
	fail := true
	src := quiz.SourceFunc(func(context.Context) ([]quiz.Question, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return testQuestions(10), nil
	})
	m, ctrl, _ := newTestModel(t, src, Options{})
	feed(m, collect(press(m, "enter")))
	snap := ctrl.Snapshot()
	if snap.Phase != quiz.PhaseInProgress || !snap.Loading || snap.FetchErr == nil {
		t.Fatalf("expected a loading session with an error, got %+v", snap)
	}
	if !m.keys.forPhase(snap).Start.Enabled() {
		t.Fatalf("expected start to be offered after a failed load")
	}

	fail = false
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatalf("expected enter to refetch questions")
	}
	feed(m, collect(cmd))
	snap = ctrl.Snapshot()
	if snap.Loading || snap.Question == nil || m.Err() != nil {
		t.Fatalf("expected questions after refetch, got %+v err=%v", snap, m.Err())
	}
}

func TestQuitClosesController(t *testing.T) {
	m, ctrl, _ := newTestModel(t, staticSource(10), Options{})
	cmd := press(m, "q")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if _, ok := ctrl.Start(); ok {
		t.Fatalf("expected closed controller to ignore start")
	}
}

func TestHelpFollowsPhase(t *testing.T) {
	m, ctrl, _ := newTestModel(t, staticSource(10), Options{})
	keys := m.keys.forPhase(ctrl.Snapshot())
	if !keys.Start.Enabled() || keys.Answer.Enabled() {
		t.Fatalf("expected only start enabled before play")
	}
	press(m, "enter")
	keys = m.keys.forPhase(ctrl.Snapshot())
	if keys.Start.Enabled() || !keys.Answer.Enabled() {
		t.Fatalf("expected answers enabled during play")
	}
}

func TestViewFillsWindow(t *testing.T) {
	m, _, _ := newTestModel(t, staticSource(10), Options{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if got := strings.Count(m.View(), "\n"); got != 23 {
		t.Fatalf("expected 24 lines, got %d", got+1)
	}
}
