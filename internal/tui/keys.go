package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/defuse/internal/quiz"
)

type keyMap struct {
	Start  key.Binding
	Answer key.Binding
	Retry  key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("enter", "s"),
			key.WithHelp("enter", "start"),
		),
		Answer: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "a", "b", "c", "d"),
			key.WithHelp("1-4", "answer"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// forPhase returns a copy with only the bindings that do something now.
func (k keyMap) forPhase(snap quiz.Snapshot) keyMap {
	out := k
	canStart := snap.Phase != quiz.PhaseInProgress && snap.Remaining > 0
	if snap.Phase == quiz.PhaseInProgress && snap.Loading && snap.FetchErr != nil {
		canStart = true
	}
	out.Start.SetEnabled(canStart)
	out.Answer.SetEnabled(snap.Phase == quiz.PhaseInProgress && snap.Question != nil && !snap.HasSelection)
	return out
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Answer, k.Retry, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func answerIndex(s string) (int, bool) {
	switch s {
	case "1", "a":
		return 0, true
	case "2", "b":
		return 1, true
	case "3", "c":
		return 2, true
	case "4", "d":
		return 3, true
	default:
		return -1, false
	}
}
