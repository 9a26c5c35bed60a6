// Package tui provides the Bubble Tea bomb-defusal interface.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/defuse/internal/quiz"
)

const penaltyFlash = 900 * time.Millisecond

// Options tunes the presentation layer.
type Options struct {
	// QuickRetry starts a new session immediately after a retry.
	QuickRetry   bool
	FetchTimeout time.Duration
}

type fetchMsg struct {
	batch quiz.Batch
}

type tickMsg struct {
	epoch uint64
}

type advanceMsg struct {
	advance quiz.Advance
}

type flashDoneMsg struct {
	id int
}

// Model implements the Bubble Tea game UI.
type Model struct {
	ctrl    *quiz.Controller
	opts    Options
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width  int
	height int

	flashing bool
	flashID  int
	lastErr  error
}

// NewModel constructs the game UI around a controller.
func NewModel(ctrl *quiz.Controller, opts Options) *Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = mutedStyle
	return &Model{
		ctrl:    ctrl,
		opts:    opts,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
	}
}

// Err returns the last question source failure, if any.
func (m *Model) Err() error {
	return m.lastErr
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if req := m.ctrl.Prefetch(); req.Pending() {
		cmds = append(cmds, m.fetch(req))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case fetchMsg:
		if m.ctrl.Deliver(msg.batch) {
			m.lastErr = m.ctrl.Snapshot().FetchErr
		}
		return m, nil
	case tickMsg:
		if m.ctrl.Tick(msg.epoch) {
			return m, m.tick(msg.epoch)
		}
		return m, nil
	case advanceMsg:
		m.ctrl.Advance(msg.advance)
		return m, nil
	case flashDoneMsg:
		if msg.id == m.flashID {
			m.flashing = false
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Start):
		return m.start()
	case key.Matches(msg, m.keys.Retry):
		return m.retry()
	case key.Matches(msg, m.keys.Answer):
		idx, ok := answerIndex(msg.String())
		if !ok {
			return nil
		}
		return m.answer(idx)
	default:
		return nil
	}
}

func (m *Model) start() tea.Cmd {
	req, ok := m.ctrl.Start()
	var cmds []tea.Cmd
	if ok {
		cmds = append(cmds, m.tick(m.ctrl.Snapshot().Epoch))
	}
	if req.Pending() {
		cmds = append(cmds, m.fetch(req))
	}
	return tea.Batch(cmds...)
}

func (m *Model) retry() tea.Cmd {
	m.flashing = false
	m.lastErr = nil
	var cmds []tea.Cmd
	if req := m.ctrl.Retry(); req.Pending() {
		cmds = append(cmds, m.fetch(req))
	}
	if m.opts.QuickRetry {
		cmds = append(cmds, m.start())
	}
	return tea.Batch(cmds...)
}

func (m *Model) answer(idx int) tea.Cmd {
	before := m.ctrl.Snapshot().Penalties
	adv, ok := m.ctrl.Answer(idx)

	var cmds []tea.Cmd
	if m.ctrl.Snapshot().Penalties > before {
		m.flashID++
		m.flashing = true
		id := m.flashID
		cmds = append(cmds, tea.Tick(penaltyFlash, func(time.Time) tea.Msg {
			return flashDoneMsg{id: id}
		}))
	}
	if ok {
		cmds = append(cmds, tea.Tick(adv.Delay, func(time.Time) tea.Msg {
			return advanceMsg{advance: adv}
		}))
	}
	return tea.Batch(cmds...)
}

func (m *Model) tick(epoch uint64) tea.Cmd {
	return tea.Tick(m.ctrl.Settings().TickInterval, func(time.Time) tea.Msg {
		return tickMsg{epoch: epoch}
	})
}

// fetch runs the question source off the update loop.
func (m *Model) fetch(req quiz.Request) tea.Cmd {
	ctrl := m.ctrl
	timeout := m.opts.FetchTimeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return fetchMsg{batch: ctrl.Fetch(ctx, req)}
	}
}
