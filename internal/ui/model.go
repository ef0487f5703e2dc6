package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/notify"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/transfer"
)

// form field indexes
const (
	fieldPlaylist = iota
	fieldDestName
	fieldCount
)

// transferDoneMsg carries the orchestrator's result back into the Elm loop.
type transferDoneMsg struct {
	outcome transfer.Outcome
	err     error
}

// failureEvent surfaces an orchestrator invocation error in the status line.
type failureEvent struct {
	err error
}

func (e failureEvent) Message() string {
	return fmt.Sprintf("Error: %v", e.err)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	tracker      *auth.Tracker
	orchestrator *transfer.Orchestrator
	notifier     *notify.Notifier
	inputs       [fieldCount]textinput.Model
	focus        int
	transferring bool
	spinner      spinner.Model
	width        int
	height       int
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The session greeting derived from restored authentication state is
// published immediately, so the status line is never blank on startup.
func NewModel(ctx context.Context, tracker *auth.Tracker, orchestrator *transfer.Orchestrator, notifier *notify.Notifier) *Model {
	playlist := textinput.New()
	playlist.Placeholder = "Spotify playlist URL or ID"
	playlist.CharLimit = 200
	playlist.Width = 60
	playlist.Focus()

	destName := textinput.New()
	destName.Placeholder = "YouTube Music playlist name (optional)"
	destName.CharLimit = 100
	destName.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	notifier.Publish(auth.SessionStatus{
		SourceReady: tracker.StatusOf(auth.Spotify) == auth.StatusAuthenticated,
		DestReady:   tracker.StatusOf(auth.YTMusic) == auth.StatusAuthenticated,
	})

	return &Model{
		ctx:          ctx,
		tracker:      tracker,
		orchestrator: orchestrator,
		notifier:     notifier,
		inputs:       [fieldCount]textinput.Model{playlist, destName},
		spinner:      sp,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.next):
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case key.Matches(msg, m.keys.prev):
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case key.Matches(msg, m.keys.submit):
			if m.transferring {
				return m, nil
			}
			return m, m.startTransfer()
		}

	case spinner.TickMsg:
		if !m.transferring {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case transferDoneMsg:
		m.transferring = false
		if msg.err != nil {
			m.notifier.Publish(failureEvent{err: msg.err})
		} else {
			m.notifier.Publish(msg.outcome)
		}
		return m, nil
	}

	return m, m.updateInputs(msg)
}

// View renders the transfer form.
func (m *Model) View() string {
	title := styles.title.Render("Spotify → YouTube Music")

	status := ""
	for _, provider := range auth.Providers {
		line := fmt.Sprintf("%s: %s", provider.DisplayName(), m.tracker.StatusOf(provider))
		if m.tracker.StatusOf(provider) == auth.StatusAuthenticated {
			status += styles.ok.Render(line)
		} else {
			status += styles.warn.Render(line)
		}
		status += "\n"
	}

	form := fmt.Sprintf("%s\n%s", m.inputs[fieldPlaylist].View(), m.inputs[fieldDestName].View())

	message := m.notifier.Current()
	if m.transferring {
		message = fmt.Sprintf("%s %s", m.spinner.View(), message)
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n%s\n", title, status, form, message, helpView)
}

func (m *Model) setFocus(focus int) {
	m.focus = focus
	for i := range m.inputs {
		if i == focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

// startTransfer submits the form to the orchestrator off the Elm loop.
func (m *Model) startTransfer() tea.Cmd {
	m.transferring = true
	m.notifier.Publish(transfer.Started{})

	identifier := m.inputs[fieldPlaylist].Value()
	destName := m.inputs[fieldDestName].Value()

	run := func() tea.Msg {
		outcome, err := m.orchestrator.Run(m.ctx, identifier, destName)
		return transferDoneMsg{outcome: outcome, err: err}
	}

	return tea.Batch(m.spinner.Tick, run)
}
