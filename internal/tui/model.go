// Package tui provides the Bubble Tea practice interface.
//
// The [Model] is a pure consumer of the session controller: it renders
// controller state, forwards key presses as commands, and folds the
// controller's event stream into the view via a re-armed wait command.
// No session logic lives here.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voicebuddy/internal/score"
	"voicebuddy/internal/session"
	"voicebuddy/pkg/provider/stt"
)

// Setting cycles offered by the settings keys.
var (
	focusAreas = []string{
		"general", "pronunciation", "articulation", "fluency",
		"consonants", "vowels", "tongue_twisters",
	}
	difficulties = []string{"beginner", "intermediate", "advanced"}
	lengths      = []string{"short", "medium", "long"}
	topics       = []string{"", "animals", "technology", "sports"}
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4F46E5"))
	phraseStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	rationaleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	matchedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	closeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	missedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	extraStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Strikethrough(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	scoreStyle     = lipgloss.NewStyle().Bold(true)
)

// eventMsg wraps a controller event for the Bubble Tea loop.
type eventMsg struct {
	ev session.Event
}

// commandFailedMsg carries a rejected controller command.
type commandFailedMsg struct {
	err error
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	ctrl   *session.Controller
	events <-chan session.Event

	spinner spinner.Model

	width  int
	height int

	phrase     string
	rationale  string
	transcript string
	result     *score.Result
	errText    string

	totalSessions int
	bestScore     int
	avgScore      float64
}

// NewModel constructs the practice TUI over a running controller.
func NewModel(ctrl *session.Controller) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	m := &Model{
		ctrl:    ctrl,
		events:  ctrl.Events(),
		spinner: sp,
	}
	m.totalSessions, m.bestScore, m.avgScore = ctrl.Stats()
	return m
}

// Init implements tea.Model. It requests the first phrase and arms the
// event wait.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent(), m.command(func() error {
		return m.ctrl.RequestPhrase(context.Background())
	}))
}

// waitForEvent blocks on the controller's event stream and delivers the
// next event to Update. Update re-arms it after every delivery.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg{ev: ev}
	}
}

// command runs a controller command and reports a rejection, if any.
func (m *Model) command(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return commandFailedMsg{err: err}
		}
		return nil
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.applyEvent(msg.ev)
		return m, m.waitForEvent()

	case commandFailedMsg:
		m.errText = userMessage(msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.ctrl.Reset()
		return m, tea.Quit

	case "g":
		m.errText = ""
		return m, m.command(func() error {
			return m.ctrl.RequestPhrase(context.Background())
		})

	case "r":
		m.errText = ""
		return m, m.command(m.ctrl.StartRecording)

	case "s":
		return m, m.command(func() error {
			return m.ctrl.StopRecording(context.Background())
		})

	case "h":
		return m, m.command(func() error {
			return m.ctrl.Speak(context.Background())
		})

	case "f":
		return m, m.cycleSetting(session.SettingFocusArea, focusAreas, m.ctrl.Settings().FocusArea)
	case "d":
		return m, m.cycleSetting(session.SettingDifficultyLevel, difficulties, m.ctrl.Settings().DifficultyLevel)
	case "l":
		return m, m.cycleSetting(session.SettingPhraseLength, lengths, m.ctrl.Settings().PhraseLength)
	case "t":
		return m, m.cycleSetting(session.SettingTopicInterest, topics, m.ctrl.Settings().TopicInterest)
	case "m":
		return m, m.cycleSetting(session.SettingModelSize, stt.ValidModelSizes, m.ctrl.Settings().RecognizerModelSize)
	}
	return m, nil
}

func (m *Model) cycleSetting(key string, values []string, current string) tea.Cmd {
	next := cycle(values, current)
	return m.command(func() error {
		return m.ctrl.ChangeSetting(key, next)
	})
}

// cycle returns the value after current in values, wrapping around. An
// unknown current maps to the first value.
func cycle(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func (m *Model) applyEvent(ev session.Event) {
	switch ev := ev.(type) {
	case session.PhraseUpdated:
		m.phrase = ev.Phrase
		m.rationale = ev.Rationale
		m.transcript = ""
		m.result = nil
		m.errText = ""

	case session.RecordingStarted:
		m.transcript = ""
		m.result = nil
		m.errText = ""

	case session.RecordingStopped:
		// Shown via the transcribing status line.

	case session.TranscriptReady:
		m.transcript = ev.Transcript

	case session.ScoreReady:
		res := ev.Result
		m.result = &res
		m.totalSessions, m.bestScore, m.avgScore = m.ctrl.Stats()

	case session.ErrorEvent:
		m.errText = userMessage(ev.Err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("VoiceBuddy"))
	b.WriteString("\n\n")

	if m.phrase == "" {
		b.WriteString(statusStyle.Render(m.spinner.View() + "picking a phrase..."))
		b.WriteString("\n")
	} else {
		b.WriteString(phraseStyle.Render(m.phrase))
		b.WriteString("\n")
		if m.rationale != "" {
			b.WriteString(rationaleStyle.Render(m.rationale))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if m.result != nil {
		b.WriteString("\n")
		b.WriteString(scoreStyle.Render(fmt.Sprintf("Score: %d%%", m.result.Percentage)))
		b.WriteString("\n")
		b.WriteString(renderWords(m.result.Words))
		b.WriteString("\n")
		if m.transcript != "" {
			b.WriteString(rationaleStyle.Render("heard: " + m.transcript))
			b.WriteString("\n")
		}
	}

	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) statusLine() string {
	switch m.ctrl.State() {
	case session.StateRecording:
		return errorStyle.Render("● recording — press s to stop")
	case session.StateTranscribing:
		return statusStyle.Render(m.spinner.View() + "transcribing...")
	case session.StateScored:
		return statusStyle.Render("scored — press g for a new phrase")
	case session.StatePhraseReady:
		return statusStyle.Render("ready — press r to record")
	default:
		return statusStyle.Render(m.spinner.View() + "starting...")
	}
}

// renderWords colours the per-word feedback: matched words green, close
// misses yellow with the heard word, missed words red, and extra spoken
// words struck through.
func renderWords(words []score.WordMatch) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		switch {
		case w.Matched:
			parts = append(parts, matchedStyle.Render(w.Expected))
		case w.Expected == "":
			parts = append(parts, extraStyle.Render(w.Heard))
		case w.Close:
			parts = append(parts, closeStyle.Render(fmt.Sprintf("%s(%s)", w.Expected, w.Heard)))
		default:
			parts = append(parts, missedStyle.Render(w.Expected))
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderFooter() string {
	s := m.ctrl.Settings()
	topic := s.TopicInterest
	if topic == "" {
		topic = "any"
	}
	lines := []string{
		fmt.Sprintf("sessions %d · best %d%% · avg %.1f%%", m.totalSessions, m.bestScore, m.avgScore),
		fmt.Sprintf("[f]ocus %s · [d]ifficulty %s · [l]ength %s · [t]opic %s · [m]odel %s",
			s.FocusArea, s.DifficultyLevel, s.PhraseLength, topic, s.RecognizerModelSize),
		"[g] new phrase · [r] record · [s] stop · [h] hear it · [q] quit",
	}
	return footerStyle.Render(strings.Join(lines, "\n"))
}

// userMessage maps session errors onto short user-facing text.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrCapabilityLoading):
		return "The speech model is still loading — try again in a moment."
	case errors.Is(err, session.ErrCapabilityUnavailable):
		return "Speech features are unavailable on this run."
	case errors.Is(err, session.ErrDeviceUnavailable):
		return "Could not open the microphone. Is another app using it?"
	case errors.Is(err, session.ErrRecognitionFailed):
		return "Could not understand the recording — please try again."
	case errors.Is(err, session.ErrPersistenceFailed):
		return "Your score could not be saved, but the session continues."
	case errors.Is(err, session.ErrInvalidTransition):
		return "That action is not available right now."
	default:
		return err.Error()
	}
}
