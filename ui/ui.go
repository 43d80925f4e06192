// Package ui provides the interactive speaking console.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/bolo/internal/dispatch"
	"github.com/dgnsrekt/bolo/internal/script"
	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/voice"
	"github.com/muesli/reflow/truncate"
)

const (
	noteTimeout    = 3 * time.Second
	maxSuggestions = 3
	statusBuffer   = 32
	ellipsis       = "…"
)

// NewProgram returns a new Tea program driving d.
func NewProgram(cfg Config, d *dispatch.Dispatcher) *tea.Program {
	log.Debug("starting bolo ui", "alt_screen", cfg.AltScreen, "voices", d.Registry().Len())

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, d), opts...)
}

type (
	statusMsg      dispatch.Status
	noteTimeoutMsg struct{ id int }
)

// focusArea is the control receiving key input.
type focusArea int

const (
	focusText focusArea = iota
	focusRate
	focusPitch
	focusVoice
	focusCount
)

type model struct {
	cfg      Config
	d        *dispatch.Dispatcher
	statusCh <-chan dispatch.Status
	unsub    func()

	status  dispatch.Status
	text    textarea.Model
	rate    slider
	pitch   slider
	voice   textinput.Model
	spinner spinner.Model
	focus   focusArea

	suggestions []voice.Voice

	note   string
	noteID int

	width int
}

func newModel(cfg Config, d *dispatch.Dispatcher) model {
	settings := d.Settings()

	ta := textarea.New()
	ta.Placeholder = "Type English, हिन्दी, or both..."
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetValue(cfg.initialText())
	ta.Focus()

	vi := textinput.New()
	vi.Prompt = ""
	vi.Placeholder = voice.Auto
	vi.CharLimit = 64
	if settings.Voice != voice.Auto {
		vi.SetValue(settings.Voice)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle(dispatch.KindSpeaking)

	ch, unsub := d.Subscribe(statusBuffer)

	return model{
		cfg:      cfg,
		d:        d,
		statusCh: ch,
		unsub:    unsub,
		status:   d.Status(),
		text:     ta,
		rate:     newSlider("Rate", speech.MinRate, speech.MaxRate, settings.Rate),
		pitch:    newSlider("Pitch", speech.MinPitch, speech.MaxPitch, settings.Pitch),
		voice:    vi,
		spinner:  sp,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForStatus(m.statusCh))
}

// waitForStatus blocks on the next dispatcher transition.
func waitForStatus(ch <-chan dispatch.Status) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(s)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.text.SetWidth(max(20, msg.Width-2))
		return m, nil

	case statusMsg:
		prev := m.status.Kind
		m.status = dispatch.Status(msg)
		if m.status.Err != nil {
			log.Debug("status", "kind", m.status.Kind, "error", m.status.Err)
		}
		cmds = append(cmds, waitForStatus(m.statusCh))
		if m.speaking() && !isSpeaking(prev) {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.speaking() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case noteTimeoutMsg:
		if msg.id == m.noteID {
			m.note = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.d.Stop()
			m.unsub()
			return m, tea.Quit

		case "ctrl+s":
			m.speak()
			return m, nil

		case "esc", "ctrl+x":
			m.d.Stop()
			return m, nil

		case "ctrl+y":
			return m.copyChunks()

		case "tab":
			if m.focus == focusVoice && m.complete() {
				return m, nil
			}
			cmd := m.setFocus((m.focus + 1) % focusCount)
			return m, cmd

		case "shift+tab":
			cmd := m.setFocus((m.focus + focusCount - 1) % focusCount)
			return m, cmd
		}

		switch m.focus {
		case focusRate, focusPitch:
			s := &m.rate
			if m.focus == focusPitch {
				s = &m.pitch
			}
			switch msg.String() {
			case "right", "l", "+", "=", "up", "k":
				s.inc()
			case "left", "h", "-", "_", "down", "j":
				s.dec()
			}
			return m, nil

		case focusVoice:
			var cmd tea.Cmd
			m.voice, cmd = m.voice.Update(msg)
			m.suggestions = m.suggest()
			return m, cmd
		}
	}

	if m.focus == focusText {
		var cmd tea.Cmd
		m.text, cmd = m.text.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// speak pushes the control values into the session and speaks the editor
// contents.
func (m *model) speak() {
	m.d.SetSettings(dispatch.Settings{
		Rate:  m.rate.value,
		Pitch: m.pitch.value,
		Voice: m.voiceSelection(),
	})
	m.d.Speak(m.text.Value())
}

func (m model) voiceSelection() string {
	v := strings.TrimSpace(m.voice.Value())
	if v == "" {
		return voice.Auto
	}
	return v
}

func (m *model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.text.Blur()
	m.voice.Blur()
	switch f {
	case focusText:
		return m.text.Focus()
	case focusVoice:
		m.suggestions = m.suggest()
		return m.voice.Focus()
	}
	return nil
}

// suggest ranks the live voice list against the voice field.
func (m model) suggest() []voice.Voice {
	q := strings.TrimSpace(m.voice.Value())
	if q == "" || q == voice.Auto {
		return nil
	}
	matches := voice.Match(m.d.Registry().Snapshot(), q)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}

// complete replaces the voice field with the best suggestion. It reports
// false when there is nothing to complete.
func (m *model) complete() bool {
	if len(m.suggestions) == 0 || m.suggestions[0].Name == m.voice.Value() {
		return false
	}
	m.voice.SetValue(m.suggestions[0].Name)
	m.voice.CursorEnd()
	m.suggestions = m.suggest()
	return true
}

func (m model) copyChunks() (tea.Model, tea.Cmd) {
	text := chunkListing(script.Split(m.text.Value()))
	if err := clipboard.WriteAll(text); err != nil {
		log.Error("could not copy chunks", "error", err)
		return m.showNote("clipboard unavailable")
	}
	return m.showNote("copied chunks")
}

func (m model) showNote(note string) (tea.Model, tea.Cmd) {
	m.note = note
	m.noteID++
	id := m.noteID
	return m, tea.Tick(noteTimeout, func(time.Time) tea.Msg {
		return noteTimeoutMsg{id: id}
	})
}

func (m model) speaking() bool {
	return isSpeaking(m.status.Kind)
}

func isSpeaking(k dispatch.Kind) bool {
	return k == dispatch.KindSpeaking || k == dispatch.KindSpeakingChunk
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("bolo"))
	b.WriteString("\n\n")
	b.WriteString(m.text.View())
	b.WriteString("\n")
	b.WriteString(m.chunkLine())
	b.WriteString("\n\n")
	b.WriteString(m.rate.view(m.focus == focusRate))
	b.WriteString("\n")
	b.WriteString(m.pitch.view(m.focus == focusPitch))
	b.WriteString("\n")
	b.WriteString(m.voiceLine())
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.helpLine())

	return b.String()
}

func (m model) voiceLine() string {
	label := labelStyle.Render("Voice")
	if m.focus == focusVoice {
		label = focusedLabelStyle.Render("Voice")
	}
	line := label + " " + m.voice.View()

	if len(m.suggestions) > 0 {
		names := make([]string, len(m.suggestions))
		for i, v := range m.suggestions {
			names[i] = fmt.Sprintf("%s (%s)", v.Name, v.Lang)
		}
		line += "  " + suggestionStyle.Render(strings.Join(names, " · "))
	} else if m.d.Registry().Len() == 0 {
		line += "  " + suggestionStyle.Render("no voices installed")
	}
	return m.truncate(line)
}

// chunkLine previews how the editor text will be split.
func (m model) chunkLine() string {
	chunks := script.Split(m.text.Value())
	if len(chunks) == 0 {
		return helpStyle.Render("no chunks")
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = chunkStyle(c.Lang).Render(fmt.Sprintf("[%s] %s", c.Lang, c.Text))
	}
	return m.truncate(strings.Join(parts, " "))
}

func (m model) statusLine() string {
	line := statusStyle(m.status.Kind).Render(m.status.String())
	if m.speaking() {
		line = m.spinner.View() + " " + line
	}
	if m.note != "" {
		line += "  " + noteStyle.Render(m.note)
	}
	return m.truncate(line)
}

func (m model) helpLine() string {
	return m.truncate(helpStyle.Render("ctrl+s speak • esc stop • tab focus • ←/→ adjust • ctrl+y copy chunks • ctrl+c quit"))
}

func (m model) truncate(s string) string {
	if m.width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(m.width), ellipsis) //nolint:gosec
}

// chunkListing renders chunks one per line as "lang<TAB>text".
func chunkListing(chunks []script.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&b, "%s\t%s\n", c.Lang, c.Text)
	}
	return b.String()
}
