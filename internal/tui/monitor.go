package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"simplenp/npos/board"
	"simplenp/npos/kbd"
	"simplenp/npos/proto"
)

const logLines = 8

type eventMsg proto.KeyEvent

type closedMsg struct{}

type monitorKeyMap struct {
	Clear key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func (k monitorKeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Clear, k.Help, k.Quit} }

func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Clear}, {k.Help, k.Quit}}
}

func defaultMonitorKeyMap() monitorKeyMap {
	return monitorKeyMap{
		Clear: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear log")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// MonitorModel shows the keypad's live key levels and a scrolling log.
type MonitorModel struct {
	help  help.Model
	keys  monitorKeyMap
	theme *Theme

	events <-chan proto.KeyEvent
	now    func() time.Time
	title  string

	levels  [kbd.MaxKeys]kbd.LevelState
	log     []string
	presses int
	closed  bool
	width   int
}

// NewMonitorModel reads key events from events until it is closed.
func NewMonitorModel(title string, events <-chan proto.KeyEvent, theme *Theme) MonitorModel {
	if theme == nil {
		theme = DefaultTheme()
	}
	return MonitorModel{
		help:   help.New(),
		keys:   defaultMonitorKeyMap(),
		theme:  theme,
		events: events,
		now:    time.Now,
		title:  title,
	}
}

func waitForEvent(ch <-chan proto.KeyEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m MonitorModel) Init() tea.Cmd { return waitForEvent(m.events) }

func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.apply(proto.KeyEvent(msg))
		return m, waitForEvent(m.events)
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.log = nil
			m.presses = 0
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

func (m *MonitorModel) apply(ev proto.KeyEvent) {
	k := kbd.Key(ev.Key)
	state := kbd.LevelState(ev.State)
	if !k.Valid() {
		return
	}
	m.levels[k] = state
	if state == kbd.Rising {
		m.presses++
	}
	line := fmt.Sprintf("%s %-7s %s", m.now().Format("15:04:05.000"), k, state)
	m.log = append(m.log, line)
	if len(m.log) > logLines {
		m.log = m.log[len(m.log)-logLines:]
	}
}

// Level returns the last reported level of k.
func (m MonitorModel) Level(k kbd.Key) kbd.LevelState {
	if !k.Valid() {
		return kbd.Low
	}
	return m.levels[k]
}

// Presses counts the key presses seen since the last clear.
func (m MonitorModel) Presses() int { return m.presses }

// Closed reports whether the event stream ended.
func (m MonitorModel) Closed() bool { return m.closed }

func (m MonitorModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString(m.theme.Subtle.Render(fmt.Sprintf("  %d presses", m.presses)))
	b.WriteString("\n")

	rows := make([]string, 0, board.Rows)
	for r := 0; r < board.Rows; r++ {
		cells := make([]string, 0, board.Cols)
		for c := 0; c < board.Cols; c++ {
			k := kbd.Key(r*board.Cols + c)
			cells = append(cells, m.keyCell(k))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")

	logText := strings.Join(m.log, "\n")
	if logText == "" {
		logText = m.theme.Subtle.Render("waiting for keys…")
	}
	b.WriteString(m.theme.Box.Render(logText))
	b.WriteString("\n")
	if m.closed {
		b.WriteString(m.theme.ErrorText.Render("device disconnected"))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m MonitorModel) keyCell(k kbd.Key) string {
	if !k.Physical() {
		return m.theme.KeyIdle.Render("")
	}
	switch m.levels[k] {
	case kbd.High:
		return m.theme.KeyDown.Render(k.String())
	case kbd.Rising, kbd.Falling:
		return m.theme.KeyEdge.Render(k.String())
	default:
		return m.theme.KeyIdle.Render(k.String())
	}
}
