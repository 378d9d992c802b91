package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/netsimlab/netsim/netlog"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	stylePrompt = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styleHint   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	styleEvent  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// model is the bubbletea Elm-architecture front-end: a scrollable
// transcript (shell output interleaved with netlog.Bus events) plus a
// single-line input, both scoped to whichever device is currently
// selected. All simulation logic lives in the cli/*/switchengine/host
// packages; this type only renders their output and routes keystrokes.
type model struct {
	topo    *topology
	current int

	transcript []string
	viewport   viewport.Model
	input      textinput.Model

	width, height int
	ready         bool
}

func newModel(topo *topology) *model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Focus()
	ti.CharLimit = 256

	m := &model{
		topo:  topo,
		input: ti,
	}
	topo.World.Bus.Subscribe(netlog.Filter{MinLevel: netlog.LevelInfo}, m.onEvent)
	return m
}

// onEvent is the netlog.Bus subscription callback. Publish dispatches
// synchronously from whichever call stack triggered it (there is no
// goroutine involved anywhere in this simulator), so appending
// straight into the transcript slice here is safe: it only ever runs
// nested inside this same model's Update call.
func (m *model) onEvent(e netlog.Event) {
	line := fmt.Sprintf("[%s] %s: %s", e.Source, e.EventName, e.Message)
	switch e.Level {
	case netlog.LevelWarn:
		line = styleWarn.Render(line)
	case netlog.LevelError:
		line = styleError.Render(line)
	default:
		line = styleEvent.Render(line)
	}
	m.transcript = append(m.transcript, line)
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		headerHeight := 1
		inputHeight := 1
		hintHeight := 1
		vpHeight := msg.Height - headerHeight - inputHeight - hintHeight
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyTab:
			m.current = (m.current + 1) % len(m.topo.Devices)
			m.syncViewport()
			return m, nil
		case tea.KeyShiftTab:
			m.current = (m.current - 1 + len(m.topo.Devices)) % len(m.topo.Devices)
			m.syncViewport()
			return m, nil
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.SetValue("")
			if strings.TrimSpace(line) == "" {
				return m, nil
			}
			if line == ":quit" {
				return m, tea.Quit
			}
			dev := m.currentDevice()
			m.transcript = append(m.transcript, stylePrompt.Render(dev.prompt()+" "+line))
			out := dev.execute(line)
			if out != "" {
				m.transcript = append(m.transcript, out)
			}
			m.syncViewport()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) currentDevice() device {
	return m.topo.Devices[m.current]
}

func (m *model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) View() string {
	if !m.ready {
		return "initializing...\n"
	}
	dev := m.currentDevice()
	header := styleHeader.Render(fmt.Sprintf("netsimctl — %s [%s]  (Tab/Shift+Tab switch device, :quit or Ctrl+C to exit)", dev.name, dev.vendor))
	hint := styleHint.Render(fmt.Sprintf("devices: %s", deviceList(m.topo.Devices, m.current)))
	prompt := stylePrompt.Render(dev.prompt()) + " " + m.input.View()
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), hint, prompt)
}

func deviceList(devices []device, current int) string {
	var parts []string
	for i, d := range devices {
		name := d.name
		if i == current {
			name = "[" + name + "]"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "  ")
}
