// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ik5/audmux/engine"
)

const refresh = 100 * time.Millisecond

// controller is the part of the manager the UI drives.
type controller interface {
	Sounds() []string
	Stats() []engine.VoiceStat
	Play(name string, fade time.Duration, looping bool) (engine.Voice, error)
	Stop(name string, fade time.Duration) error
	StopAll(fade time.Duration)
	IsAnyPlaying(name string) bool
	Suspend()
	Resume()
	GlobalGain() float64
	SetGlobalGain(g float64)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

type tickMsg time.Time

type model struct {
	ctl       controller
	sounds    []string
	stats     []engine.VoiceStat
	cursor    int
	fade      time.Duration
	looping   bool
	suspended bool
	status    string
	err       error
	quitting  bool
}

func newModel(ctl controller, fade time.Duration) model {
	return model{
		ctl:    ctl,
		sounds: ctl.Sounds(),
		stats:  ctl.Stats(),
		fade:   fade,
	}
}

func tick() tea.Cmd {
	return tea.Tick(refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg.String())
	case tickMsg:
		m.stats = m.ctl.Stats()
		return m, tick()
	}
	return m, nil
}

func (m model) selected() string {
	if len(m.sounds) == 0 {
		return ""
	}
	return m.sounds[m.cursor]
}

func (m model) key(k string) (tea.Model, tea.Cmd) {
	m.err = nil

	switch k {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(len(m.sounds)-1, 0))
	case "enter", " ":
		name := m.selected()
		if v, err := m.ctl.Play(name, m.fade, m.looping); err != nil {
			m.err = err
		} else {
			m.status = fmt.Sprintf("%s on voice %d", name, v.ID())
		}
	case "s":
		if m.err = m.ctl.Stop(m.selected(), m.fade); m.err == nil {
			m.status = "stopped " + m.selected()
		}
	case "S":
		m.ctl.StopAll(m.fade)
		m.status = "stopped everything"
	case "l":
		m.looping = !m.looping
	case "p":
		if m.suspended {
			m.ctl.Resume()
		} else {
			m.ctl.Suspend()
		}
		m.suspended = !m.suspended
	case "+", "=":
		m.ctl.SetGlobalGain(min(m.ctl.GlobalGain()+0.1, 2))
	case "-":
		m.ctl.SetGlobalGain(max(m.ctl.GlobalGain()-0.1, 0))
	}

	m.stats = m.ctl.Stats()
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return "bye\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("audmux"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %s   %s %s   %s %v\n\n",
		headerStyle.Render("gain:"), valueStyle.Render(fmt.Sprintf("%.1f", m.ctl.GlobalGain())),
		headerStyle.Render("loop:"), valueStyle.Render(onOff(m.looping)),
		headerStyle.Render("fade:"), m.fade,
	)

	b.WriteString(headerStyle.Render(fmt.Sprintf("Sounds (%d)", len(m.sounds))))
	b.WriteString("\n")
	for i, name := range m.sounds {
		mark := "  "
		if m.ctl.IsAnyPlaying(name) {
			mark = "> "
		}
		line := mark + name
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	busy := 0
	for _, st := range m.stats {
		if st.Bound {
			busy++
		}
	}
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("Voices (%d/%d)", busy, len(m.stats))))
	b.WriteString("\n")
	for _, st := range m.stats {
		if !st.Bound {
			continue
		}
		flags := ""
		if st.Looping {
			flags += " loop"
		}
		if st.Locked {
			flags += " locked"
		}
		b.WriteString(valueStyle.Render(fmt.Sprintf("  #%-2d %-10s %-20s gain %.2f  %6.2fs  buf %d%s",
			st.ID, st.State, st.Sound, st.Gain, st.Offset, st.Buffered, flags)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
	} else {
		b.WriteString(valueStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter play  s stop  S stop all  l loop  p pause all  +/- gain  q quit"))

	return b.String()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func runTUI(ctx context.Context, ctl controller, fade time.Duration) error {
	p := tea.NewProgram(newModel(ctl, fade), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
