package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"apple2core/cpu"
)

var (
	pcStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Underline(true)
)

// debuggerModel is a bubbletea model driving a live *cpu.CPU one step at a
// time: " " or "j" steps an instruction, "q" quits.
type debuggerModel struct {
	cpu   *cpu.CPU
	model cpu.Model
	err   error
}

func newDebuggerModel(c *cpu.CPU, model cpu.Model) debuggerModel {
	return debuggerModel{cpu: c, model: model}
}

func (m debuggerModel) Init() tea.Cmd { return nil }

func (m debuggerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "j":
		if _, err := m.cpu.Step(); err != nil {
			m.err = err
		}
	}
	return m, nil
}

func (m debuggerModel) View() string {
	listing := m.renderListing(m.cpu.PC, 12)
	status := m.renderStatus()
	body := lipgloss.JoinHorizontal(lipgloss.Top, listing, "  ", status)
	footer := "space/j: step    q: quit"
	if m.err != nil {
		footer = fmt.Sprintf("error: %v    %s", m.err, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, "", footer)
}

// renderListing disassembles count instructions starting at pc, marking
// the current instruction.
func (m debuggerModel) renderListing(pc uint16, count int) string {
	instrs := cpu.DisassembleRange(m.cpu.Bus, pc, m.model, count)
	var b strings.Builder
	b.WriteString(headerStyle.Render("listing") + "\n")
	for _, in := range instrs {
		line := fmt.Sprintf("$%04X  %02X  %s", in.Address, in.Opcode, in.Text())
		if in.Address == pc {
			line = pcStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m debuggerModel) renderStatus() string {
	r := m.cpu.Registers
	var b strings.Builder
	b.WriteString(headerStyle.Render("registers") + "\n")
	fmt.Fprintf(&b, "A=$%02X X=$%02X Y=$%02X SP=$%02X PC=$%04X\n", r.A, r.X, r.Y, r.SP, r.PC)
	fmt.Fprintf(&b, "P=%s (%s)\n", r.StatusString(), m.cpu.Halt)
	fmt.Fprintf(&b, "cycles=%d\n", m.cpu.Cycles)
	if m.cpu.TraceEnabled {
		b.WriteString(headerStyle.Render("last trace") + "\n")
		b.WriteString(spew.Sdump(m.cpu.Trace))
	}
	return b.String()
}

// RunDebugger launches the interactive single-step TUI against c, starting
// execution at start.
func RunDebugger(c *cpu.CPU, model cpu.Model, start uint16) error {
	c.PC = start
	c.Halt = cpu.HaltNone
	c.EnableTrace(true)
	p := tea.NewProgram(newDebuggerModel(c, model))
	_, err := p.Run()
	return err
}
