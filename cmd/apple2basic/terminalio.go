package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"apple2core/runtime"
)

// screenWidth is the Apple II's 40-column text mode width, used for
// word-wrap-free column tracking in Write; HTAB positioning does not use it.
const screenWidth = 40

var (
	inverseStyle = lipgloss.NewStyle().Reverse(true)
	flashStyle   = lipgloss.NewStyle().Blink(true)
)

// TerminalIO drives Applesoft's PRINT/INPUT/GET family over a real
// terminal, emulating the Apple II's 40-column cursor tracking and
// INVERSE/FLASH/NORMAL text styles with lipgloss.
type TerminalIO struct {
	in     *bufio.Reader
	out    *os.File
	col    int
	row    int
	mode   runtime.TextMode
	isTerm bool
}

// NewTerminalIO wires stdin/stdout, detecting whether stdout is a real TTY
// so INVERSE/FLASH styling can be skipped cleanly when piped.
func NewTerminalIO() *TerminalIO {
	return &TerminalIO{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		isTerm: isatty.IsTerminal(os.Stdout.Fd()),
	}
}

func (t *TerminalIO) style(s string) string {
	if !t.isTerm {
		return s
	}
	switch t.mode {
	case runtime.TextInverse:
		return inverseStyle.Render(s)
	case runtime.TextFlash:
		return flashStyle.Render(s)
	default:
		return s
	}
}

func (t *TerminalIO) Write(s string) {
	fmt.Fprint(t.out, t.style(s))
	for _, r := range s {
		if r == '\n' {
			t.col = 0
			t.row++
			continue
		}
		t.col += runewidth.RuneWidth(r)
		if t.col >= screenWidth {
			t.col = 0
			t.row++
		}
	}
}

func (t *TerminalIO) WriteLine(s string) { t.Write(s + "\n") }

func (t *TerminalIO) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		t.Write(prompt)
	}
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	t.col = 0
	t.row++
	return trimNewline(line), nil
}

func (t *TerminalIO) ReadChar() (byte, error) {
	b, err := t.in.ReadByte()
	return b, err
}

func (t *TerminalIO) SetCursorPosition(col, row int) { t.col, t.row = col, row }
func (t *TerminalIO) GetCursorColumn() int            { return t.col }
func (t *TerminalIO) GetCursorRow() int               { return t.row }
func (t *TerminalIO) SetTextMode(mode runtime.TextMode) { t.mode = mode }

// Beep writes the terminal BEL character, standing in for the Apple II
// speaker click a real ROM BELL routine would produce.
func (t *TerminalIO) Beep() { fmt.Fprint(t.out, "\a") }

func (t *TerminalIO) ClearScreen() {
	if t.isTerm {
		fmt.Fprint(t.out, "\x1b[2J\x1b[H")
	}
	t.col, t.row = 0, 0
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
