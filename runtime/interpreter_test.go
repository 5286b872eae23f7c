package runtime

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apple2core/basic"
	"apple2core/mbf"
)

type fakeMem map[uint32]byte

func (m fakeMem) Read(addr uint32) byte     { return m[addr] }
func (m fakeMem) Write(addr uint32, v byte) { m[addr] = v }

type fakeCPU struct {
	executed []uint16
	mem      fakeMem
}

// Execute simulates a trivial ROM routine living at the USR() vector: it
// reads FAC back out, adds one, and writes it back, letting tests observe
// that USR() round-trips its argument through FAC rather than the
// accumulator.
func (c *fakeCPU) Execute(start uint16) {
	c.executed = append(c.executed, start)
	if start == usrVectorAddr && c.mem != nil {
		v := mbf.ReadFromMemory(c.mem, facAddr)
		mbf.WriteToMemory(c.mem, facAddr, facSignAddr, v+1)
	}
}

type fakeIO struct {
	out    strings.Builder
	lines  []string
	col    int
	beeped bool
}

func (f *fakeIO) Write(s string)     { f.out.WriteString(s) }
func (f *fakeIO) WriteLine(s string) { f.out.WriteString(s + "\n") }
func (f *fakeIO) ReadLine(prompt string) (string, error) {
	if len(f.lines) == 0 {
		return "", nil
	}
	l := f.lines[0]
	f.lines = f.lines[1:]
	return l, nil
}
func (f *fakeIO) ReadChar() (byte, error)            { return 'A', nil }
func (f *fakeIO) SetCursorPosition(col, row int)     { f.col = col }
func (f *fakeIO) GetCursorColumn() int               { return f.col }
func (f *fakeIO) GetCursorRow() int                  { return 0 }
func (f *fakeIO) SetTextMode(mode TextMode)          {}
func (f *fakeIO) ClearScreen()                       {}
func (f *fakeIO) Beep()                              { f.beeped = true }

func newTestInterpreter(t *testing.T, src string) (*Interpreter, *fakeIO, fakeMem, *fakeCPU) {
	prog, err := basic.ParseProgram(src)
	require.NoError(t, err)
	io := &fakeIO{}
	mem := fakeMem{}
	cpu := &fakeCPU{mem: mem}
	return NewInterpreter(prog, mem, cpu, io), io, mem, cpu
}

func TestPrintArithmetic(t *testing.T) {
	interp, io, _, _ := newTestInterpreter(t, "10 PRINT 2 + 3 * 4\n")
	require.NoError(t, interp.Run())
	assert.Equal(t, " 14\n", io.out.String())
}

func TestForNextAccumulates(t *testing.T) {
	interp, io, _, _ := newTestInterpreter(t, "10 LET S = 0\n20 FOR I = 1 TO 5\n30 LET S = S + I\n40 NEXT I\n50 PRINT S\n")
	require.NoError(t, interp.Run())
	assert.Equal(t, " 15\n", io.out.String())
}

func TestGosubReturn(t *testing.T) {
	interp, io, _, _ := newTestInterpreter(t, "10 GOSUB 100\n20 PRINT \"DONE\"\n30 END\n100 PRINT \"SUB\"\n110 RETURN\n")
	require.NoError(t, interp.Run())
	assert.Equal(t, "SUB\nDONE\n", io.out.String())
}

func TestReadDataAndRestore(t *testing.T) {
	interp, io, _, _ := newTestInterpreter(t, "10 READ A, B\n20 PRINT A + B\n30 RESTORE\n40 READ C\n50 PRINT C\n60 DATA 3, 4, 5\n")
	require.NoError(t, interp.Run())
	assert.Equal(t, " 7\n 3\n", io.out.String())
}

// TestUsrBridgesThroughCPU checks that USR() stages its argument into FAC
// (not the accumulator), executes directly at the fixed $000A vector, and
// reads the result back out of FAC.
func TestUsrBridgesThroughCPU(t *testing.T) {
	interp, io, _, cpu := newTestInterpreter(t, "10 PRINT USR(7)\n")
	require.NoError(t, interp.Run())
	assert.Equal(t, []uint16{usrVectorAddr}, cpu.executed)
	assert.Equal(t, " 8\n", io.out.String())
}

func TestStringConcatenation(t *testing.T) {
	interp, io, _, _ := newTestInterpreter(t, "10 A$ = \"HELLO\"\n20 PRINT A$ + \", WORLD\"\n")
	require.NoError(t, interp.Run())
	assert.Equal(t, "HELLO, WORLD\n", io.out.String())
}

func TestOnGotoDispatches(t *testing.T) {
	interp, io, _, _ := newTestInterpreter(t, "10 ON 2 GOTO 100, 200, 300\n100 PRINT \"ONE\"\n110 END\n200 PRINT \"TWO\"\n210 END\n300 PRINT \"THREE\"\n")
	require.NoError(t, interp.Run())
	assert.Equal(t, "TWO\n", io.out.String())
}

func TestArrayAutoDimAndBounds(t *testing.T) {
	interp, io, _, _ := newTestInterpreter(t, "10 A(10) = 99\n20 PRINT A(10)\n")
	require.NoError(t, interp.Run())
	assert.Equal(t, " 99\n", io.out.String())
}

// TestNextWithoutForErrors checks that Run catches a runtime error itself,
// reports it through IBasicIO, and returns nil rather than propagating the
// error to the caller.
func TestNextWithoutForErrors(t *testing.T) {
	interp, io, _, _ := newTestInterpreter(t, "10 NEXT I\n")
	require.NoError(t, interp.Run())
	assert.Contains(t, io.out.String(), "NEXT WITHOUT FOR")
}
