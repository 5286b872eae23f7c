package runtime

import (
	"math"
	"math/rand"
	"strings"

	"apple2core/mbf"
)

// BuiltinMemory is the slice of mem.Memory the PEEK/POKE/CALL/USR family
// needs; a minimal local interface avoids runtime importing cpu/mem and
// keeps the package dependency graph one-directional. It also happens to be
// exactly the surface mbf.Memory asks for, so it doubles as the FAC bridge's
// memory argument.
type BuiltinMemory interface {
	Read(addr uint32) byte
	Write(addr uint32, val byte)
}

// BuiltinCPU is the slice of *cpu.CPU the CALL/USR/`&` bridge drives.
type BuiltinCPU interface {
	Execute(start uint16)
}

// Builtins evaluates every Applesoft built-in function. RND keeps its own
// generator so RND(0) (repeat last) and RND(negative) (reseed) behave
// independently of Go's global rand state.
type Builtins struct {
	rng       *rand.Rand
	lastRand  float64
	mem       BuiltinMemory
	cpuBus    BuiltinCPU
	cursorCol func() int
}

func NewBuiltins(mem BuiltinMemory, cpuBus BuiltinCPU, cursorCol func() int) *Builtins {
	return &Builtins{rng: rand.New(rand.NewSource(1)), mem: mem, cpuBus: cpuBus, cursorCol: cursorCol}
}

func (b *Builtins) Call(name string, args []Value, line int) (Value, error) {
	switch name {
	case "ABS":
		return Number(math.Abs(args[0].AsNumber())), nil
	case "SGN":
		n := args[0].AsNumber()
		switch {
		case n > 0:
			return Number(1), nil
		case n < 0:
			return Number(-1), nil
		default:
			return Number(0), nil
		}
	case "INT":
		return Number(math.Floor(args[0].AsNumber())), nil
	case "SQR":
		n := args[0].AsNumber()
		if n < 0 {
			return Value{}, errIllegalQuantity(line)
		}
		return Number(math.Sqrt(n)), nil
	case "SIN":
		return Number(math.Sin(args[0].AsNumber())), nil
	case "COS":
		return Number(math.Cos(args[0].AsNumber())), nil
	case "TAN":
		return Number(math.Tan(args[0].AsNumber())), nil
	case "ATN":
		return Number(math.Atan(args[0].AsNumber())), nil
	case "EXP":
		return Number(math.Exp(args[0].AsNumber())), nil
	case "LOG":
		n := args[0].AsNumber()
		if n <= 0 {
			return Value{}, errIllegalQuantity(line)
		}
		return Number(math.Log(n)), nil
	case "RND":
		return Number(b.rnd(args[0].AsNumber())), nil
	case "LEN":
		return Number(float64(len(args[0].AsString()))), nil
	case "ASC":
		s := args[0].AsString()
		if s == "" {
			return Value{}, errIllegalQuantity(line)
		}
		return Number(float64(s[0])), nil
	case "CHR$":
		return String(string(byte(args[0].AsInteger()))), nil
	case "STR$":
		return String(FormatNumber(args[0].AsNumber())), nil
	case "VAL":
		return Number(leadingNumber(args[0].AsString())), nil
	case "MID$":
		return b.midDollar(args, line)
	case "LEFT$":
		return b.leftDollar(args, line)
	case "RIGHT$":
		return b.rightDollar(args, line)
	case "TAB", "SPC":
		return Number(args[0].AsNumber()), nil
	case "PEEK":
		addr := args[0].AsInteger()
		if addr < 0 || addr > 0xFFFF {
			return Value{}, errIllegalQuantity(line)
		}
		return Number(float64(b.mem.Read(uint32(addr)))), nil
	case "POS":
		if b.cursorCol != nil {
			return Number(float64(b.cursorCol())), nil
		}
		return Number(0), nil
	case "FRE":
		return Number(38000), nil
	case "USR":
		return b.usr(args[0], line)
	}
	return Value{}, errSyntax(line)
}

// rnd reimplements Applesoft's three-way RND(x) contract: x<0 reseeds from x
// and returns a fresh draw, x=0 repeats the last draw, x>0 draws fresh.
func (b *Builtins) rnd(x float64) float64 {
	switch {
	case x < 0:
		b.rng = rand.New(rand.NewSource(int64(x)))
		b.lastRand = b.rng.Float64()
	case x == 0:
		// repeat lastRand as-is
	default:
		b.lastRand = b.rng.Float64()
	}
	return b.lastRand
}

func (b *Builtins) midDollar(args []Value, line int) (Value, error) {
	s := args[0].AsString()
	start := args[1].AsInteger()
	if start < 1 {
		return Value{}, errIllegalQuantity(line)
	}
	length := len(s) - start + 1
	if len(args) > 2 {
		length = args[2].AsInteger()
	}
	return String(substr(s, start-1, length)), nil
}

func (b *Builtins) leftDollar(args []Value, line int) (Value, error) {
	n := args[1].AsInteger()
	if n < 0 {
		return Value{}, errIllegalQuantity(line)
	}
	return String(substr(args[0].AsString(), 0, n)), nil
}

func (b *Builtins) rightDollar(args []Value, line int) (Value, error) {
	s := args[0].AsString()
	n := args[1].AsInteger()
	if n < 0 {
		return Value{}, errIllegalQuantity(line)
	}
	start := len(s) - n
	if start < 0 {
		start = 0
	}
	return String(substr(s, start, n)), nil
}

func substr(s string, start, length int) string {
	if start < 0 {
		start = 0
	}
	if start >= len(s) || length <= 0 {
		return ""
	}
	end := start + length
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// usrVectorAddr is the fixed zero-page entry point a USR() call executes at
// ($000A..$000C per spec.md §6's memory map — the user plants their own
// routine, or jump, there).
const usrVectorAddr = 0x000A

// facAddr/facSignAddr are the Applesoft FAC zero-page cells USR() stages its
// argument into and reads its result back from: an IEEE single at facAddr
// plus an explicit sign byte, the same shadow layout mbf.WriteToMemory/
// ReadFromMemory maintain.
const (
	facAddr     = 0x009D
	facSignAddr = 0x00A2
)

// usr implements the low-level USR() call: the argument is staged into FAC
// via the mbf bridge, execution jumps directly to $000A, and FAC is read
// back as the result once the routine halts.
func (b *Builtins) usr(arg Value, line int) (Value, error) {
	if b.mem == nil || b.cpuBus == nil {
		return Value{}, errIllegalQuantity(line)
	}
	v := arg.AsNumber()
	if _, err := mbf.DoubleToMbf(v); err != nil {
		return Value{}, errOverflow(line)
	}
	mbf.WriteToMemory(b.mem, facAddr, facSignAddr, v)
	b.cpuBus.Execute(usrVectorAddr)
	return Number(mbf.ReadFromMemory(b.mem, facAddr)), nil
}

// IsStringFunc reports whether the built-in function name returns a string.
func IsStringFunc(name string) bool {
	switch strings.ToUpper(name) {
	case "CHR$", "STR$", "MID$", "LEFT$", "RIGHT$":
		return true
	}
	return false
}
