package cpu

// HaltState enumerates why the CPU is not currently executing
// instructions.
type HaltState int

const (
	HaltNone HaltState = iota
	HaltBrk
	HaltWai
	HaltStp
)

func (h HaltState) String() string {
	switch h {
	case HaltNone:
		return "None"
	case HaltBrk:
		return "Brk"
	case HaltWai:
		return "Wai"
	case HaltStp:
		return "Stp"
	default:
		return "Unknown"
	}
}

// Model selects which instruction/cycle table the CPU dispatches through.
// Cpu65816/Cpu65832 in cpu65816.go are placeholders only; no Model value
// selects their instruction set yet.
type Model int

const (
	NMOS6502 Model = iota
	CMOS65C02
)

// InstructionTrace records the most recently decoded instruction. It is
// populated only while a debugger is attached (State.TraceEnabled).
type InstructionTrace struct {
	Address      uint16
	Opcode       byte
	Mnemonic     string
	Mode         AddressingModeKind
	OperandBytes []byte
	Cycles       uint8
}

// State aggregates the registers, the monotonic cycle counter, the halt
// state and the optional instruction trace.
type State struct {
	Registers

	Cycles       uint64
	Halt         HaltState
	TraceEnabled bool
	Trace        InstructionTrace

	stopRequested bool
}

// RequestStop asks the CPU to halt at the next instruction boundary.
// Cooperative: Step() observes this flag before fetching the next opcode.
func (s *State) RequestStop() { s.stopRequested = true }

// Halted reports whether the CPU is not presently able to execute
// instructions.
func (s *State) Halted() bool { return s.Halt != HaltNone }
