// Package cpu implements a cycle-accurate 6502/65C02 execution engine: a
// 256-entry opcode dispatch table built from addressing-mode/instruction
// composition, exact cycle accounting (including page-crossing and
// write-always penalties), decimal-mode ADC/SBC, and the disassembler data
// model the debugger consumes.
package cpu

// Interrupt vectors.
const (
	vectorNMI   = 0xFFFA
	vectorReset = 0xFFFC
	vectorIRQ   = 0xFFFE
)

// StepListener is called once per instruction, after it completes, with a
// reference to the state as it stands post-instruction. It
// runs on the CPU's own thread and must not block.
type StepListener func(c *CPU)

// CPU couples the register/cycle/halt State to a Memory bus and an opcode
// table selected by Model. Handlers receive a mutable CPU borrow plus an
// immutable Memory handle.
type CPU struct {
	State

	Bus   Memory
	Model Model

	table *[256]opcodeEntry

	onStep StepListener

	// Scratch state threaded between an addressing-mode Fetch and the
	// instruction handler that consumes it, so the page-cross decision
	// (read vs write-always) is made once, at table-build time, rather
	// than duplicated in every handler.
	pageCrossedThisOp bool
	branchTaken       bool
	branchPageCrossed bool
}

// New returns a CPU wired to bus, with model selecting the 6502 or 65C02
// instruction set and bug-fix set.
func New(bus Memory, model Model) *CPU {
	c := &CPU{Bus: bus, Model: model}
	c.table = tableFor(model)
	return c
}

// SetStepListener registers a debugger callback.
func (c *CPU) SetStepListener(l StepListener) { c.onStep = l }

// EnableTrace turns instruction tracing on or off.
func (c *CPU) EnableTrace(on bool) { c.TraceEnabled = on }

// Reset performs the power-on/reset sequence: registers
// zeroed except SP=0xFD and P=I|U, PC loaded from the reset vector, cycles
// zeroed, halt cleared.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = FlagIRQDisable | FlagUnused
	c.PC = c.Bus.ReadWord(vectorReset)
	c.Cycles = 0
	c.Halt = HaltNone
	c.stopRequested = false
}

// Execute sets PC to start, clears any halt, and loops Step until halted.
func (c *CPU) Execute(start uint16) {
	c.PC = start
	c.Halt = HaltNone
	for !c.Halted() {
		if _, err := c.Step(); err != nil {
			return
		}
	}
}

// Step performs one fetch/decode/execute cycle and returns the number of
// cycles consumed. If the CPU is halted, Step is a no-op returning 0.
// A pending RequestStop is honored at this boundary, giving cooperative
// cancellation an instruction-granularity latency bound.
func (c *CPU) Step() (uint8, error) {
	if c.Halted() {
		return 0, nil
	}
	if c.stopRequested {
		c.Halt = HaltStp
		c.stopRequested = false
		return 0, nil
	}

	before := c.Cycles

	opcodeAddr := c.PC
	opcode := c.Bus.Read(uint32(c.PC))
	c.PC++

	entry := c.table[opcode]

	c.pageCrossedThisOp = false
	c.branchTaken = false
	c.branchPageCrossed = false

	var operandBytes []byte
	if c.TraceEnabled {
		n := entry.mode.OperandBytes()
		operandBytes = make([]byte, n)
		for i := 0; i < n; i++ {
			operandBytes[i] = c.Bus.Read(uint32(c.PC) + uint32(i))
		}
	}

	entry.handler(c, c.Bus)

	cycles := uint64(entry.baseCycles)
	if entry.pageCrossExtra && c.pageCrossedThisOp {
		cycles++
	}
	if entry.isBranch && c.branchTaken {
		cycles++
		if c.branchPageCrossed {
			cycles++
		}
	}
	c.Cycles += cycles

	elapsed := uint8(c.Cycles - before)

	if c.TraceEnabled {
		c.Trace = InstructionTrace{
			Address:      opcodeAddr,
			Opcode:       opcode,
			Mnemonic:     entry.mnemonic,
			Mode:         entry.mode,
			OperandBytes: operandBytes,
			Cycles:       elapsed,
		}
	}

	if c.onStep != nil {
		c.onStep(c)
	}

	return elapsed, nil
}

// SignalIRQ raises a maskable interrupt: ignored if FlagIRQDisable is set,
// otherwise pushes PC and P (without B) and jumps via the IRQ vector.
func (c *CPU) SignalIRQ() {
	if c.GetFlag(FlagIRQDisable) {
		return
	}
	pushWord(c, c.Bus, c.PC)
	push(c, c.Bus, c.P&^FlagBreak|FlagUnused)
	c.SetFlag(FlagIRQDisable, true)
	c.PC = c.Bus.ReadWord(vectorIRQ)
}

// SignalNMI raises a non-maskable interrupt: same shape as SignalIRQ but
// unconditional and via the NMI vector.
func (c *CPU) SignalNMI() {
	pushWord(c, c.Bus, c.PC)
	push(c, c.Bus, c.P&^FlagBreak|FlagUnused)
	c.SetFlag(FlagIRQDisable, true)
	c.PC = c.Bus.ReadWord(vectorNMI)
}

// doADC performs ADC, including exact decimal-mode BCD correction. In
// decimal mode N/Z reflect the decimal-corrected result (65C02 semantics),
// while V is computed from the intermediate result after the low-nibble
// correction and before the high-nibble one.
func (c *CPU) doADC(v byte) {
	a := c.A
	carry := byte(0)
	if c.GetFlag(FlagCarry) {
		carry = 1
	}

	if c.GetFlag(FlagDecimal) {
		lo := (a & 0x0F) + (v & 0x0F) + carry
		carryLo := byte(0)
		if lo > 9 {
			lo += 6
			carryLo = 1
		}
		hi := (a >> 4) + (v >> 4) + carryLo
		result := byte(lo&0x0F) | (hi << 4 & 0xF0)
		c.SetFlag(FlagOverflow, (a^result)&(v^result)&0x80 != 0)
		if hi > 9 {
			hi += 6
			c.SetFlag(FlagCarry, true)
		} else {
			c.SetFlag(FlagCarry, false)
		}
		result = byte(lo&0x0F) | (hi << 4 & 0xF0)
		c.A = result
		c.SetZN(c.A)
		return
	}

	sum := uint16(a) + uint16(v) + uint16(carry)
	result := byte(sum)
	c.SetFlag(FlagCarry, sum > 0xFF)
	c.SetFlag(FlagOverflow, (a^result)&(v^result)&0x80 != 0)
	c.A = result
	c.SetZN(c.A)
}

// doSBC mirrors doADC with subtraction and -6 nibble corrections.
func (c *CPU) doSBC(v byte) {
	a := c.A
	borrow := byte(0)
	if !c.GetFlag(FlagCarry) {
		borrow = 1
	}

	// C/V always follow two's-complement subtraction, decimal mode or not;
	// Z/N are set from the final A (decimal-corrected in decimal mode).
	diff := int16(a) - int16(v) - int16(borrow)
	binResult := byte(diff)
	c.SetFlag(FlagCarry, diff >= 0)
	c.SetFlag(FlagOverflow, (a^v)&(a^binResult)&0x80 != 0)

	if c.GetFlag(FlagDecimal) {
		lo := int16(a&0x0F) - int16(v&0x0F) - int16(borrow)
		var borrowLo int16
		if lo < 0 {
			lo -= 6
			borrowLo = 1
		}
		hi := int16(a>>4) - int16(v>>4) - borrowLo
		if hi < 0 {
			hi -= 6
		}
		c.A = byte(lo&0x0F) | byte(hi<<4&0xF0)
	} else {
		c.A = binResult
	}
	c.SetZN(c.A)
}
