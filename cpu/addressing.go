package cpu

// AddressingModeKind tags which of the 6502/65C02 addressing modes an
// opcode uses. The disassembler and the instruction-trace both consult this
// tag directly,
// in place of the reference implementation's reflection-over-closures
// trick.
type AddressingModeKind int

const (
	Implied AddressingModeKind = iota
	Accumulator
	ImmediateMode
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX
	IndirectY
)

// OperandBytes returns how many operand bytes follow the opcode byte for
// this mode.
func (k AddressingModeKind) OperandBytes() int {
	switch k {
	case Implied, Accumulator:
		return 0
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	default:
		return 1
	}
}

func (k AddressingModeKind) String() string {
	names := [...]string{
		"Implied", "Accumulator", "Immediate", "ZeroPage", "ZeroPage,X",
		"ZeroPage,Y", "Relative", "Absolute", "Absolute,X", "Absolute,Y",
		"Indirect", "(Indirect,X)", "(Indirect),Y",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// AddressingMode is a pure function that reads operand bytes from PC,
// advances PC, and returns the effective address plus whether the
// resolution crossed a page boundary. It never touches CPU.Cycles directly;
// the opcode table entry decides whether a page-cross adds a cycle (read
// modes, via pageCrossExtra) or the worst case is already in its base cycle
// count (write/RMW modes).
//
// mode(cpu, mem) -> addr is deliberately the same shape for every mode, so
// instruction factories can be written once and parameterized by mode
// -> opcode_handler").
type AddressingMode func(c *CPU, m Memory) (addr uint32, pageCrossed bool)

// fetchImplied returns the sentinel address 0 and never advances PC.
func fetchImplied(c *CPU, m Memory) (uint32, bool) { return 0, false }

// fetchAccumulator is Implied's twin for instructions that operate on A
// instead of a memory operand.
func fetchAccumulator(c *CPU, m Memory) (uint32, bool) { return 0, false }

func fetchImmediate(c *CPU, m Memory) (uint32, bool) {
	addr := uint32(c.PC)
	c.PC++
	return addr, false
}

// dpBase returns the zero/direct-page base. Always 0 outside 65816 native
// mode, which this core does not execute.
func (c *CPU) dpBase() uint16 { return c.D }

func fetchZeroPage(c *CPU, m Memory) (uint32, bool) {
	zp := uint16(m.Read(uint32(c.PC)))
	c.PC++
	return uint32(c.dpBase()+zp) & 0xFFFF, false
}

func fetchZeroPageX(c *CPU, m Memory) (uint32, bool) {
	zp := uint16(m.Read(uint32(c.PC)))
	c.PC++
	addr := (c.dpBase() + zp + uint16(c.X)) & 0x00FF
	return uint32(c.dpBase()&0xFF00 | addr), false
}

func fetchZeroPageY(c *CPU, m Memory) (uint32, bool) {
	zp := uint16(m.Read(uint32(c.PC)))
	c.PC++
	addr := (c.dpBase() + zp + uint16(c.Y)) & 0x00FF
	return uint32(c.dpBase()&0xFF00 | addr), false
}

func fetchRelative(c *CPU, m Memory) (uint32, bool) {
	off := int8(m.Read(uint32(c.PC)))
	c.PC++
	target := uint16(int32(c.PC) + int32(off))
	return uint32(target), false
}

func absoluteAddr(c *CPU, m Memory) uint16 {
	word := m.ReadWord(uint32(c.PC))
	c.PC += 2
	return word
}

func fetchAbsolute(c *CPU, m Memory) (uint32, bool) {
	word := absoluteAddr(c, m)
	return uint32(c.DBR)<<16 | uint32(word), false
}

func pageCrossed(base, final uint16) bool { return base&0xFF00 != final&0xFF00 }

func fetchAbsoluteX(c *CPU, m Memory) (uint32, bool) {
	base := absoluteAddr(c, m)
	final := base + uint16(c.X)
	return uint32(c.DBR)<<16 | uint32(final), pageCrossed(base, final)
}

func fetchAbsoluteY(c *CPU, m Memory) (uint32, bool) {
	base := absoluteAddr(c, m)
	final := base + uint16(c.Y)
	return uint32(c.DBR)<<16 | uint32(final), pageCrossed(base, final)
}

func fetchIndirectX(c *CPU, m Memory) (uint32, bool) {
	zp := uint16(m.Read(uint32(c.PC)))
	c.PC++
	ptr := (c.dpBase() + zp + uint16(c.X)) & 0x00FF
	lo := uint16(m.Read(uint32(c.dpBase()&0xFF00 | ptr)))
	hi := uint16(m.Read(uint32(c.dpBase()&0xFF00 | (ptr+1)&0x00FF)))
	addr := hi<<8 | lo
	return uint32(c.DBR)<<16 | uint32(addr), false
}

func fetchIndirectY(c *CPU, m Memory) (uint32, bool) {
	zp := uint16(m.Read(uint32(c.PC)))
	c.PC++
	base := c.dpBase()&0xFF00 | zp
	lo := uint16(m.Read(uint32(base)))
	hi := uint16(m.Read(uint32(c.dpBase()&0xFF00 | (zp+1)&0x00FF)))
	ptr := hi<<8 | lo
	final := ptr + uint16(c.Y)
	return uint32(c.DBR)<<16 | uint32(final), pageCrossed(ptr, final)
}

// fetchIndirectFor is used only by JMP (abs). On NMOS 6502 it has the famous
// page-wrap bug: if the pointer's low byte is 0xFF, the high byte of the
// target is fetched from $xx00 instead of wrapping into the next page. The
// 65C02 fixes this; which behavior applies is a property of
// the CPU's Model, so this function takes the model explicitly rather than
// being two separate AddressingMode values.
func fetchIndirectFor(model Model) AddressingMode {
	return func(c *CPU, m Memory) (uint32, bool) {
		ptr := absoluteAddr(c, m)
		lo := uint16(m.Read(uint32(ptr)))
		var hiAddr uint16
		if model == NMOS6502 && byte(ptr) == 0xFF {
			hiAddr = ptr & 0xFF00
		} else {
			hiAddr = ptr + 1
		}
		hi := uint16(m.Read(uint32(hiAddr)))
		return uint32(hi<<8 | lo), false
	}
}
