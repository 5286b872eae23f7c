package cpu

// opcodeEntry is one slot of the 256-entry dispatch table:
// the handler built by an instruction factory, plus the metadata the
// disassembler and cycle-accounting logic in Step need. Mnemonic/mode are
// captured explicitly here rather than recovered by reflection over the
// handler closure.
type opcodeEntry struct {
	handler        OpcodeHandler
	mnemonic       string
	mode           AddressingModeKind
	baseCycles     uint8
	pageCrossExtra bool // add 1 cycle if the addressing-mode fetch crossed a page (read instructions only)
	isBranch       bool
}

// fetcherFor resolves an AddressingModeKind to its pure fetch function.
// Indirect is the sole mode whose behavior depends on Model (the JMP
// page-wrap bug fix), so it is threaded through separately.
func fetcherFor(kind AddressingModeKind, model Model) AddressingMode {
	switch kind {
	case Implied:
		return fetchImplied
	case Accumulator:
		return fetchAccumulator
	case ImmediateMode:
		return fetchImmediate
	case ZeroPage:
		return fetchZeroPage
	case ZeroPageX:
		return fetchZeroPageX
	case ZeroPageY:
		return fetchZeroPageY
	case Relative:
		return fetchRelative
	case Absolute:
		return fetchAbsolute
	case AbsoluteX:
		return fetchAbsoluteX
	case AbsoluteY:
		return fetchAbsoluteY
	case Indirect:
		return fetchIndirectFor(model)
	case IndirectX:
		return fetchIndirectX
	case IndirectY:
		return fetchIndirectY
	default:
		panic("cpu: unknown addressing mode kind")
	}
}

var nmosTable *[256]opcodeEntry
var cmosTable *[256]opcodeEntry

func tableFor(model Model) *[256]opcodeEntry {
	switch model {
	case CMOS65C02:
		if cmosTable == nil {
			cmosTable = buildTable(CMOS65C02)
		}
		return cmosTable
	default:
		if nmosTable == nil {
			nmosTable = buildTable(NMOS6502)
		}
		return nmosTable
	}
}

// builder accumulates opcodeEntry values into a 256-slot table, defaulting
// every unmapped slot to the illegal-opcode handler.
type builder struct {
	model Model
	table [256]opcodeEntry
}

func newBuilder(model Model) *builder {
	b := &builder{model: model}
	for i := range b.table {
		b.table[i] = opcodeEntry{handler: illegalOpcode, mnemonic: "???", mode: Implied, baseCycles: 2}
	}
	return b
}

// reg registers a mode-parameterized instruction factory at opcode.
func (b *builder) reg(opcode byte, mnemonic string, kind AddressingModeKind, cycles uint8, crossExtra bool, factory func(AddressingMode) OpcodeHandler) {
	fetch := fetcherFor(kind, b.model)
	b.table[opcode] = opcodeEntry{
		handler:        factory(fetch),
		mnemonic:       mnemonic,
		mode:           kind,
		baseCycles:     cycles,
		pageCrossExtra: crossExtra,
	}
}

// regFn registers a plain (non mode-parameterized) handler at opcode.
func (b *builder) regFn(opcode byte, mnemonic string, kind AddressingModeKind, cycles uint8, h OpcodeHandler) {
	b.table[opcode] = opcodeEntry{handler: h, mnemonic: mnemonic, mode: kind, baseCycles: cycles}
}

// regBranch registers a relative-addressing conditional (or unconditional,
// for BRA) branch instruction.
func (b *builder) regBranch(opcode byte, mnemonic string, h OpcodeHandler) {
	b.table[opcode] = opcodeEntry{handler: h, mnemonic: mnemonic, mode: Relative, baseCycles: 2, isBranch: true}
}

func buildTable(model Model) *[256]opcodeEntry {
	b := newBuilder(model)

	// ADC
	b.reg(0x69, "ADC", ImmediateMode, 2, false, adc)
	b.reg(0x65, "ADC", ZeroPage, 3, false, adc)
	b.reg(0x75, "ADC", ZeroPageX, 4, false, adc)
	b.reg(0x6D, "ADC", Absolute, 4, false, adc)
	b.reg(0x7D, "ADC", AbsoluteX, 4, true, adc)
	b.reg(0x79, "ADC", AbsoluteY, 4, true, adc)
	b.reg(0x61, "ADC", IndirectX, 6, false, adc)
	b.reg(0x71, "ADC", IndirectY, 5, true, adc)

	// AND
	b.reg(0x29, "AND", ImmediateMode, 2, false, and)
	b.reg(0x25, "AND", ZeroPage, 3, false, and)
	b.reg(0x35, "AND", ZeroPageX, 4, false, and)
	b.reg(0x2D, "AND", Absolute, 4, false, and)
	b.reg(0x3D, "AND", AbsoluteX, 4, true, and)
	b.reg(0x39, "AND", AbsoluteY, 4, true, and)
	b.reg(0x21, "AND", IndirectX, 6, false, and)
	b.reg(0x31, "AND", IndirectY, 5, true, and)

	// ASL
	b.regFn(0x0A, "ASL", Accumulator, 2, aslAcc)
	b.reg(0x06, "ASL", ZeroPage, 5, false, asl)
	b.reg(0x16, "ASL", ZeroPageX, 6, false, asl)
	b.reg(0x0E, "ASL", Absolute, 6, false, asl)
	b.reg(0x1E, "ASL", AbsoluteX, 7, false, asl)

	// Branches
	b.regBranch(0x90, "BCC", bcc(nil))
	b.regBranch(0xB0, "BCS", bcs(nil))
	b.regBranch(0xF0, "BEQ", beq(nil))
	b.regBranch(0x30, "BMI", bmi(nil))
	b.regBranch(0xD0, "BNE", bne(nil))
	b.regBranch(0x10, "BPL", bpl(nil))
	b.regBranch(0x50, "BVC", bvc(nil))
	b.regBranch(0x70, "BVS", bvs(nil))

	// BIT
	b.reg(0x24, "BIT", ZeroPage, 3, false, bit)
	b.reg(0x2C, "BIT", Absolute, 4, false, bit)

	// BRK
	b.regFn(0x00, "BRK", Implied, 7, brk)

	// Flags
	b.regFn(0x18, "CLC", Implied, 2, clc)
	b.regFn(0xD8, "CLD", Implied, 2, cld)
	b.regFn(0x58, "CLI", Implied, 2, cli)
	b.regFn(0xB8, "CLV", Implied, 2, clv)
	b.regFn(0x38, "SEC", Implied, 2, sec)
	b.regFn(0xF8, "SED", Implied, 2, sed)
	b.regFn(0x78, "SEI", Implied, 2, sei)

	// CMP
	b.reg(0xC9, "CMP", ImmediateMode, 2, false, cmp)
	b.reg(0xC5, "CMP", ZeroPage, 3, false, cmp)
	b.reg(0xD5, "CMP", ZeroPageX, 4, false, cmp)
	b.reg(0xCD, "CMP", Absolute, 4, false, cmp)
	b.reg(0xDD, "CMP", AbsoluteX, 4, true, cmp)
	b.reg(0xD9, "CMP", AbsoluteY, 4, true, cmp)
	b.reg(0xC1, "CMP", IndirectX, 6, false, cmp)
	b.reg(0xD1, "CMP", IndirectY, 5, true, cmp)

	// CPX / CPY
	b.reg(0xE0, "CPX", ImmediateMode, 2, false, cpx)
	b.reg(0xE4, "CPX", ZeroPage, 3, false, cpx)
	b.reg(0xEC, "CPX", Absolute, 4, false, cpx)
	b.reg(0xC0, "CPY", ImmediateMode, 2, false, cpy)
	b.reg(0xC4, "CPY", ZeroPage, 3, false, cpy)
	b.reg(0xCC, "CPY", Absolute, 4, false, cpy)

	// DEC
	b.reg(0xC6, "DEC", ZeroPage, 5, false, decMem)
	b.reg(0xD6, "DEC", ZeroPageX, 6, false, decMem)
	b.reg(0xCE, "DEC", Absolute, 6, false, decMem)
	b.reg(0xDE, "DEC", AbsoluteX, 7, false, decMem)

	// DEX / DEY / INX / INY
	b.regFn(0xCA, "DEX", Implied, 2, dex)
	b.regFn(0x88, "DEY", Implied, 2, dey)
	b.regFn(0xE8, "INX", Implied, 2, inx)
	b.regFn(0xC8, "INY", Implied, 2, iny)

	// EOR
	b.reg(0x49, "EOR", ImmediateMode, 2, false, eor)
	b.reg(0x45, "EOR", ZeroPage, 3, false, eor)
	b.reg(0x55, "EOR", ZeroPageX, 4, false, eor)
	b.reg(0x4D, "EOR", Absolute, 4, false, eor)
	b.reg(0x5D, "EOR", AbsoluteX, 4, true, eor)
	b.reg(0x59, "EOR", AbsoluteY, 4, true, eor)
	b.reg(0x41, "EOR", IndirectX, 6, false, eor)
	b.reg(0x51, "EOR", IndirectY, 5, true, eor)

	// INC
	b.reg(0xE6, "INC", ZeroPage, 5, false, incMem)
	b.reg(0xF6, "INC", ZeroPageX, 6, false, incMem)
	b.reg(0xEE, "INC", Absolute, 6, false, incMem)
	b.reg(0xFE, "INC", AbsoluteX, 7, false, incMem)

	// JMP / JSR
	jmpIndirectCycles := uint8(5)
	if model == CMOS65C02 {
		jmpIndirectCycles = 6 // the bug-fix costs an extra cycle
	}
	b.reg(0x4C, "JMP", Absolute, 3, false, jmp)
	b.reg(0x6C, "JMP", Indirect, jmpIndirectCycles, false, jmp)
	b.reg(0x20, "JSR", Absolute, 6, false, jsr)

	// LDA / LDX / LDY
	b.reg(0xA9, "LDA", ImmediateMode, 2, false, lda)
	b.reg(0xA5, "LDA", ZeroPage, 3, false, lda)
	b.reg(0xB5, "LDA", ZeroPageX, 4, false, lda)
	b.reg(0xAD, "LDA", Absolute, 4, false, lda)
	b.reg(0xBD, "LDA", AbsoluteX, 4, true, lda)
	b.reg(0xB9, "LDA", AbsoluteY, 4, true, lda)
	b.reg(0xA1, "LDA", IndirectX, 6, false, lda)
	b.reg(0xB1, "LDA", IndirectY, 5, true, lda)

	b.reg(0xA2, "LDX", ImmediateMode, 2, false, ldx)
	b.reg(0xA6, "LDX", ZeroPage, 3, false, ldx)
	b.reg(0xB6, "LDX", ZeroPageY, 4, false, ldx)
	b.reg(0xAE, "LDX", Absolute, 4, false, ldx)
	b.reg(0xBE, "LDX", AbsoluteY, 4, true, ldx)

	b.reg(0xA0, "LDY", ImmediateMode, 2, false, ldy)
	b.reg(0xA4, "LDY", ZeroPage, 3, false, ldy)
	b.reg(0xB4, "LDY", ZeroPageX, 4, false, ldy)
	b.reg(0xAC, "LDY", Absolute, 4, false, ldy)
	b.reg(0xBC, "LDY", AbsoluteX, 4, true, ldy)

	// LSR
	b.regFn(0x4A, "LSR", Accumulator, 2, lsrAcc)
	b.reg(0x46, "LSR", ZeroPage, 5, false, lsr)
	b.reg(0x56, "LSR", ZeroPageX, 6, false, lsr)
	b.reg(0x4E, "LSR", Absolute, 6, false, lsr)
	b.reg(0x5E, "LSR", AbsoluteX, 7, false, lsr)

	// NOP
	b.regFn(0xEA, "NOP", Implied, 2, nop)

	// ORA
	b.reg(0x09, "ORA", ImmediateMode, 2, false, ora)
	b.reg(0x05, "ORA", ZeroPage, 3, false, ora)
	b.reg(0x15, "ORA", ZeroPageX, 4, false, ora)
	b.reg(0x0D, "ORA", Absolute, 4, false, ora)
	b.reg(0x1D, "ORA", AbsoluteX, 4, true, ora)
	b.reg(0x19, "ORA", AbsoluteY, 4, true, ora)
	b.reg(0x01, "ORA", IndirectX, 6, false, ora)
	b.reg(0x11, "ORA", IndirectY, 5, true, ora)

	// Stack
	b.regFn(0x48, "PHA", Implied, 3, pha)
	b.regFn(0x08, "PHP", Implied, 3, php)
	b.regFn(0x68, "PLA", Implied, 4, pla)
	b.regFn(0x28, "PLP", Implied, 4, plp)

	// ROL / ROR
	b.regFn(0x2A, "ROL", Accumulator, 2, rolAcc)
	b.reg(0x26, "ROL", ZeroPage, 5, false, rol)
	b.reg(0x36, "ROL", ZeroPageX, 6, false, rol)
	b.reg(0x2E, "ROL", Absolute, 6, false, rol)
	b.reg(0x3E, "ROL", AbsoluteX, 7, false, rol)

	b.regFn(0x6A, "ROR", Accumulator, 2, rorAcc)
	b.reg(0x66, "ROR", ZeroPage, 5, false, ror)
	b.reg(0x76, "ROR", ZeroPageX, 6, false, ror)
	b.reg(0x6E, "ROR", Absolute, 6, false, ror)
	b.reg(0x7E, "ROR", AbsoluteX, 7, false, ror)

	// RTI / RTS
	b.regFn(0x40, "RTI", Implied, 6, rti)
	b.regFn(0x60, "RTS", Implied, 6, rts)

	// SBC
	b.reg(0xE9, "SBC", ImmediateMode, 2, false, sbc)
	b.reg(0xE5, "SBC", ZeroPage, 3, false, sbc)
	b.reg(0xF5, "SBC", ZeroPageX, 4, false, sbc)
	b.reg(0xED, "SBC", Absolute, 4, false, sbc)
	b.reg(0xFD, "SBC", AbsoluteX, 4, true, sbc)
	b.reg(0xF9, "SBC", AbsoluteY, 4, true, sbc)
	b.reg(0xE1, "SBC", IndirectX, 6, false, sbc)
	b.reg(0xF1, "SBC", IndirectY, 5, true, sbc)

	// STA (write: always the worst-case cycle count, no page-cross extra)
	b.reg(0x85, "STA", ZeroPage, 3, false, sta)
	b.reg(0x95, "STA", ZeroPageX, 4, false, sta)
	b.reg(0x8D, "STA", Absolute, 4, false, sta)
	b.reg(0x9D, "STA", AbsoluteX, 5, false, sta)
	b.reg(0x99, "STA", AbsoluteY, 5, false, sta)
	b.reg(0x81, "STA", IndirectX, 6, false, sta)
	b.reg(0x91, "STA", IndirectY, 6, false, sta)

	// STX / STY
	b.reg(0x86, "STX", ZeroPage, 3, false, stx)
	b.reg(0x96, "STX", ZeroPageY, 4, false, stx)
	b.reg(0x8E, "STX", Absolute, 4, false, stx)
	b.reg(0x84, "STY", ZeroPage, 3, false, sty)
	b.reg(0x94, "STY", ZeroPageX, 4, false, sty)
	b.reg(0x8C, "STY", Absolute, 4, false, sty)

	// Transfers
	b.regFn(0xAA, "TAX", Implied, 2, tax)
	b.regFn(0xA8, "TAY", Implied, 2, tay)
	b.regFn(0xBA, "TSX", Implied, 2, tsx)
	b.regFn(0x8A, "TXA", Implied, 2, txa)
	b.regFn(0x9A, "TXS", Implied, 2, txs)
	b.regFn(0x98, "TYA", Implied, 2, tya)

	if model == CMOS65C02 {
		buildCMOS65C02Additions(b)
	}

	return &b.table
}

// buildCMOS65C02Additions registers the 65C02-only instructions: STZ, BRA,
// PHX/PHY/PLX/PLY, TSB/TRB, INC A/DEC A, WAI, STP. Undocumented-opcode
// reuse beyond these additions is out of scope.
func buildCMOS65C02Additions(b *builder) {
	b.reg(0x9C, "STZ", Absolute, 4, false, stz)
	b.reg(0x9E, "STZ", AbsoluteX, 5, false, stz)
	b.reg(0x64, "STZ", ZeroPage, 3, false, stz)
	b.reg(0x74, "STZ", ZeroPageX, 4, false, stz)

	b.regBranch(0x80, "BRA", bra(nil))

	b.regFn(0xDA, "PHX", Implied, 3, phx)
	b.regFn(0x5A, "PHY", Implied, 3, phy)
	b.regFn(0xFA, "PLX", Implied, 4, plx)
	b.regFn(0x7A, "PLY", Implied, 4, ply)

	b.reg(0x04, "TSB", ZeroPage, 5, false, tsb)
	b.reg(0x0C, "TSB", Absolute, 6, false, tsb)
	b.reg(0x14, "TRB", ZeroPage, 5, false, trb)
	b.reg(0x1C, "TRB", Absolute, 6, false, trb)

	b.regFn(0x1A, "INC", Accumulator, 2, incA)
	b.regFn(0x3A, "DEC", Accumulator, 2, decA)

	b.regFn(0xCB, "WAI", Implied, 3, wai)
	b.regFn(0xDB, "STP", Implied, 3, stp)
}
