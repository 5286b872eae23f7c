package cpu

import "fmt"

// DisassembledInstruction is one decoded instruction: enough to print a
// line of disassembly or drive a debugger's instruction view without
// re-deriving anything from the opcode table.
type DisassembledInstruction struct {
	Address  uint16
	Opcode   byte
	Mnemonic string
	Mode     AddressingModeKind
	Operands []byte
	Length   int // 1 + len(Operands)

	// Metadata is free-form annotation a caller can attach to a decoded
	// instruction (symbol names, breakpoint state, cross-references) without
	// the disassembler itself needing to know about any of it. Every other
	// field is fixed at decode time; this is the one a debugger is free to
	// mutate after the fact.
	Metadata map[string]any
}

// Text renders the instruction the way a listing would: mnemonic plus an
// operand formatted for its addressing mode. Relative operands are resolved
// to an absolute target address, since that is what a reader wants to see,
// not the raw signed offset byte.
func (d DisassembledInstruction) Text() string {
	switch d.Mode {
	case Implied:
		return d.Mnemonic
	case Accumulator:
		return d.Mnemonic + " A"
	case ImmediateMode:
		return fmt.Sprintf("%s #$%02X", d.Mnemonic, d.Operands[0])
	case ZeroPage:
		return fmt.Sprintf("%s $%02X", d.Mnemonic, d.Operands[0])
	case ZeroPageX:
		return fmt.Sprintf("%s $%02X,X", d.Mnemonic, d.Operands[0])
	case ZeroPageY:
		return fmt.Sprintf("%s $%02X,Y", d.Mnemonic, d.Operands[0])
	case Relative:
		off := int8(d.Operands[0])
		target := uint16(int32(d.Address) + 2 + int32(off))
		return fmt.Sprintf("%s $%04X", d.Mnemonic, target)
	case Absolute:
		return fmt.Sprintf("%s $%04X", d.Mnemonic, word(d.Operands))
	case AbsoluteX:
		return fmt.Sprintf("%s $%04X,X", d.Mnemonic, word(d.Operands))
	case AbsoluteY:
		return fmt.Sprintf("%s $%04X,Y", d.Mnemonic, word(d.Operands))
	case Indirect:
		return fmt.Sprintf("%s ($%04X)", d.Mnemonic, word(d.Operands))
	case IndirectX:
		return fmt.Sprintf("%s ($%02X,X)", d.Mnemonic, d.Operands[0])
	case IndirectY:
		return fmt.Sprintf("%s ($%02X),Y", d.Mnemonic, d.Operands[0])
	default:
		return d.Mnemonic
	}
}

func word(operands []byte) uint16 {
	return uint16(operands[1])<<8 | uint16(operands[0])
}

// Disassemble decodes the single instruction at addr against model's
// opcode table. It only reads memory; it never mutates CPU state, which is
// what lets the debugger call it against the live bus without disturbing
// execution.
func Disassemble(mem Memory, addr uint16, model Model) DisassembledInstruction {
	table := tableFor(model)
	opcode := mem.Read(uint32(addr))
	entry := table[opcode]

	n := entry.mode.OperandBytes()
	operands := make([]byte, n)
	for i := 0; i < n; i++ {
		operands[i] = mem.Read(uint32(addr) + 1 + uint32(i))
	}

	return DisassembledInstruction{
		Address:  addr,
		Opcode:   opcode,
		Mnemonic: entry.mnemonic,
		Mode:     entry.mode,
		Operands: operands,
		Length:   1 + n,
		Metadata: map[string]any{},
	}
}

// DisassembleRange walks count instructions forward from addr, following
// each instruction's own length — used by the debugger's scrolling listing.
func DisassembleRange(mem Memory, addr uint16, model Model, count int) []DisassembledInstruction {
	out := make([]DisassembledInstruction, 0, count)
	pc := addr
	for i := 0; i < count; i++ {
		d := Disassemble(mem, pc, model)
		out = append(out, d)
		pc += uint16(d.Length)
	}
	return out
}
