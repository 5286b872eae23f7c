package cpu

// OpcodeHandler is invoked once the opcode byte has already been fetched
// and PC advanced past it. It resolves its own operand via the mode it was
// built from, performs the semantic operation, and leaves cycle accounting
// to the opcode table entry that wraps it.
type OpcodeHandler func(c *CPU, m Memory)

// Every instruction below is a builder parameterized by an AddressingMode
// — "instruction(mode) -> opcode_handler" — grounded on the
// closure-factory shape in
// other_examples/75ad0c77_jawr-mos6502__cpu-instruction.go.go's
// NewInstruction(opc, cycles, size, fn, mode), adapted so the factory
// itself returns the concrete per-opcode closure instead of storing mode
// alongside a generic fn.

func push(c *CPU, m Memory, val byte) {
	m.Write(0x0100|uint32(c.SP), val)
	c.SP--
}

func pull(c *CPU, m Memory) byte {
	c.SP++
	return m.Read(0x0100 | uint32(c.SP))
}

func pushWord(c *CPU, m Memory, val uint16) {
	push(c, m, byte(val>>8))
	push(c, m, byte(val))
}

func pullWord(c *CPU, m Memory) uint16 {
	lo := uint16(pull(c, m))
	hi := uint16(pull(c, m))
	return hi<<8 | lo
}

// --- Load / store -----------------------------------------------------

func lda(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, crossed := mode(c, m)
		c.pageCrossedThisOp = crossed
		c.A = m.Read(addr)
		c.SetZN(c.A)
	}
}

func ldx(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, crossed := mode(c, m)
		c.pageCrossedThisOp = crossed
		c.X = m.Read(addr)
		c.SetZN(c.X)
	}
}

func ldy(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, crossed := mode(c, m)
		c.pageCrossedThisOp = crossed
		c.Y = m.Read(addr)
		c.SetZN(c.Y)
	}
}

func sta(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		m.Write(addr, c.A)
	}
}

func stx(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		m.Write(addr, c.X)
	}
}

func sty(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		m.Write(addr, c.Y)
	}
}

// stz is a 65C02 addition: store zero, no flags affected.
func stz(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		m.Write(addr, 0)
	}
}

// --- Transfer -----------------------------------------------------------

func tax(c *CPU, m Memory) { c.X = c.A; c.SetZN(c.X) }
func tay(c *CPU, m Memory) { c.Y = c.A; c.SetZN(c.Y) }
func txa(c *CPU, m Memory) { c.A = c.X; c.SetZN(c.A) }
func tya(c *CPU, m Memory) { c.A = c.Y; c.SetZN(c.A) }
func tsx(c *CPU, m Memory) { c.X = c.SP; c.SetZN(c.X) }
func txs(c *CPU, m Memory) { c.SP = c.X }

// --- Stack ---------------------------------------------------------------

func pha(c *CPU, m Memory) { push(c, m, c.A) }
func phx(c *CPU, m Memory) { push(c, m, c.X) }
func phy(c *CPU, m Memory) { push(c, m, c.Y) }

func php(c *CPU, m Memory) {
	// B and the unused bit are always pushed set for PHP/BRK.
	push(c, m, c.P|FlagBreak|FlagUnused)
}

func pla(c *CPU, m Memory) { c.A = pull(c, m); c.SetZN(c.A) }
func plx(c *CPU, m Memory) { c.X = pull(c, m); c.SetZN(c.X) }
func ply(c *CPU, m Memory) { c.Y = pull(c, m); c.SetZN(c.Y) }

func plp(c *CPU, m Memory) {
	c.P = pull(c, m)&^FlagBreak | FlagUnused
}

// --- Logical --------------------------------------------------------------

func and(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, crossed := mode(c, m)
		c.pageCrossedThisOp = crossed
		c.A &= m.Read(addr)
		c.SetZN(c.A)
	}
}

func ora(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, crossed := mode(c, m)
		c.pageCrossedThisOp = crossed
		c.A |= m.Read(addr)
		c.SetZN(c.A)
	}
}

func eor(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, crossed := mode(c, m)
		c.pageCrossedThisOp = crossed
		c.A ^= m.Read(addr)
		c.SetZN(c.A)
	}
}

func bit(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		v := m.Read(addr)
		c.SetFlag(FlagZero, c.A&v == 0)
		c.SetFlag(FlagNegative, v&0x80 != 0)
		c.SetFlag(FlagOverflow, v&0x40 != 0)
	}
}

// --- Arithmetic ------------------------------------------------------------

func adc(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, crossed := mode(c, m)
		c.pageCrossedThisOp = crossed
		c.doADC(m.Read(addr))
	}
}

func sbc(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, crossed := mode(c, m)
		c.pageCrossedThisOp = crossed
		c.doSBC(m.Read(addr))
	}
}

func incMem(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		v := m.Read(addr) + 1
		m.Write(addr, v)
		c.SetZN(v)
	}
}

func decMem(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		v := m.Read(addr) - 1
		m.Write(addr, v)
		c.SetZN(v)
	}
}

func incA(c *CPU, m Memory) { c.A++; c.SetZN(c.A) }
func decA(c *CPU, m Memory) { c.A--; c.SetZN(c.A) }
func inx(c *CPU, m Memory)  { c.X++; c.SetZN(c.X) }
func iny(c *CPU, m Memory)  { c.Y++; c.SetZN(c.Y) }
func dex(c *CPU, m Memory)  { c.X--; c.SetZN(c.X) }
func dey(c *CPU, m Memory)  { c.Y--; c.SetZN(c.Y) }

// --- Shift / rotate ---------------------------------------------------------

func aslAcc(c *CPU, m Memory) {
	c.SetFlag(FlagCarry, c.A&0x80 != 0)
	c.A <<= 1
	c.SetZN(c.A)
}

func asl(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		v := m.Read(addr)
		c.SetFlag(FlagCarry, v&0x80 != 0)
		v <<= 1
		m.Write(addr, v)
		c.SetZN(v)
	}
}

func lsrAcc(c *CPU, m Memory) {
	c.SetFlag(FlagCarry, c.A&0x01 != 0)
	c.A >>= 1
	c.SetZN(c.A)
}

func lsr(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		v := m.Read(addr)
		c.SetFlag(FlagCarry, v&0x01 != 0)
		v >>= 1
		m.Write(addr, v)
		c.SetZN(v)
	}
}

func rolAcc(c *CPU, m Memory) {
	carryIn := byte(0)
	if c.GetFlag(FlagCarry) {
		carryIn = 1
	}
	c.SetFlag(FlagCarry, c.A&0x80 != 0)
	c.A = c.A<<1 | carryIn
	c.SetZN(c.A)
}

func rol(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		v := m.Read(addr)
		carryIn := byte(0)
		if c.GetFlag(FlagCarry) {
			carryIn = 1
		}
		c.SetFlag(FlagCarry, v&0x80 != 0)
		v = v<<1 | carryIn
		m.Write(addr, v)
		c.SetZN(v)
	}
}

func rorAcc(c *CPU, m Memory) {
	carryIn := byte(0)
	if c.GetFlag(FlagCarry) {
		carryIn = 0x80
	}
	c.SetFlag(FlagCarry, c.A&0x01 != 0)
	c.A = c.A>>1 | carryIn
	c.SetZN(c.A)
}

func ror(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		v := m.Read(addr)
		carryIn := byte(0)
		if c.GetFlag(FlagCarry) {
			carryIn = 0x80
		}
		c.SetFlag(FlagCarry, v&0x01 != 0)
		v = v>>1 | carryIn
		m.Write(addr, v)
		c.SetZN(v)
	}
}

// --- Compare -----------------------------------------------------------------

func compare(c *CPU, reg, v byte) {
	result := reg - v
	c.SetFlag(FlagCarry, reg >= v)
	c.SetZN(result)
}

func cmp(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, crossed := mode(c, m)
		c.pageCrossedThisOp = crossed
		compare(c, c.A, m.Read(addr))
	}
}

func cpx(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		compare(c, c.X, m.Read(addr))
	}
}

func cpy(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		compare(c, c.Y, m.Read(addr))
	}
}

// --- Branch -------------------------------------------------------------------

// branch builds a conditional-branch handler. Cycle accounting: not taken
// charges the table's base cycles only; taken adds 1; taken across a page
// boundary adds 1 more.
func branch(cond func(c *CPU) bool) OpcodeHandler {
	return func(c *CPU, m Memory) {
		target, _ := fetchRelative(c, m)
		if !cond(c) {
			return
		}
		old := c.PC
		c.PC = uint16(target)
		c.branchTaken = true
		c.branchPageCrossed = pageCrossed(old, c.PC)
	}
}

func bcc(mode AddressingMode) OpcodeHandler {
	return branch(func(c *CPU) bool { return !c.GetFlag(FlagCarry) })
}
func bcs(mode AddressingMode) OpcodeHandler {
	return branch(func(c *CPU) bool { return c.GetFlag(FlagCarry) })
}
func beq(mode AddressingMode) OpcodeHandler {
	return branch(func(c *CPU) bool { return c.GetFlag(FlagZero) })
}
func bne(mode AddressingMode) OpcodeHandler {
	return branch(func(c *CPU) bool { return !c.GetFlag(FlagZero) })
}
func bmi(mode AddressingMode) OpcodeHandler {
	return branch(func(c *CPU) bool { return c.GetFlag(FlagNegative) })
}
func bpl(mode AddressingMode) OpcodeHandler {
	return branch(func(c *CPU) bool { return !c.GetFlag(FlagNegative) })
}
func bvc(mode AddressingMode) OpcodeHandler {
	return branch(func(c *CPU) bool { return !c.GetFlag(FlagOverflow) })
}
func bvs(mode AddressingMode) OpcodeHandler {
	return branch(func(c *CPU) bool { return c.GetFlag(FlagOverflow) })
}

// bra is the 65C02 unconditional branch addition.
func bra(mode AddressingMode) OpcodeHandler {
	return branch(func(c *CPU) bool { return true })
}

// --- Jump / subroutine ---------------------------------------------------------

func jmp(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		c.PC = uint16(addr)
	}
}

func jsr(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		pushWord(c, m, c.PC-1)
		c.PC = uint16(addr)
	}
}

func rts(c *CPU, m Memory) { c.PC = pullWord(c, m) + 1 }

func rti(c *CPU, m Memory) {
	c.P = pull(c, m)&^FlagBreak | FlagUnused
	c.PC = pullWord(c, m)
	c.Halt = HaltNone
}

// --- Flags -----------------------------------------------------------------------

func clc(c *CPU, m Memory) { c.SetFlag(FlagCarry, false) }
func sec(c *CPU, m Memory) { c.SetFlag(FlagCarry, true) }
func cli(c *CPU, m Memory) { c.SetFlag(FlagIRQDisable, false) }
func sei(c *CPU, m Memory) { c.SetFlag(FlagIRQDisable, true) }
func cld(c *CPU, m Memory) { c.SetFlag(FlagDecimal, false) }
func sed(c *CPU, m Memory) { c.SetFlag(FlagDecimal, true) }
func clv(c *CPU, m Memory) { c.SetFlag(FlagOverflow, false) }

// --- Bit-memory test (65C02) -----------------------------------------------------

func tsb(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		v := m.Read(addr)
		c.SetFlag(FlagZero, c.A&v == 0)
		m.Write(addr, v|c.A)
	}
}

func trb(mode AddressingMode) OpcodeHandler {
	return func(c *CPU, m Memory) {
		addr, _ := mode(c, m)
		v := m.Read(addr)
		c.SetFlag(FlagZero, c.A&v == 0)
		m.Write(addr, v&^c.A)
	}
}

// --- Halt / misc --------------------------------------------------------------

func nop(c *CPU, m Memory) {}

func brk(c *CPU, m Memory) {
	c.PC++ // BRK is a 2-byte instruction; the second byte is a signature/padding byte
	pushWord(c, m, c.PC)
	push(c, m, c.P|FlagBreak|FlagUnused)
	c.SetFlag(FlagIRQDisable, true)
	c.PC = m.ReadWord(vectorIRQ)
	c.Halt = HaltBrk
}

func wai(c *CPU, m Memory) { c.Halt = HaltWai }
func stp(c *CPU, m Memory) { c.Halt = HaltStp }

// illegalOpcode marks every unmapped table slot: it halts the
// CPU rather than raising a host-level error, since an illegal byte is a
// property of the program, not of the host.
func illegalOpcode(c *CPU, m Memory) { c.Halt = HaltStp }
