package cpu

// Cpu65816 and Cpu65832 are placeholders for the 16-bit and hypothetical
// 32-bit successors to the 6502 line: named types so callers can reference
// the future execution model without the core committing to an instruction
// set for either yet; neither executes anything.
type Cpu65816 struct {
	CPU
	DBR16 uint16
}

type Cpu65832 struct {
	CPU
	DBR32 uint32
}
