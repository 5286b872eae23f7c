// Package mem implements the byte-addressed memory bus shared by the CPU
// core and the BASIC interpreter.
//
// A Memory has a single flat address space that begins at 0x0000, the same
// "central (global) object that connects multiple hardware components"
// shape the original NES bus used, generalized here to the Apple II's RAM,
// ROM and soft-switch layout.
package mem

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Size is the flat 64 KiB address space used by the 6502/65C02. The 65816
// data-bank extension is not addressed by this bus; Memory only
// ever sees the low 16 bits of an Addr.
const Size = 1 << 16

// SpeakerObserver receives a callback on every access (read or write) to the
// memory's speaker-toggle address.
type SpeakerObserver interface {
	Click()
}

// AccessError reports an out-of-range address or a LoadData/GetRegion
// overrun.
type AccessError struct {
	Addr uint32
	Op   string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("mem: %s out of range at $%04X", e.Op, e.Addr)
}

// Region describes a named band of the address space. A ReadOnly region
// silently discards writes (the ROM band).
type Region struct {
	Base     uint32
	Len      uint32
	ReadOnly bool
}

func (r Region) contains(addr uint32) bool {
	return addr >= r.Base && addr < r.Base+r.Len
}

// Memory is a flat 64 KiB byte space with a configurable RAM/ROM split and a
// speaker soft switch, matching the Apple II memory map.
type Memory struct {
	data     [Size]byte
	romBand  Region
	speaker  uint32
	observer SpeakerObserver

	clickBuf chan struct{}
	cancel   context.CancelFunc
	group    *errgroup.Group
}

// defaultROMBand is the Apple II default, $D000..$FFFF inclusive.
var defaultROMBand = Region{Base: 0xD000, Len: 0x3000, ReadOnly: true}

// defaultSpeaker is the Apple II speaker toggle, $C030.
const defaultSpeaker = 0xC030

// New returns a Memory with the default Apple II ROM band and speaker
// address. Use SetROMBand/SetSpeakerAddr before the first access to
// reconfigure either.
func New() *Memory {
	m := &Memory{romBand: defaultROMBand, speaker: defaultSpeaker}
	m.startClickDrain()
	return m
}

// startClickDrain launches the background goroutine that drains the
// lock-free speaker-click buffer, standing in for the real audio device.
// The buffer is bounded so a runaway click storm never blocks the CPU
// thread; excess clicks are simply coalesced.
func (m *Memory) startClickDrain() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	m.clickBuf = make(chan struct{}, 256)
	m.cancel = cancel
	m.group = g
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-m.clickBuf:
				if m.observer != nil {
					m.observer.Click()
				}
			}
		}
	})
}

// Close stops the speaker drain goroutine. Safe to call multiple times.
func (m *Memory) Close() {
	if m.cancel != nil {
		m.cancel()
		m.group.Wait()
		m.cancel = nil
	}
}

// SetROMBand reconfigures the read-only band. Intended to be called once,
// before any Read/Write, typically from internal/config.
func (m *Memory) SetROMBand(base, length uint32) {
	m.romBand = Region{Base: base, Len: length, ReadOnly: true}
}

// SetSpeakerAddr reconfigures the speaker toggle address.
func (m *Memory) SetSpeakerAddr(addr uint32) { m.speaker = addr }

// SetSpeaker registers the observer invoked on every speaker-toggle access.
func (m *Memory) SetSpeaker(observer SpeakerObserver) { m.observer = observer }

func (m *Memory) bumpSpeaker(addr uint32) {
	if addr != m.speaker {
		return
	}
	select {
	case m.clickBuf <- struct{}{}:
	default:
		// buffer full: drop rather than block the CPU thread
	}
}

func (m *Memory) checkBounds(addr uint32, op string) error {
	if addr >= Size {
		return &AccessError{Addr: addr, Op: op}
	}
	return nil
}

// Read returns the byte at addr. Reads never mutate memory except for the
// speaker-toggle's observer callback.
func (m *Memory) Read(addr uint32) byte {
	if err := m.checkBounds(addr, "read"); err != nil {
		panic(err)
	}
	m.bumpSpeaker(addr)
	return m.data[addr]
}

// Write stores val at addr. Writes into the ROM band are silently
// discarded; writes to the speaker toggle still invoke the observer.
func (m *Memory) Write(addr uint32, val byte) {
	if err := m.checkBounds(addr, "write"); err != nil {
		panic(err)
	}
	m.bumpSpeaker(addr)
	if m.romBand.contains(addr) {
		return
	}
	m.data[addr] = val
}

// ReadWord reads a little-endian 16-bit value from addr, addr+1.
func (m *Memory) ReadWord(addr uint32) uint16 {
	lo := uint16(m.Read(addr))
	hi := uint16(m.Read(addr + 1))
	return hi<<8 | lo
}

// WriteWord writes a little-endian 16-bit value to addr, addr+1.
func (m *Memory) WriteWord(addr uint32, val uint16) {
	m.Write(addr, byte(val))
	m.Write(addr+1, byte(val>>8))
}

// ReadValue reads a 1/2/3-byte little-endian value. 3-byte reads are for the
// 65816's 24-bit addresses, which this core never itself produces but which
// the bus supports for forward compatibility.
func (m *Memory) ReadValue(addr uint32, bits int) uint32 {
	switch bits {
	case 8:
		return uint32(m.Read(addr))
	case 16:
		return uint32(m.ReadWord(addr))
	case 24:
		lo := uint32(m.Read(addr))
		mid := uint32(m.Read(addr + 1))
		hi := uint32(m.Read(addr + 2))
		return hi<<16 | mid<<8 | lo
	default:
		panic(fmt.Sprintf("mem: unsupported value width %d", bits))
	}
}

// WriteValue writes a 1/2/3-byte little-endian value.
func (m *Memory) WriteValue(addr uint32, val uint32, bits int) {
	switch bits {
	case 8:
		m.Write(addr, byte(val))
	case 16:
		m.WriteWord(addr, uint16(val))
	case 24:
		m.Write(addr, byte(val))
		m.Write(addr+1, byte(val>>8))
		m.Write(addr+2, byte(val>>16))
	default:
		panic(fmt.Sprintf("mem: unsupported value width %d", bits))
	}
}

// LoadData copies bytes into memory starting at base. It fails if the image
// would run past the end of the address space.
func (m *Memory) LoadData(base uint32, bytes []byte) error {
	if base+uint32(len(bytes)) > Size {
		return &AccessError{Addr: base, Op: "LoadData"}
	}
	copy(m.data[base:], bytes)
	return nil
}

// GetRegion returns a copy of length bytes starting at base, mostly useful
// for the disassembler and debugger.
func (m *Memory) GetRegion(base, length uint32) ([]byte, error) {
	if base+length > Size {
		return nil, &AccessError{Addr: base, Op: "GetRegion"}
	}
	out := make([]byte, length)
	copy(out, m.data[base:base+length])
	return out, nil
}

// Clear zeroes the entire address space.
func (m *Memory) Clear() {
	m.data = [Size]byte{}
}
