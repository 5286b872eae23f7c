package mbf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeMemory map[uint32]byte

func (f fakeMemory) Read(addr uint32) byte    { return f[addr] }
func (f fakeMemory) Write(addr uint32, v byte) { f[addr] = v }

func TestZeroRoundTrips(t *testing.T) {
	m, err := DoubleToMbf(0)
	assert.NoError(t, err)
	assert.Equal(t, MBF{}, m)
	assert.Equal(t, float64(0), MbfToDouble(m))
}

func TestDoubleToMbfToDoubleWithinTolerance(t *testing.T) {
	for _, d := range []float64{1, -1, 0.5, 42.5, 3.14159, -123456.75, 1e-10, 1e10} {
		m, err := DoubleToMbf(d)
		assert.NoError(t, err, d)
		got := MbfToDouble(m)
		assert.InDelta(t, float64(float32(d)), got, 1e-30+math.Abs(float64(float32(d)))*1e-6, "round trip for %v", d)
	}
}

func TestMbfRoundTripIsBitExact(t *testing.T) {
	for _, d := range []float64{1, -1, 0.5, 42.5, -123456.75} {
		m, err := DoubleToMbf(d)
		assert.NoError(t, err)
		back, err := DoubleToMbf(MbfToDouble(m))
		assert.NoError(t, err)
		assert.Equal(t, m, back)
	}
}

func TestOverflow(t *testing.T) {
	_, err := DoubleToMbf(1e200)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestWriteToMemoryMatchesUSRScenario(t *testing.T) {
	mem := fakeMemory{}
	WriteToMemory(mem, 0x009D, 0x00A2, 42.5)

	bits := uint32(mem.Read(0x009D)) | uint32(mem.Read(0x009E))<<8 |
		uint32(mem.Read(0x009F))<<16 | uint32(mem.Read(0x00A0))<<24
	assert.Equal(t, math.Float32bits(42.5), bits)
	assert.Equal(t, byte(0x00), mem.Read(0x00A2))
}

func TestWriteToMemoryNegativeSign(t *testing.T) {
	mem := fakeMemory{}
	WriteToMemory(mem, 0x009D, 0x00A2, -1.5)
	assert.Equal(t, byte(0xFF), mem.Read(0x00A2))
}

func TestWriteMbfToMemoryRoundTrips(t *testing.T) {
	mem := fakeMemory{}
	m, err := DoubleToMbf(3.25)
	assert.NoError(t, err)
	WriteMbfToMemory(mem, 0x0100, m)
	assert.Equal(t, m, ReadMbfFromMemory(mem, 0x0100))
}
