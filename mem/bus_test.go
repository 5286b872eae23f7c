package mem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clickCounter struct{ n int }

func (c *clickCounter) Click() { c.n++ }

func TestReadWriteRAM(t *testing.T) {
	m := New()
	defer m.Close()
	m.Write(0x2000, 0x42)
	assert.Equal(t, byte(0x42), m.Read(0x2000))
}

func TestROMWritesAreNoOps(t *testing.T) {
	m := New()
	defer m.Close()
	m.Write(0xD010, 0x99)
	assert.Equal(t, byte(0), m.Read(0xD010))
}

func TestLoadDataIntoROMThenWriteIsStillNoOp(t *testing.T) {
	m := New()
	defer m.Close()
	require := assert.New(t)
	require.NoError(m.LoadData(0xFFFC, []byte{0x00, 0x03}))
	m.Write(0xFFFC, 0xFF)
	require.Equal(uint16(0x0300), m.ReadWord(0xFFFC))
}

func TestLoadDataOverrunFails(t *testing.T) {
	m := New()
	defer m.Close()
	err := m.LoadData(0xFFFE, []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestWordRoundTrip(t *testing.T) {
	m := New()
	defer m.Close()
	m.WriteWord(0x0200, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), m.ReadWord(0x0200))
}

func TestSpeakerClicksOnAccessOnly(t *testing.T) {
	m := New()
	defer m.Close()
	cc := &clickCounter{}
	m.SetSpeaker(cc)

	m.Read(0xC030)
	m.Write(0xC030, 0)
	m.Read(0x0200)
	m.Write(0x0200, 1)

	assert.Eventually(t, func() bool { return cc.n == 2 }, 200*time.Millisecond, 2*time.Millisecond, "expected exactly two speaker clicks")
}

func TestGetRegionOverrunFails(t *testing.T) {
	m := New()
	defer m.Close()
	_, err := m.GetRegion(0xFFF0, 0x20)
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	m := New()
	defer m.Close()
	m.Write(0x1000, 7)
	m.Clear()
	assert.Equal(t, byte(0), m.Read(0x1000))
}
