package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apple2core/cpu"
)

func TestLoadDefaultsFillGaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("program: hello.bas\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hello.bas", cfg.Program)
	assert.Equal(t, cpu.CMOS65C02, cfg.CPUModel())
}

func TestCPUModelSelectsNMOS(t *testing.T) {
	cfg := Config{Model: "6502"}
	assert.Equal(t, cpu.NMOS6502, cfg.CPUModel())
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
