// Package config loads the YAML run configuration that selects a CPU
// model, a ROM image, and memory-map overrides before a program is
// executed.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"apple2core/cpu"
)

// ROMBand overrides the default $D000-$FFFF read-only band.
type ROMBand struct {
	Base   uint32 `yaml:"base"`
	Length uint32 `yaml:"length"`
	Path   string `yaml:"path"`
}

// Config is the top-level shape of a run's YAML file. Every field is
// optional; zero values fall back to the emulator's built-in defaults.
type Config struct {
	Model        string  `yaml:"model"`
	ROM          ROMBand `yaml:"rom"`
	SpeakerAddr  uint32  `yaml:"speaker_addr"`
	Program      string  `yaml:"program"`
	Trace        bool    `yaml:"trace"`
}

// Default returns the zero-value configuration: 65C02, default Apple II
// ROM band, default speaker address, no program and no tracing.
func Default() Config {
	return Config{Model: "65c02"}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// CPUModel translates the config's model string into a cpu.Model,
// defaulting to CMOS65C02 for an empty or unrecognized value.
func (c Config) CPUModel() cpu.Model {
	switch c.Model {
	case "6502", "nmos6502":
		return cpu.NMOS6502
	default:
		return cpu.CMOS65C02
	}
}
