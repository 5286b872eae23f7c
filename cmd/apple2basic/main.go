// Command apple2basic runs an Applesoft BASIC program against the 6502/65C02
// core, or drops into an interactive single-step debugger over a raw
// machine-code image.
package main

import (
	"flag"
	"fmt"
	"os"

	"apple2core/basic"
	"apple2core/cpu"
	"apple2core/internal/config"
	"apple2core/mem"
	"apple2core/runtime"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML run configuration")
		debugPath  = flag.String("debug", "", "load a raw machine-code image and open the step debugger")
		debugAddr  = flag.Uint("debug-addr", 0x0300, "load/start address for -debug")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	bus := mem.New()
	defer bus.Close()
	bus.SetSpeaker(new(clickCounter))
	if cfg.SpeakerAddr != 0 {
		bus.SetSpeakerAddr(cfg.SpeakerAddr)
	}
	if cfg.ROM.Path != "" {
		romData, err := os.ReadFile(cfg.ROM.Path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		bus.SetROMBand(cfg.ROM.Base, cfg.ROM.Length)
		if err := bus.LoadData(cfg.ROM.Base, romData); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	core := cpu.New(bus, cfg.CPUModel())
	core.EnableTrace(cfg.Trace)
	core.Reset()

	if *debugPath != "" {
		image, err := os.ReadFile(*debugPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := bus.LoadData(uint32(*debugAddr), image); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := RunDebugger(core, cfg.CPUModel(), uint16(*debugAddr)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	programPath := cfg.Program
	if flag.NArg() > 0 {
		programPath = flag.Arg(0)
	}
	if programPath == "" {
		fmt.Fprintln(os.Stderr, "usage: apple2basic [-config file.yaml] [-debug image.bin] program.bas")
		os.Exit(2)
	}

	src, err := os.ReadFile(programPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	prog, err := basic.ParseProgram(string(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	io := NewTerminalIO()
	interp := runtime.NewInterpreter(prog, bus, core, io)
	if err := interp.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// clickCounter stands in for the Apple II's speaker: it has no audio
// output, just a running tally of toggles, which is all a headless CLI
// run can usefully do with them.
type clickCounter struct{ n int }

func (c *clickCounter) Click() { c.n++ }
