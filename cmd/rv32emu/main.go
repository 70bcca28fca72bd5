// Command rv32emu loads a statically-linked RV32IM ELF binary and runs
// it to completion, optionally pausing in the interactive debugger
// before the first instruction.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bassosimone/rv32emu/internal/bus"
	"github.com/bassosimone/rv32emu/internal/cpu"
	"github.com/bassosimone/rv32emu/internal/debugger"
	"github.com/bassosimone/rv32emu/internal/loader"
	"github.com/bassosimone/rv32emu/internal/rverr"
	"github.com/bassosimone/rv32emu/internal/trace"
)

func main() {
	log.SetFlags(0)

	debug := flag.Bool("d", false, "enable the interactive debugger from the first instruction")
	verbose := flag.Bool("v", false, "trace every retired instruction to stderr")
	flag.BoolVar(debug, "debug", false, "alias for -d")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: rv32emu [-d|--debug] [-v] <path-to-rv32im-elf>")
	}
	os.Exit(run(flag.Arg(0), *debug, *verbose))
}

func run(path string, debugFromStart, verbose bool) int {
	img, err := loader.Load(path)
	if err != nil {
		log.Printf("rv32emu: %v", err)
		return 1
	}

	c, err := cpu.New(img.Code, img.Data, img.Entry, img.GP)
	if err != nil {
		log.Printf("rv32emu: %v", err)
		return 1
	}
	c.Debug = debugFromStart

	dbg := debugger.New(os.Stdout)
	defer dbg.Close()
	c.DebugHook = dbg.Run

	tracer := trace.New(os.Stderr, verbose)

	for {
		pc := c.PC
		word, peekErr := c.Bus.Read(pc, bus.Word)
		if peekErr == nil {
			tracer.Instr(pc, word)
		}

		if err := c.Step(); err != nil {
			return reportAndClassify(c, err)
		}
	}
}

// reportAndClassify interprets a fatal error from Step: a clean
// ProgramExit(0) is silent success, anything else is reported to
// stderr together with a full register dump.
func reportAndClassify(c *cpu.CPU, err error) int {
	var exit *rverr.ExitError
	if errors.As(err, &exit) {
		if exit.Code != 0 {
			log.Printf("rv32emu: %v", err)
			dumpRegisters(c)
		}
		return exit.Code
	}

	log.Printf("rv32emu: %v", err)
	dumpRegisters(c)
	return 1
}

func dumpRegisters(c *cpu.CPU) {
	regs := c.Regs.Snapshot()
	fmt.Fprintf(os.Stderr, "pc=0x%08x\n", c.PC)
	for i := 0; i < len(regs); i += 4 {
		fmt.Fprintf(os.Stderr, "x%-2d=0x%08x  x%-2d=0x%08x  x%-2d=0x%08x  x%-2d=0x%08x\n",
			i, regs[i], i+1, regs[i+1], i+2, regs[i+2], i+3, regs[i+3])
	}
}
