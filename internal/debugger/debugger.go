// Package debugger implements the interactive single-step debugger
// shim engaged when the emulator hits ebreak or starts in debug mode.
// It renders CPU state and reads one command per pause from stdin.
package debugger

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/bassosimone/rv32emu/internal/bus"
	"github.com/bassosimone/rv32emu/internal/cpu"
	"github.com/bassosimone/rv32emu/internal/decode"
	"github.com/bassosimone/rv32emu/internal/isa"
	"github.com/bassosimone/rv32emu/internal/rverr"
)

func regName(i int) string {
	return isa.Reg(i).String()
}

// windowInstructions is the size of the disassembly window rendered
// around PC.
const windowInstructions = 8

// Debugger owns the interactive line-reading session. Callers construct
// one with New, wire its Run method to cpu.CPU.DebugHook, and Close it
// when the emulator exits.
type Debugger struct {
	line *liner.State
	out  io.Writer
}

// New creates a Debugger that renders to out (typically os.Stdout).
func New(out io.Writer) *Debugger {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return &Debugger{line: l, out: out}
}

// Close releases the underlying terminal session.
func (d *Debugger) Close() error {
	return d.line.Close()
}

// Run renders the current CPU state and reads commands until one of
// them resumes execution (c, s, or an empty line) or requests
// termination (q). It is meant to be assigned directly to
// cpu.CPU.DebugHook.
func (d *Debugger) Run(c *cpu.CPU) error {
	for {
		d.render(c)
		line, err := d.line.Prompt("(rvdbg) ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return rverr.ErrUserQuit
			}
			return fmt.Errorf("debugger: reading command: %w", err)
		}
		d.line.AppendHistory(line)

		switch strings.TrimSpace(line) {
		case "c":
			c.Debug = false
			return nil
		case "s", "":
			return nil
		case "q":
			return rverr.ErrUserQuit
		default:
			fmt.Fprintf(d.out, "unknown command %q (use c, s, or q)\n", line)
		}
	}
}

func (d *Debugger) render(c *cpu.CPU) {
	fmt.Fprintf(d.out, "\n-- pc=0x%08x --\n", c.PC)
	d.renderWindow(c)
	d.renderRegisters(c)
	d.renderMemoryMap(c)
	fmt.Fprintf(d.out, "output so far: %q\n", c.Output.String())
}

func (d *Debugger) renderWindow(c *cpu.CPU) {
	start := c.PC - (windowInstructions/2)*4
	for i := 0; i < windowInstructions; i++ {
		addr := start + uint32(i)*4
		marker := "  "
		if addr == c.PC {
			marker = "->"
		}
		word, err := c.Bus.Read(addr, bus.Word)
		if err != nil {
			fmt.Fprintf(d.out, "%s 0x%08x: <unreadable>\n", marker, addr)
			continue
		}
		fmt.Fprintf(d.out, "%s 0x%08x: %08x  %s\n", marker, addr, word, decode.Disassemble(word))
	}
}

func (d *Debugger) renderRegisters(c *cpu.CPU) {
	regs := c.Regs.Snapshot()
	for i := 0; i < len(regs); i += 4 {
		fmt.Fprintf(d.out, "x%-2d/%-4s=0x%08x  x%-2d/%-4s=0x%08x  x%-2d/%-4s=0x%08x  x%-2d/%-4s=0x%08x\n",
			i, regName(i), regs[i],
			i+1, regName(i+1), regs[i+1],
			i+2, regName(i+2), regs[i+2],
			i+3, regName(i+3), regs[i+3],
		)
	}
}

func (d *Debugger) renderMemoryMap(c *cpu.CPU) {
	fmt.Fprintf(d.out, "text:  0x%08x .. 0x%08x\n", c.Bus.Entry(), c.Bus.Entry()+c.Bus.CodeSize())
	fmt.Fprintf(d.out, "dram:  0x%08x .. 0x%08x\n", c.Bus.DRAMBase(), c.Bus.DRAMBase()+c.Bus.DRAMSize())
}
