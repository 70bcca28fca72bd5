// Package cpu implements the execution engine: the register file, the
// CPU state, fetch, and the step function that dispatches a decoded
// instruction to its operation-specific state transition, including the
// ecall syscall personality.
package cpu

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/bassosimone/rv32emu/internal/bus"
	"github.com/bassosimone/rv32emu/internal/isa"
)

// Initial stack pointer: the stack grows downward from here.
const initialSP = 0x7FFF_EFFC

// CPU aggregates the register file, program counter, memory bus, debug
// flag, and the accumulated syscall output buffer. It is constructed
// once per program load and mutated exclusively by Step and the
// syscalls it dispatches.
type CPU struct {
	Regs  RegisterFile
	PC    uint32
	Bus   *bus.Bus
	Debug bool

	// Output mirrors everything written via print-style syscalls,
	// letting callers (tests, the debugger) inspect program output
	// without reading Stdout. No newline is appended beyond what the
	// syscall itself writes.
	Output strings.Builder

	// Stdin/Stdout back the blocking I/O syscalls. They default to the
	// process's own stdin/stdout in New, and can be swapped out by
	// tests.
	Stdin  *bufio.Reader
	Stdout io.Writer

	// DebugHook is invoked by Step whenever Debug is true, before the
	// instruction at PC is executed. It is nil until the driver wires
	// up internal/debugger, keeping this package free of a dependency
	// on the debugger's terminal-rendering code.
	DebugHook func(*CPU) error
}

// New constructs a CPU with PC = entry, sp = 0x7FFF_EFFC, ra = entry,
// gp = *gp if gp != nil else 0, and all other registers zero.
func New(code, data []byte, entry uint32, gp *uint32) (*CPU, error) {
	b, err := bus.New(entry, code, data)
	if err != nil {
		return nil, err
	}
	c := &CPU{
		Bus:    b,
		PC:     entry,
		Stdin:  bufio.NewReader(os.Stdin),
		Stdout: os.Stdout,
	}
	c.Regs.Set(regSP, initialSP)
	c.Regs.Set(regRA, entry)
	if gp != nil {
		c.Regs.Set(regGP, *gp)
	}
	return c, nil
}

// Canonical register indices referenced directly by name in this
// package; the rest are accessed through decoded Reg values.
const (
	regRA isa.Reg = 1
	regSP isa.Reg = 2
	regGP isa.Reg = 3
	regA0 isa.Reg = 10
	regA7 isa.Reg = 17
)

// Step fetches and decodes the instruction at c.PC, yields to the
// debugger hook if c.Debug is set, dispatches the instruction, and
// advances the program counter by 4 unless the instruction already set
// PC itself (jumps and taken branches).
func (c *CPU) Step() error {
	instr, err := Fetch(c.Bus, c.PC)
	if err != nil {
		return err
	}
	if c.Debug && c.DebugHook != nil {
		if err := c.DebugHook(c); err != nil {
			return err
		}
	}
	return c.execute(instr)
}
