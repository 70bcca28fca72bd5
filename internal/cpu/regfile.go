package cpu

import "github.com/bassosimone/rv32emu/internal/isa"

// RegisterFile is the ordered sequence of 32 32-bit words backing the
// general-purpose registers. The zero-register invariant — reads of
// register 0 always yield 0, writes to it are silently discarded — is
// enforced at the single write site (Set), regardless of which
// instruction performed the write.
type RegisterFile struct {
	regs [32]uint32
}

// Get returns the current value of register r.
func (rf *RegisterFile) Get(r isa.Reg) uint32 {
	return rf.regs[r]
}

// Set stores v into register r, unless r is the zero register.
func (rf *RegisterFile) Set(r isa.Reg, v uint32) {
	if r == 0 {
		return
	}
	rf.regs[r] = v
}

// Snapshot returns a copy of all 32 register values, used by the
// debugger shim to render CPU state without exposing the live array.
func (rf *RegisterFile) Snapshot() [32]uint32 {
	return rf.regs
}
