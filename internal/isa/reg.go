// Package isa holds the instruction model for the RV32IM profile: the
// canonical register identities and the six instruction shapes the
// decoder produces and the execution engine consumes.
//
// Instruction values are immutable and produced fresh by decoding; the
// variant-per-shape types below give the dispatcher a single sum type
// to switch over, rather than hanging an Execute method off each of
// the forty-nine individual operations.
package isa

// Reg is a canonical register identity, 0..31. Reg(0) is always the
// hard-wired zero register.
type Reg uint8

// abiNames gives the conventional RISC-V ABI name for each register
// index, used for disassembly and debugger rendering.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// String returns the ABI name for the register, e.g. "a0" or "zero".
func (r Reg) String() string {
	if int(r) < len(abiNames) {
		return abiNames[r]
	}
	return "?"
}
