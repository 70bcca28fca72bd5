package isa

// Instruction is implemented by each of the six shape-specific
// instruction types (RInstr, IInstr, SInstr, SBInstr, UInstr, UJInstr).
// It exists purely to let the decoder return a single sum-typed value;
// the execution engine recovers the concrete shape with a type switch.
type Instruction interface {
	isInstruction()
}

// ROp enumerates the R-type (register, register, register) operations,
// including the M-extension multiply/divide family.
type ROp int

const (
	Add ROp = iota
	Sub
	Sll
	Slt
	Sltu
	Xor
	Srl
	Sra
	Or
	And
	Mul
	Mulh
	Mulhsu
	Mulhu
	Div
	Divu
	Rem
	Remu
)

// RInstr is an R-type instruction: two source registers, one destination.
type RInstr struct {
	Op             ROp
	Rd, Rs1, Rs2   Reg
	Funct3, Funct7 uint32
}

func (RInstr) isInstruction() {}

// IOp enumerates the I-type operations: loads, arithmetic-immediate,
// jalr, and the system pseudo-instructions fence/fence.i/ecall/ebreak.
type IOp int

const (
	Lb IOp = iota
	Lh
	Lw
	Lbu
	Lhu
	Addi
	Andi
	Ori
	Xori
	Slli
	Srli
	Srai
	Slti
	Sltiu
	Jalr
	Fence
	FenceI
	Ecall
	Ebreak
)

// IInstr is an I-type instruction: one source register, a sign-extended
// 12-bit immediate (already extended to int32 by the decoder), one
// destination register. Shift amounts are pre-masked to 5 bits by the
// decoder for Slli/Srli/Srai.
type IInstr struct {
	Op     IOp
	Rd, Rs1 Reg
	Funct3 uint32
	Imm    int32
}

func (IInstr) isInstruction() {}

// SOp enumerates the S-type store operations.
type SOp int

const (
	Sb SOp = iota
	Sh
	Sw
)

// SInstr is an S-type instruction: base register, source register, a
// sign-extended offset immediate.
type SInstr struct {
	Op           SOp
	Rs1, Rs2     Reg
	Funct3       uint32
	Imm          int32
}

func (SInstr) isInstruction() {}

// SBOp enumerates the SB-type (conditional branch) operations.
type SBOp int

const (
	Beq SBOp = iota
	Bne
	Blt
	Bge
	Bltu
	Bgeu
)

// SBInstr is an SB-type instruction: two source registers compared, a
// sign-extended, even, 13-bit-range branch offset.
type SBInstr struct {
	Op       SBOp
	Rs1, Rs2 Reg
	Funct3   uint32
	Imm      int32
}

func (SBInstr) isInstruction() {}

// UOp enumerates the U-type operations.
type UOp int

const (
	Lui UOp = iota
	Auipc
)

// UInstr is a U-type instruction: destination register, a 20-bit
// immediate right-justified in Imm (execute shifts it left by 12).
type UInstr struct {
	Op  UOp
	Rd  Reg
	Imm uint32
}

func (UInstr) isInstruction() {}

// UJOp enumerates the UJ-type operations (just jal; jalr is I-type).
type UJOp int

const (
	Jal UJOp = iota
)

// UJInstr is a UJ-type instruction: destination register (the link
// register), a sign-extended, even, 21-bit-range jump offset stored as
// an unsigned value whose bit 20 is the sign bit.
type UJInstr struct {
	Op  UJOp
	Rd  Reg
	Imm uint32
}

func (UJInstr) isInstruction() {}
