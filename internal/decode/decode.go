// Package decode implements the pure, deterministic RV32IM decoder:
// one function from a 32-bit machine word to an isa.Instruction.
package decode

import (
	"github.com/bassosimone/rv32emu/internal/isa"
	"github.com/bassosimone/rv32emu/internal/rverr"
)

// RISC-V base opcodes (word[6:0]) relevant to RV32IM.
const (
	opLoad   = 0b0000011
	opImm    = 0b0010011
	opAuipc  = 0b0010111
	opStore  = 0b0100011
	opReg    = 0b0110011
	opLui    = 0b0110111
	opBranch = 0b1100011
	opJalr   = 0b1100111
	opJal    = 0b1101111
	opSystem = 0b1110011
	opFence  = 0b0001111
)

func bits(word uint32, hi, lo int) uint32 {
	return (word >> lo) & ((1 << (hi - lo + 1)) - 1)
}

func opcode(word uint32) uint32 { return bits(word, 6, 0) }
func rd(word uint32) isa.Reg    { return isa.Reg(bits(word, 11, 7)) }
func funct3(word uint32) uint32 { return bits(word, 14, 12) }
func rs1(word uint32) isa.Reg   { return isa.Reg(bits(word, 19, 15)) }
func rs2(word uint32) isa.Reg   { return isa.Reg(bits(word, 24, 20)) }
func funct7(word uint32) uint32 { return bits(word, 31, 25) }

// signExtend sign-extends the low `bitWidth` bits of v to a full int32.
func signExtend(v uint32, bitWidth uint) int32 {
	shift := 32 - bitWidth
	return int32(v<<shift) >> shift
}

func immI(word uint32) int32 {
	return signExtend(bits(word, 31, 20), 12)
}

func immS(word uint32) int32 {
	v := (bits(word, 31, 25) << 5) | bits(word, 11, 7)
	return signExtend(v, 12)
}

func immB(word uint32) int32 {
	v := (bits(word, 31, 31) << 12) |
		(bits(word, 7, 7) << 11) |
		(bits(word, 30, 25) << 5) |
		(bits(word, 11, 8) << 1)
	return signExtend(v, 13)
}

func immU(word uint32) uint32 {
	return bits(word, 31, 12)
}

func immJ(word uint32) uint32 {
	return (bits(word, 31, 31) << 20) |
		(bits(word, 19, 12) << 12) |
		(bits(word, 20, 20) << 11) |
		(bits(word, 30, 21) << 1)
}

// Decode converts a 32-bit machine word into a typed instruction record,
// or returns an rverr.ErrDecode-wrapped error for unrecognized or
// malformed encodings. It never panics.
func Decode(word uint32) (isa.Instruction, error) {
	op := opcode(word)
	f3 := funct3(word)
	f7 := funct7(word)

	switch op {
	case opReg:
		return decodeR(word, f3, f7)
	case opImm:
		return decodeI(word, f3, f7)
	case opLoad:
		return decodeLoad(word, f3)
	case opStore:
		return decodeStore(word, f3)
	case opBranch:
		return decodeBranch(word, f3)
	case opLui:
		return isa.UInstr{Op: isa.Lui, Rd: rd(word), Imm: immU(word)}, nil
	case opAuipc:
		return isa.UInstr{Op: isa.Auipc, Rd: rd(word), Imm: immU(word)}, nil
	case opJal:
		return isa.UJInstr{Op: isa.Jal, Rd: rd(word), Imm: immJ(word)}, nil
	case opJalr:
		if f3 != 0 {
			return nil, rverr.Decode(word, "jalr requires funct3=0")
		}
		return isa.IInstr{Op: isa.Jalr, Rd: rd(word), Rs1: rs1(word), Funct3: f3, Imm: immI(word)}, nil
	case opSystem:
		return decodeSystem(word, f3)
	case opFence:
		return decodeFence(word, f3)
	default:
		return nil, rverr.Decode(word, "unrecognized opcode")
	}
}

func decodeR(word uint32, f3, f7 uint32) (isa.Instruction, error) {
	base := isa.RInstr{Rd: rd(word), Rs1: rs1(word), Rs2: rs2(word), Funct3: f3, Funct7: f7}
	switch f7 {
	case 0x00:
		switch f3 {
		case 0b000:
			base.Op = isa.Add
		case 0b001:
			base.Op = isa.Sll
		case 0b010:
			base.Op = isa.Slt
		case 0b011:
			base.Op = isa.Sltu
		case 0b100:
			base.Op = isa.Xor
		case 0b101:
			base.Op = isa.Srl
		case 0b110:
			base.Op = isa.Or
		case 0b111:
			base.Op = isa.And
		default:
			return nil, rverr.Decode(word, "unrecognized R-type funct3")
		}
	case 0x20:
		switch f3 {
		case 0b000:
			base.Op = isa.Sub
		case 0b101:
			base.Op = isa.Sra
		default:
			return nil, rverr.Decode(word, "unrecognized R-type funct3 for funct7=0x20")
		}
	case 0x01: // M extension
		switch f3 {
		case 0b000:
			base.Op = isa.Mul
		case 0b001:
			base.Op = isa.Mulh
		case 0b010:
			base.Op = isa.Mulhsu
		case 0b011:
			base.Op = isa.Mulhu
		case 0b100:
			base.Op = isa.Div
		case 0b101:
			base.Op = isa.Divu
		case 0b110:
			base.Op = isa.Rem
		case 0b111:
			base.Op = isa.Remu
		default:
			return nil, rverr.Decode(word, "unrecognized M-extension funct3")
		}
	default:
		return nil, rverr.Decode(word, "unrecognized R-type funct7")
	}
	return base, nil
}

func decodeI(word uint32, f3, f7 uint32) (isa.Instruction, error) {
	base := isa.IInstr{Rd: rd(word), Rs1: rs1(word), Funct3: f3}
	switch f3 {
	case 0b000:
		base.Op, base.Imm = isa.Addi, immI(word)
	case 0b010:
		base.Op, base.Imm = isa.Slti, immI(word)
	case 0b011:
		base.Op, base.Imm = isa.Sltiu, immI(word)
	case 0b100:
		base.Op, base.Imm = isa.Xori, immI(word)
	case 0b110:
		base.Op, base.Imm = isa.Ori, immI(word)
	case 0b111:
		base.Op, base.Imm = isa.Andi, immI(word)
	case 0b001:
		if f7 != 0x00 {
			return nil, rverr.Decode(word, "slli requires funct7=0")
		}
		base.Op, base.Imm = isa.Slli, int32(bits(word, 24, 20))
	case 0b101:
		switch f7 {
		case 0x00:
			base.Op, base.Imm = isa.Srli, int32(bits(word, 24, 20))
		case 0x20:
			base.Op, base.Imm = isa.Srai, int32(bits(word, 24, 20))
		default:
			return nil, rverr.Decode(word, "unrecognized shift-right funct7")
		}
	default:
		return nil, rverr.Decode(word, "unrecognized I-type funct3")
	}
	return base, nil
}

func decodeLoad(word uint32, f3 uint32) (isa.Instruction, error) {
	base := isa.IInstr{Rd: rd(word), Rs1: rs1(word), Funct3: f3, Imm: immI(word)}
	switch f3 {
	case 0b000:
		base.Op = isa.Lb
	case 0b001:
		base.Op = isa.Lh
	case 0b010:
		base.Op = isa.Lw
	case 0b100:
		base.Op = isa.Lbu
	case 0b101:
		base.Op = isa.Lhu
	default:
		return nil, rverr.Decode(word, "unrecognized load funct3")
	}
	return base, nil
}

func decodeStore(word uint32, f3 uint32) (isa.Instruction, error) {
	base := isa.SInstr{Rs1: rs1(word), Rs2: rs2(word), Funct3: f3, Imm: immS(word)}
	switch f3 {
	case 0b000:
		base.Op = isa.Sb
	case 0b001:
		base.Op = isa.Sh
	case 0b010:
		base.Op = isa.Sw
	default:
		return nil, rverr.Decode(word, "unrecognized store funct3")
	}
	return base, nil
}

func decodeBranch(word uint32, f3 uint32) (isa.Instruction, error) {
	base := isa.SBInstr{Rs1: rs1(word), Rs2: rs2(word), Funct3: f3, Imm: immB(word)}
	switch f3 {
	case 0b000:
		base.Op = isa.Beq
	case 0b001:
		base.Op = isa.Bne
	case 0b100:
		base.Op = isa.Blt
	case 0b101:
		base.Op = isa.Bge
	case 0b110:
		base.Op = isa.Bltu
	case 0b111:
		base.Op = isa.Bgeu
	default:
		return nil, rverr.Decode(word, "unrecognized branch funct3")
	}
	return base, nil
}

func decodeFence(word uint32, f3 uint32) (isa.Instruction, error) {
	switch f3 {
	case 0b000:
		return isa.IInstr{Op: isa.Fence, Rd: rd(word), Rs1: rs1(word), Funct3: f3}, nil
	case 0b001:
		return isa.IInstr{Op: isa.FenceI, Rd: rd(word), Rs1: rs1(word), Funct3: f3}, nil
	default:
		return nil, rverr.Decode(word, "unrecognized fence funct3")
	}
}

func decodeSystem(word uint32, f3 uint32) (isa.Instruction, error) {
	if f3 != 0 {
		return nil, rverr.Decode(word, "unrecognized system funct3")
	}
	imm := bits(word, 31, 20)
	switch imm {
	case 0:
		return isa.IInstr{Op: isa.Ecall, Rd: rd(word), Rs1: rs1(word), Funct3: f3}, nil
	case 1:
		return isa.IInstr{Op: isa.Ebreak, Rd: rd(word), Rs1: rs1(word), Funct3: f3}, nil
	default:
		return nil, rverr.Decode(word, "unrecognized system immediate")
	}
}
