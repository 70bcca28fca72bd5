package decode

import (
	"fmt"

	"github.com/bassosimone/rv32emu/internal/isa"
)

var rOpNames = map[isa.ROp]string{
	isa.Add: "add", isa.Sub: "sub", isa.Sll: "sll", isa.Slt: "slt",
	isa.Sltu: "sltu", isa.Xor: "xor", isa.Srl: "srl", isa.Sra: "sra",
	isa.Or: "or", isa.And: "and", isa.Mul: "mul", isa.Mulh: "mulh",
	isa.Mulhsu: "mulhsu", isa.Mulhu: "mulhu", isa.Div: "div",
	isa.Divu: "divu", isa.Rem: "rem", isa.Remu: "remu",
}

var iOpNames = map[isa.IOp]string{
	isa.Lb: "lb", isa.Lh: "lh", isa.Lw: "lw", isa.Lbu: "lbu", isa.Lhu: "lhu",
	isa.Addi: "addi", isa.Andi: "andi", isa.Ori: "ori", isa.Xori: "xori",
	isa.Slli: "slli", isa.Srli: "srli", isa.Srai: "srai",
	isa.Slti: "slti", isa.Sltiu: "sltiu", isa.Jalr: "jalr",
	isa.Fence: "fence", isa.FenceI: "fence.i", isa.Ecall: "ecall", isa.Ebreak: "ebreak",
}

var sOpNames = map[isa.SOp]string{isa.Sb: "sb", isa.Sh: "sh", isa.Sw: "sw"}

var sbOpNames = map[isa.SBOp]string{
	isa.Beq: "beq", isa.Bne: "bne", isa.Blt: "blt",
	isa.Bge: "bge", isa.Bltu: "bltu", isa.Bgeu: "bgeu",
}

var uOpNames = map[isa.UOp]string{isa.Lui: "lui", isa.Auipc: "auipc"}

// Disassemble decodes word and renders it as a short assembly mnemonic.
// It never fails: an undecodable word renders as "<bad: 0x...>".
func Disassemble(word uint32) string {
	instr, err := Decode(word)
	if err != nil {
		return fmt.Sprintf("<bad: 0x%08x>", word)
	}
	return DisassembleInstr(instr)
}

// DisassembleInstr renders an already-decoded instruction.
func DisassembleInstr(instr isa.Instruction) string {
	switch in := instr.(type) {
	case isa.RInstr:
		return fmt.Sprintf("%s %s, %s, %s", rOpNames[in.Op], in.Rd, in.Rs1, in.Rs2)
	case isa.IInstr:
		switch in.Op {
		case isa.Jalr:
			return fmt.Sprintf("jalr %s, %d(%s)", in.Rd, in.Imm, in.Rs1)
		case isa.Lb, isa.Lh, isa.Lw, isa.Lbu, isa.Lhu:
			return fmt.Sprintf("%s %s, %d(%s)", iOpNames[in.Op], in.Rd, in.Imm, in.Rs1)
		case isa.Fence, isa.FenceI, isa.Ecall, isa.Ebreak:
			return iOpNames[in.Op]
		default:
			return fmt.Sprintf("%s %s, %s, %d", iOpNames[in.Op], in.Rd, in.Rs1, in.Imm)
		}
	case isa.SInstr:
		return fmt.Sprintf("%s %s, %d(%s)", sOpNames[in.Op], in.Rs2, in.Imm, in.Rs1)
	case isa.SBInstr:
		return fmt.Sprintf("%s %s, %s, %d", sbOpNames[in.Op], in.Rs1, in.Rs2, in.Imm)
	case isa.UInstr:
		return fmt.Sprintf("%s %s, 0x%x", uOpNames[in.Op], in.Rd, in.Imm)
	case isa.UJInstr:
		return fmt.Sprintf("jal %s, %d", in.Rd, int32(in.Imm<<11)>>11)
	default:
		return "<unknown instruction>"
	}
}
