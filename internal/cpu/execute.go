package cpu

import (
	"math"

	"github.com/bassosimone/rv32emu/internal/bus"
	"github.com/bassosimone/rv32emu/internal/isa"
	"github.com/bassosimone/rv32emu/internal/rverr"
)

// execute dispatches on the instruction's concrete shape and performs
// its state transition. Every case either sets c.PC itself (jumps,
// taken branches) or falls through to the unconditional pc+4 update at
// the end; a `branched` flag records which happened so the dispatch
// stays in one place instead of smearing PC-advance logic across every
// instruction handler.
func (c *CPU) execute(instr isa.Instruction) error {
	pc := c.PC
	branched := false

	switch in := instr.(type) {
	case isa.RInstr:
		if err := c.execR(in); err != nil {
			return err
		}
	case isa.IInstr:
		var err error
		branched, err = c.execI(in, pc)
		if err != nil {
			return err
		}
	case isa.SInstr:
		if err := c.execS(in); err != nil {
			return err
		}
	case isa.SBInstr:
		branched = c.execSB(in, pc)
	case isa.UInstr:
		c.execU(in, pc)
	case isa.UJInstr:
		c.execUJ(in, pc)
		branched = true
	default:
		return rverr.Decode(0, "unsupported instruction shape")
	}

	if !branched {
		c.PC = pc + 4
	}
	return nil
}

func (c *CPU) execR(in isa.RInstr) error {
	a := c.Regs.Get(in.Rs1)
	b := c.Regs.Get(in.Rs2)
	shamt := b & 0x1F

	var result uint32
	switch in.Op {
	case isa.Add:
		result = a + b
	case isa.Sub:
		result = a - b
	case isa.Sll:
		result = a << shamt
	case isa.Slt:
		result = boolToWord(int32(a) < int32(b))
	case isa.Sltu:
		result = boolToWord(a < b)
	case isa.Xor:
		result = a ^ b
	case isa.Srl:
		result = a >> shamt
	case isa.Sra:
		result = uint32(int32(a) >> shamt)
	case isa.Or:
		result = a | b
	case isa.And:
		result = a & b
	case isa.Mul:
		result = a * b
	case isa.Mulh:
		result = uint32((int64(int32(a)) * int64(int32(b))) >> 32)
	case isa.Mulhsu:
		result = uint32((int64(int32(a)) * int64(b)) >> 32)
	case isa.Mulhu:
		result = uint32((uint64(a) * uint64(b)) >> 32)
	case isa.Div:
		if b == 0 {
			return rverr.Arithmetic("division by zero (div)")
		}
		if int32(a) == math.MinInt32 && int32(b) == -1 {
			return rverr.Arithmetic("division overflow (div): MinInt32 / -1")
		}
		result = uint32(int32(a) / int32(b))
	case isa.Divu:
		if b == 0 {
			return rverr.Arithmetic("division by zero (divu)")
		}
		result = a / b
	case isa.Rem:
		if b == 0 {
			return rverr.Arithmetic("division by zero (rem)")
		}
		result = uint32(int32(a) % int32(b))
	case isa.Remu:
		if b == 0 {
			return rverr.Arithmetic("division by zero (remu)")
		}
		result = a % b
	default:
		return rverr.Decode(0, "unsupported R-type operation")
	}
	c.Regs.Set(in.Rd, result)
	return nil
}

// execI executes an I-type instruction and reports whether it branched
// (i.e. set c.PC itself, as jalr does).
func (c *CPU) execI(in isa.IInstr, pc uint32) (bool, error) {
	a := c.Regs.Get(in.Rs1)
	uimm := uint32(in.Imm)

	switch in.Op {
	case isa.Addi:
		c.Regs.Set(in.Rd, a+uimm)
	case isa.Andi:
		c.Regs.Set(in.Rd, a&uimm)
	case isa.Ori:
		c.Regs.Set(in.Rd, a|uimm)
	case isa.Xori:
		c.Regs.Set(in.Rd, a^uimm)
	case isa.Slti:
		c.Regs.Set(in.Rd, boolToWord(int32(a) < in.Imm))
	case isa.Sltiu:
		c.Regs.Set(in.Rd, boolToWord(a < uimm))
	case isa.Slli:
		c.Regs.Set(in.Rd, a<<(uimm&0x1F))
	case isa.Srli:
		c.Regs.Set(in.Rd, a>>(uimm&0x1F))
	case isa.Srai:
		c.Regs.Set(in.Rd, uint32(int32(a)>>(uimm&0x1F)))
	case isa.Lb, isa.Lh, isa.Lw, isa.Lbu, isa.Lhu:
		if err := c.execLoad(in, a); err != nil {
			return false, err
		}
	case isa.Jalr:
		target := (a + uimm) &^ 1
		c.Regs.Set(in.Rd, pc+4)
		c.PC = target
		return true, nil
	case isa.Fence, isa.FenceI:
		// No observable effect: this emulator has no pipeline or
		// instruction cache to synchronize.
	case isa.Ecall:
		if err := c.syscall(); err != nil {
			return false, err
		}
	case isa.Ebreak:
		c.Debug = true
	default:
		return false, rverr.Decode(0, "unsupported I-type operation")
	}
	return false, nil
}

func (c *CPU) execLoad(in isa.IInstr, base uint32) error {
	addr := base + uint32(in.Imm)
	var size bus.Size
	switch in.Op {
	case isa.Lb, isa.Lbu:
		size = bus.Byte
	case isa.Lh, isa.Lhu:
		size = bus.Half
	case isa.Lw:
		size = bus.Word
	}
	v, err := c.Bus.Read(addr, size)
	if err != nil {
		return err
	}
	switch in.Op {
	case isa.Lb:
		v = uint32(int32(int8(v)))
	case isa.Lh:
		v = uint32(int32(int16(v)))
	case isa.Lw, isa.Lbu, isa.Lhu:
		// already correctly extended (zero for *u, full width for lw)
	}
	c.Regs.Set(in.Rd, v)
	return nil
}

func (c *CPU) execS(in isa.SInstr) error {
	addr := c.Regs.Get(in.Rs1) + uint32(in.Imm)
	v := c.Regs.Get(in.Rs2)
	var size bus.Size
	switch in.Op {
	case isa.Sb:
		size = bus.Byte
	case isa.Sh:
		size = bus.Half
	case isa.Sw:
		size = bus.Word
	}
	return c.Bus.Write(addr, v, size)
}

// execSB executes a branch and reports whether it was taken.
func (c *CPU) execSB(in isa.SBInstr, pc uint32) bool {
	a := c.Regs.Get(in.Rs1)
	b := c.Regs.Get(in.Rs2)

	var taken bool
	switch in.Op {
	case isa.Beq:
		taken = a == b
	case isa.Bne:
		taken = a != b
	case isa.Blt:
		taken = int32(a) < int32(b)
	case isa.Bge:
		taken = int32(a) >= int32(b)
	case isa.Bltu:
		taken = a < b
	case isa.Bgeu:
		taken = a >= b
	}
	if taken {
		c.PC = pc + uint32(in.Imm)
	}
	return taken
}

func (c *CPU) execU(in isa.UInstr, pc uint32) {
	switch in.Op {
	case isa.Lui:
		c.Regs.Set(in.Rd, in.Imm<<12)
	case isa.Auipc:
		c.Regs.Set(in.Rd, pc+(in.Imm<<12))
	}
}

func (c *CPU) execUJ(in isa.UJInstr, pc uint32) {
	c.Regs.Set(in.Rd, pc+4)
	offset := int32(in.Imm<<11) >> 11
	c.PC = pc + uint32(offset)
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
