package cpu

import (
	"github.com/bassosimone/rv32emu/internal/bus"
	"github.com/bassosimone/rv32emu/internal/decode"
	"github.com/bassosimone/rv32emu/internal/isa"
	"github.com/bassosimone/rv32emu/internal/rverr"
)

// Fetch reads a 32-bit word from the text region at pc and decodes it.
// It guards against running off the end of text before ever touching
// the bus, then lets the bus's own alignment check catch an unaligned
// pc.
func Fetch(b *bus.Bus, pc uint32) (isa.Instruction, error) {
	if pc < b.Entry() || pc-b.Entry() >= b.CodeSize() {
		return nil, rverr.Bus(pc, "fetch past end of text region")
	}
	word, err := b.Read(pc, bus.Word)
	if err != nil {
		return nil, err
	}
	return decode.Decode(word)
}
