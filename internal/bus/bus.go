// Package bus implements the segmented 32-bit address space: a
// read-only text region holding the loaded code image and a
// read/write DRAM region holding static data, heap, and stack.
package bus

import (
	"encoding/binary"

	"github.com/bassosimone/rv32emu/internal/rverr"
)

// Size is the width of a memory access.
type Size uint32

// The three access widths the ISA can request.
const (
	Byte Size = 1
	Half Size = 2
	Word Size = 4
)

// dramCeiling is the fixed upper bound of the DRAM region.
const dramCeiling = 0x8000_0000

// guardSize is the gap left between the end of text and the start of
// DRAM.
const guardSize = 0x1000

// region is a contiguous byte buffer addressed starting at base.
type region struct {
	base     uint32
	size     uint32
	data     []byte
	writable bool
}

func (r *region) contains(addr uint32, size Size) bool {
	if addr < r.base {
		return false
	}
	end := r.base + r.size
	return addr <= end && uint64(addr)+uint64(size) <= uint64(end)
}

func (r *region) offset(addr uint32) uint32 {
	return addr - r.base
}

// Bus is the two-region memory map: text (code, read-only) and DRAM
// (data/heap/stack, read-write).
type Bus struct {
	text region
	dram region
}

// New allocates and zero-fills the text and DRAM regions, then copies
// code into text and data into the low addresses of DRAM. It fails if
// either input exceeds the capacity of its region.
func New(entry uint32, code, data []byte) (*Bus, error) {
	textSize := uint32(len(code)) + 4
	dramBase := entry + uint32(len(code)) + guardSize
	if dramBase >= dramCeiling {
		return nil, rverr.Bus(dramBase, "code image too large: DRAM region would not fit below the ceiling")
	}
	dramSize := dramCeiling - dramBase

	if uint32(len(data)) > dramSize {
		return nil, rverr.Bus(dramBase, "initialized data larger than the DRAM region")
	}

	b := &Bus{
		text: region{base: entry, size: textSize, data: make([]byte, textSize), writable: false},
		dram: region{base: dramBase, size: dramSize, data: make([]byte, dramSize), writable: true},
	}
	copy(b.text.data, code)
	copy(b.dram.data, data)
	return b, nil
}

func (b *Bus) regionFor(addr uint32, size Size) (*region, bool) {
	if b.text.contains(addr, size) {
		return &b.text, true
	}
	if b.dram.contains(addr, size) {
		return &b.dram, true
	}
	return nil, false
}

func checkAlign(addr uint32, size Size) error {
	switch size {
	case Half:
		if addr%2 != 0 {
			return rverr.Alignment(addr, "unaligned half-word access")
		}
	case Word:
		if addr%4 != 0 {
			return rverr.Alignment(addr, "unaligned word access")
		}
	}
	return nil
}

// Read loads a value of the given size from addr, zero-extended into the
// low bits of the returned word. Sign extension, where required by the
// ISA's signed load instructions, is the execute layer's job.
func (b *Bus) Read(addr uint32, size Size) (uint32, error) {
	if err := checkAlign(addr, size); err != nil {
		return 0, err
	}
	r, ok := b.regionFor(addr, size)
	if !ok {
		return 0, rverr.Bus(addr, "out-of-bounds read")
	}
	off := r.offset(addr)
	switch size {
	case Byte:
		return uint32(r.data[off]), nil
	case Half:
		return uint32(binary.LittleEndian.Uint16(r.data[off : off+2])), nil
	case Word:
		return binary.LittleEndian.Uint32(r.data[off : off+4]), nil
	default:
		return 0, rverr.Bus(addr, "unsupported access size")
	}
}

// Write stores the low `size` bits of value at addr, little-endian.
// Writes landing in the text region are fatal: self-modifying code is
// unsupported.
func (b *Bus) Write(addr uint32, value uint32, size Size) error {
	if err := checkAlign(addr, size); err != nil {
		return err
	}
	r, ok := b.regionFor(addr, size)
	if !ok {
		return rverr.Bus(addr, "out-of-bounds write")
	}
	if !r.writable {
		return rverr.Bus(addr, "write to read-only text region")
	}
	off := r.offset(addr)
	switch size {
	case Byte:
		r.data[off] = byte(value)
	case Half:
		binary.LittleEndian.PutUint16(r.data[off:off+2], uint16(value))
	case Word:
		binary.LittleEndian.PutUint32(r.data[off:off+4], value)
	default:
		return rverr.Bus(addr, "unsupported access size")
	}
	return nil
}

// Entry returns the base address of the text region.
func (b *Bus) Entry() uint32 { return b.text.base }

// CodeSize returns the size in bytes of the text region.
func (b *Bus) CodeSize() uint32 { return b.text.size }

// DRAMBase returns the base address of the DRAM region.
func (b *Bus) DRAMBase() uint32 { return b.dram.base }

// DRAMSize returns the size in bytes of the DRAM region.
func (b *Bus) DRAMSize() uint32 { return b.dram.size }

// ReadCString reads bytes from DRAM (or text) starting at addr until a
// NUL byte, returning the bytes without the terminator. A positive
// maxLen stops the read after maxLen bytes; zero or less means no limit.
// Running past the end of the owning region before a NUL is an
// out-of-bounds error. Used by the print_string syscall.
func (b *Bus) ReadCString(addr uint32, maxLen int) ([]byte, error) {
	var out []byte
	for i := 0; maxLen <= 0 || i < maxLen; i++ {
		v, err := b.Read(addr+uint32(i), Byte)
		if err != nil {
			return nil, err
		}
		if v == 0 {
			return out, nil
		}
		out = append(out, byte(v))
	}
	return out, nil
}
