// Package loader is a thin wrapper over debug/elf: it locates .text,
// .data, the entry address, and the __global_pointer$ symbol of a
// statically-linked RV32IM executable image, and exposes exactly the
// fields the core needs to construct a CPU.
package loader

import (
	"debug/elf"
	"fmt"
)

// Image is everything the core needs from a loaded executable.
type Image struct {
	Code  []byte  // .text contents, length divisible by 4
	Data  []byte  // .data contents, possibly empty
	Entry uint32  // entry point address
	GP    *uint32 // __global_pointer$ symbol value, nil if absent
}

// Load opens path, parses it as an ELF file, and extracts the fields
// described above. It returns an error if the file isn't a valid ELF
// image, targets an unexpected machine, or is missing a .text section.
func Load(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("loader: expected a 32-bit ELF image, got %s", f.Class)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("loader: expected an RV32 image, got machine %s", f.Machine)
	}

	text := f.Section(".text")
	if text == nil {
		return nil, fmt.Errorf("loader: missing .text section")
	}
	code, err := text.Data()
	if err != nil {
		return nil, fmt.Errorf("loader: reading .text: %w", err)
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("loader: .text length %d is not a multiple of 4", len(code))
	}

	var data []byte
	if dataSec := f.Section(".data"); dataSec != nil && dataSec.Type == elf.SHT_PROGBITS {
		data, err = dataSec.Data()
		if err != nil {
			return nil, fmt.Errorf("loader: reading .data: %w", err)
		}
	}

	gp, err := globalPointer(f)
	if err != nil {
		return nil, err
	}

	return &Image{
		Code:  code,
		Data:  data,
		Entry: uint32(f.Entry),
		GP:    gp,
	}, nil
}

// globalPointer resolves the __global_pointer$ symbol, if the image's
// symbol table carries one. A binary lacking a symbol table (e.g.
// stripped) simply yields a nil GP, which the CPU initializes to 0.
func globalPointer(f *elf.File) (*uint32, error) {
	syms, err := f.Symbols()
	if err != nil {
		// No symbol table at all: not an error, just no gp to report.
		return nil, nil
	}
	for _, sym := range syms {
		if sym.Name == "__global_pointer$" {
			v := uint32(sym.Value)
			return &v, nil
		}
	}
	return nil, nil
}
