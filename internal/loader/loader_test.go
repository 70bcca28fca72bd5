package loader

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const (
	etExec    = 2
	emRiscV   = 243
	shtNull   = 0
	shtProgbits = 1
	shtStrtab = 3
	shfAlloc  = 0x2
	shfExec   = 0x4
	shfWrite  = 0x1
)

// buildELF32 assembles a minimal, valid little-endian ELF32 RV32 image
// with a .text section, an optional .data section, and a .shstrtab
// string table, so loader.Load can be exercised without a real
// toolchain-produced binary.
func buildELF32(t *testing.T, entry uint32, code, data []byte, extraSym *elfSymbol) []byte {
	t.Helper()

	const ehdrSize = 52
	const shdrSize = 40

	type section struct {
		name   string
		typ    uint32
		flags  uint32
		addr   uint32
		data   []byte
	}
	sections := []section{
		{name: "", typ: shtNull},
		{name: ".text", typ: shtProgbits, flags: shfAlloc | shfExec, addr: entry, data: code},
	}
	if data != nil {
		sections = append(sections, section{name: ".data", typ: shtProgbits, flags: shfAlloc | shfWrite, addr: entry + 0x10000, data: data})
	}

	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)
	nameOffsets := make([]uint32, len(sections))
	for i, s := range sections {
		nameOffsets[i] = uint32(shstrtab.Len())
		shstrtab.WriteString(s.name)
		shstrtab.WriteByte(0)
	}
	shstrtabNameOff := uint32(shstrtab.Len())
	shstrtab.WriteString(".shstrtab")
	shstrtab.WriteByte(0)
	sections = append(sections, section{name: ".shstrtab", typ: shtStrtab, data: shstrtab.Bytes()})
	nameOffsets = append(nameOffsets, shstrtabNameOff)

	var body bytes.Buffer
	body.Write(make([]byte, ehdrSize)) // placeholder, patched below
	offsets := make([]uint32, len(sections))
	sizes := make([]uint32, len(sections))
	for i, s := range sections {
		offsets[i] = uint32(body.Len())
		sizes[i] = uint32(len(s.data))
		body.Write(s.data)
	}
	shoff := uint32(body.Len())
	for i, s := range sections {
		var shdr [shdrSize]byte
		binary.LittleEndian.PutUint32(shdr[0:4], nameOffsets[i])
		binary.LittleEndian.PutUint32(shdr[4:8], s.typ)
		binary.LittleEndian.PutUint32(shdr[8:12], s.flags)
		binary.LittleEndian.PutUint32(shdr[12:16], s.addr)
		binary.LittleEndian.PutUint32(shdr[16:20], offsets[i])
		binary.LittleEndian.PutUint32(shdr[20:24], sizes[i])
		body.Write(shdr[:])
	}

	out := body.Bytes()
	copy(out[0:4], []byte{0x7f, 'E', 'L', 'F'})
	out[4] = 1 // ELFCLASS32
	out[5] = 1 // little endian
	out[6] = 1 // EI_VERSION
	binary.LittleEndian.PutUint16(out[16:18], etExec)
	binary.LittleEndian.PutUint16(out[18:20], emRiscV)
	binary.LittleEndian.PutUint32(out[20:24], 1) // e_version
	binary.LittleEndian.PutUint32(out[24:28], entry)
	binary.LittleEndian.PutUint32(out[28:32], 0) // e_phoff
	binary.LittleEndian.PutUint32(out[32:36], shoff)
	binary.LittleEndian.PutUint32(out[36:40], 0) // e_flags
	binary.LittleEndian.PutUint16(out[40:42], ehdrSize)
	binary.LittleEndian.PutUint16(out[42:44], 0) // e_phentsize
	binary.LittleEndian.PutUint16(out[44:46], 0) // e_phnum
	binary.LittleEndian.PutUint16(out[46:48], shdrSize)
	binary.LittleEndian.PutUint16(out[48:50], uint16(len(sections)))
	binary.LittleEndian.PutUint16(out[50:52], uint16(len(sections)-1)) // shstrtab index

	return out
}

type elfSymbol struct {
	name  string
	value uint32
}

func TestLoadLocatesTextDataEntry(t *testing.T) {
	code := []byte{0xB3, 0x01, 0x32, 0x00, 0x13, 0x00, 0x00, 0x00} // 2 words
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	const entry = 0x00400000

	elfBytes := buildELF32(t, entry, code, data, nil)
	path := filepath.Join(t.TempDir(), "prog.elf")
	if err := os.WriteFile(path, elfBytes, 0o644); err != nil {
		t.Fatalf("writing test ELF: %v", err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if img.Entry != entry {
		t.Errorf("Entry = 0x%x, want 0x%x", img.Entry, entry)
	}
	if !bytes.Equal(img.Code, code) {
		t.Errorf("Code = %x, want %x", img.Code, code)
	}
	if !bytes.Equal(img.Data, data) {
		t.Errorf("Data = %x, want %x", img.Data, data)
	}
	if img.GP != nil {
		t.Errorf("GP = %v, want nil (no symbol table in this fixture)", *img.GP)
	}
}

func TestLoadRejectsOddSizedText(t *testing.T) {
	code := []byte{0x00, 0x00, 0x00} // not a multiple of 4
	elfBytes := buildELF32(t, 0x1000, code, nil, nil)
	path := filepath.Join(t.TempDir(), "bad.elf")
	if err := os.WriteFile(path, elfBytes, 0o644); err != nil {
		t.Fatalf("writing test ELF: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a .text section not a multiple of 4 bytes")
	}
}
