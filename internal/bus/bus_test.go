package bus

import (
	"errors"
	"testing"

	"github.com/bassosimone/rv32emu/internal/rverr"
)

const testEntry = 0x00400000

func newTestBus(t *testing.T, code, data []byte) *Bus {
	t.Helper()
	b, err := New(testEntry, code, data)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return b
}

func TestNewLaysOutRegionsPerSpec(t *testing.T) {
	code := make([]byte, 16)
	data := make([]byte, 8)
	b := newTestBus(t, code, data)

	if b.Entry() != testEntry {
		t.Errorf("Entry() = 0x%x, want 0x%x", b.Entry(), testEntry)
	}
	if b.CodeSize() != uint32(len(code))+4 {
		t.Errorf("CodeSize() = %d, want %d", b.CodeSize(), len(code)+4)
	}
	wantDRAMBase := testEntry + uint32(len(code)) + 0x1000
	if b.DRAMBase() != wantDRAMBase {
		t.Errorf("DRAMBase() = 0x%x, want 0x%x", b.DRAMBase(), wantDRAMBase)
	}
	if b.DRAMBase()+b.DRAMSize() != dramCeiling {
		t.Errorf("DRAM region does not extend to the fixed ceiling 0x%x", dramCeiling)
	}
}

func TestLittleEndianRoundTrip(t *testing.T) {
	b := newTestBus(t, make([]byte, 16), make([]byte, 16))
	addr := b.DRAMBase()
	const value = uint32(0x12345678)

	if err := b.Write(addr, value, Word); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	want := []byte{0x78, 0x56, 0x34, 0x12}
	for i, w := range want {
		got, err := b.Read(addr+uint32(i), Byte)
		if err != nil {
			t.Fatalf("Read byte %d returned error: %v", i, err)
		}
		if byte(got) != w {
			t.Errorf("byte %d = 0x%02x, want 0x%02x", i, got, w)
		}
	}

	roundTripped, err := b.Read(addr, Word)
	if err != nil {
		t.Fatalf("Read word returned error: %v", err)
	}
	if roundTripped != value {
		t.Errorf("round-tripped word = 0x%x, want 0x%x", roundTripped, value)
	}
}

func TestIdempotentReads(t *testing.T) {
	b := newTestBus(t, []byte{0x01, 0x02, 0x03, 0x04}, nil)
	a, err1 := b.Read(testEntry, Word)
	bb, err2 := b.Read(testEntry, Word)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if a != bb {
		t.Errorf("repeated reads diverged: %x != %x", a, bb)
	}
}

func TestWriteToTextIsFatal(t *testing.T) {
	b := newTestBus(t, []byte{0x00, 0x00, 0x00, 0x00}, nil)
	err := b.Write(testEntry, 0xDEADBEEF, Word)
	if err == nil {
		t.Fatal("expected a bus error writing to the text region")
	}
	if !errors.Is(err, rverr.ErrBus) {
		t.Fatalf("expected errors.Is(err, rverr.ErrBus), got %v", err)
	}

	// Confirm the memory was not actually mutated.
	v, rerr := b.Read(testEntry, Word)
	if rerr != nil {
		t.Fatalf("Read returned error: %v", rerr)
	}
	if v != 0 {
		t.Errorf("text region was mutated by a failed write: got 0x%x", v)
	}
}

func TestOutOfBoundsAccessIsFatal(t *testing.T) {
	b := newTestBus(t, make([]byte, 4), make([]byte, 4))

	cases := []struct {
		name string
		addr uint32
	}{
		{"below text", testEntry - 4},
		{"past dram ceiling", dramCeiling},
		{"in the guard gap", b.text.base + b.text.size + 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := b.Read(tc.addr, Byte); err == nil {
				t.Fatalf("expected an out-of-bounds error reading 0x%x", tc.addr)
			}
		})
	}
}

func TestBoundaryAddressesAreInBounds(t *testing.T) {
	b := newTestBus(t, make([]byte, 16), nil)

	if _, err := b.Read(b.Entry(), Byte); err != nil {
		t.Errorf("read at entry failed: %v", err)
	}
	lastDRAMByte := b.DRAMBase() + b.DRAMSize() - 1
	if _, err := b.Read(lastDRAMByte, Byte); err != nil {
		t.Errorf("read at dram_end-1 failed: %v", err)
	}
}

func TestUnalignedWordAccessIsAlignmentError(t *testing.T) {
	b := newTestBus(t, make([]byte, 16), make([]byte, 16))
	_, err := b.Read(b.DRAMBase()+1, Word)
	if err == nil {
		t.Fatal("expected an alignment error")
	}
	if !errors.Is(err, rverr.ErrAlignment) {
		t.Fatalf("expected errors.Is(err, rverr.ErrAlignment), got %v", err)
	}
}

func TestReadCStringStopsAtNUL(t *testing.T) {
	b := newTestBus(t, make([]byte, 4), make([]byte, 16))
	addr := b.DRAMBase()
	msg := "hi\x00trailing"
	for i, c := range []byte(msg) {
		if err := b.Write(addr+uint32(i), uint32(c), Byte); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
	}
	got, err := b.ReadCString(addr, 0)
	if err != nil {
		t.Fatalf("ReadCString returned error: %v", err)
	}
	if string(got) != "hi" {
		t.Errorf("ReadCString = %q, want %q", got, "hi")
	}
}
