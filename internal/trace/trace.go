// Package trace provides the verbose per-instruction tracer enabled by
// the driver's -v flag: a thin wrapper around log/slog's text handler
// that writes one line per instruction to a chosen writer.
package trace

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/bassosimone/rv32emu/internal/decode"
)

// Tracer emits one line per retired instruction when enabled, and does
// nothing at all when disabled — the zero value is a valid, silent
// Tracer.
type Tracer struct {
	logger  *slog.Logger
	enabled bool
}

// New builds a Tracer that writes to w when enabled is true. When
// enabled is false, Instr is a no-op and w is never touched.
func New(w io.Writer, enabled bool) *Tracer {
	if !enabled {
		return &Tracer{enabled: false}
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Tracer{logger: slog.New(handler), enabled: true}
}

// Instr logs the program counter, raw word, and disassembly of one
// retired instruction.
func (t *Tracer) Instr(pc, word uint32) {
	if !t.enabled {
		return
	}
	t.logger.Debug("step",
		slog.String("pc", fmt.Sprintf("0x%08x", pc)),
		slog.String("word", fmt.Sprintf("0x%08x", word)),
		slog.String("asm", decode.Disassemble(word)),
	)
}
