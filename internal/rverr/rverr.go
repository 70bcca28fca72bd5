// Package rverr defines the fatal error taxonomy shared by every
// component of the emulator core. Every step the engine performs returns
// one of these kinds (or nil); the outer driver is the only place that
// decides what to do about it.
package rverr

import (
	"errors"
	"fmt"
)

// The following sentinels classify a fatal error. Use errors.Is against
// these, not string comparison against Error().
var (
	// ErrDecode indicates an unrecognized opcode or malformed encoding.
	ErrDecode = errors.New("decode error")

	// ErrBus indicates an out-of-bounds address or a write to text.
	ErrBus = errors.New("bus error")

	// ErrAlignment indicates a misaligned PC or an unaligned load/store
	// where alignment is required.
	ErrAlignment = errors.New("alignment error")

	// ErrArithmetic indicates division or remainder by zero, or signed
	// division overflow (MinInt32 / -1).
	ErrArithmetic = errors.New("arithmetic error")

	// ErrSyscall indicates an unsupported syscall number or failed
	// host I/O or argument parsing.
	ErrSyscall = errors.New("syscall error")

	// ErrUserQuit indicates the debugger's q command was issued.
	ErrUserQuit = errors.New("user quit")
)

// Decode wraps ErrDecode with the raw offending word.
func Decode(word uint32, reason string) error {
	return fmt.Errorf("%w: %s (word=0x%08x)", ErrDecode, reason, word)
}

// Bus wraps ErrBus with the offending address.
func Bus(addr uint32, reason string) error {
	return fmt.Errorf("%w: %s (addr=0x%08x)", ErrBus, reason, addr)
}

// Alignment wraps ErrAlignment with the offending address.
func Alignment(addr uint32, reason string) error {
	return fmt.Errorf("%w: %s (addr=0x%08x)", ErrAlignment, reason, addr)
}

// Arithmetic wraps ErrArithmetic with a human-readable reason.
func Arithmetic(reason string) error {
	return fmt.Errorf("%w: %s", ErrArithmetic, reason)
}

// Syscall wraps ErrSyscall with a human-readable reason.
func Syscall(reason string) error {
	return fmt.Errorf("%w: %s", ErrSyscall, reason)
}

// ExitError is a structured program-termination signal carrying the exit
// code the emulated program requested, either via syscall 10 (exit, code
// 0) or syscall 93 (exit2, caller-supplied code). The driver unwraps this
// with errors.As and calls os.Exit with Code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exited %d", e.Code)
}

// Exit constructs a fatal ExitError with the given exit code.
func Exit(code int) error {
	return &ExitError{Code: code}
}
