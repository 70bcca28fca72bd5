package cpu

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bassosimone/rv32emu/internal/rverr"
)

// syscall numbers recognized by ecall, keyed on a7.
const (
	sysPrintInt         = 1
	sysPrintString      = 4
	sysReadInt          = 5
	sysReadString       = 8
	sysExit             = 10
	sysPrintChar        = 11
	sysReadChar         = 12
	sysTime             = 30
	sysSleep            = 32
	sysPrintIntHex      = 34
	sysPrintIntBin      = 35
	sysPrintIntUnsigned = 36
	sysExit2            = 93
)

// syscall implements the ecall synchronous host service personality.
// The syscall number comes from a7, arguments from a0..a3, the return
// value (if any) is placed back in a0 (and a1 for time).
func (c *CPU) syscall() error {
	a7 := c.Regs.Get(regA7)
	switch a7 {
	case sysPrintInt:
		return c.emit(strconv.FormatInt(int64(int32(c.Regs.Get(regA0))), 10))
	case sysPrintString:
		bytes, err := c.Bus.ReadCString(c.Regs.Get(regA0), 0)
		if err != nil {
			return err
		}
		return c.emit(string(bytes))
	case sysReadInt:
		line, err := c.readLine()
		if err != nil {
			return err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
		if err != nil {
			return rverr.Syscall("read_int: " + err.Error())
		}
		c.Regs.Set(regA0, uint32(int32(n)))
		return nil
	case sysReadString:
		return c.sysReadString()
	case sysExit:
		return rverr.Exit(0)
	case sysPrintChar:
		return c.emit(string(rune(byte(c.Regs.Get(regA0)))))
	case sysReadChar:
		line, err := c.readLine()
		if err != nil {
			return err
		}
		if len(line) == 0 {
			c.Regs.Set(regA0, 0)
		} else {
			c.Regs.Set(regA0, uint32(line[0]))
		}
		return nil
	case sysTime:
		ms := uint64(time.Now().UnixMilli())
		c.Regs.Set(regA0, uint32(ms))
		c.Regs.Set(regA0+1, uint32(ms>>32))
		return nil
	case sysSleep:
		time.Sleep(time.Duration(c.Regs.Get(regA0)) * time.Millisecond)
		return nil
	case sysPrintIntHex:
		return c.emit(fmt.Sprintf("0x%x", c.Regs.Get(regA0)))
	case sysPrintIntBin:
		return c.emit(fmt.Sprintf("0b%b", c.Regs.Get(regA0)))
	case sysPrintIntUnsigned:
		return c.emit(strconv.FormatUint(uint64(c.Regs.Get(regA0)), 10))
	case sysExit2:
		return rverr.Exit(int(int32(c.Regs.Get(regA0))))
	default:
		return rverr.Syscall(fmt.Sprintf("unsupported syscall number %d", a7))
	}
}

func (c *CPU) sysReadString() error {
	bufAddr := c.Regs.Get(regA0)
	maxLen := c.Regs.Get(regA0 + 1)
	line, err := c.readLine()
	if err != nil {
		return err
	}
	if maxLen == 0 {
		return nil
	}
	n := uint32(len(line))
	if n > maxLen-1 {
		n = maxLen - 1
	}
	for i := uint32(0); i < n; i++ {
		if err := c.Bus.Write(bufAddr+i, uint32(line[i]), 1); err != nil {
			return err
		}
	}
	return c.Bus.Write(bufAddr+n, 0, 1)
}

// readLine reads one line from Stdin, stripping the trailing newline.
func (c *CPU) readLine() (string, error) {
	line, err := c.Stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", rverr.Syscall("stdin read failed: " + err.Error())
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// emit writes s to Stdout and appends it to the Output accumulator,
// exactly as written with no extra newline, so tests can assert on
// accumulated program output without capturing a stream.
func (c *CPU) emit(s string) error {
	if _, err := c.Stdout.Write([]byte(s)); err != nil {
		return rverr.Syscall("stdout write failed: " + err.Error())
	}
	c.Output.WriteString(s)
	return nil
}
