package bank

import (
	"fmt"
	"strings"
)

// RegisterBank is the register file of one CPU instance.
type RegisterBank struct {
	Gpr [REGISTER_COUNT]uint8 // General purpose registers r0-r31.

	Sp   uint16 // Stack pointer.
	Pc   uint16 // Program counter, in words.
	Sreg uint8  // Status register.
}

var _ Registers = (*RegisterBank)(nil)

// Reset clears all registers and flags.
func (rb *RegisterBank) Reset() {
	clear(rb.Gpr[:])
	rb.Sp = 0
	rb.Pc = 0
	rb.Sreg = 0
}

func (rb *RegisterBank) Register(n int) uint8 {
	return rb.Gpr[n&(REGISTER_COUNT-1)]
}

func (rb *RegisterBank) SetRegister(n int, value uint8) {
	rb.Gpr[n&(REGISTER_COUNT-1)] = value
}

func (rb *RegisterBank) StackPointer() uint16 {
	return rb.Sp
}

func (rb *RegisterBank) SetStackPointer(sp uint16) {
	rb.Sp = sp
}

func (rb *RegisterBank) ProgramCounter() uint16 {
	return rb.Pc
}

func (rb *RegisterBank) Flag(fl Flag) bool {
	return rb.Sreg&fl.Mask() != 0
}

func (rb *RegisterBank) SetFlag(fl Flag, value bool) {
	if value {
		rb.Sreg |= fl.Mask()
	} else {
		rb.Sreg &^= fl.Mask()
	}
}

func (rb *RegisterBank) Carry() uint8 {
	return rb.Sreg & FLAG_C.Mask()
}

// Flags returns the whole status register.
func (rb *RegisterBank) Flags() uint8 {
	return rb.Sreg
}

// SetFlags replaces the whole status register.
func (rb *RegisterBank) SetFlags(sreg uint8) {
	rb.Sreg = sreg
}

// FlagString renders the status register as "ITHSVNZC", with clear
// flags shown as '-'.
func (rb *RegisterBank) FlagString() string {
	var sb strings.Builder
	for fl := FLAG_I; fl >= FLAG_C; fl-- {
		if rb.Flag(fl) {
			sb.WriteString(fl.String())
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// String returns the register file as a multi-line dump.
func (rb *RegisterBank) String() (text string) {
	for row := 0; row < REGISTER_COUNT; row += 8 {
		line := make([]string, 8)
		for n := range 8 {
			line[n] = fmt.Sprintf("r%-2d %02x", row+n, rb.Gpr[row+n])
		}
		text += strings.Join(line, "  ") + "\n"
	}
	text += fmt.Sprintf("pc %04x  sp %04x  sreg %s\n", rb.Pc, rb.Sp, rb.FlagString())

	return
}
