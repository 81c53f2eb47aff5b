// Package bank provides the register and data memory state of an emulated
// AVR-class CPU instance, and the contracts the execution core uses to
// reach them.
package bank

// Flag is a status register (SREG) bit.
type Flag int

//go:generate go tool stringer -linecomment -type=Flag
const (
	FLAG_C = Flag(0) // C
	FLAG_Z = Flag(1) // Z
	FLAG_N = Flag(2) // N
	FLAG_V = Flag(3) // V
	FLAG_S = Flag(4) // S
	FLAG_H = Flag(5) // H
	FLAG_T = Flag(6) // T
	FLAG_I = Flag(7) // I
)

// Mask returns the SREG bit mask of the flag.
func (fl Flag) Mask() uint8 {
	return 1 << uint(fl&7)
}

const (
	REGISTER_COUNT = 32    // General purpose registers.
	DATA_LIMIT     = 65536 // Largest addressable data space.
)

// Registers is the register file contract used by the execution core.
type Registers interface {
	// Register returns general purpose register n (0-31).
	Register(n int) uint8
	// SetRegister writes general purpose register n (0-31).
	SetRegister(n int, value uint8)
	// StackPointer returns the data-space address of the stack top.
	StackPointer() uint16
	// SetStackPointer moves the stack top.
	SetStackPointer(sp uint16)
	// ProgramCounter returns the word address of the executing instruction.
	ProgramCounter() uint16
	// Flag returns a status flag.
	Flag(fl Flag) bool
	// SetFlag updates a status flag.
	SetFlag(fl Flag, value bool)
	// Carry returns the carry flag as 0 or 1.
	Carry() uint8
}

// Memory is the data space contract used by the execution core.
type Memory interface {
	// DataByte reads a byte of the data space.
	DataByte(address uint16) uint8
	// SetDataByte writes a byte of the data space.
	SetDataByte(address uint16, value uint8)
	// DataSize is the capacity of the data space in bytes.
	DataSize() int
}
