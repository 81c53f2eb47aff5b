package cpu

import (
	"fmt"
)

// Instruction is a decoded instruction word. The concrete types below are
// the only implementations.
type Instruction interface {
	fmt.Stringer
	instruction()
}

// PointerRegister is a register pair used for 16-bit addressing.
type PointerRegister int

//go:generate go tool stringer -linecomment -type=PointerRegister
const (
	POINTER_X = PointerRegister(0) // X
	POINTER_Y = PointerRegister(1) // Y
	POINTER_Z = PointerRegister(2) // Z
)

// Low returns the index of the low byte register of the pair.
func (pr PointerRegister) Low() int {
	switch pr {
	case POINTER_X:
		return 26
	case POINTER_Y:
		return 28
	default:
		return 30
	}
}

// TwoRegOp subcodes, the instruction word shifted right by 10.
const (
	TWO_REG_CPC      = uint16(0x1) // Compare with carry.
	TWO_REG_SBC      = uint16(0x2) // Subtract with carry.
	TWO_REG_ADD      = uint16(0x3) // Add without carry.
	TWO_REG_CPSE     = uint16(0x4) // Compare, skip if equal.
	TWO_REG_CP       = uint16(0x5) // Compare.
	TWO_REG_SUB      = uint16(0x6) // Subtract without carry.
	TWO_REG_ADC      = uint16(0x7) // Add with carry.
	TWO_REG_AND      = uint16(0x8) // Logical AND.
	TWO_REG_EOR      = uint16(0x9) // Exclusive OR.
	TWO_REG_OR       = uint16(0xA) // Logical OR.
	TWO_REG_MOV      = uint16(0xB) // Copy register; 0xB through TWO_REG_MOV_LAST.
	TWO_REG_MOV_LAST = uint16(0xF)
)

// RegConstOp subcodes. The immediate family is the instruction word
// shifted right by 12; the word-wide pointer forms are shifted by 8.
const (
	CONST_CPI  = uint16(0x3)  // Compare with immediate.
	CONST_SBCI = uint16(0x4)  // Subtract immediate with carry.
	CONST_SUBI = uint16(0x5)  // Subtract immediate.
	CONST_ORI  = uint16(0x6)  // Logical OR with immediate.
	CONST_ANDI = uint16(0x7)  // Logical AND with immediate.
	CONST_LDI  = uint16(0xE)  // Load immediate.
	CONST_ADIW = uint16(0x96) // Add immediate to word.
	CONST_SBIW = uint16(0x97) // Subtract immediate from word.
)

// OneRegCode is a single-register operation, the low nibble of the word.
type OneRegCode int

//go:generate go tool stringer -linecomment -type=OneRegCode
const (
	ONE_REG_COM  = OneRegCode(0x0) // com
	ONE_REG_NEG  = OneRegCode(0x1) // neg
	ONE_REG_SWAP = OneRegCode(0x2) // swap
	ONE_REG_INC  = OneRegCode(0x3) // inc
	ONE_REG_ASR  = OneRegCode(0x5) // asr
	ONE_REG_LSR  = OneRegCode(0x6) // lsr
	ONE_REG_ROR  = OneRegCode(0x7) // ror
	ONE_REG_DEC  = OneRegCode(0xA) // dec
)

// Nop has no effect.
type Nop struct{}

// TwoRegOp is the two-register ALU family.
type TwoRegOp struct {
	Op uint16 // Raw subcode.
	Rd uint8
	Rr uint8
}

// RegConstOp is the register-with-immediate family.
type RegConstOp struct {
	Op       uint16 // Raw subcode.
	Rd       uint8  // r16-r31 offset for the immediate family, absolute for adiw/sbiw.
	Constant uint8
}

// OneRegOp is the single-register ALU family. The zero value is the
// marker for a word that was recognised but not decoded.
type OneRegOp struct {
	Decoded bool
	Op      OneRegCode
	Rd      uint8
}

// TransferIndirect is a displaced load or store through a pointer register.
type TransferIndirect struct {
	IsLoad bool
	Base   PointerRegister
	Reg    uint8
	Offset uint8
}

// PushPop is a stack transfer.
type PushPop struct {
	IsPop bool
	Reg   uint8
}

// InOut is an I/O space transfer.
type InOut struct {
	IsIn    bool
	Reg     uint8
	Address uint8 // I/O space address.
}

// CallJmp is a control transfer.
type CallJmp struct {
	IsCall   bool
	Relative bool
	Address  uint16 // Word offset when relative, word address otherwise.
}

// Ret is a return from subroutine or interrupt.
type Ret struct {
	IsInterrupt bool
}

// Branch is a conditional relative branch on a status flag.
type Branch struct {
	Op      uint8 // Status register bit.
	TestSet bool  // Branch if set, otherwise branch if clear.
	Offset  int8  // Word offset from the following instruction.
}

// Unsupported is a word the decoder does not recognise.
type Unsupported struct {
	Word uint16
}

func (Nop) instruction()              {}
func (TwoRegOp) instruction()         {}
func (RegConstOp) instruction()       {}
func (OneRegOp) instruction()         {}
func (TransferIndirect) instruction() {}
func (PushPop) instruction()          {}
func (InOut) instruction()            {}
func (CallJmp) instruction()          {}
func (Ret) instruction()              {}
func (Branch) instruction()           {}
func (Unsupported) instruction()      {}

func (Nop) String() string {
	return "nop"
}

func (op TwoRegOp) String() string {
	return fmt.Sprintf("Two register operation -> op: %d rd: %d, rr:%d", op.Op, op.Rd, op.Rr)
}

func (op RegConstOp) String() string {
	return fmt.Sprintf("Operation against constant -> op: %d rd: %d, constant:%d", op.Op, op.Rd, op.Constant)
}

func (op OneRegOp) String() string {
	if !op.Decoded {
		return "Parsed but unsupported instruction"
	}
	return fmt.Sprintf("%v r%d", op.Op, op.Rd)
}

func (op TransferIndirect) String() string {
	mnemonic := "std"
	if op.IsLoad {
		mnemonic = "ldd"
	}
	return fmt.Sprintf("%s %v+%d, r%d", mnemonic, op.Base, op.Offset, op.Reg)
}

func (op PushPop) String() string {
	mnemonic := "push"
	if op.IsPop {
		mnemonic = "pop"
	}
	return fmt.Sprintf("%s r%d", mnemonic, op.Reg)
}

func (op InOut) String() string {
	mnemonic := "out"
	if op.IsIn {
		mnemonic = "in"
	}
	return fmt.Sprintf("%s r%d $%x", mnemonic, op.Reg, op.Address)
}

func (op CallJmp) String() string {
	var prefix string
	if op.Relative {
		prefix = "r"
	}
	mnemonic := "jmp"
	if op.IsCall {
		mnemonic = "call"
	}
	return fmt.Sprintf("%s%s, $%d", prefix, mnemonic, op.Address)
}

func (op Ret) String() string {
	if op.IsInterrupt {
		return "reti"
	}
	return "ret"
}

func (op Branch) String() string {
	mnemonic := "brbc"
	if op.TestSet {
		mnemonic = "brbs"
	}
	return fmt.Sprintf("%s %d, %d", mnemonic, op.Op, op.Offset)
}

func (op Unsupported) String() string {
	return fmt.Sprintf("Unsupported instruction: %x", op.Word)
}
