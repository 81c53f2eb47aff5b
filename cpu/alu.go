package cpu

import (
	"github.com/ezrec/uavr/bank"
)

// Registers is the register file reached by the Alu.
type Registers bank.Registers

// Memory is the data space reached by the Alu.
type Memory bank.Memory

// Flow is the control flow outcome of an executed instruction. The program
// counter belongs to the fetch loop, which applies it.
type Flow struct {
	Skip     bool   // Skip the following instruction.
	Jump     bool   // Transfer control.
	Relative bool   // Offset is from the following instruction.
	Offset   int16  // Relative word offset.
	Address  uint16 // Absolute word address, when not relative.
}

// Alu executes decoded instructions against a register file and data space.
type Alu struct {
	Log Logger // Receives unhandled instruction diagnostics, if set.
}

// Execute applies a decoded instruction. Instructions that cannot be
// serviced change nothing and are reported to the Logger.
func (alu *Alu) Execute(inst Instruction, regs Registers, mem Memory) (flow Flow) {
	switch op := inst.(type) {
	case Nop:
		// pass
	case TwoRegOp:
		flow = alu.executeArithmetic(op.Op, int(op.Rd), int(op.Rr), regs)
	case RegConstOp:
		alu.executeArithWithConstant(op.Op, int(op.Rd), op.Constant, regs)
	case OneRegOp:
		if !op.Decoded {
			warn(alu.Log, "execute: unknown instruction: %v", inst)
			return
		}
		alu.executeOneRegArithmetic(op.Op, int(op.Rd), regs)
	case TransferIndirect:
		alu.transferIndirect(op.IsLoad, op.Base, int(op.Reg), op.Offset, regs, mem)
	case PushPop:
		alu.pushPop(op.IsPop, int(op.Reg), regs, mem)
	case InOut:
		alu.inOut(op.IsIn, int(op.Reg), op.Address, regs, mem)
	case CallJmp:
		flow = alu.callJmp(op.IsCall, op.Relative, op.Address, regs, mem)
	case Ret:
		flow = alu.ret(op.IsInterrupt, regs, mem)
	case Branch:
		flow = alu.branch(op.Op, op.TestSet, op.Offset, regs)
	default:
		warn(alu.Log, "execute: unknown instruction: %v", inst)
	}

	return
}

// executeArithmetic executes the two-register family.
func (alu *Alu) executeArithmetic(op uint16, rd, rr int, regs Registers) (flow Flow) {
	switch {
	case op == TWO_REG_CPC:
		alu.compare(rd, regs.Register(rr), true, regs)
	case op == TWO_REG_SBC:
		alu.subtract(rd, regs.Register(rr), true, regs)
	case op == TWO_REG_ADD:
		alu.add(rd, regs.Register(rr), false, regs)
	case op == TWO_REG_CPSE:
		flow.Skip = alu.compareSkip(rd, rr, regs)
	case op == TWO_REG_CP:
		alu.compare(rd, regs.Register(rr), false, regs)
	case op == TWO_REG_SUB:
		alu.subtract(rd, regs.Register(rr), false, regs)
	case op == TWO_REG_ADC:
		alu.add(rd, regs.Register(rr), true, regs)
	case op == TWO_REG_AND:
		alu.and(rd, regs.Register(rr), regs)
	case op == TWO_REG_EOR:
		alu.eor(rd, regs.Register(rr), regs)
	case op == TWO_REG_OR:
		alu.or(rd, regs.Register(rr), regs)
	case op >= TWO_REG_MOV && op <= TWO_REG_MOV_LAST:
		alu.mov(rd, rr, regs)
	default:
		warn(alu.Log, "execute arith: unknown two register opcode: %x", op)
	}

	return
}

// executeArithWithConstant executes the register-with-immediate family.
func (alu *Alu) executeArithWithConstant(op uint16, rd int, constant uint8, regs Registers) {
	switch op {
	case CONST_CPI:
		alu.compare(rd+16, constant, false, regs)
	case CONST_SBCI:
		alu.subtract(rd+16, constant, true, regs)
	case CONST_SUBI:
		alu.subtract(rd+16, constant, false, regs)
	case CONST_ORI:
		alu.or(rd+16, constant, regs)
	case CONST_ANDI:
		alu.and(rd+16, constant, regs)
	case CONST_LDI:
		// Technically a transfer instruction
		alu.loadImmediate(rd+16, constant, regs)
	case CONST_ADIW:
		alu.adiw(rd, constant, regs)
	case CONST_SBIW:
		alu.sbiw(rd, constant, regs)
	default:
		warn(alu.Log, "execute arith: unknown constant opcode: %x", op)
	}
}

// executeOneRegArithmetic executes the single-register family.
func (alu *Alu) executeOneRegArithmetic(op OneRegCode, rd int, regs Registers) {
	switch op {
	case ONE_REG_COM:
		alu.com(rd, regs)
	case ONE_REG_NEG:
		alu.neg(rd, regs)
	case ONE_REG_SWAP:
		alu.swap(rd, regs)
	case ONE_REG_INC:
		alu.inc(rd, regs)
	case ONE_REG_DEC:
		alu.dec(rd, regs)
	case ONE_REG_ASR:
		alu.asr(rd, regs)
	case ONE_REG_LSR:
		alu.lsr(rd, regs)
	case ONE_REG_ROR:
		alu.ror(rd, regs)
	default:
		warn(alu.Log, "execute arith: unknown single register opcode: %x", int(op))
	}
}
