package cpu

import (
	"github.com/ezrec/uavr/bank"
)

// relativeOffset sign extends a 12-bit word offset.
func relativeOffset(address uint16) int16 {
	return int16(address<<4) >> 4
}

// callJmp transfers control, pushing the return address for a call.
func (alu *Alu) callJmp(isCall bool, relative bool, address uint16, regs Registers, mem Memory) (flow Flow) {
	if isCall {
		ret := regs.ProgramCounter() + 1
		if !relative {
			// Absolute calls occupy two words.
			ret++
		}
		alu.push(uint8(ret), regs, mem)
		alu.push(uint8(ret>>8), regs, mem)
	}

	flow.Jump = true
	flow.Relative = relative
	if relative {
		flow.Offset = relativeOffset(address)
	} else {
		flow.Address = address
	}

	return
}

// ret returns to the address on the stack; an interrupt return also
// enables interrupts.
func (alu *Alu) ret(isInterrupt bool, regs Registers, mem Memory) (flow Flow) {
	hi := alu.pop(regs, mem)
	lo := alu.pop(regs, mem)

	if isInterrupt {
		regs.SetFlag(bank.FLAG_I, true)
	}

	flow.Jump = true
	flow.Address = uint16(hi)<<8 | uint16(lo)

	return
}
