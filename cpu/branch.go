package cpu

import (
	"github.com/ezrec/uavr/bank"
)

// branch tests a status flag against the wanted polarity.
func (alu *Alu) branch(op uint8, testSet bool, offset int8, regs Registers) (flow Flow) {
	if regs.Flag(bank.Flag(op&7)) != testSet {
		return
	}

	flow.Jump = true
	flow.Relative = true
	flow.Offset = int16(offset)

	return
}
