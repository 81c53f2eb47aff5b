package cpu

const (
	IO_OFFSET = 0x20 // Data space address of I/O space address 0.
)

func (alu *Alu) loadImmediate(rd int, constant uint8, regs Registers) {
	regs.SetRegister(rd, constant)
}

func (alu *Alu) inOut(isIn bool, reg int, address uint8, regs Registers, mem Memory) {
	real_address := uint16(address) + IO_OFFSET
	if isIn {
		regs.SetRegister(reg, mem.DataByte(real_address))
	} else {
		mem.SetDataByte(real_address, regs.Register(reg))
	}
}

// push stores a byte on the descending stack. An unset (zero) stack pointer
// wraps to the top of the data space first.
func (alu *Alu) push(value uint8, regs Registers, mem Memory) {
	sp := regs.StackPointer()
	if sp == 0 {
		sp = uint16(mem.DataSize())
	}
	sp--
	regs.SetStackPointer(sp)
	mem.SetDataByte(sp, value)
}

// pop removes the byte at the stack top. Popping the last byte below the
// top of the data space returns the stack pointer to zero.
func (alu *Alu) pop(regs Registers, mem Memory) (value uint8) {
	sp := regs.StackPointer()
	value = mem.DataByte(sp)
	sp++
	if int(sp) == mem.DataSize() {
		sp = 0
	}
	regs.SetStackPointer(sp)

	return
}

func (alu *Alu) pushPop(isPop bool, reg int, regs Registers, mem Memory) {
	if isPop {
		regs.SetRegister(reg, alu.pop(regs, mem))
	} else {
		alu.push(regs.Register(reg), regs, mem)
	}
}

func (alu *Alu) transferIndirect(isLoad bool, base PointerRegister, reg int, offset uint8, regs Registers, mem Memory) {
	address := word(base.Low(), regs) + uint16(offset)
	if isLoad {
		regs.SetRegister(reg, mem.DataByte(address))
	} else {
		mem.SetDataByte(address, regs.Register(reg))
	}
}
