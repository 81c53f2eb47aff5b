package cpu

import (
	"github.com/ezrec/uavr/bank"
)

// setResultFlags sets N and Z from an 8-bit result, V as given, and S = N^V.
func setResultFlags(regs Registers, res uint8, v bool) {
	n := res&0x80 != 0
	regs.SetFlag(bank.FLAG_N, n)
	regs.SetFlag(bank.FLAG_Z, res == 0)
	regs.SetFlag(bank.FLAG_V, v)
	regs.SetFlag(bank.FLAG_S, n != v)
}

// setWordFlags is setResultFlags for a 16-bit result.
func setWordFlags(regs Registers, res uint16, v bool) {
	n := res&0x8000 != 0
	regs.SetFlag(bank.FLAG_N, n)
	regs.SetFlag(bank.FLAG_Z, res == 0)
	regs.SetFlag(bank.FLAG_V, v)
	regs.SetFlag(bank.FLAG_S, n != v)
}

// addFlags computes d + r + carry and updates H, V, C, N, Z and S.
func (alu *Alu) addFlags(d, r uint8, withCarry bool, regs Registers) (res uint8) {
	var carry uint8
	if withCarry {
		carry = regs.Carry()
	}

	sum := uint16(d) + uint16(r) + uint16(carry)
	res = uint8(sum)

	regs.SetFlag(bank.FLAG_H, (d&0x0F)+(r&0x0F)+carry > 0x0F)
	regs.SetFlag(bank.FLAG_C, sum > 0xFF)
	setResultFlags(regs, res, (^(d^r)&(d^res)&0x80) != 0)

	return
}

// subFlags computes d - r - carry and updates H, V, C, N, Z and S.
// With carry, Z is only kept set by a zero result, so multi-byte
// comparisons chain.
func (alu *Alu) subFlags(d, r uint8, withCarry bool, regs Registers) (res uint8) {
	var carry uint8
	zero := true
	if withCarry {
		carry = regs.Carry()
		zero = regs.Flag(bank.FLAG_Z)
	}

	diff := int(d) - int(r) - int(carry)
	res = uint8(diff)

	regs.SetFlag(bank.FLAG_H, int(d&0x0F)-int(r&0x0F)-int(carry) < 0)
	regs.SetFlag(bank.FLAG_C, diff < 0)
	setResultFlags(regs, res, ((d^r)&(d^res)&0x80) != 0)
	regs.SetFlag(bank.FLAG_Z, zero && res == 0)

	return
}

// logicFlags updates N, Z and S after a logical operation, clearing V.
func (alu *Alu) logicFlags(res uint8, regs Registers) {
	setResultFlags(regs, res, false)
}

func (alu *Alu) add(rd int, r uint8, withCarry bool, regs Registers) {
	res := alu.addFlags(regs.Register(rd), r, withCarry, regs)
	regs.SetRegister(rd, res)
}

func (alu *Alu) subtract(rd int, r uint8, withCarry bool, regs Registers) {
	res := alu.subFlags(regs.Register(rd), r, withCarry, regs)
	regs.SetRegister(rd, res)
}

func (alu *Alu) compare(rd int, r uint8, withCarry bool, regs Registers) {
	alu.subFlags(regs.Register(rd), r, withCarry, regs)
}

// compareSkip reports if the next instruction is to be skipped.
func (alu *Alu) compareSkip(rd, rr int, regs Registers) bool {
	return regs.Register(rd) == regs.Register(rr)
}

func (alu *Alu) and(rd int, r uint8, regs Registers) {
	res := regs.Register(rd) & r
	alu.logicFlags(res, regs)
	regs.SetRegister(rd, res)
}

func (alu *Alu) eor(rd int, r uint8, regs Registers) {
	res := regs.Register(rd) ^ r
	alu.logicFlags(res, regs)
	regs.SetRegister(rd, res)
}

func (alu *Alu) or(rd int, r uint8, regs Registers) {
	res := regs.Register(rd) | r
	alu.logicFlags(res, regs)
	regs.SetRegister(rd, res)
}

func (alu *Alu) mov(rd, rr int, regs Registers) {
	regs.SetRegister(rd, regs.Register(rr))
}

// word reads the register pair at rd, low byte first.
func word(rd int, regs Registers) uint16 {
	return uint16(regs.Register(rd+1))<<8 | uint16(regs.Register(rd))
}

// setWord writes the register pair at rd, low byte first.
func setWord(rd int, value uint16, regs Registers) {
	regs.SetRegister(rd, uint8(value))
	regs.SetRegister(rd+1, uint8(value>>8))
}

func (alu *Alu) adiw(rd int, constant uint8, regs Registers) {
	w := word(rd, regs)
	res := w + uint16(constant)

	regs.SetFlag(bank.FLAG_C, res < w)
	setWordFlags(regs, res, w&0x8000 == 0 && res&0x8000 != 0)
	setWord(rd, res, regs)
}

func (alu *Alu) sbiw(rd int, constant uint8, regs Registers) {
	w := word(rd, regs)
	res := w - uint16(constant)

	regs.SetFlag(bank.FLAG_C, uint16(constant) > w)
	setWordFlags(regs, res, w&0x8000 != 0 && res&0x8000 == 0)
	setWord(rd, res, regs)
}

func (alu *Alu) com(rd int, regs Registers) {
	res := ^regs.Register(rd)
	regs.SetFlag(bank.FLAG_C, true)
	setResultFlags(regs, res, false)
	regs.SetRegister(rd, res)
}

func (alu *Alu) neg(rd int, regs Registers) {
	d := regs.Register(rd)
	res := -d
	regs.SetFlag(bank.FLAG_H, (res|d)&0x08 != 0)
	regs.SetFlag(bank.FLAG_C, res != 0)
	setResultFlags(regs, res, res == 0x80)
	regs.SetRegister(rd, res)
}

// swap exchanges the nibbles; no flags change.
func (alu *Alu) swap(rd int, regs Registers) {
	d := regs.Register(rd)
	regs.SetRegister(rd, d<<4|d>>4)
}

func (alu *Alu) inc(rd int, regs Registers) {
	res := regs.Register(rd) + 1
	setResultFlags(regs, res, res == 0x80)
	regs.SetRegister(rd, res)
}

func (alu *Alu) dec(rd int, regs Registers) {
	res := regs.Register(rd) - 1
	setResultFlags(regs, res, res == 0x7F)
	regs.SetRegister(rd, res)
}

// shiftFlags updates C from the bit shifted out, and V = N^C.
func (alu *Alu) shiftFlags(res uint8, carry bool, regs Registers) {
	regs.SetFlag(bank.FLAG_C, carry)
	setResultFlags(regs, res, (res&0x80 != 0) != carry)
}

func (alu *Alu) asr(rd int, regs Registers) {
	d := regs.Register(rd)
	res := d>>1 | d&0x80
	alu.shiftFlags(res, d&1 != 0, regs)
	regs.SetRegister(rd, res)
}

func (alu *Alu) lsr(rd int, regs Registers) {
	d := regs.Register(rd)
	res := d >> 1
	alu.shiftFlags(res, d&1 != 0, regs)
	regs.SetRegister(rd, res)
}

func (alu *Alu) ror(rd int, regs Registers) {
	d := regs.Register(rd)
	res := regs.Carry()<<7 | d>>1
	alu.shiftFlags(res, d&1 != 0, regs)
	regs.SetRegister(rd, res)
}
