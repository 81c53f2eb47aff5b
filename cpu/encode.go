package cpu

// MakeCodeTwoReg encodes a two-register operation.
func MakeCodeTwoReg(op uint16, rd, rr int) uint16 {
	return op<<10 | uint16(rr&0x10)<<5 | uint16(rd&0x1f)<<4 | uint16(rr&0xf)
}

// MakeCodeConst encodes a register-with-immediate operation on r16-r31.
func MakeCodeConst(op uint16, rd int, constant uint8) uint16 {
	k := uint16(constant)
	return op<<12 | (k&0xf0)<<4 | uint16((rd-16)&0xf)<<4 | k&0xf
}

// MakeCodeWordConst encodes adiw/sbiw on one of r24, r26, r28 or r30.
func MakeCodeWordConst(op uint16, rd int, constant uint8) uint16 {
	k := uint16(constant)
	return op<<8 | (k&0x30)<<2 | uint16(((rd-24)/2)&0x3)<<4 | k&0xf
}

// MakeCodeOneReg encodes a single-register operation.
func MakeCodeOneReg(op OneRegCode, rd int) uint16 {
	return 0x9400 | uint16(rd&0x1f)<<4 | uint16(op)&0xf
}

// MakeCodePushPop encodes push or pop.
func MakeCodePushPop(isPop bool, reg int) uint16 {
	code := uint16(0x920f)
	if isPop {
		code = 0x900f
	}
	return code | uint16(reg&0x1f)<<4
}

// MakeCodeInOut encodes in or out.
func MakeCodeInOut(isIn bool, reg int, address uint8) uint16 {
	code := uint16(0xb800)
	if isIn {
		code = 0xb000
	}
	a := uint16(address)
	return code | (a&0x30)<<5 | uint16(reg&0x1f)<<4 | a&0xf
}

// MakeCodeTransferIndirect encodes ldd or std through Y or Z.
func MakeCodeTransferIndirect(isLoad bool, base PointerRegister, reg int, offset uint8) uint16 {
	code := uint16(0x8200)
	if isLoad {
		code = 0x8000
	}
	if base == POINTER_Y {
		code |= 0x0008
	}
	q := uint16(offset)
	return code | (q&0x20)<<8 | (q&0x18)<<7 | uint16(reg&0x1f)<<4 | q&0x7
}

// MakeCodeCallJmp encodes rcall or rjmp with a signed word offset.
func MakeCodeCallJmp(isCall bool, offset int) uint16 {
	code := uint16(0xc000)
	if isCall {
		code = 0xd000
	}
	return code | uint16(offset)&0x0fff
}

// MakeCodeRet encodes ret or reti.
func MakeCodeRet(isInterrupt bool) uint16 {
	if isInterrupt {
		return 0x9518
	}
	return 0x9508
}

// MakeCodeBranch encodes brbs or brbc with a signed word offset.
func MakeCodeBranch(flag uint8, testSet bool, offset int) uint16 {
	code := uint16(0xf400)
	if testSet {
		code = 0xf000
	}
	return code | (uint16(offset)&0x7f)<<3 | uint16(flag&0x7)
}
