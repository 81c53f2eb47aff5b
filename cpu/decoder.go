package cpu

const (
	MAIN_OPCODE_MASK = uint16(0xF000) // Primary opcode, top 4 bits.
)

// Decoder turns instruction words into Instructions.
type Decoder struct {
	Log Logger // Receives unknown opcode diagnostics, if set.
}

// Decode decodes a word without diagnostics.
func Decode(raw uint16) Instruction {
	return (&Decoder{}).Decode(raw)
}

// Decode decodes a single instruction word. Every word decodes to some
// Instruction; unrecognised words become Unsupported.
func (dec *Decoder) Decode(raw uint16) Instruction {
	// By far the most common word in an erased flash.
	if raw == 0 {
		return Nop{}
	}

	opcode := raw & MAIN_OPCODE_MASK
	switch opcode {
	case 0x0000, 0x1000, 0x2000:
		rd := uint8((raw & 0x01F0) >> 4)
		rr := uint8(raw & 0x000F)
		if raw&0x0200 != 0 {
			rr += 16
		}
		return TwoRegOp{Op: raw >> 10, Rd: rd, Rr: rr}
	case 0x3000, 0x4000, 0x5000, 0x6000, 0x7000, 0xE000:
		rd := uint8((raw & 0x00F0) >> 4)
		constant_upper := uint8((raw & 0x0F00) >> 4)
		constant_lower := uint8(raw & 0x000F)
		return RegConstOp{Op: raw >> 12, Rd: rd, Constant: constant_upper + constant_lower}
	case 0x8000, 0xA000:
		base := POINTER_Z
		if raw&0x0008 != 0 {
			base = POINTER_Y
		}
		offset_lo := raw & 0x0007
		offset_mid := (raw & 0x0C00) >> 7
		offset_hi := (raw & 0x2000) >> 8
		return TransferIndirect{
			IsLoad: raw&0x0200 == 0,
			Base:   base,
			Reg:    uint8((raw & 0x01F0) >> 4),
			Offset: uint8(offset_lo + offset_mid + offset_hi),
		}
	case 0x9000:
		return dec.decodeSingle(raw)
	case 0xB000:
		address_lo := uint8(raw & 0x000F)
		address_hi := uint8((raw & 0x0600) >> 5)
		return InOut{
			IsIn:    raw&0x0800 == 0,
			Reg:     uint8((raw & 0x01F0) >> 4),
			Address: address_hi + address_lo,
		}
	case 0xC000, 0xD000:
		return CallJmp{IsCall: opcode == 0xD000, Relative: true, Address: raw & 0x0FFF}
	case 0xF000:
		if raw&0x0800 == 0 {
			return Branch{
				Op:      uint8(raw & 0x0007),
				TestSet: raw&0x0400 == 0,
				Offset:  int8(uint8((raw>>3)&0x7F)<<1) >> 1,
			}
		}
	}

	warn(dec.Log, "decode: unknown opcode %x in %x", opcode, raw)
	return Unsupported{Word: raw}
}

// decodeSingle decodes the 0x9000 family: stack, single-register,
// return and word-immediate operations.
func (dec *Decoder) decodeSingle(raw uint16) Instruction {
	rd := uint8((raw & 0x01F0) >> 4)

	switch raw & 0x0E00 {
	case 0x0000, 0x0200:
		if raw&0x000F == 0x000F {
			return PushPop{IsPop: raw&0x0200 == 0, Reg: rd}
		}
	case 0x0400:
		switch raw {
		case 0x9508:
			return Ret{}
		case 0x9518:
			return Ret{IsInterrupt: true}
		}
		op := OneRegCode(raw & 0x000F)
		switch op {
		case ONE_REG_COM, ONE_REG_NEG, ONE_REG_SWAP, ONE_REG_INC,
			ONE_REG_ASR, ONE_REG_LSR, ONE_REG_ROR, ONE_REG_DEC:
			return OneRegOp{Decoded: true, Op: op, Rd: rd}
		}
	case 0x0600:
		constant_upper := uint8((raw & 0x00C0) >> 2)
		constant_lower := uint8(raw & 0x000F)
		return RegConstOp{
			Op:       raw >> 8,
			Rd:       24 + 2*uint8((raw>>4)&0x3),
			Constant: constant_upper + constant_lower,
		}
	}

	return OneRegOp{}
}
