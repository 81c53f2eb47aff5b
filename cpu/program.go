package cpu

import (
	"encoding/binary"
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated instruction words.
type Opcode struct {
	LineNo    int
	Ip        int
	Words     []string
	Codes     []uint16
	LinkLabel string
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= uint16(op.Ip) && ip < uint16(op.Ip)+uint16(len(op.Codes)) {
			index := int(ip - uint16(op.Ip))
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  index,
			}
			break
		}
	}

	return
}

// Size is the number of words in the program.
func (prog *Program) Size() (size int) {
	for ip := range prog.Codes() {
		size = int(ip) + 1
	}

	return
}

// Binary returns the little-endian flash image.
func (prog *Program) Binary() (bin []byte) {
	bin = make([]byte, 2*prog.Size())
	for ip, code := range prog.Codes() {
		binary.LittleEndian.PutUint16(bin[2*int(ip):], code)
	}

	return
}

func (prog *Program) Codes() iter.Seq2[uint16, uint16] {
	return func(yield func(ip uint16, code uint16) bool) {
		for _, op := range prog.Opcodes {
			ip := uint16(op.Ip)
			for n, code := range op.Codes {
				if !yield(ip+uint16(n), code) {
					return
				}
			}
		}
	}
}
