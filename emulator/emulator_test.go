package emulator

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/uavr/bank"
	"github.com/ezrec/uavr/cpu"
)

type testLog struct {
	lines []string
}

func (tl *testLog) Printf(format string, v ...any) {
	tl.lines = append(tl.lines, fmt.Sprintf(format, v...))
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.Equal(DATA_SIZE, emu.Memory.DataSize())
	assert.Equal(FLASH_SIZE, len(emu.Flash))
	assert.Equal(0, emu.Pc())
	assert.Equal(cpu.Nop{}, emu.Instruction())
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defines := maps.Collect(emu.Defines())

	assert.Equal("0x7ff", defines["RAMEND"])
	assert.Equal("0x3fff", defines["FLASHEND"])
	assert.Equal("0x3d", defines["SPL"])
	assert.Equal("0x3e", defines["SPH"])
	assert.Equal("0x3f", defines["SREG"])

	var names []string
	for name := range emu.Defines() {
		names = append(names, name)
	}
	assert.Equal([]string{"FLASHEND", "RAMEND", "SPH", "SPL", "SREG"}, names)
}

func doAssemble(emu *Emulator, program []string, t *testing.T) {
	asm := &cpu.Assembler{}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	emu.Program = prog

	err = emu.Reset()
	if err != nil {
		t.Fatal(err)
	}
}

var forLoop = []string{
	"; a = 42; for i in 0..99: a += i",
	".equ A_ADDR 0x100",
	"	ldi r28, $(A_ADDR & 0xff)",
	"	ldi r29, $(A_ADDR >> 8)",
	"	ldi r24, 42",
	"	clr r25",
	"loop:",
	"	add r24, r25",
	"	inc r25",
	"	cpi r25, 100",
	"	brlo loop",
	"	rcall store",
	"halt:	rjmp halt",
	"store:",
	"	std Y+0, r24",
	"	ret",
}

func TestEmulatorForLoop(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, forLoop, t)

	done, err := emu.Run(0)
	assert.NoError(err)
	assert.True(done)

	assert.Equal(408, emu.Ticks)
	assert.Equal(uint8(0x80), emu.Memory.DataByte(0x100))
	assert.Equal(uint8(0x80), emu.Registers.Register(24))
	assert.Equal(uint8(100), emu.Registers.Register(25))
	assert.Equal(uint16(0), emu.Registers.StackPointer())
	assert.True(emu.Registers.Flag(bank.FLAG_Z))
	assert.False(emu.Registers.Flag(bank.FLAG_C))
	assert.Equal(13, emu.LineNo())

	// Stays halted.
	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulatorStep(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, forLoop, t)

	for _, op := range emu.Program.Opcodes[:4] {
		assert.Equal(op.LineNo, emu.LineNo())
		assert.Equal(op.Ip, emu.Pc())
		assert.Equal(op.Codes[0], emu.Code())
		assert.Equal(cpu.Decode(op.Codes[0]), emu.Instruction())
		done, err := emu.Tick()
		assert.NoError(err)
		assert.False(done)
	}

	assert.Equal(uint8(0x00), emu.Registers.Register(28))
	assert.Equal(uint8(0x01), emu.Registers.Register(29))
	assert.Equal(uint8(42), emu.Registers.Register(24))

	done, err := emu.Run(10)
	assert.NoError(err)
	assert.False(done)
	assert.Equal(14, emu.Ticks)
}

func TestEmulatorIo(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, []string{
		"	ldi r16, $(RAMEND & 0xff)",
		"	out SPL, r16",
		"	ldi r16, $(RAMEND >> 8)",
		"	out SPH, r16",
		"	ldi r16, 0x81",
		"	out SREG, r16",
		"	in r17, SPL",
		"	in r18, SREG",
		"	ldi r16, 0x33",
		"	mov r3, r16",
		"	ldi r30, 3",
		"	ldi r31, 0",
		"	ld r19, Z",
		"	rjmp -1",
	}, t)

	done, err := emu.Run(0)
	assert.NoError(err)
	assert.True(done)

	assert.Equal(uint16(0x7ff), emu.Registers.StackPointer())
	assert.Equal(uint8(0x81), emu.Registers.Flags())
	assert.Equal(uint8(0xff), emu.Registers.Register(17))
	assert.Equal(uint8(0x81), emu.Registers.Register(18))
	// r3 is mapped at data address 3.
	assert.Equal(uint8(0x33), emu.Registers.Register(19))
	assert.Equal(uint8(0), emu.Memory.DataByte(3))
}

func TestEmulatorSkip(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, []string{
		"	ldi r16, 5",
		"	ldi r17, 5",
		"	cpse r16, r17",
		"	ldi r18, 1",
		"	ldi r19, 2",
		"	cpse r16, r19",
		"	ldi r20, 3",
	}, t)

	done, err := emu.Run(0)
	assert.NoError(err)
	assert.True(done)

	assert.Equal(uint8(0), emu.Registers.Register(18))
	assert.Equal(uint8(2), emu.Registers.Register(19))
	assert.Equal(uint8(3), emu.Registers.Register(20))
	assert.Equal(6, emu.Ticks)
}

func TestEmulatorPcRange(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, []string{
		"	nop",
		"	rjmp -3",
	}, t)

	done, err := emu.Run(0)
	assert.False(done)
	assert.True(errors.Is(err, ErrPcRange(0)))

	var re *ErrRuntime
	if assert.True(errors.As(err, &re)) {
		assert.Equal(2, re.LineNo)
	}
}

func TestEmulatorLoad(t *testing.T) {
	assert := assert.New(t)

	tl := &testLog{}
	emu := NewEmulator()
	emu.Log = tl

	err := emu.Load(bytes.NewReader([]byte{0x00, 0xe1, 0xff, 0xff, 0xff, 0xcf}))
	assert.NoError(err)
	assert.Equal(3, emu.Program.Size())
	assert.Equal(uint16(0xe100), emu.Flash[0])
	assert.Equal(0, emu.LineNo())

	done, err := emu.Run(0)
	assert.NoError(err)
	assert.True(done)
	assert.Equal(uint8(0x10), emu.Registers.Register(16))
	assert.Equal([]string{
		"decode: unknown opcode f000 in ffff",
		"execute: unknown instruction: Unsupported instruction: ffff",
	}, tl.lines)

	err = emu.Load(bytes.NewReader([]byte{0x00}))
	assert.ErrorIs(err, ErrImageOdd)

	err = emu.Load(bytes.NewReader(make([]byte, 2*FLASH_SIZE+2)))
	assert.ErrorIs(err, ErrImageSize)
}
