// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"log"

	"github.com/ezrec/uavr/bank"
	"github.com/ezrec/uavr/cpu"
	"github.com/ezrec/uavr/internal"
)

const (
	DATA_SIZE  = 2048  // Bytes of data space; registers, I/O and SRAM.
	FLASH_SIZE = 16384 // Words of program memory.

	SPL_ADDRESS  = cpu.IO_OFFSET + 0x3d // Data space address of SPL.
	SPH_ADDRESS  = cpu.IO_OFFSET + 0x3e // Data space address of SPH.
	SREG_ADDRESS = cpu.IO_OFFSET + 0x3f // Data space address of SREG.
)

var _emulator_defines = map[string]string{
	"RAMEND":   fmt.Sprintf("%#x", DATA_SIZE-1),
	"FLASHEND": fmt.Sprintf("%#x", FLASH_SIZE-1),
}

var _io_defines = map[string]string{
	"SPL":  fmt.Sprintf("%#x", SPL_ADDRESS-cpu.IO_OFFSET),
	"SPH":  fmt.Sprintf("%#x", SPH_ADDRESS-cpu.IO_OFFSET),
	"SREG": fmt.Sprintf("%#x", SREG_ADDRESS-cpu.IO_OFFSET),
}

// dataSpace overlays the memory mapped register file, stack pointer and
// status register on the data memory.
type dataSpace struct {
	regs *bank.RegisterBank
	mem  *bank.MemoryBank
}

func (ds *dataSpace) DataByte(address uint16) uint8 {
	switch {
	case address < bank.REGISTER_COUNT:
		return ds.regs.Register(int(address))
	case address == SPL_ADDRESS:
		return uint8(ds.regs.Sp)
	case address == SPH_ADDRESS:
		return uint8(ds.regs.Sp >> 8)
	case address == SREG_ADDRESS:
		return ds.regs.Sreg
	}

	return ds.mem.DataByte(address)
}

func (ds *dataSpace) SetDataByte(address uint16, value uint8) {
	switch {
	case address < bank.REGISTER_COUNT:
		ds.regs.SetRegister(int(address), value)
	case address == SPL_ADDRESS:
		ds.regs.Sp = ds.regs.Sp&0xff00 | uint16(value)
	case address == SPH_ADDRESS:
		ds.regs.Sp = ds.regs.Sp&0x00ff | uint16(value)<<8
	case address == SREG_ADDRESS:
		ds.regs.Sreg = value
	default:
		ds.mem.SetDataByte(address, value)
	}
}

func (ds *dataSpace) DataSize() int {
	return ds.mem.DataSize()
}

// Emulator state. Register file, data memory and program flash.
type Emulator struct {
	Verbose bool       // If set, enables verbose logging.
	Log     cpu.Logger // Receives decode and execute diagnostics, if set.

	Registers bank.RegisterBank // Register file, stack pointer, program counter and SREG.
	Memory    *bank.MemoryBank  // Data memory.
	Flash     []uint16          // Program memory.
	Program   *cpu.Program      // Reference to the currently running program listing.
	Ticks     int               // Instructions executed since a reset.

	decoder cpu.Decoder
	alu     cpu.Alu
	data    dataSpace
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Memory:  bank.NewMemoryBank(DATA_SIZE),
		Flash:   make([]uint16, FLASH_SIZE),
		Program: &cpu.Program{},
	}

	emu.data = dataSpace{regs: &emu.Registers, mem: emu.Memory}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.SortedConcat(_emulator_defines, _io_defines)
}

// Reset the emulator state, and load the program listing into flash.
func (emu *Emulator) Reset() (err error) {
	emu.Registers.Reset()
	emu.Memory.Reset()
	clear(emu.Flash)
	emu.Ticks = 0

	for ip, code := range emu.Program.Codes() {
		if int(ip) >= len(emu.Flash) {
			err = ErrImageSize
			return
		}
		emu.Flash[ip] = code
	}

	return
}

// Load a little-endian binary image as the program, and reset.
func (emu *Emulator) Load(input io.Reader) (err error) {
	image, err := io.ReadAll(input)
	if err != nil {
		return
	}

	if len(image)%2 != 0 {
		err = ErrImageOdd
		return
	}

	if len(image)/2 > len(emu.Flash) {
		err = ErrImageSize
		return
	}

	prog := &cpu.Program{}
	for ip := range len(image) / 2 {
		code := binary.LittleEndian.Uint16(image[ip*2:])
		prog.Opcodes = append(prog.Opcodes, cpu.Opcode{
			Ip:    ip,
			Codes: []uint16{code},
		})
	}

	emu.Program = prog
	err = emu.Reset()

	return
}

// Pc returns current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Registers.Pc)
}

// Code returns the current instruction word.
func (emu *Emulator) Code() uint16 {
	if emu.Pc() >= len(emu.Flash) {
		return 0
	}

	return emu.Flash[emu.Pc()]
}

// Instruction returns the decoded instruction at the program counter.
func (emu *Emulator) Instruction() cpu.Instruction {
	return cpu.Decode(emu.Code())
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Registers.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	pc := emu.Registers.Pc
	if int(pc) >= emu.Program.Size() {
		done = true
		return
	}

	emu.decoder.Log = emu.Log
	emu.alu.Log = emu.Log

	code := emu.Flash[pc]
	inst := emu.decoder.Decode(code)
	if emu.Verbose {
		log.Printf("%04x: %04x %v", pc, code, inst)
	}

	flow := emu.alu.Execute(inst, &emu.Registers, &emu.data)
	emu.Ticks++

	next := pc + 1
	switch {
	case flow.Skip:
		next++
	case flow.Jump && flow.Relative:
		next = uint16(int(next) + int(flow.Offset))
	case flow.Jump:
		next = flow.Address
	}

	if int(next) >= len(emu.Flash) {
		err = ErrPcRange(next)
		return
	}

	// A jump to itself can never leave, except by a call.
	if next == pc {
		call, is_call := inst.(cpu.CallJmp)
		done = !is_call || !call.IsCall
	}

	emu.Registers.Pc = next

	return
}

// Run ticks the emulator until done, or until limit instructions have
// executed when limit is positive.
func (emu *Emulator) Run(limit int) (done bool, err error) {
	for n := 0; limit <= 0 || n < limit; n++ {
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}

	return
}
