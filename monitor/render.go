package monitor

import (
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/uavr/bank"
	"github.com/ezrec/uavr/cpu"
	"github.com/ezrec/uavr/emulator"
)

// Registers writes the register file, and the X, Y and Z pointer pairs.
func Registers(w io.Writer, regs *bank.RegisterBank) (err error) {
	_, err = io.WriteString(w, regs.String())
	if err != nil {
		return
	}

	var pairs []string
	for _, pr := range []cpu.PointerRegister{cpu.POINTER_X, cpu.POINTER_Y, cpu.POINTER_Z} {
		low := pr.Low()
		value := uint16(regs.Register(low+1))<<8 | uint16(regs.Register(low))
		pairs = append(pairs, fmt.Sprintf("%v %04x", pr, value))
	}
	_, err = fmt.Fprintln(w, strings.Join(pairs, "  "))

	return
}

// Listing writes up to lines of disassembly around the program counter.
// The instruction at the program counter is marked.
func Listing(w io.Writer, emu *emulator.Emulator, lines int) (err error) {
	pc := emu.Pc()
	size := emu.Program.Size()

	start := max(pc-lines/2, 0)
	end := min(start+lines, size)

	for ip := start; ip < end; ip++ {
		code := emu.Flash[ip]

		marker := "  "
		if ip == pc {
			marker = "=>"
		}

		var source string
		dbg := emu.Program.Debug(uint16(ip))
		if dbg.Opcode != nil && dbg.Index == 0 && dbg.LineNo != 0 {
			source = fmt.Sprintf("%4d: %s", dbg.LineNo, strings.Join(dbg.Words, " "))
		}

		_, err = fmt.Fprintf(w, "%s %04x: %04x  %-28v %s\n", marker, ip, code, cpu.Decode(code), source)
		if err != nil {
			return
		}
	}

	return
}

// Status writes the run state of the emulator.
func Status(w io.Writer, emu *emulator.Emulator, done bool, err error) (werr error) {
	state := f("stopped")
	switch {
	case err != nil:
		state = err.Error()
	case done:
		state = f("done")
	}

	_, werr = fmt.Fprintf(w, "ticks %d  line %d  pc %04x  %s\n", emu.Ticks, emu.LineNo(), emu.Pc(), state)
	if werr != nil {
		return
	}

	_, werr = fmt.Fprintln(w, f("s/space: step  r: run  x: reset  q: quit"))

	return
}
