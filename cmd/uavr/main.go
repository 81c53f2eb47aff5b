// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/uavr/cpu"
	"github.com/ezrec/uavr/emulator"
	"github.com/ezrec/uavr/monitor"
)

func main() {
	var compile string
	var binary string
	var output string
	var steps int
	var trace bool
	var disassemble bool
	var interactive bool
	var verbose bool
	defines := map[string]string{}

	flag.StringVar(&compile, "c", "", ".S file to assemble")
	flag.StringVar(&binary, "b", "", "binary flash image to load")
	flag.StringVar(&output, "o", "", "save the assembled flash image, do not execute")
	flag.IntVar(&steps, "n", 0, "maximum instructions to execute, 0 for no limit")
	flag.BoolVar(&trace, "t", false, "trace registers after each instruction")
	flag.BoolVar(&disassemble, "d", false, "disassemble, do not execute")
	flag.BoolVar(&interactive, "m", false, "interactive monitor")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Func("D", "predefine NAME=VALUE for the assembler", func(arg string) error {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || len(name) == 0 {
			return fmt.Errorf("%v: expected NAME=VALUE", arg)
		}
		defines[name] = value
		return nil
	})

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) != 0 && len(binary) != 0 {
		log.Fatalf("%v: -c and -b are exclusive", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Log = log.Default()

	// Assemble a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		for key, value := range defines {
			asm.Predefine(key, value)
		}

		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		err = emu.Reset()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	// Load a flash image.
	if len(binary) != 0 {
		inf, err := os.Open(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		defer inf.Close()

		err = emu.Load(inf)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
	}

	if len(output) != 0 {
		err := os.WriteFile(output, emu.Program.Binary(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if disassemble {
		for ip, code := range emu.Program.Codes() {
			fmt.Printf("%04x: %04x  %v\n", ip, code, cpu.Decode(code))
		}
		return
	}

	if interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			log.Fatalf("%v: -m requires a terminal", os.Args[0])
		}
		mon := monitor.NewMonitor(emu)
		mon.Limit = steps
		err := mon.Run()
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	for n := 0; steps <= 0 || n < steps; n++ {
		if trace {
			fmt.Printf("%04x: %04x  %v\n", emu.Pc(), emu.Code(), emu.Instruction())
		}
		done, err := emu.Tick()
		if err != nil {
			log.Fatal(err)
		}
		if done {
			break
		}
		if trace {
			err = monitor.Registers(os.Stdout, &emu.Registers)
			if err != nil {
				log.Fatal(err)
			}
		}
	}

	fmt.Print(emu.Registers.String())
}
