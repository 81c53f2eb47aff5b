// Package cpu implements the fetch-decode-execute core and assembler for an
// AVR-class 8-bit microcontroller.
//
// The Decoder turns a 16-bit instruction word into an Instruction, one
// concrete type per instruction shape. The Alu applies an Instruction to a
// register file and a data space, reproducing the status flag arithmetic of
// the hardware, and reports any control flow change as a Flow for the fetch
// loop to apply. Neither holds any state beyond an optional Logger.
//
// The assembler accepts AVR mnemonics with labels, equates, macros, and
// compile-time expression evaluation.
package cpu
