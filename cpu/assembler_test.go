package cpu

import (
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0x3f", asm.Equate["SREG"])
	assert.Equal("0x3d", asm.Equate["SPL"])
	assert.Equal("0x3e", asm.Equate["SPH"])
	assert.Equal("r30", asm.Equate["ZL"])
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssemblerIo(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"ldi r16, 0xff",
		"out SPL, r16",
		"in r2, SREG",
		"push r16",
		"pop r16",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{1, 0, []string{"ldi", "r16", "0xff"}, []uint16{0xef0f}, ""},
		{2, 1, []string{"out", "0x3d", "r16"}, []uint16{0xbf0d}, ""},
		{3, 2, []string{"in", "r2", "0x3f"}, []uint16{0xb62f}, ""},
		{4, 3, []string{"push", "r16"}, []uint16{0x930f}, ""},
		{5, 4, []string{"pop", "r16"}, []uint16{0x910f}, ""},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerAlu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"add r1, r2",
		"add r16, r17",
		"cpse r3, r20",
		"cpi r17, 'A'",
		"subi r31, -1",
		"inc r16",
		"dec r16",
		"adiw r24, 1",
		"sbiw r30, 0x3f",
		"lsl r5",
		"clr r0",
		"ser r16",
		"nop",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{1, 0, []string{"add", "r1", "r2"}, []uint16{0x0c12}, ""},
		{2, 1, []string{"add", "r16", "r17"}, []uint16{0x0f01}, ""},
		{3, 2, []string{"cpse", "r3", "r20"}, []uint16{0x1234}, ""},
		{4, 3, []string{"cpi", "r17", "65"}, []uint16{0x3411}, ""},
		{5, 4, []string{"subi", "r31", "-1"}, []uint16{0x5fff}, ""},
		{6, 5, []string{"inc", "r16"}, []uint16{0x9503}, ""},
		{7, 6, []string{"dec", "r16"}, []uint16{0x950a}, ""},
		{8, 7, []string{"adiw", "r24", "1"}, []uint16{0x9601}, ""},
		{9, 8, []string{"sbiw", "r30", "0x3f"}, []uint16{0x97ff}, ""},
		{10, 9, []string{"lsl", "r5"}, []uint16{0x0c55}, ""},
		{11, 10, []string{"clr", "r0"}, []uint16{0x2400}, ""},
		{12, 11, []string{"ser", "r16"}, []uint16{0xef0f}, ""},
		{13, 12, []string{"nop"}, []uint16{0x0000}, ""},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerTransfer(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"ldd r0, Y+5",
		"std Z+0x21, r1",
		"ld r2, Z",
		"st Y, r3",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{1, 0, []string{"ldd", "r0", "Y+5"}, []uint16{0x800d}, ""},
		{2, 1, []string{"std", "Z+0x21", "r1"}, []uint16{0xa211}, ""},
		{3, 2, []string{"ld", "r2", "Z"}, []uint16{0x8020}, ""},
		{4, 3, []string{"st", "Y", "r3"}, []uint16{0x8238}, ""},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".equ CONST_10 0x10",
		".equ counter r20",
		"ldi r16 CONST_10",
		"ldi r17 $(CONST_10 + CONST_10)",
		".equ CONST_30 $(2 * CONST_10 + CONST_10)",
		"ldi counter CONST_30",
		"ldi r19 $(LINENO * 8 + 0x10)",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(errors.Unwrap(err))
	}

	expected := []Opcode{
		{3, 0, []string{"ldi", "r16", "0x10"}, []uint16{0xe100}, ""},
		{4, 1, []string{"ldi", "r17", "32"}, []uint16{0xe210}, ""},
		{6, 2, []string{"ldi", "r20", "48"}, []uint16{0xe340}, ""},
		{7, 3, []string{"ldi", "r19", "72"}, []uint16{0xe438}, ""},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".macro LOADADD rn a b",
		"ldi rn, a",
		"add rn, b",
		".endm",
		"LOADADD r16, 8, r17",
		".macro SPIN",
		"@loop: rjmp @loop",
		".endm",
		"SPIN",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		log.Fatal(err)
	}

	expected := []Opcode{
		{2, 0, []string{"ldi", "r16", "8"}, []uint16{0xe008}, ""},
		{3, 1, []string{"add", "r16", "r17"}, []uint16{0x0f01}, ""},
		{7, 2, []string{"rjmp", "SPIN_7_loop"}, []uint16{0xcfff}, "SPIN_7_loop"},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"start:",
		"  ldi r16, 3",
		"loop: dec r16",
		"  brne loop",
		"  rcall sub",
		"  rjmp -1",
		"sub: AND_ALSO:",
		"",
		"  ret",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(0, asm.Label["start"])
	assert.Equal(1, asm.Label["loop"])
	assert.Equal(5, asm.Label["sub"])
	assert.Equal(5, asm.Label["AND_ALSO"])

	expected := []Opcode{
		{2, 0, []string{"ldi", "r16", "3"}, []uint16{0xe003}, ""},
		{3, 1, []string{"dec", "r16"}, []uint16{0x950a}, ""},
		{4, 2, []string{"brne", "loop"}, []uint16{0xf7f1}, "loop"},
		{5, 3, []string{"rcall", "sub"}, []uint16{0xd001}, "sub"},
		{6, 4, []string{"rjmp", "-1"}, []uint16{0xcfff}, ""},
		{9, 5, []string{"ret"}, []uint16{0x9508}, ""},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerBranch(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		"top:",
		"breq top",
		"brcc top",
		"brbs 6, top",
		"brbc 7, 0",
		"brlt 63",
		"brge -64",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{2, 0, []string{"breq", "top"}, []uint16{0xf3f9}, "top"},
		{3, 1, []string{"brcc", "top"}, []uint16{0xf7f0}, "top"},
		{4, 2, []string{"brbs", "6", "top"}, []uint16{0xf3ee}, "top"},
		{5, 3, []string{"brbc", "7", "0"}, []uint16{0xf407}, ""},
		{6, 4, []string{"brlt", "63"}, []uint16{0xf1fc}, ""},
		{7, 5, []string{"brge", "-64"}, []uint16{0xf604}, ""},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerRange(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	table := []string{
		"brne 64",
		"brne -65",
		"rjmp 2048",
		"rcall -2049",
		"ldi r16, 256",
		"ldi r16, -129",
		"adiw r24, 64",
		"in r0, 64",
		"ldd r0, Y+64",
		"brbs 8, 0",
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry))
		assert.True(errors.Is(err, ErrRange{}), entry)
	}

	// Branches to labels out of reach are caught at link time.
	program := "far:\n" + strings.Repeat("nop\n", 64) + "brne far\n"
	_, err := asm.Parse(strings.NewReader(program))
	assert.True(errors.Is(err, ErrRange{}))
	var se *ErrSyntax
	if assert.True(errors.As(err, &se)) {
		assert.Equal(66, se.LineNo)
	}
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
		err  error
	}){
		{"DUP:\nDUP:\n", 2, ErrLabelDuplicate},
		{"ldi r16 nothing", 1, nil},
		{"ldi r16 $(\"aaa\")", 1, nil},
		{"ldi r16 $(more(\"aaa\"))", 1, nil},
		{"ldi r16 $(0x10000000000000000)", 1, nil},
		{".equ", 1, ErrEquateSyntax},
		{".equ A", 1, ErrEquateSyntax},
		{".equ A 1\n.equ A 2\n", 2, ErrEquateDuplicate},
		{".macro A B C\n.endm\nA 1\n", 3, ErrMacroSyntax},
		{".macro A B C\nB C\n.endm\nA push r0\nA invalid word\n", 5, nil},
		{".macro A B\n.macro C\n.endm\n.endm", 2, ErrMacroNesting},
		{".macro A B\n.endm\n.macro A\n.endm\n", 3, ErrMacroDuplicate},
		{".macro A B\n.endm\n.endm\n", 3, ErrMacroLonelyEndm},
		{".macro A\nnop\n", 2, ErrMacroLonely},
		{"nop bad\n", 1, ErrOpcodeExtraArgs},
		{"add r0\n", 1, ErrOpcodeMissing},
		{"add r0 r1 r2\n", 1, ErrOpcodeExtraArgs},
		{"add r0 r32\n", 1, ErrRegisterInvalid},
		{"add x0 r1\n", 1, ErrRegisterInvalid},
		{"ldi r15 1\n", 1, ErrRegisterUpper},
		{"adiw r25 1\n", 1, ErrRegisterPair},
		{"sbiw r22 1\n", 1, ErrRegisterPair},
		{"ldd r0 X+1\n", 1, ErrPointerInvalid},
		{"st W r0\n", 1, ErrPointerInvalid},
		{"push\n", 1, ErrOpcodeMissing},
		{"ret r0\n", 1, ErrOpcodeExtraArgs},
		{"rjmp\n", 1, ErrOpcodeMissing},
		{"brne\n", 1, ErrOpcodeMissing},
		{"brbs 1\n", 1, ErrOpcodeMissing},
		{"zed r0 r1\n", 1, ErrInstructionInvalid},
		{"nop\nrjmp nowhere\n", 2, ErrLabelMissing("nowhere")},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
			if entry.err != nil {
				assert.ErrorIs(err, entry.err, entry.prog)
			}
		}
	}

}
