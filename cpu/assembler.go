// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"XL":     "r26",
	"XH":     "r27",
	"YL":     "r28",
	"YH":     "r29",
	"ZL":     "r30",
	"ZH":     "r31",
	"SPL":    "0x3d",
	"SPH":    "0x3e",
	"SREG":   "0x3f",
}

// Assembler is a single pass macro assembler for AVR mnemonics.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to word addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if len(word) > 0 && word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	value, err = strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// rangeOf returns the value of a word, checked against an inclusive range.
func (asm *Assembler) rangeOf(word string, min, max int64) (value int64, err error) {
	value, err = asm.valueOf(word)
	if err != nil {
		return
	}
	if value < min || value > max {
		err = ErrRange{Value: value, Min: min, Max: max}
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	// Operands may be separated by commas.
	line = strings.ReplaceAll(line, ",", " ")
	words = slices.DeleteFunc(strings.Fields(line), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the current word address.
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + len(last.Codes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		target, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = ErrLabelMissing(op.LinkLabel)
			return
		}
		last := len(op.Codes) - 1
		if last < 0 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", op.LinkLabel, op.LineNo, op.Words)
		}
		linked := &op.Codes[last]
		*linked, err = linkRelative(*linked, target-(op.Ip+last+1))
		if err != nil {
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// linkRelative patches a relative word offset into a rjmp, rcall, or
// conditional branch.
func linkRelative(code uint16, offset int) (linked uint16, err error) {
	switch {
	case code&0xe000 == 0xc000:
		if offset < -2048 || offset > 2047 {
			err = ErrRange{Value: int64(offset), Min: -2048, Max: 2047}
			return
		}
		linked = code&0xf000 | uint16(offset)&0x0fff
	case code&0xf800 == 0xf000:
		if offset < -64 || offset > 63 {
			err = ErrRange{Value: int64(offset), Min: -64, Max: 63}
			return
		}
		linked = code&^(0x7f<<3) | (uint16(offset)&0x7f)<<3
	default:
		linked = code
	}

	return
}

// twoRegMap maps two-register mnemonics.
var twoRegMap = map[string]uint16{
	"cpc":  TWO_REG_CPC,
	"sbc":  TWO_REG_SBC,
	"add":  TWO_REG_ADD,
	"cpse": TWO_REG_CPSE,
	"cp":   TWO_REG_CP,
	"sub":  TWO_REG_SUB,
	"adc":  TWO_REG_ADC,
	"and":  TWO_REG_AND,
	"eor":  TWO_REG_EOR,
	"or":   TWO_REG_OR,
	"mov":  TWO_REG_MOV,
}

// constMap maps register-with-immediate mnemonics.
var constMap = map[string]uint16{
	"cpi":  CONST_CPI,
	"sbci": CONST_SBCI,
	"subi": CONST_SUBI,
	"ori":  CONST_ORI,
	"andi": CONST_ANDI,
	"ldi":  CONST_LDI,
}

// oneRegMap maps single-register mnemonics.
var oneRegMap = map[string]OneRegCode{
	"com":  ONE_REG_COM,
	"neg":  ONE_REG_NEG,
	"swap": ONE_REG_SWAP,
	"inc":  ONE_REG_INC,
	"dec":  ONE_REG_DEC,
	"asr":  ONE_REG_ASR,
	"lsr":  ONE_REG_LSR,
	"ror":  ONE_REG_ROR,
}

// branchMap maps flag branch aliases to their flag and polarity.
var branchMap = map[string](struct {
	Flag    uint8
	TestSet bool
}){
	"brcs": {0, true},
	"brlo": {0, true},
	"brcc": {0, false},
	"brsh": {0, false},
	"breq": {1, true},
	"brne": {1, false},
	"brmi": {2, true},
	"brpl": {2, false},
	"brvs": {3, true},
	"brvc": {3, false},
	"brlt": {4, true},
	"brge": {4, false},
	"brhs": {5, true},
	"brhc": {5, false},
	"brts": {6, true},
	"brtc": {6, false},
	"brie": {7, true},
	"brid": {7, false},
}

// operands checks the operand count.
func operands(args []string, count int) (err error) {
	switch {
	case len(args) < count:
		err = ErrOpcodeMissing
	case len(args) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// register returns the index of a r0-r31 operand.
func (asm *Assembler) register(word string) (reg int, err error) {
	word = strings.ToLower(word)
	if len(word) < 2 || word[0] != 'r' {
		err = ErrRegisterInvalid
		return
	}
	reg, err = strconv.Atoi(word[1:])
	if err != nil || reg < 0 || reg > 31 {
		err = ErrRegisterInvalid
		return
	}
	return
}

// upperRegister returns the index of a r16-r31 operand.
func (asm *Assembler) upperRegister(word string) (reg int, err error) {
	reg, err = asm.register(word)
	if err == nil && reg < 16 {
		err = ErrRegisterUpper
	}
	return
}

// pairRegister returns the index of a r24, r26, r28 or r30 operand.
func (asm *Assembler) pairRegister(word string) (reg int, err error) {
	reg, err = asm.register(word)
	if err == nil && (reg < 24 || reg&1 != 0) {
		err = ErrRegisterPair
	}
	return
}

// pointer returns the pointer register and displacement of a Y, Z,
// Y+q or Z+q operand.
func (asm *Assembler) pointer(word string) (base PointerRegister, offset uint8, err error) {
	name, disp, has_disp := strings.Cut(word, "+")
	switch strings.ToUpper(name) {
	case "Y":
		base = POINTER_Y
	case "Z":
		base = POINTER_Z
	default:
		err = ErrPointerInvalid
		return
	}
	if !has_disp {
		return
	}
	equate, ok := asm.Equate[disp]
	if ok {
		disp = equate
	}
	q, err := asm.rangeOf(disp, 0, 63)
	if err != nil {
		return
	}
	offset = uint8(q)
	return
}

// constant returns an 8-bit immediate, accepting signed or unsigned forms.
func (asm *Assembler) constant(word string) (value uint8, err error) {
	k, err := asm.rangeOf(word, -128, 255)
	if err != nil {
		return
	}
	value = uint8(k)
	return
}

// target returns a numeric relative offset, or the label to link.
func (asm *Assembler) target(word string) (offset int, label string) {
	value, err := asm.valueOf(word)
	if err != nil {
		label = word
		return
	}
	offset = int(value)
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint16
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	// Alternate syntax substitutions
	switch {
	case len(args) == 1 && mnemonic == "lsl":
		// lsl rd => add rd rd
		mnemonic, args = "add", []string{args[0], args[0]}
	case len(args) == 1 && mnemonic == "rol":
		// rol rd => adc rd rd
		mnemonic, args = "adc", []string{args[0], args[0]}
	case len(args) == 1 && mnemonic == "clr":
		// clr rd => eor rd rd
		mnemonic, args = "eor", []string{args[0], args[0]}
	case len(args) == 1 && mnemonic == "tst":
		// tst rd => and rd rd
		mnemonic, args = "and", []string{args[0], args[0]}
	case len(args) == 1 && mnemonic == "ser":
		// ser rd => ldi rd 0xff
		mnemonic, args = "ldi", []string{args[0], "0xff"}
	case mnemonic == "ld":
		// ld rd ptr => ldd rd ptr+0
		mnemonic = "ldd"
	case mnemonic == "st":
		// st ptr rr => std ptr+0 rr
		mnemonic = "std"
	default:
		// unchanged
	}

	twoReg, is_two_reg := twoRegMap[mnemonic]
	constOp, is_const := constMap[mnemonic]
	oneReg, is_one_reg := oneRegMap[mnemonic]
	brAlias, is_branch := branchMap[mnemonic]

	switch {
	case mnemonic == "nop":
		if err = operands(args, 0); err != nil {
			return
		}
		codes = append(codes, 0)
	case is_two_reg:
		if err = operands(args, 2); err != nil {
			return
		}
		var rd, rr int
		if rd, err = asm.register(args[0]); err != nil {
			return
		}
		if rr, err = asm.register(args[1]); err != nil {
			return
		}
		codes = append(codes, MakeCodeTwoReg(twoReg, rd, rr))
	case is_const:
		if err = operands(args, 2); err != nil {
			return
		}
		var rd int
		var k uint8
		if rd, err = asm.upperRegister(args[0]); err != nil {
			return
		}
		if k, err = asm.constant(args[1]); err != nil {
			return
		}
		codes = append(codes, MakeCodeConst(constOp, rd, k))
	case mnemonic == "adiw" || mnemonic == "sbiw":
		if err = operands(args, 2); err != nil {
			return
		}
		var rd int
		var k int64
		if rd, err = asm.pairRegister(args[0]); err != nil {
			return
		}
		if k, err = asm.rangeOf(args[1], 0, 63); err != nil {
			return
		}
		op := CONST_ADIW
		if mnemonic == "sbiw" {
			op = CONST_SBIW
		}
		codes = append(codes, MakeCodeWordConst(op, rd, uint8(k)))
	case is_one_reg:
		if err = operands(args, 1); err != nil {
			return
		}
		var rd int
		if rd, err = asm.register(args[0]); err != nil {
			return
		}
		codes = append(codes, MakeCodeOneReg(oneReg, rd))
	case mnemonic == "push" || mnemonic == "pop":
		if err = operands(args, 1); err != nil {
			return
		}
		var reg int
		if reg, err = asm.register(args[0]); err != nil {
			return
		}
		codes = append(codes, MakeCodePushPop(mnemonic == "pop", reg))
	case mnemonic == "in" || mnemonic == "out":
		if err = operands(args, 2); err != nil {
			return
		}
		reg_word, addr_word := args[0], args[1]
		if mnemonic == "out" {
			reg_word, addr_word = addr_word, reg_word
		}
		var reg int
		var address int64
		if reg, err = asm.register(reg_word); err != nil {
			return
		}
		if address, err = asm.rangeOf(addr_word, 0, 63); err != nil {
			return
		}
		codes = append(codes, MakeCodeInOut(mnemonic == "in", reg, uint8(address)))
	case mnemonic == "ldd" || mnemonic == "std":
		if err = operands(args, 2); err != nil {
			return
		}
		reg_word, ptr_word := args[0], args[1]
		if mnemonic == "std" {
			reg_word, ptr_word = ptr_word, reg_word
		}
		var reg int
		var base PointerRegister
		var offset uint8
		if reg, err = asm.register(reg_word); err != nil {
			return
		}
		if base, offset, err = asm.pointer(ptr_word); err != nil {
			return
		}
		codes = append(codes, MakeCodeTransferIndirect(mnemonic == "ldd", base, reg, offset))
	case mnemonic == "rjmp" || mnemonic == "rcall":
		if err = operands(args, 1); err != nil {
			return
		}
		var offset int
		offset, label = asm.target(args[0])
		var code uint16
		code, err = linkRelative(MakeCodeCallJmp(mnemonic == "rcall", 0), offset)
		if err != nil {
			return
		}
		codes = append(codes, code)
	case mnemonic == "ret" || mnemonic == "reti":
		if err = operands(args, 0); err != nil {
			return
		}
		codes = append(codes, MakeCodeRet(mnemonic == "reti"))
	case mnemonic == "brbs" || mnemonic == "brbc" || is_branch:
		flag, test_set := brAlias.Flag, brAlias.TestSet
		if !is_branch {
			if err = operands(args, 2); err != nil {
				return
			}
			var s int64
			if s, err = asm.rangeOf(args[0], 0, 7); err != nil {
				return
			}
			flag, test_set = uint8(s), mnemonic == "brbs"
			args = args[1:]
		} else if err = operands(args, 1); err != nil {
			return
		}
		var offset int
		offset, label = asm.target(args[0])
		var code uint16
		code, err = linkRelative(MakeCodeBranch(flag, test_set, 0), offset)
		if err != nil {
			return
		}
		codes = append(codes, code)
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
