package classfile

import (
	"encoding/binary"
	"fmt"
)

type Opcode uint8

// Opcodes referenced by name elsewhere in the module. The full table lives
// in opcodes below.
const (
	OpLdc             Opcode = 0x12
	OpLdcW            Opcode = 0x13
	OpLdc2W           Opcode = 0x14
	OpIinc            Opcode = 0x84
	OpTableSwitch     Opcode = 0xaa
	OpLookupSwitch    Opcode = 0xab
	OpReturn          Opcode = 0xb1
	OpGetStatic       Opcode = 0xb2
	OpPutStatic       Opcode = 0xb3
	OpGetField        Opcode = 0xb4
	OpPutField        Opcode = 0xb5
	OpInvokeVirtual   Opcode = 0xb6
	OpInvokeSpecial   Opcode = 0xb7
	OpInvokeStatic    Opcode = 0xb8
	OpInvokeInterface Opcode = 0xb9
	OpInvokeDynamic   Opcode = 0xba
	OpNew             Opcode = 0xbb
	OpANewArray       Opcode = 0xbd
	OpCheckCast       Opcode = 0xc0
	OpInstanceOf      Opcode = 0xc1
	OpWide            Opcode = 0xc4
	OpMultiANewArray  Opcode = 0xc5
)

type operandKind uint8

const (
	operandNone operandKind = iota
	operandLocal
	operandByte
	operandShort
	operandBranch2
	operandBranch4
	operandLdc
	operandLdcWide
	operandField
	operandMethod
	operandClass
	operandIinc
	operandInvokeInterface
	operandInvokeDynamic
	operandMultiANewArray
	operandTableSwitch
	operandLookupSwitch
	operandWide
)

type opcodeInfo struct {
	name string
	kind operandKind
}

var opcodes [256]opcodeInfo

func init() {
	simple := func(from int, names ...string) {
		for i, n := range names {
			opcodes[from+i] = opcodeInfo{name: n}
		}
	}
	with := func(kind operandKind, from int, names ...string) {
		for i, n := range names {
			opcodes[from+i] = opcodeInfo{name: n, kind: kind}
		}
	}

	simple(0x00, "nop", "aconst_null",
		"iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4", "iconst_5",
		"lconst_0", "lconst_1", "fconst_0", "fconst_1", "fconst_2", "dconst_0", "dconst_1")
	with(operandByte, 0x10, "bipush")
	with(operandShort, 0x11, "sipush")
	with(operandLdc, 0x12, "ldc")
	with(operandLdcWide, 0x13, "ldc_w", "ldc2_w")
	with(operandLocal, 0x15, "iload", "lload", "fload", "dload", "aload")
	simple(0x1a,
		"iload_0", "iload_1", "iload_2", "iload_3",
		"lload_0", "lload_1", "lload_2", "lload_3",
		"fload_0", "fload_1", "fload_2", "fload_3",
		"dload_0", "dload_1", "dload_2", "dload_3",
		"aload_0", "aload_1", "aload_2", "aload_3",
		"iaload", "laload", "faload", "daload", "aaload", "baload", "caload", "saload")
	with(operandLocal, 0x36, "istore", "lstore", "fstore", "dstore", "astore")
	simple(0x3b,
		"istore_0", "istore_1", "istore_2", "istore_3",
		"lstore_0", "lstore_1", "lstore_2", "lstore_3",
		"fstore_0", "fstore_1", "fstore_2", "fstore_3",
		"dstore_0", "dstore_1", "dstore_2", "dstore_3",
		"astore_0", "astore_1", "astore_2", "astore_3",
		"iastore", "lastore", "fastore", "dastore", "aastore", "bastore", "castore", "sastore",
		"pop", "pop2", "dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap",
		"iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub",
		"imul", "lmul", "fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv",
		"irem", "lrem", "frem", "drem", "ineg", "lneg", "fneg", "dneg",
		"ishl", "lshl", "ishr", "lshr", "iushr", "lushr",
		"iand", "land", "ior", "lor", "ixor", "lxor")
	with(operandIinc, 0x84, "iinc")
	simple(0x85,
		"i2l", "i2f", "i2d", "l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l", "d2f",
		"i2b", "i2c", "i2s", "lcmp", "fcmpl", "fcmpg", "dcmpl", "dcmpg")
	with(operandBranch2, 0x99,
		"ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle",
		"if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple",
		"if_acmpeq", "if_acmpne", "goto", "jsr")
	with(operandLocal, 0xa9, "ret")
	with(operandTableSwitch, 0xaa, "tableswitch")
	with(operandLookupSwitch, 0xab, "lookupswitch")
	simple(0xac, "ireturn", "lreturn", "freturn", "dreturn", "areturn", "return")
	with(operandField, 0xb2, "getstatic", "putstatic", "getfield", "putfield")
	with(operandMethod, 0xb6, "invokevirtual", "invokespecial", "invokestatic")
	with(operandInvokeInterface, 0xb9, "invokeinterface")
	with(operandInvokeDynamic, 0xba, "invokedynamic")
	with(operandClass, 0xbb, "new")
	with(operandByte, 0xbc, "newarray")
	with(operandClass, 0xbd, "anewarray")
	simple(0xbe, "arraylength", "athrow")
	with(operandClass, 0xc0, "checkcast", "instanceof")
	simple(0xc2, "monitorenter", "monitorexit")
	with(operandWide, 0xc4, "wide")
	with(operandMultiANewArray, 0xc5, "multianewarray")
	with(operandBranch2, 0xc6, "ifnull", "ifnonnull")
	with(operandBranch4, 0xc8, "goto_w", "jsr_w")
}

func (op Opcode) String() string {
	if name := opcodes[op].name; name != "" {
		return name
	}
	return fmt.Sprintf("opcode(0x%02x)", uint8(op))
}

// IsInvoke reports whether op is one of the five invoke instructions.
func (op Opcode) IsInvoke() bool {
	return op >= OpInvokeVirtual && op <= OpInvokeDynamic
}

func (op Opcode) IsFieldAccess() bool {
	return op >= OpGetStatic && op <= OpPutField
}

// Instruction is one decoded bytecode instruction. Only the operands that
// apply to the opcode are set.
type Instruction struct {
	Offset int
	Opcode Opcode

	Member   *MemberRef // field and invoke instructions; Owner is empty for invokedynamic
	Type     string     // new, anewarray, checkcast, instanceof, multianewarray, ldc of a class
	Constant string     // ldc of a non-class constant

	Operand int   // local index, immediate value, dimensions or branch target
	Targets []int // switch targets, default first
}

/*
*	decodeCode decodes the code[] array of a Code attribute
*
*	Each instruction is a u1 opcode followed by opcode-specific operands.
*	tableswitch and lookupswitch pad to a 4-byte boundary measured from the
*	start of the code array; wide widens the operands of the next opcode.
 */
func decodeCode(code []byte, base int64, pool ConstantPool) ([]Instruction, error) {
	d := &codeDecoder{cursor: newBytesCursor(code, base, SectionCode), pool: pool}
	var insns []Instruction
	for d.cursor.Remaining() > 0 {
		insn, err := d.next()
		if err != nil {
			return nil, err
		}
		insns = append(insns, insn)
	}
	return insns, nil
}

type codeDecoder struct {
	cursor *bytesCursor
	pool   ConstantPool
	start  int
}

func (d *codeDecoder) fail(format string, args ...any) error {
	return &DecodeError{
		Section: SectionCode,
		Offset:  d.cursor.base + int64(d.start),
		Err:     wrapf(ErrBadInstruction, format, args...),
	}
}

func (d *codeDecoder) failRef(err error) error {
	return &DecodeError{
		Section: SectionCode,
		Offset:  d.cursor.base + int64(d.start),
		Err:     wrapf(err, "operand of instruction at pc %d", d.start),
	}
}

// operands returns the next n operand bytes of the current instruction.
func (d *codeDecoder) operands(n int) ([]byte, error) {
	if d.cursor.Remaining() < n {
		op := Opcode(d.cursor.data[d.start])
		return nil, d.fail("%s at pc %d runs past the end of the code", op, d.start)
	}
	b, _ := d.cursor.ReadNBytes(n)
	return b, nil
}

func (d *codeDecoder) u1() (uint8, error) {
	b, err := d.operands(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *codeDecoder) u2() (uint16, error) {
	b, err := d.operands(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *codeDecoder) s4() (int32, error) {
	b, err := d.operands(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (d *codeDecoder) target(delta int) (int, error) {
	t := d.start + delta
	if t < 0 || t >= len(d.cursor.data) {
		return 0, d.fail("branch target %d at pc %d is outside the code", t, d.start)
	}
	return t, nil
}

func (d *codeDecoder) next() (Instruction, error) {
	d.start = d.cursor.pos
	raw, _ := d.cursor.ReadU1()
	op := Opcode(raw)
	info := opcodes[raw]
	if info.name == "" {
		return Instruction{}, d.fail("unknown opcode 0x%02x at pc %d", raw, d.start)
	}

	insn := Instruction{Offset: d.start, Opcode: op}
	switch info.kind {
	case operandNone:

	case operandLocal:
		v, err := d.u1()
		if err != nil {
			return insn, err
		}
		insn.Operand = int(v)

	case operandByte:
		v, err := d.u1()
		if err != nil {
			return insn, err
		}
		insn.Operand = int(int8(v))
		if op != 0x10 { // newarray takes an unsigned type code
			insn.Operand = int(v)
		}

	case operandShort:
		v, err := d.u2()
		if err != nil {
			return insn, err
		}
		insn.Operand = int(int16(v))

	case operandBranch2:
		v, err := d.u2()
		if err != nil {
			return insn, err
		}
		if insn.Operand, err = d.target(int(int16(v))); err != nil {
			return insn, err
		}

	case operandBranch4:
		v, err := d.s4()
		if err != nil {
			return insn, err
		}
		if insn.Operand, err = d.target(int(v)); err != nil {
			return insn, err
		}

	case operandLdc, operandLdcWide:
		var index uint16
		if info.kind == operandLdc {
			v, err := d.u1()
			if err != nil {
				return insn, err
			}
			index = uint16(v)
		} else {
			v, err := d.u2()
			if err != nil {
				return insn, err
			}
			index = v
		}
		value, isClass, err := d.pool.Loadable(index)
		if err != nil {
			return insn, d.failRef(err)
		}
		if (op == OpLdc2W) != d.pool.wideLoadable(index) {
			return insn, d.failRef(wrapf(ErrBadConstantRef, "%s cannot load a %s", op, d.pool[index].Tag))
		}
		if isClass {
			insn.Type = value
		} else {
			insn.Constant = value
		}

	case operandField, operandMethod, operandInvokeInterface:
		index, err := d.u2()
		if err != nil {
			return insn, err
		}
		if info.kind == operandInvokeInterface {
			// count and a reserved zero byte
			if _, err := d.operands(2); err != nil {
				return insn, err
			}
		}
		member, err := d.pool.Member(index)
		if err != nil {
			return insn, d.failRef(err)
		}
		if !memberKindAllowed(op, info.kind, member.Kind) {
			return insn, d.failRef(wrapf(ErrBadConstantRef, "%s cannot reference a %s", op, member.Kind))
		}
		insn.Member = &member

	case operandInvokeDynamic:
		index, err := d.u2()
		if err != nil {
			return insn, err
		}
		if _, err := d.operands(2); err != nil {
			return insn, err
		}
		if err := d.pool.expect(index, ConstantInvokeDynamic); err != nil {
			return insn, d.failRef(err)
		}
		name, desc, _ := d.pool.NameAndType(d.pool[index].Index2)
		insn.Member = &MemberRef{Kind: ConstantInvokeDynamic, Name: name, Descriptor: desc}

	case operandClass, operandMultiANewArray:
		index, err := d.u2()
		if err != nil {
			return insn, err
		}
		name, err := d.pool.ClassName(index)
		if err != nil {
			return insn, d.failRef(err)
		}
		insn.Type = name
		if info.kind == operandMultiANewArray {
			dims, err := d.u1()
			if err != nil {
				return insn, err
			}
			if dims == 0 {
				return insn, d.fail("multianewarray with 0 dimensions at pc %d", d.start)
			}
			insn.Operand = int(dims)
		}

	case operandIinc:
		index, err := d.u1()
		if err != nil {
			return insn, err
		}
		if _, err := d.u1(); err != nil {
			return insn, err
		}
		insn.Operand = int(index)

	case operandWide:
		return d.wide(insn)

	case operandTableSwitch:
		return d.tableSwitch(insn)

	case operandLookupSwitch:
		return d.lookupSwitch(insn)
	}
	return insn, nil
}

// wide modifies the next load, store, ret or iinc to take a u2 local index.
func (d *codeDecoder) wide(insn Instruction) (Instruction, error) {
	raw, err := d.u1()
	if err != nil {
		return insn, err
	}
	switch {
	case raw >= 0x15 && raw <= 0x19, raw >= 0x36 && raw <= 0x3a, raw == 0xa9, Opcode(raw) == OpIinc:
	default:
		return insn, d.fail("wide cannot modify %s at pc %d", Opcode(raw), d.start)
	}
	index, err := d.u2()
	if err != nil {
		return insn, err
	}
	if Opcode(raw) == OpIinc {
		if _, err := d.operands(2); err != nil {
			return insn, err
		}
	}
	insn.Operand = int(index)
	return insn, nil
}

func (d *codeDecoder) align() error {
	pad := (4 - d.cursor.pos%4) % 4
	_, err := d.operands(pad)
	return err
}

func (d *codeDecoder) tableSwitch(insn Instruction) (Instruction, error) {
	if err := d.align(); err != nil {
		return insn, err
	}
	def, err := d.s4()
	if err != nil {
		return insn, err
	}
	low, err := d.s4()
	if err != nil {
		return insn, err
	}
	high, err := d.s4()
	if err != nil {
		return insn, err
	}
	if low > high {
		return insn, d.fail("tableswitch low %d > high %d at pc %d", low, high, d.start)
	}
	n := int64(high) - int64(low) + 1
	if n*4 > int64(d.cursor.Remaining()) {
		return insn, d.fail("tableswitch at pc %d runs past the end of the code", d.start)
	}
	return d.switchTargets(insn, def, int(n), 4)
}

func (d *codeDecoder) lookupSwitch(insn Instruction) (Instruction, error) {
	if err := d.align(); err != nil {
		return insn, err
	}
	def, err := d.s4()
	if err != nil {
		return insn, err
	}
	npairs, err := d.s4()
	if err != nil {
		return insn, err
	}
	if npairs < 0 || int64(npairs)*8 > int64(d.cursor.Remaining()) {
		return insn, d.fail("lookupswitch at pc %d has bad pair count %d", d.start, npairs)
	}
	return d.switchTargets(insn, def, int(npairs), 8)
}

// switchTargets reads n jump offsets, each the last 4 bytes of a stride-byte entry.
func (d *codeDecoder) switchTargets(insn Instruction, def int32, n, stride int) (Instruction, error) {
	t, err := d.target(int(def))
	if err != nil {
		return insn, err
	}
	insn.Targets = make([]int, 0, n+1)
	insn.Targets = append(insn.Targets, t)
	for i := 0; i < n; i++ {
		if stride == 8 {
			if _, err := d.s4(); err != nil {
				return insn, err
			}
		}
		off, err := d.s4()
		if err != nil {
			return insn, err
		}
		if t, err = d.target(int(off)); err != nil {
			return insn, err
		}
		insn.Targets = append(insn.Targets, t)
	}
	return insn, nil
}

// memberKindAllowed applies the operand rules of JVMS 6.5: field
// instructions take a Fieldref, invokevirtual a Methodref, invokeinterface
// an InterfaceMethodref, invokespecial and invokestatic either method kind.
func memberKindAllowed(op Opcode, kind operandKind, tag ConstantTag) bool {
	switch {
	case kind == operandField:
		return tag == ConstantFieldref
	case op == OpInvokeVirtual:
		return tag == ConstantMethodref
	case op == OpInvokeInterface:
		return tag == ConstantInterfaceMethodref
	default:
		return tag == ConstantMethodref || tag == ConstantInterfaceMethodref
	}
}
