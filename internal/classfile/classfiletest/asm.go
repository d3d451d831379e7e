package classfiletest

// Asm assembles a code array against a Builder's constant pool.
type Asm struct {
	b    *Builder
	code []byte
}

func (b *Builder) Asm() *Asm {
	return &Asm{b: b}
}

// Op appends an opcode with raw operand bytes.
func (a *Asm) Op(op byte, operands ...byte) *Asm {
	a.code = append(a.code, op)
	a.code = append(a.code, operands...)
	return a
}

func (a *Asm) Return() *Asm {
	return a.Op(0xb1)
}

func (a *Asm) AReturn() *Asm {
	return a.Op(0xb0)
}

func (a *Asm) ALoad0() *Asm {
	return a.Op(0x2a)
}

func (a *Asm) Pop() *Asm {
	return a.Op(0x57)
}

func (a *Asm) InvokeVirtual(owner, name, desc string) *Asm {
	return a.Op(0xb6, u2(a.b.Methodref(owner, name, desc))...)
}

func (a *Asm) InvokeSpecial(owner, name, desc string) *Asm {
	return a.Op(0xb7, u2(a.b.Methodref(owner, name, desc))...)
}

func (a *Asm) InvokeStatic(owner, name, desc string) *Asm {
	return a.Op(0xb8, u2(a.b.Methodref(owner, name, desc))...)
}

func (a *Asm) InvokeInterface(owner, name, desc string, count byte) *Asm {
	return a.Op(0xb9, append(u2(a.b.InterfaceMethodref(owner, name, desc)), count, 0)...)
}

func (a *Asm) GetStatic(owner, name, desc string) *Asm {
	return a.Op(0xb2, u2(a.b.Fieldref(owner, name, desc))...)
}

func (a *Asm) New(class string) *Asm {
	return a.Op(0xbb, u2(a.b.Class(class))...)
}

func (a *Asm) CheckCast(class string) *Asm {
	return a.Op(0xc0, u2(a.b.Class(class))...)
}

func (a *Asm) LdcString(s string) *Asm {
	return a.Op(0x13, u2(a.b.String(s))...)
}

func (a *Asm) LdcClass(class string) *Asm {
	return a.Op(0x13, u2(a.b.Class(class))...)
}

// Bytes returns a copy of the assembled code.
func (a *Asm) Bytes() []byte {
	return append([]byte(nil), a.code...)
}
