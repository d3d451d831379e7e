package classfile

import (
	"math"
	"strconv"
	"unicode/utf16"
)

// Constant is one constant pool slot. Index fields reference other slots;
// the second slot of a Long or Double is left zero.
type Constant struct {
	Tag    ConstantTag
	Offset int64 // absolute offset of the tag byte

	Utf8 string
	Int  int32
	Long int64
	F32  float32
	F64  float64

	Index1 uint16 // Class/String/MethodType/Module/Package name, ref class, NameAndType name, bootstrap index
	Index2 uint16 // ref NameAndType, NameAndType descriptor, dynamic NameAndType
	Kind   uint8  // MethodHandle reference kind
}

// ConstantPool is indexed from 1; slot 0 is unused.
type ConstantPool []Constant

/*
*	parseConstantPool reads the constant pool
*
*	u2			constant_pool_count
*	cp_info		constant_pool[constant_pool_count-1]
*
*	Each cp_info starts with a u1 tag followed by tag-specific data.
 */
func parseConstantPool(reader *BinaryReader) (ConstantPool, error) {
	reader.Enter(SectionConstantPool)

	count, err := reader.ReadU2()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, reader.Fail(ErrBadConstant, "constant_pool_count is 0")
	}

	pool := make(ConstantPool, count)
	for i := 1; i < int(count); i++ {
		offset := reader.BytesRead()
		tagRaw, err := reader.ReadU1()
		if err != nil {
			return nil, err
		}

		c := Constant{Tag: ConstantTag(tagRaw), Offset: offset}
		switch c.Tag {
		case ConstantUtf8:
			length, err := reader.ReadU2()
			if err != nil {
				return nil, err
			}
			raw, err := reader.ReadNBytes(int(length))
			if err != nil {
				return nil, err
			}
			s, ok := decodeModifiedUTF8(raw)
			if !ok {
				return nil, reader.Fail(ErrBadConstant, "malformed modified UTF-8 at #%d", i)
			}
			c.Utf8 = s

		case ConstantInteger:
			v, err := reader.ReadU4()
			if err != nil {
				return nil, err
			}
			c.Int = int32(v)

		case ConstantFloat:
			v, err := reader.ReadU4()
			if err != nil {
				return nil, err
			}
			c.F32 = math.Float32frombits(v)

		case ConstantLong, ConstantDouble:
			v, err := reader.ReadU8()
			if err != nil {
				return nil, err
			}
			if c.Tag == ConstantLong {
				c.Long = int64(v)
			} else {
				c.F64 = math.Float64frombits(v)
			}
			if i+1 >= int(count) {
				return nil, reader.Fail(ErrBadConstant, "8-byte constant #%d overflows the pool", i)
			}
			pool[i] = c
			i++ // takes two slots
			continue

		case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
			if c.Index1, err = reader.ReadU2(); err != nil {
				return nil, err
			}

		case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref,
			ConstantNameAndType, ConstantDynamic, ConstantInvokeDynamic:
			if c.Index1, err = reader.ReadU2(); err != nil {
				return nil, err
			}
			if c.Index2, err = reader.ReadU2(); err != nil {
				return nil, err
			}

		case ConstantMethodHandle:
			if c.Kind, err = reader.ReadU1(); err != nil {
				return nil, err
			}
			if c.Index1, err = reader.ReadU2(); err != nil {
				return nil, err
			}

		default:
			return nil, &DecodeError{
				Section: SectionConstantPool,
				Offset:  offset,
				Err:     wrapf(ErrBadConstant, "unknown tag %d at #%d", tagRaw, i),
			}
		}
		pool[i] = c
	}

	if err := pool.validate(); err != nil {
		return nil, err
	}
	return pool, nil
}

// validate checks every cross reference so later lookups cannot fail.
func (cp ConstantPool) validate() error {
	for i := 1; i < len(cp); i++ {
		c := cp[i]
		var err error
		switch c.Tag {
		case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
			err = cp.expect(c.Index1, ConstantUtf8)
		case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref:
			if err = cp.expect(c.Index1, ConstantClass); err == nil {
				err = cp.expect(c.Index2, ConstantNameAndType)
			}
		case ConstantNameAndType:
			if err = cp.expect(c.Index1, ConstantUtf8); err == nil {
				err = cp.expect(c.Index2, ConstantUtf8)
			}
		case ConstantDynamic, ConstantInvokeDynamic:
			err = cp.expect(c.Index2, ConstantNameAndType)
		case ConstantMethodHandle:
			if c.Kind < 1 || c.Kind > 9 {
				err = wrapf(ErrBadConstant, "method handle kind %d", c.Kind)
			} else {
				err = cp.expectRef(c.Index1)
			}
		}
		if err != nil {
			return &DecodeError{Section: SectionConstantPool, Offset: c.Offset, Err: wrapf(err, "at #%d", i)}
		}
	}
	return nil
}

func (cp ConstantPool) expect(index uint16, tag ConstantTag) error {
	if int(index) <= 0 || int(index) >= len(cp) {
		return wrapf(ErrBadConstantRef, "index %d out of range [1,%d)", index, len(cp))
	}
	if got := cp[index].Tag; got != tag {
		return wrapf(ErrBadConstantRef, "index %d is %s, want %s", index, got, tag)
	}
	return nil
}

func (cp ConstantPool) expectRef(index uint16) error {
	if int(index) <= 0 || int(index) >= len(cp) {
		return wrapf(ErrBadConstantRef, "index %d out of range [1,%d)", index, len(cp))
	}
	switch cp[index].Tag {
	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref:
		return nil
	default:
		return wrapf(ErrBadConstantRef, "index %d is %s, want a member reference", index, cp[index].Tag)
	}
}

// Utf8 returns the string at index, which must be a Utf8 constant.
func (cp ConstantPool) Utf8(index uint16) (string, error) {
	if err := cp.expect(index, ConstantUtf8); err != nil {
		return "", err
	}
	return cp[index].Utf8, nil
}

// ClassName resolves a Class constant to its internal name.
func (cp ConstantPool) ClassName(index uint16) (string, error) {
	if err := cp.expect(index, ConstantClass); err != nil {
		return "", err
	}
	return cp[cp[index].Index1].Utf8, nil
}

// NameAndType resolves a NameAndType constant.
func (cp ConstantPool) NameAndType(index uint16) (string, string, error) {
	if err := cp.expect(index, ConstantNameAndType); err != nil {
		return "", "", err
	}
	c := cp[index]
	return cp[c.Index1].Utf8, cp[c.Index2].Utf8, nil
}

// Member resolves a Fieldref, Methodref or InterfaceMethodref.
func (cp ConstantPool) Member(index uint16) (MemberRef, error) {
	if err := cp.expectRef(index); err != nil {
		return MemberRef{}, err
	}
	c := cp[index]
	owner, _ := cp.ClassName(c.Index1)
	name, desc, _ := cp.NameAndType(c.Index2)
	return MemberRef{Kind: c.Tag, Owner: owner, Name: name, Descriptor: desc}, nil
}

// Loadable renders an ldc operand; isClass is set for Class constants.
func (cp ConstantPool) Loadable(index uint16) (string, bool, error) {
	if int(index) <= 0 || int(index) >= len(cp) {
		return "", false, wrapf(ErrBadConstantRef, "index %d out of range [1,%d)", index, len(cp))
	}
	c := cp[index]
	switch c.Tag {
	case ConstantClass:
		name, _ := cp.ClassName(index)
		return name, true, nil
	case ConstantString:
		return cp[c.Index1].Utf8, false, nil
	case ConstantInteger:
		return strconv.FormatInt(int64(c.Int), 10), false, nil
	case ConstantFloat:
		return strconv.FormatFloat(float64(c.F32), 'g', -1, 32), false, nil
	case ConstantLong:
		return strconv.FormatInt(c.Long, 10), false, nil
	case ConstantDouble:
		return strconv.FormatFloat(c.F64, 'g', -1, 64), false, nil
	case ConstantMethodType:
		return cp[c.Index1].Utf8, false, nil
	case ConstantMethodHandle, ConstantDynamic:
		return c.Tag.String(), false, nil
	default:
		return "", false, wrapf(ErrBadConstantRef, "index %d is %s, not loadable", index, c.Tag)
	}
}

// wideLoadable reports whether the loadable constant at index takes two
// operand stack slots, which only ldc2_w may push.
func (cp ConstantPool) wideLoadable(index uint16) bool {
	c := cp[index]
	switch c.Tag {
	case ConstantLong, ConstantDouble:
		return true
	case ConstantDynamic:
		_, desc, _ := cp.NameAndType(c.Index2)
		return desc == "J" || desc == "D"
	}
	return false
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8: NUL is encoded as
// C0 80 and supplementary characters as surrogate pairs of 3-byte sequences.
func decodeModifiedUTF8(b []byte) (string, bool) {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			if c == 0 {
				return "", false
			}
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", false
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", false
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			return "", false
		}
	}
	return string(utf16.Decode(units)), true
}
