// Package classfiletest assembles class files for tests.
package classfiletest

import (
	"encoding/binary"
	"fmt"
	"maps"
	"math"
	"slices"
)

const (
	AccPublic   = 0x0001
	AccStatic   = 0x0008
	AccSuper    = 0x0020
	AccNative   = 0x0100
	AccAbstract = 0x0400
	AccModule   = 0x8000
)

// Attr produces a complete attribute_info for b.
type Attr func(b *Builder) []byte

// Builder collects the parts of a class file. Constants are de-duplicated
// and numbered in the order they are first requested.
type Builder struct {
	pool      [][]byte
	poolIndex map[string]uint16
	slots     int

	Major, Minor uint16
	access       uint16
	name         string
	super        string
	interfaces   []string

	fields  [][]byte
	methods [][]byte
	attrs   []Attr
}

// New starts a public Java 8 class extending java/lang/Object.
func New(name string) *Builder {
	return &Builder{
		poolIndex: make(map[string]uint16),
		slots:     1,
		Major:     52,
		access:    AccPublic | AccSuper,
		name:      name,
		super:     "java/lang/Object",
	}
}

func (b *Builder) Version(major, minor uint16) *Builder {
	b.Major, b.Minor = major, minor
	return b
}

func (b *Builder) Access(flags uint16) *Builder {
	b.access = flags
	return b
}

// Super sets the superclass; "" writes super_class as 0.
func (b *Builder) Super(name string) *Builder {
	b.super = name
	return b
}

func (b *Builder) Interface(name string) *Builder {
	b.interfaces = append(b.interfaces, name)
	return b
}

func (b *Builder) Field(access uint16, name, desc string, attrs ...Attr) *Builder {
	b.fields = append(b.fields, b.member(access, name, desc, attrs))
	return b
}

// Method adds a method. A nil code writes no Code attribute.
func (b *Builder) Method(access uint16, name, desc string, code []byte, attrs ...Attr) *Builder {
	if code != nil {
		attrs = append([]Attr{CodeAttr(code)}, attrs...)
	}
	b.methods = append(b.methods, b.member(access, name, desc, attrs))
	return b
}

func (b *Builder) Attribute(attrs ...Attr) *Builder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

func (b *Builder) SourceFile(name string) *Builder {
	return b.Attribute(func(b *Builder) []byte {
		return b.attribute("SourceFile", u2(b.Utf8(name)))
	})
}

func (b *Builder) member(access uint16, name, desc string, attrs []Attr) []byte {
	out := u2(access)
	out = append(out, u2(b.Utf8(name))...)
	out = append(out, u2(b.Utf8(desc))...)
	return append(out, b.attributes(attrs)...)
}

func (b *Builder) attributes(attrs []Attr) []byte {
	out := u2(uint16(len(attrs)))
	for _, a := range attrs {
		out = append(out, a(b)...)
	}
	return out
}

func (b *Builder) attribute(name string, body []byte) []byte {
	out := u2(b.Utf8(name))
	out = append(out, u4(uint32(len(body)))...)
	return append(out, body...)
}

// Bytes serializes the class. The body is built first so that every
// constant it needs is in the pool before the pool is written.
func (b *Builder) Bytes() []byte {
	body := u2(b.access)
	body = append(body, u2(b.Class(b.name))...)
	if b.super == "" {
		body = append(body, u2(0)...)
	} else {
		body = append(body, u2(b.Class(b.super))...)
	}
	body = append(body, u2(uint16(len(b.interfaces)))...)
	for _, iface := range b.interfaces {
		body = append(body, u2(b.Class(iface))...)
	}
	body = append(body, u2(uint16(len(b.fields)))...)
	for _, f := range b.fields {
		body = append(body, f...)
	}
	body = append(body, u2(uint16(len(b.methods)))...)
	for _, m := range b.methods {
		body = append(body, m...)
	}
	body = append(body, b.attributes(b.attrs)...)

	out := u4(0xCAFEBABE)
	out = append(out, u2(b.Minor)...)
	out = append(out, u2(b.Major)...)
	out = append(out, u2(uint16(b.slots))...)
	for _, c := range b.pool {
		out = append(out, c...)
	}
	return append(out, body...)
}

func (b *Builder) constant(key string, data []byte, slots int) uint16 {
	if i, ok := b.poolIndex[key]; ok {
		return i
	}
	i := uint16(b.slots)
	b.pool = append(b.pool, data)
	b.poolIndex[key] = i
	b.slots += slots
	return i
}

// Utf8 encodes s as modified UTF-8.
func (b *Builder) Utf8(s string) uint16 {
	enc := ModifiedUTF8(s)
	data := append([]byte{1}, u2(uint16(len(enc)))...)
	return b.constant("utf8:"+s, append(data, enc...), 1)
}

func (b *Builder) Class(name string) uint16 {
	return b.constant("class:"+name, append([]byte{7}, u2(b.Utf8(name))...), 1)
}

func (b *Builder) String(s string) uint16 {
	return b.constant("string:"+s, append([]byte{8}, u2(b.Utf8(s))...), 1)
}

func (b *Builder) Integer(v int32) uint16 {
	return b.constant(fmt.Sprintf("int:%d", v), append([]byte{3}, u4(uint32(v))...), 1)
}

func (b *Builder) Long(v int64) uint16 {
	return b.constant(fmt.Sprintf("long:%d", v), append([]byte{5}, u8(uint64(v))...), 2)
}

func (b *Builder) Double(v float64) uint16 {
	return b.constant(fmt.Sprintf("double:%v", v), append([]byte{6}, u8(math.Float64bits(v))...), 2)
}

func (b *Builder) NameAndType(name, desc string) uint16 {
	data := append([]byte{12}, u2(b.Utf8(name))...)
	return b.constant("nat:"+name+":"+desc, append(data, u2(b.Utf8(desc))...), 1)
}

func (b *Builder) ref(tag byte, owner, name, desc string) uint16 {
	data := append([]byte{tag}, u2(b.Class(owner))...)
	data = append(data, u2(b.NameAndType(name, desc))...)
	return b.constant(fmt.Sprintf("ref%d:%s.%s%s", tag, owner, name, desc), data, 1)
}

func (b *Builder) Fieldref(owner, name, desc string) uint16 {
	return b.ref(9, owner, name, desc)
}

func (b *Builder) Methodref(owner, name, desc string) uint16 {
	return b.ref(10, owner, name, desc)
}

func (b *Builder) InterfaceMethodref(owner, name, desc string) uint16 {
	return b.ref(11, owner, name, desc)
}

func (b *Builder) InvokeDynamic(bootstrap uint16, name, desc string) uint16 {
	data := append([]byte{18}, u2(bootstrap)...)
	data = append(data, u2(b.NameAndType(name, desc))...)
	return b.constant(fmt.Sprintf("indy:%d:%s%s", bootstrap, name, desc), data, 1)
}

// Raw appends an arbitrary constant, for malformed pools.
func (b *Builder) Raw(data []byte, slots int) uint16 {
	return b.constant(fmt.Sprintf("raw:%d", len(b.pool)), data, slots)
}

// CodeAttr wraps code in a Code attribute with generous stack and locals,
// no exception handlers and the given nested attributes.
func CodeAttr(code []byte, nested ...Attr) Attr {
	return func(b *Builder) []byte {
		body := u2(8)
		body = append(body, u2(8)...)
		body = append(body, u4(uint32(len(code)))...)
		body = append(body, code...)
		body = append(body, u2(0)...)
		body = append(body, b.attributes(nested)...)
		return b.attribute("Code", body)
	}
}

func ExceptionsAttr(classes ...string) Attr {
	return func(b *Builder) []byte {
		body := u2(uint16(len(classes)))
		for _, c := range classes {
			body = append(body, u2(b.Class(c))...)
		}
		return b.attribute("Exceptions", body)
	}
}

func DeprecatedAttr() Attr {
	return RawAttr("Deprecated", nil)
}

func SignatureAttr(signature string) Attr {
	return func(b *Builder) []byte {
		return b.attribute("Signature", u2(b.Utf8(signature)))
	}
}

// RawAttr writes body verbatim under name.
func RawAttr(name string, body []byte) Attr {
	return func(b *Builder) []byte {
		return b.attribute(name, body)
	}
}

// AnnotationSpec describes one annotation. Strings holds element values
// written with the 's' tag.
type AnnotationSpec struct {
	Type    string // descriptor, e.g. Ljavax/ejb/Stateless;
	Strings map[string]string
}

func AnnotationsAttr(visible bool, specs ...AnnotationSpec) Attr {
	name := "RuntimeInvisibleAnnotations"
	if visible {
		name = "RuntimeVisibleAnnotations"
	}
	return func(b *Builder) []byte {
		body := u2(uint16(len(specs)))
		for _, spec := range specs {
			body = append(body, u2(b.Utf8(spec.Type))...)
			keys := slices.Sorted(maps.Keys(spec.Strings))
			body = append(body, u2(uint16(len(keys)))...)
			for _, k := range keys {
				body = append(body, u2(b.Utf8(k))...)
				body = append(body, 's')
				body = append(body, u2(b.Utf8(spec.Strings[k]))...)
			}
		}
		return b.attribute(name, body)
	}
}

// ModifiedUTF8 encodes s the way class files store strings.
func ModifiedUTF8(s string) []byte {
	var out []byte
	for _, r := range s {
		switch {
		case r != 0 && r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = append(out, 0xE0|byte(r>>12), 0x80|byte(r>>6&0x3F), 0x80|byte(r&0x3F))
		default:
			r -= 0x10000
			for _, unit := range []rune{0xD800 + r>>10, 0xDC00 + r&0x3FF} {
				out = append(out, 0xE0|byte(unit>>12), 0x80|byte(unit>>6&0x3F), 0x80|byte(unit&0x3F))
			}
		}
	}
	return out
}

func u2(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func u4(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func u8(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}
