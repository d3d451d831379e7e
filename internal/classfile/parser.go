package classfile

import (
	"io"
)

// Parser decodes one class file and drives a Visitor. A Parser is used once;
// Accept is the usual entry point.
type Parser struct {
	reader  *BinaryReader
	visitor Visitor

	pool  ConstantPool
	class *ClassInfo
}

func NewParser(r io.Reader, v Visitor) *Parser {
	return &Parser{
		reader:  NewBinaryReader(r),
		visitor: v,
	}
}

// Accept parses the class file read from r and reports its structure to v.
// The reader is borrowed: it is never closed and nothing is kept after the
// call returns. Callbacks already issued before a failure are not undone.
func Accept(r io.Reader, v Visitor) error {
	return NewParser(r, v).Parse()
}

/*
*	Parse reads the ClassFile structure
*
*	u4				magic
*	u2				minor_version
*	u2				major_version
*	u2				constant_pool_count
*	cp_info			constant_pool[constant_pool_count-1]
*	u2				access_flags
*	u2				this_class
*	u2				super_class
*	u2				interfaces_count
*	u2				interfaces[interfaces_count]
*	u2				fields_count
*	field_info		fields[fields_count]
*	u2				methods_count
*	method_info		methods[methods_count]
*	u2				attributes_count
*	attribute_info	attributes[attributes_count]
 */
func (p *Parser) Parse() error {
	minor, major, err := p.parseHeader()
	if err != nil {
		return err
	}

	if p.pool, err = parseConstantPool(p.reader); err != nil {
		return err
	}

	if err := p.parseClass(minor, major); err != nil {
		return err
	}
	p.visitor.VisitClass(p.class)

	if err := p.parseFields(); err != nil {
		return err
	}
	if err := p.parseMethods(); err != nil {
		return err
	}

	p.reader.Enter(SectionAttributes)
	attrs, err := parseAttributes(p.reader, p.pool, AttributeOwner{Kind: OwnerClass, Class: p.class.Name})
	if err != nil {
		return err
	}
	for _, attr := range attrs {
		p.visitor.VisitAttribute(attr)
	}

	p.reader.Enter(SectionEnd)
	eof, err := p.reader.AtEOF()
	if err != nil {
		return err
	}
	if !eof {
		return p.reader.Fail(ErrTrailingData, "bytes follow the class attributes")
	}

	p.visitor.VisitEnd()
	return nil
}

func (p *Parser) parseHeader() (uint16, uint16, error) {
	p.reader.Enter(SectionHeader)

	magic, err := p.reader.ReadU4()
	if err != nil {
		return 0, 0, err
	}
	if magic != Magic {
		return 0, 0, &DecodeError{Section: SectionHeader, Offset: 0, Err: wrapf(ErrBadMagic, "got 0x%08X", magic)}
	}

	minor, err := p.reader.ReadU2()
	if err != nil {
		return 0, 0, err
	}
	major, err := p.reader.ReadU2()
	if err != nil {
		return 0, 0, err
	}
	if major < MinMajorVersion || major > MaxMajorVersion {
		return 0, 0, p.reader.Fail(ErrUnsupportedVersion, "major version %d not in [%d,%d]", major, MinMajorVersion, MaxMajorVersion)
	}
	// From Java 12 on the minor version is either 0 or 65535 (preview features)
	if major >= 56 && minor != 0 && minor != 0xFFFF {
		return 0, 0, p.reader.Fail(ErrUnsupportedVersion, "minor version %d with major %d", minor, major)
	}
	return minor, major, nil
}

func (p *Parser) parseClass(minor, major uint16) error {
	p.reader.Enter(SectionClass)

	access, err := p.reader.ReadU2()
	if err != nil {
		return err
	}
	class := &ClassInfo{MinorVersion: minor, MajorVersion: major, Access: AccessFlags(access)}

	thisIndex, err := p.reader.ReadU2()
	if err != nil {
		return err
	}
	if class.Name, err = p.pool.ClassName(thisIndex); err != nil {
		return p.reader.Fail(err, "this_class")
	}

	superIndex, err := p.reader.ReadU2()
	if err != nil {
		return err
	}
	if superIndex == 0 {
		if class.Name != "java/lang/Object" && !class.Access.Has(AccModule) {
			return p.reader.Fail(ErrBadConstantRef, "%s has no superclass", class.Name)
		}
	} else if class.SuperName, err = p.pool.ClassName(superIndex); err != nil {
		return p.reader.Fail(err, "super_class")
	}

	p.reader.Enter(SectionInterfaces)
	count, err := p.reader.ReadU2()
	if err != nil {
		return err
	}
	class.Interfaces = make([]string, 0, prealloc(p.reader, count, 2))
	for i := 0; i < int(count); i++ {
		index, err := p.reader.ReadU2()
		if err != nil {
			return err
		}
		name, err := p.pool.ClassName(index)
		if err != nil {
			return p.reader.Fail(err, "interface %d", i)
		}
		class.Interfaces = append(class.Interfaces, name)
	}

	p.class = class
	return nil
}

/*
*	field_info / method_info
*
*	u2				access_flags
*	u2				name_index
*	u2				descriptor_index
*	u2				attributes_count
*	attribute_info	attributes[attributes_count]
 */
func (p *Parser) parseMember(kind OwnerKind) (AccessFlags, string, string, []*Attribute, error) {
	access, err := p.reader.ReadU2()
	if err != nil {
		return 0, "", "", nil, err
	}
	nameIndex, err := p.reader.ReadU2()
	if err != nil {
		return 0, "", "", nil, err
	}
	name, err := p.pool.Utf8(nameIndex)
	if err != nil {
		return 0, "", "", nil, p.reader.Fail(err, "%s name", kind)
	}
	descIndex, err := p.reader.ReadU2()
	if err != nil {
		return 0, "", "", nil, err
	}
	desc, err := p.pool.Utf8(descIndex)
	if err != nil {
		return 0, "", "", nil, p.reader.Fail(err, "%s descriptor", kind)
	}

	validate := ValidateFieldDescriptor
	if kind == OwnerMethod {
		validate = ValidateMethodDescriptor
	}
	if err := validate(desc); err != nil {
		return 0, "", "", nil, p.reader.Fail(err, "%s %s", kind, name)
	}

	owner := AttributeOwner{Kind: kind, Class: p.class.Name, Name: name, Descriptor: desc}
	attrs, err := parseAttributes(p.reader, p.pool, owner)
	if err != nil {
		return 0, "", "", nil, err
	}
	return AccessFlags(access), name, desc, attrs, nil
}

func (p *Parser) parseFields() error {
	p.reader.Enter(SectionFields)
	count, err := p.reader.ReadU2()
	if err != nil {
		return err
	}

	for i := 0; i < int(count); i++ {
		access, name, desc, attrs, err := p.parseMember(OwnerField)
		if err != nil {
			return err
		}
		field := &FieldInfo{Owner: p.class.Name, Access: access, Name: name, Descriptor: desc, Attributes: attrs}
		p.visitor.VisitField(field)
		for _, attr := range attrs {
			p.visitor.VisitAttribute(attr)
		}
	}
	return nil
}

func (p *Parser) parseMethods() error {
	p.reader.Enter(SectionMethods)
	count, err := p.reader.ReadU2()
	if err != nil {
		return err
	}

	for i := 0; i < int(count); i++ {
		start := p.reader.BytesRead()
		access, name, desc, attrs, err := p.parseMember(OwnerMethod)
		if err != nil {
			return err
		}
		method := &MethodInfo{Owner: p.class.Name, Access: access, Name: name, Descriptor: desc, Attributes: attrs}
		if err := p.attachCode(method, start); err != nil {
			return err
		}

		p.visitor.VisitMethod(method)
		if method.Code != nil {
			for _, insn := range method.Code.Instructions {
				p.visitor.VisitInstruction(method, insn)
			}
		}
		for _, attr := range attrs {
			p.visitor.VisitAttribute(attr)
		}
		if method.Code != nil {
			for _, attr := range method.Code.Attributes {
				p.visitor.VisitAttribute(attr)
			}
		}
	}
	return nil
}

// attachCode decodes the method's Code attribute. Abstract and native
// methods have none; every other method has exactly one.
func (p *Parser) attachCode(method *MethodInfo, start int64) error {
	bodyless := method.Access.Has(AccAbstract) || method.Access.Has(AccNative)
	for _, attr := range method.Attributes {
		if attr.Name != AttrCode {
			continue
		}
		if bodyless || method.Code != nil {
			return &DecodeError{
				Section: SectionMethods,
				Offset:  attr.offset,
				Err:     wrapf(ErrMissingCode, "unexpected Code attribute on %s%s", method.Name, method.Descriptor),
			}
		}
		code, err := decodeCodeAttribute(attr, p.pool)
		if err != nil {
			return err
		}
		method.Code = code
	}
	if method.Code == nil && !bodyless {
		return &DecodeError{
			Section: SectionMethods,
			Offset:  start,
			Err:     wrapf(ErrMissingCode, "method %s%s has no Code attribute", method.Name, method.Descriptor),
		}
	}
	return nil
}
