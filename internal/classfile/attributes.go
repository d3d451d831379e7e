package classfile

import (
	"errors"
	"fmt"
)

// maxAnnotationDepth bounds element_value nesting
const maxAnnotationDepth = 64

/*
*	parseAttributes reads an attribute table
*
*	u2				attributes_count
*	attribute_info	attributes[attributes_count]
*
*	attribute_info {
*		u2	attribute_name_index
*		u4	attribute_length
*		u1	info[attribute_length]
*	}
 */
func parseAttributes(src source, pool ConstantPool, owner AttributeOwner) ([]*Attribute, error) {
	count, err := src.ReadU2()
	if err != nil {
		return nil, err
	}

	attrs := make([]*Attribute, 0, prealloc(src, count, 6))
	for i := 0; i < int(count); i++ {
		nameIndex, err := src.ReadU2()
		if err != nil {
			return nil, err
		}
		name, err := pool.Utf8(nameIndex)
		if err != nil {
			return nil, src.Fail(err, "attribute name of %s", describeOwner(owner))
		}
		length, err := src.ReadU4()
		if err != nil {
			return nil, err
		}
		base := src.BytesRead()
		data, err := src.ReadNBytes(int(length))
		if err != nil {
			return nil, err
		}

		attr := &Attribute{Name: name, Owner: owner, Data: data, offset: base}
		if err := decodeAttribute(attr, base, pool); err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func describeOwner(owner AttributeOwner) string {
	if owner.Kind == OwnerClass {
		return "class " + owner.Class
	}
	return fmt.Sprintf("%s %s.%s", owner.Kind, owner.Class, owner.Name)
}

// decodeAttribute fills the typed fields of known attributes. Code is
// decoded separately by the method parser. Unknown attributes keep only Data.
func decodeAttribute(attr *Attribute, base int64, pool ConstantPool) error {
	c := newBytesCursor(attr.Data, base, SectionAttributes)

	var err error
	switch attr.Name {
	case AttrSourceFile, AttrSignature:
		attr.Value, err = readUtf8(c, pool)

	case AttrConstantValue:
		var index uint16
		if index, err = c.ReadU2(); err == nil {
			var value string
			value, _, err = pool.Loadable(index)
			if err != nil {
				err = c.Fail(err, "%s value", attr.Name)
			}
			attr.Value = value
		}

	case AttrExceptions:
		var n uint16
		if n, err = c.ReadU2(); err != nil {
			break
		}
		attr.Exceptions = make([]string, 0, prealloc(c, n, 2))
		for i := 0; i < int(n) && err == nil; i++ {
			var index uint16
			if index, err = c.ReadU2(); err != nil {
				break
			}
			var name string
			if name, err = pool.ClassName(index); err != nil {
				err = c.Fail(err, "thrown exception %d", i)
				break
			}
			attr.Exceptions = append(attr.Exceptions, name)
		}

	case AttrDeprecated, AttrSynthetic:

	case AttrRuntimeVisibleAnnotations, AttrRuntimeInvisibleAnnotations:
		attr.Visible = attr.Name == AttrRuntimeVisibleAnnotations
		attr.Annotations, err = readAnnotations(c, pool)

	default:
		return nil
	}
	if err != nil {
		return attributeErr(attr, err)
	}
	if c.Remaining() != 0 {
		return c.Fail(ErrAttributeLength, "%s declares %d bytes, %d unused", attr.Name, len(attr.Data), c.Remaining())
	}
	return nil
}

// attributeErr maps running out of attribute bytes to a length mismatch;
// the attribute was fully read, so the class file itself is not truncated.
func attributeErr(attr *Attribute, err error) error {
	var de *DecodeError
	if errors.As(err, &de) && errors.Is(de.Err, ErrTruncated) {
		return &DecodeError{
			Section: de.Section,
			Offset:  de.Offset,
			Err:     wrapf(ErrAttributeLength, "%s is shorter than its contents", attr.Name),
		}
	}
	return err
}

func readUtf8(c *bytesCursor, pool ConstantPool) (string, error) {
	index, err := c.ReadU2()
	if err != nil {
		return "", err
	}
	s, err := pool.Utf8(index)
	if err != nil {
		return "", c.Fail(err, "utf8 reference")
	}
	return s, nil
}

/*
*	annotation {
*		u2	type_index
*		u2	num_element_value_pairs
*		{	u2				element_name_index
*			element_value	value
*		}	element_value_pairs[num_element_value_pairs]
*	}
 */
func readAnnotations(c *bytesCursor, pool ConstantPool) ([]Annotation, error) {
	n, err := c.ReadU2()
	if err != nil {
		return nil, err
	}
	annotations := make([]Annotation, 0, prealloc(c, n, 4))
	for i := 0; i < int(n); i++ {
		a, err := readAnnotation(c, pool, 0)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	return annotations, nil
}

func readAnnotation(c *bytesCursor, pool ConstantPool, depth int) (Annotation, error) {
	if depth > maxAnnotationDepth {
		return Annotation{}, c.Fail(ErrAttributeLength, "annotation nesting deeper than %d", maxAnnotationDepth)
	}
	typ, err := readUtf8(c, pool)
	if err != nil {
		return Annotation{}, err
	}
	pairs, err := c.ReadU2()
	if err != nil {
		return Annotation{}, err
	}
	a := Annotation{Type: typ, Elements: make([]AnnotationElement, 0, prealloc(c, pairs, 5))}
	for i := 0; i < int(pairs); i++ {
		name, err := readUtf8(c, pool)
		if err != nil {
			return Annotation{}, err
		}
		value, err := readElementValue(c, pool, depth+1)
		if err != nil {
			return Annotation{}, err
		}
		a.Elements = append(a.Elements, AnnotationElement{Name: name, Value: value})
	}
	return a, nil
}

func readElementValue(c *bytesCursor, pool ConstantPool, depth int) (ElementValue, error) {
	if depth > maxAnnotationDepth {
		return ElementValue{}, c.Fail(ErrAttributeLength, "element_value nesting deeper than %d", maxAnnotationDepth)
	}
	tag, err := c.ReadU1()
	if err != nil {
		return ElementValue{}, err
	}
	v := ElementValue{Tag: tag}

	switch tag {
	case 'B', 'C', 'I', 'S', 'Z', 'D', 'F', 'J':
		index, err := c.ReadU2()
		if err != nil {
			return v, err
		}
		want := ConstantInteger
		switch tag {
		case 'D':
			want = ConstantDouble
		case 'F':
			want = ConstantFloat
		case 'J':
			want = ConstantLong
		}
		if err := pool.expect(index, want); err != nil {
			return v, c.Fail(err, "element_value '%c'", tag)
		}
		v.Const, _, _ = pool.Loadable(index)

	case 's', 'c':
		if v.Const, err = readUtf8(c, pool); err != nil {
			return v, err
		}

	case 'e':
		if v.EnumType, err = readUtf8(c, pool); err != nil {
			return v, err
		}
		if v.EnumName, err = readUtf8(c, pool); err != nil {
			return v, err
		}

	case '@':
		a, err := readAnnotation(c, pool, depth+1)
		if err != nil {
			return v, err
		}
		v.Annotation = &a

	case '[':
		n, err := c.ReadU2()
		if err != nil {
			return v, err
		}
		v.Values = make([]ElementValue, 0, prealloc(c, n, 3))
		for i := 0; i < int(n); i++ {
			elem, err := readElementValue(c, pool, depth+1)
			if err != nil {
				return v, err
			}
			v.Values = append(v.Values, elem)
		}

	default:
		return v, c.Fail(ErrBadConstant, "unknown element_value tag %q", tag)
	}
	return v, nil
}

/*
*	decodeCodeAttribute decodes a Code attribute body
*
*	u2				max_stack
*	u2				max_locals
*	u4				code_length
*	u1				code[code_length]
*	u2				exception_table_length
*	{	u2 start_pc; u2 end_pc; u2 handler_pc; u2 catch_type
*	}				exception_table[exception_table_length]
*	u2				attributes_count
*	attribute_info	attributes[attributes_count]
 */
func decodeCodeAttribute(attr *Attribute, pool ConstantPool) (*Code, error) {
	c := newBytesCursor(attr.Data, attr.offset, SectionCode)
	code, err := readCode(c, attr, pool)
	if err != nil {
		return nil, attributeErr(attr, err)
	}
	if c.Remaining() != 0 {
		return nil, c.Fail(ErrAttributeLength, "Code declares %d bytes, %d unused", len(attr.Data), c.Remaining())
	}
	return code, nil
}

func readCode(c *bytesCursor, attr *Attribute, pool ConstantPool) (*Code, error) {
	var (
		code Code
		err  error
	)
	if code.MaxStack, err = c.ReadU2(); err != nil {
		return nil, err
	}
	if code.MaxLocals, err = c.ReadU2(); err != nil {
		return nil, err
	}
	length, err := c.ReadU4()
	if err != nil {
		return nil, err
	}
	if length == 0 || length >= 1<<16 {
		return nil, c.Fail(ErrBadInstruction, "code_length %d", length)
	}
	codeBase := c.BytesRead()
	raw, err := c.ReadNBytes(int(length))
	if err != nil {
		return nil, err
	}
	if code.Instructions, err = decodeCode(raw, codeBase, pool); err != nil {
		return nil, err
	}

	handlers, err := c.ReadU2()
	if err != nil {
		return nil, err
	}
	code.ExceptionTable = make([]ExceptionHandler, 0, prealloc(c, handlers, 8))
	for i := 0; i < int(handlers); i++ {
		var h ExceptionHandler
		for _, dst := range []*uint16{&h.StartPC, &h.EndPC, &h.HandlerPC} {
			if *dst, err = c.ReadU2(); err != nil {
				return nil, err
			}
		}
		catchType, err := c.ReadU2()
		if err != nil {
			return nil, err
		}
		if catchType != 0 {
			if h.CatchType, err = pool.ClassName(catchType); err != nil {
				return nil, c.Fail(err, "catch type of handler %d", i)
			}
		}
		code.ExceptionTable = append(code.ExceptionTable, h)
	}

	owner := attr.Owner
	owner.Kind = OwnerCode
	if code.Attributes, err = parseAttributes(c, pool, owner); err != nil {
		return nil, err
	}
	return &code, nil
}
