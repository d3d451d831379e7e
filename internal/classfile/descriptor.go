package classfile

import (
	"strings"
)

const maxArrayDimensions = 255

// FieldType is a parsed field descriptor. Base is the descriptor character
// of the element type: one of BCDFIJSZ, L for a class or V for void returns.
type FieldType struct {
	Dimensions int
	Base       byte
	Class      string // internal name when Base is 'L'
}

var primitiveNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// JavaName renders the type as it is written in Java source.
func (t FieldType) JavaName() string {
	name := primitiveNames[t.Base]
	if t.Base == 'L' {
		name = JavaName(t.Class)
	}
	return name + strings.Repeat("[]", t.Dimensions)
}

type MethodType struct {
	Params []FieldType
	Return FieldType
}

func ParseFieldDescriptor(desc string) (FieldType, error) {
	t, n, err := parseFieldType(desc, 0)
	if err != nil {
		return FieldType{}, err
	}
	if n != len(desc) {
		return FieldType{}, wrapf(ErrBadDescriptor, "%q has trailing characters", desc)
	}
	return t, nil
}

func ParseMethodDescriptor(desc string) (MethodType, error) {
	if !strings.HasPrefix(desc, "(") {
		return MethodType{}, wrapf(ErrBadDescriptor, "%q does not start with '('", desc)
	}
	var mt MethodType
	pos := 1
	for {
		if pos >= len(desc) {
			return MethodType{}, wrapf(ErrBadDescriptor, "%q has no ')'", desc)
		}
		if desc[pos] == ')' {
			pos++
			break
		}
		t, n, err := parseFieldType(desc, pos)
		if err != nil {
			return MethodType{}, err
		}
		mt.Params = append(mt.Params, t)
		pos = n
	}

	if pos == len(desc)-1 && desc[pos] == 'V' {
		mt.Return = FieldType{Base: 'V'}
		return mt, nil
	}
	t, n, err := parseFieldType(desc, pos)
	if err != nil {
		return MethodType{}, err
	}
	if n != len(desc) {
		return MethodType{}, wrapf(ErrBadDescriptor, "%q has trailing characters", desc)
	}
	mt.Return = t
	return mt, nil
}

func parseFieldType(desc string, pos int) (FieldType, int, error) {
	var t FieldType
	for pos < len(desc) && desc[pos] == '[' {
		t.Dimensions++
		pos++
	}
	if t.Dimensions > maxArrayDimensions {
		return t, pos, wrapf(ErrBadDescriptor, "%q has more than %d dimensions", desc, maxArrayDimensions)
	}
	if pos >= len(desc) {
		return t, pos, wrapf(ErrBadDescriptor, "%q ends early", desc)
	}

	t.Base = desc[pos]
	switch t.Base {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return t, pos + 1, nil
	case 'L':
		end := strings.IndexByte(desc[pos:], ';')
		if end <= 1 {
			return t, pos, wrapf(ErrBadDescriptor, "%q has an unterminated class name", desc)
		}
		t.Class = desc[pos+1 : pos+end]
		if strings.ContainsAny(t.Class, ".[") {
			return t, pos, wrapf(ErrBadDescriptor, "%q has an invalid class name", desc)
		}
		return t, pos + end + 1, nil
	default:
		return t, pos, wrapf(ErrBadDescriptor, "%q has unknown type %q", desc, t.Base)
	}
}

func ValidateFieldDescriptor(desc string) error {
	_, err := ParseFieldDescriptor(desc)
	return err
}

func ValidateMethodDescriptor(desc string) error {
	_, err := ParseMethodDescriptor(desc)
	return err
}

// ReferencedTypes returns the class names used in a field or method
// descriptor, in order of appearance. Invalid descriptors yield nil.
func ReferencedTypes(desc string) []string {
	var types []FieldType
	if strings.HasPrefix(desc, "(") {
		mt, err := ParseMethodDescriptor(desc)
		if err != nil {
			return nil
		}
		types = append(mt.Params, mt.Return)
	} else {
		t, err := ParseFieldDescriptor(desc)
		if err != nil {
			return nil
		}
		types = []FieldType{t}
	}

	var names []string
	for _, t := range types {
		if t.Base == 'L' {
			names = append(names, t.Class)
		}
	}
	return names
}

// ElementClass returns the class behind a Class constant name. Array
// classes are named by descriptor ([Ljava/lang/String;); arrays of
// primitives have no element class and yield "".
func ElementClass(name string) string {
	if !strings.HasPrefix(name, "[") {
		return name
	}
	t, err := ParseFieldDescriptor(name)
	if err != nil || t.Base != 'L' {
		return ""
	}
	return t.Class
}

// JavaName converts an internal name (java/lang/String) to its binary
// name (java.lang.String).
func JavaName(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}

// TypeName renders a field descriptor in Java source form, falling back to
// the descriptor itself when it does not parse.
func TypeName(desc string) string {
	t, err := ParseFieldDescriptor(desc)
	if err != nil {
		return desc
	}
	return t.JavaName()
}
