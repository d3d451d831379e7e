package classfile

import "fmt"

/*
*	Class file format described here
*	https://docs.oracle.com/javase/specs/jvms/se21/html/jvms-4.html
 */

const (
	Magic = 0xCAFEBABE

	MinMajorVersion = 45 // JDK 1.1
	MaxMajorVersion = 69 // Java 25
)

// Sections named in DecodeError
const (
	SectionHeader       = "header"
	SectionConstantPool = "constant pool"
	SectionClass        = "class declaration"
	SectionInterfaces   = "interfaces"
	SectionFields       = "fields"
	SectionMethods      = "methods"
	SectionCode         = "code"
	SectionAttributes   = "attributes"
	SectionEnd          = "end"
)

type ConstantTag uint8

const (
	ConstantUtf8               ConstantTag = 1
	ConstantInteger            ConstantTag = 3
	ConstantFloat              ConstantTag = 4
	ConstantLong               ConstantTag = 5
	ConstantDouble             ConstantTag = 6
	ConstantClass              ConstantTag = 7
	ConstantString             ConstantTag = 8
	ConstantFieldref           ConstantTag = 9
	ConstantMethodref          ConstantTag = 10
	ConstantInterfaceMethodref ConstantTag = 11
	ConstantNameAndType        ConstantTag = 12
	ConstantMethodHandle       ConstantTag = 15
	ConstantMethodType         ConstantTag = 16
	ConstantDynamic            ConstantTag = 17
	ConstantInvokeDynamic      ConstantTag = 18
	ConstantModule             ConstantTag = 19
	ConstantPackage            ConstantTag = 20
)

func (t ConstantTag) String() string {
	switch t {
	case ConstantUtf8:
		return "Utf8"
	case ConstantInteger:
		return "Integer"
	case ConstantFloat:
		return "Float"
	case ConstantLong:
		return "Long"
	case ConstantDouble:
		return "Double"
	case ConstantClass:
		return "Class"
	case ConstantString:
		return "String"
	case ConstantFieldref:
		return "Fieldref"
	case ConstantMethodref:
		return "Methodref"
	case ConstantInterfaceMethodref:
		return "InterfaceMethodref"
	case ConstantNameAndType:
		return "NameAndType"
	case ConstantMethodHandle:
		return "MethodHandle"
	case ConstantMethodType:
		return "MethodType"
	case ConstantDynamic:
		return "Dynamic"
	case ConstantInvokeDynamic:
		return "InvokeDynamic"
	case ConstantModule:
		return "Module"
	case ConstantPackage:
		return "Package"
	default:
		return fmt.Sprintf("ConstantTag(%d)", uint8(t))
	}
}

type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020 // classes
	AccSynchronized AccessFlags = 0x0020 // methods
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

func (f AccessFlags) Has(flag AccessFlags) bool {
	return f&flag != 0
}

// ClassInfo is the class header, delivered after the constant pool has been
// read and validated.
type ClassInfo struct {
	MinorVersion uint16
	MajorVersion uint16
	Access       AccessFlags
	Name         string // internal form, e.g. java/lang/String
	SuperName    string // empty for java/lang/Object and module-info
	Interfaces   []string
}

func (c *ClassInfo) IsInterface() bool {
	return c.Access.Has(AccInterface)
}

// JavaRelease maps the major version to the Java release that introduced it.
func (c *ClassInfo) JavaRelease() string {
	return JavaRelease(c.MajorVersion)
}

func JavaRelease(major uint16) string {
	switch {
	case major < 45:
		return "unknown"
	case major <= 48:
		// 45 = 1.1 (and 1.0.2), 46 = 1.2, 47 = 1.3, 48 = 1.4
		if major == 45 {
			return "1.1"
		}
		return fmt.Sprintf("1.%d", major-44)
	default:
		return fmt.Sprintf("%d", major-44)
	}
}

type FieldInfo struct {
	Owner      string
	Access     AccessFlags
	Name       string
	Descriptor string
	Attributes []*Attribute
}

type MethodInfo struct {
	Owner      string
	Access     AccessFlags
	Name       string
	Descriptor string
	Attributes []*Attribute
	Code       *Code // nil for abstract and native methods
}

// Code is the decoded body of a Code attribute
type Code struct {
	MaxStack       uint16
	MaxLocals      uint16
	Instructions   []Instruction
	ExceptionTable []ExceptionHandler
	Attributes     []*Attribute
}

type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType string // empty for finally blocks
}

// MemberRef is a resolved Fieldref, Methodref or InterfaceMethodref
type MemberRef struct {
	Kind       ConstantTag
	Owner      string
	Name       string
	Descriptor string
}

func (m MemberRef) String() string {
	return m.Owner + "." + m.Name + m.Descriptor
}

type OwnerKind int

const (
	OwnerClass OwnerKind = iota
	OwnerField
	OwnerMethod
	OwnerCode
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerClass:
		return "class"
	case OwnerField:
		return "field"
	case OwnerMethod:
		return "method"
	case OwnerCode:
		return "code"
	default:
		return fmt.Sprintf("OwnerKind(%d)", int(k))
	}
}

// AttributeOwner identifies the structure an attribute is attached to.
type AttributeOwner struct {
	Kind       OwnerKind
	Class      string
	Name       string // field or method name, empty for the class
	Descriptor string
}

// Attribute is one attribute_info. Known attributes are decoded into the
// typed fields; Data always holds the raw body.
type Attribute struct {
	Name  string
	Owner AttributeOwner
	Data  []byte

	Value       string // SourceFile, Signature, ConstantValue
	Exceptions  []string
	Annotations []Annotation
	Visible     bool // RuntimeVisibleAnnotations

	offset int64 // absolute offset of Data
}

const (
	AttrCode                        = "Code"
	AttrSourceFile                  = "SourceFile"
	AttrSignature                   = "Signature"
	AttrConstantValue               = "ConstantValue"
	AttrExceptions                  = "Exceptions"
	AttrDeprecated                  = "Deprecated"
	AttrSynthetic                   = "Synthetic"
	AttrRuntimeVisibleAnnotations   = "RuntimeVisibleAnnotations"
	AttrRuntimeInvisibleAnnotations = "RuntimeInvisibleAnnotations"
)

// Annotation is a decoded annotation; Type is a field descriptor (Lcom/x/A;)
type Annotation struct {
	Type     string
	Elements []AnnotationElement
}

type AnnotationElement struct {
	Name  string
	Value ElementValue
}

// ElementValue is one element_value. Tag selects which fields are set.
type ElementValue struct {
	Tag        byte
	Const      string         // B C D F I J S Z s: constant rendered as text; c: class descriptor
	EnumType   string         // e
	EnumName   string         // e
	Annotation *Annotation    // @
	Values     []ElementValue // [
}
