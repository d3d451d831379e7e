package bytecode

import "fmt"

// Fact categories, as shown in reports.
const (
	CategoryDeclaredMethods = "Declared Methods"
	CategoryHierarchy       = "Class Hierarchy"
	CategoryTypeReferences  = "Type References"
	CategoryAPIUsage        = "API Usage"
	CategoryDeprecatedCalls = "Deprecated API Calls"
	CategoryAnnotations     = "Annotations"
	CategoryClassVersions   = "Class File Versions"
)

// Class and type names in facts use the dotted binary form (java.lang.String).

type DeclaredMethod struct {
	Class      string
	Name       string
	Descriptor string
}

func (f DeclaredMethod) Category() string { return CategoryDeclaredMethods }
func (f DeclaredMethod) String() string {
	return f.Class + "." + f.Name + f.Descriptor
}

type Superclass struct {
	Class      string
	Superclass string
}

func (f Superclass) Category() string { return CategoryHierarchy }
func (f Superclass) String() string {
	return f.Class + " extends " + f.Superclass
}

type ImplementedInterface struct {
	Class     string
	Interface string
}

func (f ImplementedInterface) Category() string { return CategoryHierarchy }
func (f ImplementedInterface) String() string {
	return f.Class + " implements " + f.Interface
}

type TypeReference struct {
	From string
	To   string
}

func (f TypeReference) Category() string { return CategoryTypeReferences }
func (f TypeReference) String() string {
	return f.From + " -> " + f.To
}

// APIInvocation records a field access or method call into a watched package.
type APIInvocation struct {
	Caller     string // class.method
	Owner      string
	Name       string
	Descriptor string
}

func (f APIInvocation) Category() string { return CategoryAPIUsage }
func (f APIInvocation) String() string {
	return f.Caller + " uses " + f.Owner + "." + f.Name + f.Descriptor
}

type DeprecatedCall struct {
	Caller string
	Owner  string
	Name   string
}

func (f DeprecatedCall) Category() string { return CategoryDeprecatedCalls }
func (f DeprecatedCall) String() string {
	return f.Caller + " calls " + f.Owner + "#" + f.Name
}

type Annotation struct {
	Target string
	Type   string
}

func (f Annotation) Category() string { return CategoryAnnotations }
func (f Annotation) String() string {
	return "@" + f.Type + " on " + f.Target
}

type ClassVersion struct {
	Class   string
	Major   int
	Release string
}

func (f ClassVersion) Category() string { return CategoryClassVersions }
func (f ClassVersion) String() string {
	return fmt.Sprintf("%s: major %d (Java %s)", f.Class, f.Major, f.Release)
}
