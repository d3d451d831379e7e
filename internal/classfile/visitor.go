package classfile

// Visitor receives structural callbacks from Accept in class-file order:
//
//	VisitClass
//	  VisitField, VisitAttribute (field attributes)          per field
//	  VisitMethod, VisitInstruction..., VisitAttribute...    per method
//	  VisitAttribute (class attributes)
//	VisitEnd
//
// VisitEnd is only called when the whole class decoded successfully, so
// implementations must not depend on it to publish what they collected.
type Visitor interface {
	VisitClass(class *ClassInfo)
	VisitField(field *FieldInfo)
	VisitMethod(method *MethodInfo)
	VisitInstruction(method *MethodInfo, insn Instruction)
	VisitAttribute(attr *Attribute)
	VisitEnd()
}

// NopVisitor ignores every callback. Embed it to implement only the
// callbacks a visitor cares about.
type NopVisitor struct{}

func (NopVisitor) VisitClass(*ClassInfo)                     {}
func (NopVisitor) VisitField(*FieldInfo)                     {}
func (NopVisitor) VisitMethod(*MethodInfo)                   {}
func (NopVisitor) VisitInstruction(*MethodInfo, Instruction) {}
func (NopVisitor) VisitAttribute(*Attribute)                 {}
func (NopVisitor) VisitEnd()                                 {}

var _ Visitor = NopVisitor{}
