// Package bytecode extracts facts from class files. Each rule is a
// visitor over the class-file structure; a DelegatingVisitor runs many
// rules over a single parse.
package bytecode

import (
	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/classfile"
)

// ResultGatheringVisitor is a class-file visitor that accumulates facts.
// Facts are added as callbacks arrive, so Results is meaningful even when
// the parse stopped early.
type ResultGatheringVisitor interface {
	classfile.Visitor
	Results() analyze.ResultSet
}

// DelegatingVisitor forwards every callback to each of its visitors and
// reports the union of their results.
type DelegatingVisitor struct {
	visitors []ResultGatheringVisitor
}

func NewDelegatingVisitor(visitors ...ResultGatheringVisitor) *DelegatingVisitor {
	return &DelegatingVisitor{visitors: visitors}
}

func (d *DelegatingVisitor) VisitClass(class *classfile.ClassInfo) {
	for _, v := range d.visitors {
		v.VisitClass(class)
	}
}

func (d *DelegatingVisitor) VisitField(field *classfile.FieldInfo) {
	for _, v := range d.visitors {
		v.VisitField(field)
	}
}

func (d *DelegatingVisitor) VisitMethod(method *classfile.MethodInfo) {
	for _, v := range d.visitors {
		v.VisitMethod(method)
	}
}

func (d *DelegatingVisitor) VisitInstruction(method *classfile.MethodInfo, insn classfile.Instruction) {
	for _, v := range d.visitors {
		v.VisitInstruction(method, insn)
	}
}

func (d *DelegatingVisitor) VisitAttribute(attr *classfile.Attribute) {
	for _, v := range d.visitors {
		v.VisitAttribute(attr)
	}
}

func (d *DelegatingVisitor) VisitEnd() {
	for _, v := range d.visitors {
		v.VisitEnd()
	}
}

func (d *DelegatingVisitor) Results() analyze.ResultSet {
	results := analyze.NewResultSet()
	for _, v := range d.visitors {
		results.Union(v.Results())
	}
	return results
}

// collector is embedded by rules to hold their facts.
type collector struct {
	results analyze.ResultSet
}

func (c *collector) add(f analyze.Fact) {
	if c.results == nil {
		c.results = analyze.NewResultSet()
	}
	c.results.Add(f)
}

func (c *collector) Results() analyze.ResultSet {
	if c.results == nil {
		return analyze.NewResultSet()
	}
	return c.results
}
