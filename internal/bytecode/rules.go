package bytecode

import (
	"strings"

	"github.com/mabhi256/migration-analyzer/internal/classfile"
)

// RuleConfig holds the policy inputs of the configurable rules.
type RuleConfig struct {
	// APIPackages are dotted package prefixes whose use is reported.
	APIPackages []string
	// DeprecatedAPIs are members written as owner#name, e.g. java.lang.Thread#stop.
	DeprecatedAPIs []string
}

var DefaultAPIPackages = []string{
	"javax.ejb",
	"javax.jms",
	"javax.naming",
	"javax.persistence",
	"javax.servlet",
	"javax.transaction",
	"javax.ws.rs",
	"javax.xml.bind",
	"javax.xml.rpc",
	"com.ibm.websphere",
	"org.jboss",
	"weblogic",
	"sun",
	"com.sun",
}

var DefaultDeprecatedAPIs = []string{
	"java.lang.Thread#stop",
	"java.lang.Thread#suspend",
	"java.lang.Thread#resume",
	"java.lang.Thread#countStackFrames",
	"java.lang.Runtime#runFinalizersOnExit",
	"java.lang.System#runFinalizersOnExit",
	"java.lang.SecurityManager#checkMemberAccess",
	"java.util.Date#getYear",
	"java.util.Date#parse",
	"java.net.URLEncoder#encode",
	"java.net.URLDecoder#decode",
}

func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		APIPackages:    DefaultAPIPackages,
		DeprecatedAPIs: DefaultDeprecatedAPIs,
	}
}

// Rules returns a constructor for every rule, ready for NewDelegatingFactory.
func Rules(cfg RuleConfig) []func() ResultGatheringVisitor {
	packages := newPackageMatcher(cfg.APIPackages)
	deprecated := newMemberSet(cfg.DeprecatedAPIs)

	return []func() ResultGatheringVisitor{
		NewDeclaredMethodsRule,
		NewHierarchyRule,
		NewTypeReferenceRule,
		func() ResultGatheringVisitor { return &APIUsageRule{packages: packages} },
		func() ResultGatheringVisitor { return &DeprecatedAPIRule{deprecated: deprecated} },
		NewAnnotationRule,
		NewClassVersionRule,
	}
}

// DeclaredMethodsRule records every method a class declares.
type DeclaredMethodsRule struct {
	classfile.NopVisitor
	collector
}

func NewDeclaredMethodsRule() ResultGatheringVisitor {
	return &DeclaredMethodsRule{}
}

func (r *DeclaredMethodsRule) VisitMethod(method *classfile.MethodInfo) {
	r.add(DeclaredMethod{
		Class:      classfile.JavaName(method.Owner),
		Name:       method.Name,
		Descriptor: method.Descriptor,
	})
}

// HierarchyRule records the superclass and interfaces of a class. Extending
// java.lang.Object is implied and not reported.
type HierarchyRule struct {
	classfile.NopVisitor
	collector
}

func NewHierarchyRule() ResultGatheringVisitor {
	return &HierarchyRule{}
}

func (r *HierarchyRule) VisitClass(class *classfile.ClassInfo) {
	name := classfile.JavaName(class.Name)
	if class.SuperName != "" && class.SuperName != "java/lang/Object" {
		r.add(Superclass{Class: name, Superclass: classfile.JavaName(class.SuperName)})
	}
	for _, iface := range class.Interfaces {
		r.add(ImplementedInterface{Class: name, Interface: classfile.JavaName(iface)})
	}
}

// TypeReferenceRule records every other type a class mentions in its
// header, member descriptors, thrown exceptions, handlers and instructions.
type TypeReferenceRule struct {
	classfile.NopVisitor
	collector
}

func NewTypeReferenceRule() ResultGatheringVisitor {
	return &TypeReferenceRule{}
}

func (r *TypeReferenceRule) ref(from, internal string) {
	internal = classfile.ElementClass(internal)
	if internal == "" || internal == from {
		return
	}
	r.add(TypeReference{From: classfile.JavaName(from), To: classfile.JavaName(internal)})
}

func (r *TypeReferenceRule) refDescriptor(from, desc string) {
	for _, name := range classfile.ReferencedTypes(desc) {
		r.ref(from, name)
	}
}

func (r *TypeReferenceRule) VisitClass(class *classfile.ClassInfo) {
	r.ref(class.Name, class.SuperName)
	for _, iface := range class.Interfaces {
		r.ref(class.Name, iface)
	}
}

func (r *TypeReferenceRule) VisitField(field *classfile.FieldInfo) {
	r.refDescriptor(field.Owner, field.Descriptor)
}

func (r *TypeReferenceRule) VisitMethod(method *classfile.MethodInfo) {
	r.refDescriptor(method.Owner, method.Descriptor)
	if method.Code != nil {
		for _, h := range method.Code.ExceptionTable {
			r.ref(method.Owner, h.CatchType)
		}
	}
}

func (r *TypeReferenceRule) VisitInstruction(method *classfile.MethodInfo, insn classfile.Instruction) {
	if insn.Type != "" {
		r.ref(method.Owner, insn.Type)
	}
	if insn.Member != nil {
		if insn.Member.Owner != "" {
			r.ref(method.Owner, insn.Member.Owner)
		}
		r.refDescriptor(method.Owner, insn.Member.Descriptor)
	}
}

func (r *TypeReferenceRule) VisitAttribute(attr *classfile.Attribute) {
	for _, exception := range attr.Exceptions {
		r.ref(attr.Owner.Class, exception)
	}
}

type packageMatcher []string

func newPackageMatcher(prefixes []string) packageMatcher {
	m := make(packageMatcher, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(p), "*"), ".")
		if p != "" {
			m = append(m, p)
		}
	}
	return m
}

func (m packageMatcher) matches(class string) bool {
	for _, p := range m {
		if class == p || strings.HasPrefix(class, p+".") {
			return true
		}
	}
	return false
}

// APIUsageRule records field accesses and method calls whose owner lives
// in one of the configured packages.
type APIUsageRule struct {
	classfile.NopVisitor
	collector
	packages packageMatcher
}

func NewAPIUsageRule(packages []string) ResultGatheringVisitor {
	return &APIUsageRule{packages: newPackageMatcher(packages)}
}

func (r *APIUsageRule) VisitInstruction(method *classfile.MethodInfo, insn classfile.Instruction) {
	if insn.Member == nil || insn.Member.Owner == "" {
		return
	}
	owner := classfile.JavaName(classfile.ElementClass(insn.Member.Owner))
	if !r.packages.matches(owner) {
		return
	}
	r.add(APIInvocation{
		Caller:     caller(method),
		Owner:      owner,
		Name:       insn.Member.Name,
		Descriptor: insn.Member.Descriptor,
	})
}

// DeprecatedAPIRule records calls to the configured deprecated members.
type DeprecatedAPIRule struct {
	classfile.NopVisitor
	collector
	deprecated map[string]bool
}

func NewDeprecatedAPIRule(apis []string) ResultGatheringVisitor {
	return &DeprecatedAPIRule{deprecated: newMemberSet(apis)}
}

func newMemberSet(members []string) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[strings.TrimSpace(m)] = true
	}
	return set
}

func (r *DeprecatedAPIRule) VisitInstruction(method *classfile.MethodInfo, insn classfile.Instruction) {
	if insn.Member == nil || !insn.Opcode.IsInvoke() || insn.Member.Owner == "" {
		return
	}
	owner := classfile.JavaName(insn.Member.Owner)
	if !r.deprecated[owner+"#"+insn.Member.Name] {
		return
	}
	r.add(DeprecatedCall{Caller: caller(method), Owner: owner, Name: insn.Member.Name})
}

func caller(method *classfile.MethodInfo) string {
	return classfile.JavaName(method.Owner) + "." + method.Name
}

// AnnotationRule records the annotations on classes, fields and methods,
// whether or not they are retained at runtime.
type AnnotationRule struct {
	classfile.NopVisitor
	collector
}

func NewAnnotationRule() ResultGatheringVisitor {
	return &AnnotationRule{}
}

func (r *AnnotationRule) VisitAttribute(attr *classfile.Attribute) {
	if len(attr.Annotations) == 0 {
		return
	}

	target := classfile.JavaName(attr.Owner.Class)
	switch attr.Owner.Kind {
	case classfile.OwnerClass:
	case classfile.OwnerField:
		target += "." + attr.Owner.Name
	case classfile.OwnerMethod:
		target += "." + attr.Owner.Name + attr.Owner.Descriptor
	default:
		return
	}

	for _, a := range attr.Annotations {
		r.add(Annotation{Target: target, Type: classfile.TypeName(a.Type)})
	}
}

// ClassVersionRule records the class-file version of each class.
type ClassVersionRule struct {
	classfile.NopVisitor
	collector
}

func NewClassVersionRule() ResultGatheringVisitor {
	return &ClassVersionRule{}
}

func (r *ClassVersionRule) VisitClass(class *classfile.ClassInfo) {
	r.add(ClassVersion{
		Class:   classfile.JavaName(class.Name),
		Major:   int(class.MajorVersion),
		Release: class.JavaRelease(),
	})
}
