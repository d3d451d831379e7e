package bytecode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/classfile"
	"github.com/mabhi256/migration-analyzer/internal/classfile/classfiletest"
)

func greeterClass() []byte {
	b := classfiletest.New("com/acme/Greeter").
		Super("javax/servlet/http/HttpServlet").
		Interface("java/io/Serializable").
		Attribute(classfiletest.AnnotationsAttr(true, classfiletest.AnnotationSpec{Type: "Ljavax/ejb/Stateless;"}))
	b.Field(classfiletest.AccPublic, "ctx", "Ljavax/naming/Context;",
		classfiletest.AnnotationsAttr(false, classfiletest.AnnotationSpec{Type: "Ljavax/annotation/Resource;"}))
	b.Method(classfiletest.AccPublic, "service", "(Ljavax/servlet/ServletRequest;)V",
		b.Asm().
			New("javax/naming/InitialContext").
			InvokeSpecial("javax/naming/InitialContext", "<init>", "()V").
			InvokeStatic("java/lang/Thread", "currentThread", "()Ljava/lang/Thread;").
			InvokeVirtual("java/lang/Thread", "stop", "()V").
			InvokeVirtual("com/acme/Greeter", "helper", "()V").
			Return().Bytes(),
		classfiletest.ExceptionsAttr("javax/servlet/ServletException"),
		classfiletest.AnnotationsAttr(true, classfiletest.AnnotationSpec{Type: "Ljava/lang/Override;"}))
	return b.Bytes()
}

func runRule(t *testing.T, rule ResultGatheringVisitor, data []byte) analyze.ResultSet {
	t.Helper()
	require.NoError(t, classfile.Accept(bytes.NewReader(data), rule))
	return rule.Results()
}

func TestDeclaredMethodsRule(t *testing.T) {
	results := runRule(t, NewDeclaredMethodsRule(), greeterClass())
	assert.True(t, results.Equal(analyze.NewResultSet(
		DeclaredMethod{Class: "com.acme.Greeter", Name: "service", Descriptor: "(Ljavax/servlet/ServletRequest;)V"},
	)))
}

func TestHierarchyRule(t *testing.T) {
	results := runRule(t, NewHierarchyRule(), greeterClass())
	assert.True(t, results.Equal(analyze.NewResultSet(
		Superclass{Class: "com.acme.Greeter", Superclass: "javax.servlet.http.HttpServlet"},
		ImplementedInterface{Class: "com.acme.Greeter", Interface: "java.io.Serializable"},
	)))

	plain := runRule(t, NewHierarchyRule(), oneMethodClass("com/acme/Plain", "m"))
	assert.Equal(t, 0, plain.Len(), "java.lang.Object is not reported")
}

func TestTypeReferenceRule(t *testing.T) {
	results := runRule(t, NewTypeReferenceRule(), greeterClass())

	for _, to := range []string{
		"javax.servlet.http.HttpServlet",
		"java.io.Serializable",
		"javax.naming.Context",
		"javax.servlet.ServletRequest",
		"javax.naming.InitialContext",
		"java.lang.Thread",
		"javax.servlet.ServletException",
	} {
		assert.True(t, results.Contains(TypeReference{From: "com.acme.Greeter", To: to}), to)
	}
	assert.False(t, results.Contains(TypeReference{From: "com.acme.Greeter", To: "com.acme.Greeter"}))
}

func TestAPIUsageRule(t *testing.T) {
	results := runRule(t, NewAPIUsageRule([]string{"javax.naming.*"}), greeterClass())
	assert.True(t, results.Equal(analyze.NewResultSet(
		APIInvocation{Caller: "com.acme.Greeter.service", Owner: "javax.naming.InitialContext", Name: "<init>", Descriptor: "()V"},
	)))

	none := runRule(t, NewAPIUsageRule([]string{"javax.nam"}), greeterClass())
	assert.Equal(t, 0, none.Len(), "prefixes match whole package segments")
}

func TestDeprecatedAPIRule(t *testing.T) {
	results := runRule(t, NewDeprecatedAPIRule(DefaultDeprecatedAPIs), greeterClass())
	assert.True(t, results.Equal(analyze.NewResultSet(
		DeprecatedCall{Caller: "com.acme.Greeter.service", Owner: "java.lang.Thread", Name: "stop"},
	)))
}

func TestAnnotationRule(t *testing.T) {
	results := runRule(t, NewAnnotationRule(), greeterClass())
	assert.True(t, results.Equal(analyze.NewResultSet(
		Annotation{Target: "com.acme.Greeter", Type: "javax.ejb.Stateless"},
		Annotation{Target: "com.acme.Greeter.ctx", Type: "javax.annotation.Resource"},
		Annotation{Target: "com.acme.Greeter.service(Ljavax/servlet/ServletRequest;)V", Type: "java.lang.Override"},
	)))
}

func TestClassVersionRule(t *testing.T) {
	data := classfiletest.New("com/acme/Modern").Version(65, 0).Bytes()
	results := runRule(t, NewClassVersionRule(), data)
	assert.True(t, results.Equal(analyze.NewResultSet(
		ClassVersion{Class: "com.acme.Modern", Major: 65, Release: "21"},
	)))
}

func TestRulesKeepFactsFromPartialParse(t *testing.T) {
	data := greeterClass()
	rule := NewHierarchyRule()
	err := classfile.Accept(bytes.NewReader(data[:len(data)-1]), rule)
	require.Error(t, err)
	assert.Equal(t, 2, rule.Results().Len())
}

func TestDelegatingFactory(t *testing.T) {
	factory := NewDelegatingFactory(Rules(DefaultRuleConfig())...)

	first := factory.Create()
	require.NoError(t, classfile.Accept(bytes.NewReader(greeterClass()), first))
	second := factory.Create()

	assert.NotSame(t, first, second)
	assert.Equal(t, 0, second.Results().Len(), "new visitors start empty")

	categories := map[string]bool{}
	for fact := range first.Results() {
		categories[fact.Category()] = true
	}
	assert.Equal(t, map[string]bool{
		CategoryDeclaredMethods: true,
		CategoryHierarchy:       true,
		CategoryTypeReferences:  true,
		CategoryAPIUsage:        true,
		CategoryDeprecatedCalls: true,
		CategoryAnnotations:     true,
		CategoryClassVersions:   true,
	}, categories)
}

func TestFactStrings(t *testing.T) {
	assert.Equal(t, "a.B.m()V", DeclaredMethod{Class: "a.B", Name: "m", Descriptor: "()V"}.String())
	assert.Equal(t, "a.B extends c.D", Superclass{Class: "a.B", Superclass: "c.D"}.String())
	assert.Equal(t, "a.B.m calls java.lang.Thread#stop", DeprecatedCall{Caller: "a.B.m", Owner: "java.lang.Thread", Name: "stop"}.String())
	assert.Equal(t, "@javax.ejb.Stateless on a.B", Annotation{Target: "a.B", Type: "javax.ejb.Stateless"}.String())
	assert.Equal(t, "a.B: major 52 (Java 8)", ClassVersion{Class: "a.B", Major: 52, Release: "8"}.String())
}
