package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/migration-analyzer/internal/classfile/classfiletest"
)

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		desc     string
		want     FieldType
		javaName string
	}{
		{"I", FieldType{Base: 'I'}, "int"},
		{"Ljava/lang/String;", FieldType{Base: 'L', Class: "java/lang/String"}, "java.lang.String"},
		{"[[J", FieldType{Dimensions: 2, Base: 'J'}, "long[][]"},
		{"[Ljava/util/Map$Entry;", FieldType{Dimensions: 1, Base: 'L', Class: "java/util/Map$Entry"}, "java.util.Map$Entry[]"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := ParseFieldDescriptor(tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.javaName, got.JavaName())
		})
	}

	for _, bad := range []string{"", "V", "L;", "Ljava/lang/String", "II", "[", "Q", "Ljava.lang.String;"} {
		_, err := ParseFieldDescriptor(bad)
		assert.ErrorIs(t, err, ErrBadDescriptor, "descriptor %q", bad)
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	mt, err := ParseMethodDescriptor("(I[Ljava/lang/String;J)Ljava/util/List;")
	require.NoError(t, err)
	require.Len(t, mt.Params, 3)
	assert.Equal(t, FieldType{Dimensions: 1, Base: 'L', Class: "java/lang/String"}, mt.Params[1])
	assert.Equal(t, "java/util/List", mt.Return.Class)

	mt, err = ParseMethodDescriptor("()V")
	require.NoError(t, err)
	assert.Empty(t, mt.Params)
	assert.Equal(t, "void", mt.Return.JavaName())

	for _, bad := range []string{"", "V", "(", "(I", "()", "()VV", "(V)V", "()[V"} {
		_, err := ParseMethodDescriptor(bad)
		assert.ErrorIs(t, err, ErrBadDescriptor, "descriptor %q", bad)
	}
}

func TestReferencedTypes(t *testing.T) {
	assert.Equal(t,
		[]string{"java/lang/String", "javax/sql/DataSource", "java/util/List"},
		ReferencedTypes("(ILjava/lang/String;[Ljavax/sql/DataSource;)Ljava/util/List;"))
	assert.Equal(t, []string{"java/util/Date"}, ReferencedTypes("[[Ljava/util/Date;"))
	assert.Empty(t, ReferencedTypes("(IJ)V"))
	assert.Nil(t, ReferencedTypes("(garbage"))
}

func TestElementClass(t *testing.T) {
	assert.Equal(t, "java/lang/String", ElementClass("java/lang/String"))
	assert.Equal(t, "java/lang/String", ElementClass("[[Ljava/lang/String;"))
	assert.Equal(t, "", ElementClass("[I"))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "java.lang.String", JavaName("java/lang/String"))
	assert.Equal(t, "javax.ejb.Stateless", TypeName("Ljavax/ejb/Stateless;"))
	assert.Equal(t, "not a descriptor", TypeName("not a descriptor"))
	assert.Equal(t, "1.1", JavaRelease(45))
	assert.Equal(t, "1.4", JavaRelease(48))
	assert.Equal(t, "21", JavaRelease(65))
}

func TestDecodeModifiedUTF8(t *testing.T) {
	for _, s := range []string{"", "plain", "café", "中文", "nul\x00byte", "emoji \U0001F600"} {
		got, ok := decodeModifiedUTF8(classfiletest.ModifiedUTF8(s))
		require.True(t, ok, "%q", s)
		assert.Equal(t, s, got)
	}

	for _, raw := range [][]byte{
		{0x00},             // raw NUL
		{0xC0},             // missing continuation
		{0xE0, 0x80},       // short 3-byte sequence
		{0xF0, 0x9F, 0x98}, // 4-byte forms are not modified UTF-8
		{0x80},             // stray continuation
	} {
		_, ok := decodeModifiedUTF8(raw)
		assert.False(t, ok, "% x", raw)
	}
}
