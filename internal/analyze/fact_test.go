package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type word struct {
	category, text string
}

func (w word) Category() string { return w.category }
func (w word) String() string   { return w.text }

func TestResultSet(t *testing.T) {
	rs := NewResultSet(word{"b", "two"}, word{"a", "one"}, word{"b", "two"})
	assert.Equal(t, 2, rs.Len())
	assert.True(t, rs.Contains(word{"a", "one"}))
	assert.False(t, rs.Contains(word{"a", "two"}))

	other := NewResultSet(word{"a", "zero"})
	rs.Union(other)
	assert.Equal(t, []Fact{word{"a", "one"}, word{"a", "zero"}, word{"b", "two"}}, rs.Sorted())

	assert.True(t, NewResultSet(word{"x", "1"}, word{"y", "2"}).Equal(NewResultSet(word{"y", "2"}, word{"x", "1"})))
	assert.False(t, NewResultSet(word{"x", "1"}).Equal(NewResultSet(word{"x", "2"})))

	var empty ResultSet
	assert.Equal(t, 0, empty.Len())
	assert.True(t, empty.Equal(NewResultSet()))
	assert.Empty(t, empty.Sorted())
}
