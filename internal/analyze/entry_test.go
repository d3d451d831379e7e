package analyze_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/analyze/analyzetest"
)

func TestWithInputStream(t *testing.T) {
	t.Run("returns the callback result", func(t *testing.T) {
		entry := analyzetest.NewEntry("a.txt", []byte("hello"))
		got, err := analyze.WithInputStream(entry, func(r io.Reader) (string, error) {
			b, err := io.ReadAll(r)
			return string(b), err
		})
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
		assert.Equal(t, 1, entry.Closes())
	})

	t.Run("closes when the callback fails", func(t *testing.T) {
		entry := analyzetest.NewEntry("a.txt", nil)
		boom := errors.New("boom")
		_, err := analyze.WithInputStream(entry, func(io.Reader) (int, error) {
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, entry.Closes())
	})

	t.Run("closes when the callback panics", func(t *testing.T) {
		entry := analyzetest.NewEntry("a.txt", nil)
		assert.Panics(t, func() {
			_, _ = analyze.WithInputStream(entry, func(io.Reader) (int, error) {
				panic("kaboom")
			})
		})
		assert.Equal(t, 1, entry.Closes())
	})

	t.Run("open failure never calls back", func(t *testing.T) {
		entry := analyzetest.NewEntry("a.txt", nil)
		entry.OpenErr = errors.New("permission denied")
		called := false
		_, err := analyze.WithInputStream(entry, func(io.Reader) (int, error) {
			called = true
			return 0, nil
		})
		assert.ErrorIs(t, err, entry.OpenErr)
		assert.Contains(t, err.Error(), "a.txt")
		assert.False(t, called)
		assert.Equal(t, 0, entry.Closes())
	})
}

func TestAnalysisFailure(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	entry := analyzetest.NewEntry("com/acme/A.class", nil)
	err := error(analyze.NewFailure("class file", entry, cause))

	assert.Equal(t, "failed to read class file 'com/acme/A.class': unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var failure *analyze.AnalysisFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "com/acme/A.class", failure.EntryName)
}
