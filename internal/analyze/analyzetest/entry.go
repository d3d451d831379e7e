// Package analyzetest provides in-memory entries that record how their
// streams are used.
package analyzetest

import (
	"bytes"
	"io"
	"sync/atomic"
)

// Entry is a FileSystemEntry backed by a byte slice. It counts Open and
// Close calls and can be told to fail either one.
type Entry struct {
	EntryName string
	Dir       bool
	Data      []byte
	OpenErr   error
	ReadErr   error // returned after Data is exhausted instead of io.EOF

	opens  atomic.Int32
	closes atomic.Int32
}

func NewEntry(name string, data []byte) *Entry {
	return &Entry{EntryName: name, Data: data}
}

func NewDir(name string) *Entry {
	return &Entry{EntryName: name, Dir: true}
}

func (e *Entry) Name() string      { return e.EntryName }
func (e *Entry) IsDirectory() bool { return e.Dir }

func (e *Entry) Open() (io.ReadCloser, error) {
	e.opens.Add(1)
	if e.OpenErr != nil {
		return nil, e.OpenErr
	}
	var r io.Reader = bytes.NewReader(e.Data)
	if e.ReadErr != nil {
		r = io.MultiReader(r, errReader{e.ReadErr})
	}
	return &stream{Reader: r, entry: e}, nil
}

// Opens reports how many times Open was called.
func (e *Entry) Opens() int { return int(e.opens.Load()) }

// Closes reports how many times a stream from this entry was closed.
func (e *Entry) Closes() int { return int(e.closes.Load()) }

type stream struct {
	io.Reader
	entry *Entry
}

func (s *stream) Close() error {
	s.entry.closes.Add(1)
	return nil
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
