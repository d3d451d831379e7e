// Package fs discovers archives on disk and exposes their members as
// analyze.FileSystemEntry values.
package fs

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
)

var (
	_ analyze.FileSystemEntry = (*ZipEntry)(nil)
	_ analyze.FileSystemEntry = (*FileEntry)(nil)
)

// ZipEntry is a member of an open archive.
type ZipEntry struct {
	file *zip.File
}

func (e *ZipEntry) Name() string {
	return e.file.Name
}

func (e *ZipEntry) IsDirectory() bool {
	return e.file.FileInfo().IsDir() || strings.HasSuffix(e.file.Name, "/")
}

func (e *ZipEntry) Open() (io.ReadCloser, error) {
	return e.file.Open()
}

// FileEntry is a file on disk named relative to the scanned root.
type FileEntry struct {
	path string
	name string
}

func NewFileEntry(path, name string) *FileEntry {
	return &FileEntry{path: path, name: name}
}

func (e *FileEntry) Name() string {
	return e.name
}

func (e *FileEntry) IsDirectory() bool {
	info, err := os.Stat(e.path)
	return err == nil && info.IsDir()
}

func (e *FileEntry) Open() (io.ReadCloser, error) {
	return os.Open(e.path)
}
