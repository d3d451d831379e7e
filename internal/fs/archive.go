package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
)

// MaxNestingDepth bounds how deep archives inside archives are opened.
const MaxNestingDepth = 4

// NestedSeparator joins an archive name and the path of an archive inside it.
const NestedSeparator = "!/"

var ArchiveExtensions = []string{".jar", ".war", ".ear", ".rar", ".sar", ".zip"}

func IsArchive(name string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(name, "/")))
	return slices.Contains(ArchiveExtensions, ext)
}

// Archive is one archive's entries. Err is set instead of Entries when a
// nested archive could not be opened.
type Archive struct {
	Name    string
	Entries []analyze.FileSystemEntry
	Err     error
}

// Discover lists the archives to scan under root, in lexical order. A root
// that is a file, or a directory with an archive extension (an exploded
// archive), is returned as is.
func Discover(root string, excluder *Excluder) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read input path: %w", err)
	}
	if !info.IsDir() || IsArchive(info.Name()) {
		return []string{root}, nil
	}

	var archives []string
	err = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if excluder.Excluded(rel) || d.IsDir() && excluder.Excluded(rel+"/") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsArchive(d.Name()) {
			return nil
		}
		archives = append(archives, path)
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk '%s': %w", root, err)
	}
	slices.Sort(archives)
	return archives, nil
}

// DefaultMaxNestedSize bounds the bytes read into memory for one nested archive.
const DefaultMaxNestedSize = 512 << 20

var ErrNestedTooLarge = errors.New("nested archive too large")

// Walker visits an archive and the archives nested inside it.
type Walker struct {
	// Excluder skips nested archives whose entry name matches.
	Excluder *Excluder
	// MaxNestedSize bounds a nested archive's uncompressed size. Zero means
	// DefaultMaxNestedSize.
	MaxNestedSize int64
}

// Walk opens the archive at path and calls fn for it and then for every
// archive nested inside it, depth first. name is the display name of the
// outermost archive.
func Walk(path, name string, excluder *Excluder, fn func(*Archive) error) error {
	return Walker{Excluder: excluder}.Walk(path, name, fn)
}

func (w Walker) Walk(path, name string, fn func(*Archive) error) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open archive '%s': %w", name, err)
	}

	if info.IsDir() {
		entries, err := explodedEntries(path)
		if err != nil {
			return fmt.Errorf("failed to read exploded archive '%s': %w", name, err)
		}
		return w.walkEntries(name, entries, 0, fn)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open archive '%s': %w", name, err)
	}
	defer r.Close()

	return w.walkEntries(name, zipEntries(&r.Reader), 0, fn)
}

func zipEntries(r *zip.Reader) []analyze.FileSystemEntry {
	entries := make([]analyze.FileSystemEntry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, &ZipEntry{file: f})
	}
	return entries
}

func explodedEntries(dir string) ([]analyze.FileSystemEntry, error) {
	var entries []analyze.FileSystemEntry
	err := filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		entries = append(entries, NewFileEntry(path, filepath.ToSlash(rel)))
		return nil
	})
	return entries, err
}

func (w Walker) walkEntries(name string, entries []analyze.FileSystemEntry, depth int, fn func(*Archive) error) error {
	if err := fn(&Archive{Name: name, Entries: entries}); err != nil {
		return err
	}
	if depth >= MaxNestingDepth {
		return nil
	}

	for _, entry := range entries {
		if entry.IsDirectory() || !IsArchive(entry.Name()) || w.Excluder.Excluded(entry.Name()) {
			continue
		}
		nestedName := name + NestedSeparator + entry.Name()

		nested, err := w.openNested(entry)
		if err != nil {
			if err := fn(&Archive{Name: nestedName, Err: err}); err != nil {
				return err
			}
			continue
		}
		if err := w.walkEntries(nestedName, zipEntries(nested), depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// openNested reads a nested archive into memory; zip needs random access.
func (w Walker) openNested(entry analyze.FileSystemEntry) (*zip.Reader, error) {
	limit := w.MaxNestedSize
	if limit <= 0 {
		limit = DefaultMaxNestedSize
	}
	data, err := analyze.WithInputStream(entry, func(r io.Reader) ([]byte, error) {
		return io.ReadAll(io.LimitReader(r, limit+1))
	})
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrNestedTooLarge, limit)
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a readable archive: %w", err)
	}
	return r, nil
}
