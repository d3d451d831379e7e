package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultHTMLPath = "migration-analysis.html"
	DefaultXMLPath  = "migration-analysis.xml"
)

// prepareOutputPath resolves path (or fallback when empty) to an absolute
// path ending in ext, creating its directory.
func prepareOutputPath(path, fallback, ext string) (string, error) {
	if path == "" {
		path = fallback
	}
	if ext != "" && !strings.HasSuffix(strings.ToLower(path), ext) {
		path += ext
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return absPath, nil
}

// writeFile creates path and hands it to write, closing it afterwards.
func writeFile(path string, write func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write %s: %w", path, cerr)
		}
	}()
	return write(f)
}
