package manifest

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
)

const Category = "Manifest"

// Attribute is a main-section manifest attribute.
type Attribute struct {
	Name  string
	Value string
}

func (f Attribute) Category() string { return Category }
func (f Attribute) String() string   { return f.Name + ": " + f.Value }

// ClassPathEntry is one entry of the Class-Path attribute.
type ClassPathEntry struct {
	Entry string
}

func (f ClassPathEntry) Category() string { return Category }
func (f ClassPathEntry) String() string   { return "Class-Path entry " + f.Entry }

type EntryAnalyzer struct {
	logger zerolog.Logger
}

var _ analyze.EntryAnalyzer = (*EntryAnalyzer)(nil)

func NewEntryAnalyzer(logger zerolog.Logger) *EntryAnalyzer {
	return &EntryAnalyzer{logger: logger.With().Str("analyzer", "manifest").Logger()}
}

func (a *EntryAnalyzer) Name() string {
	return "manifest"
}

func (a *EntryAnalyzer) Analyze(entry analyze.FileSystemEntry) (analyze.ResultSet, error) {
	if entry.IsDirectory() || !strings.EqualFold(entry.Name(), Path) {
		return analyze.NewResultSet(), nil
	}

	a.logger.Debug().Str("entry", entry.Name()).Msg("doing manifest analysis")

	headers, err := analyze.WithInputStream(entry, func(r io.Reader) ([]Header, error) {
		return Parse(r)
	})
	if err != nil {
		return nil, analyze.NewFailure("manifest", entry, err)
	}

	results := analyze.NewResultSet()
	for _, h := range headers {
		results.Add(Attribute{Name: h.Name, Value: h.Value})
		if strings.EqualFold(h.Name, "Class-Path") {
			for _, cp := range ClassPath(h.Value) {
				results.Add(ClassPathEntry{Entry: cp})
			}
		}
	}
	return results, nil
}
