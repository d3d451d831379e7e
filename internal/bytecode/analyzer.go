package bytecode

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/classfile"
)

const classSuffix = ".class"

// EntryAnalyzer runs the factory's visitors over class file entries.
type EntryAnalyzer struct {
	factory VisitorFactory
	logger  zerolog.Logger
}

var _ analyze.EntryAnalyzer = (*EntryAnalyzer)(nil)

func NewEntryAnalyzer(factory VisitorFactory, logger zerolog.Logger) *EntryAnalyzer {
	return &EntryAnalyzer{
		factory: factory,
		logger:  logger.With().Str("analyzer", "bytecode").Logger(),
	}
}

func (a *EntryAnalyzer) Name() string {
	return "bytecode"
}

// Analyze parses a class file entry. Directories and entries without a
// .class suffix yield an empty set without being opened.
func (a *EntryAnalyzer) Analyze(entry analyze.FileSystemEntry) (analyze.ResultSet, error) {
	if entry.IsDirectory() || !strings.HasSuffix(entry.Name(), classSuffix) {
		return analyze.NewResultSet(), nil
	}

	a.logger.Debug().Str("entry", entry.Name()).Msg("doing bytecode analysis")

	results, err := analyze.WithInputStream(entry, func(r io.Reader) (analyze.ResultSet, error) {
		visitor := a.factory.Create()
		if err := classfile.Accept(r, visitor); err != nil {
			return nil, err
		}
		return visitor.Results(), nil
	})
	if err != nil {
		return nil, analyze.NewFailure("class file", entry, err)
	}
	return results, nil
}
