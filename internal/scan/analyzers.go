package scan

import (
	"github.com/rs/zerolog"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/bytecode"
	"github.com/mabhi256/migration-analyzer/internal/descriptor"
	"github.com/mabhi256/migration-analyzer/internal/manifest"
)

// DefaultAnalyzers returns the bytecode, manifest and deployment descriptor
// analyzers, with the bytecode rules configured by rules.
func DefaultAnalyzers(rules bytecode.RuleConfig, logger zerolog.Logger) []analyze.EntryAnalyzer {
	factory := bytecode.NewDelegatingFactory(bytecode.Rules(rules)...)
	return []analyze.EntryAnalyzer{
		bytecode.NewEntryAnalyzer(factory, logger),
		manifest.NewEntryAnalyzer(logger),
		descriptor.NewEntryAnalyzer(logger),
	}
}
