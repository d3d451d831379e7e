package scan

import (
	"cmp"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/render"
)

// Aggregator merges the per-entry results of one archive. Equal facts from
// different entries are stored once along with every entry that produced
// them. It is safe for concurrent use.
type Aggregator struct {
	mu       sync.RWMutex
	facts    map[analyze.Fact]map[string]struct{}
	failures []render.FailureReport
	entries  int
}

func NewAggregator() *Aggregator {
	return &Aggregator{facts: make(map[analyze.Fact]map[string]struct{})}
}

// Add records the facts one entry produced.
func (a *Aggregator) Add(entry string, results analyze.ResultSet) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for fact := range results {
		sources, ok := a.facts[fact]
		if !ok {
			sources = make(map[string]struct{})
			a.facts[fact] = sources
		}
		sources[entry] = struct{}{}
	}
}

// AddFailure records a failed analysis. The entry name comes from err when
// it is an *analyze.AnalysisFailure.
func (a *Aggregator) AddFailure(analyzer, entry string, err error) {
	var failure *analyze.AnalysisFailure
	if errors.As(err, &failure) {
		entry = failure.EntryName
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, render.FailureReport{
		Entry:    entry,
		Analyzer: analyzer,
		Message:  err.Error(),
	})
}

func (a *Aggregator) CountEntry() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries++
}

// Facts returns every distinct fact recorded so far.
func (a *Aggregator) Facts() analyze.ResultSet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rs := make(analyze.ResultSet, len(a.facts))
	for fact := range a.facts {
		rs.Add(fact)
	}
	return rs
}

// Report snapshots the aggregated state as the report of archive name.
func (a *Aggregator) Report(name string) render.ArchiveReport {
	a.mu.RLock()
	defer a.mu.RUnlock()

	report := render.ArchiveReport{
		Name:     name,
		Entries:  a.entries,
		Failures: slices.Clone(a.failures),
	}
	slices.SortFunc(report.Failures, func(x, y render.FailureReport) int {
		return cmp.Or(cmp.Compare(x.Entry, y.Entry), cmp.Compare(x.Analyzer, y.Analyzer))
	})

	facts := slices.SortedFunc(maps.Keys(a.facts), analyze.CompareFacts)
	for _, fact := range facts {
		n := len(report.Categories)
		if n == 0 || report.Categories[n-1].Name != fact.Category() {
			report.Categories = append(report.Categories, render.CategoryReport{Name: fact.Category()})
			n++
		}
		report.Categories[n-1].Facts = append(report.Categories[n-1].Facts, render.FactReport{
			Summary: fact.String(),
			Entries: slices.Sorted(maps.Keys(a.facts[fact])),
		})
	}
	return report
}
