// Package render turns a scan report into text, HTML, XML or an
// interactive terminal view.
package render

import (
	"slices"
	"time"
)

// Report is the outcome of one scan. Archives, categories and facts are
// kept sorted so that every engine renders deterministically.
type Report struct {
	ID          string          `xml:"id,attr"`
	InputPath   string          `xml:"input,attr"`
	GeneratedAt time.Time       `xml:"generated,attr"`
	Elapsed     time.Duration   `xml:"-"`
	Archives    []ArchiveReport `xml:"archive"`
}

type ArchiveReport struct {
	Name       string           `xml:"name,attr"`
	Entries    int              `xml:"entries,attr"`
	Categories []CategoryReport `xml:"category"`
	Failures   []FailureReport  `xml:"failure"`
}

type CategoryReport struct {
	Name  string       `xml:"name,attr"`
	Facts []FactReport `xml:"fact"`
}

// FactReport is one distinct fact and the entries it was found in.
type FactReport struct {
	Summary string   `xml:"summary,attr"`
	Entries []string `xml:"entry"`
}

type FailureReport struct {
	Entry    string `xml:"entry,attr"`
	Analyzer string `xml:"analyzer,attr"`
	Message  string `xml:",chardata"`
}

func (r *Report) TotalEntries() int {
	total := 0
	for _, a := range r.Archives {
		total += a.Entries
	}
	return total
}

func (r *Report) TotalFacts() int {
	total := 0
	for _, a := range r.Archives {
		total += a.FactCount()
	}
	return total
}

func (r *Report) TotalFailures() int {
	total := 0
	for _, a := range r.Archives {
		total += len(a.Failures)
	}
	return total
}

// CategoryTotals sums distinct facts per category across all archives, in
// category order.
func (r *Report) CategoryTotals() []CategoryTotal {
	counts := map[string]int{}
	var names []string
	for _, a := range r.Archives {
		for _, c := range a.Categories {
			if _, ok := counts[c.Name]; !ok {
				names = append(names, c.Name)
			}
			counts[c.Name] += len(c.Facts)
		}
	}
	slices.Sort(names)

	totals := make([]CategoryTotal, 0, len(names))
	for _, name := range names {
		totals = append(totals, CategoryTotal{Name: name, Facts: counts[name]})
	}
	return totals
}

type CategoryTotal struct {
	Name  string
	Facts int
}

func (a ArchiveReport) FactCount() int {
	total := 0
	for _, c := range a.Categories {
		total += len(c.Facts)
	}
	return total
}
