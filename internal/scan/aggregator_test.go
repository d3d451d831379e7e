package scan

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/analyze/analyzetest"
	"github.com/mabhi256/migration-analyzer/internal/render"
)

type testFact struct {
	category string
	text     string
}

func (f testFact) Category() string { return f.category }
func (f testFact) String() string   { return f.text }

func TestAggregatorDeduplicatesFacts(t *testing.T) {
	agg := NewAggregator()
	shared := testFact{"B", "shared"}
	agg.Add("x/Two.class", analyze.NewResultSet(shared, testFact{"B", "alpha"}))
	agg.Add("x/One.class", analyze.NewResultSet(shared, testFact{"A", "only"}))
	agg.Add("x/Empty.class", analyze.NewResultSet())

	assert.Equal(t, 3, agg.Facts().Len())

	report := agg.Report("app.jar")
	assert.Equal(t, "app.jar", report.Name)
	assert.Equal(t, []render.CategoryReport{
		{Name: "A", Facts: []render.FactReport{{Summary: "only", Entries: []string{"x/One.class"}}}},
		{Name: "B", Facts: []render.FactReport{
			{Summary: "alpha", Entries: []string{"x/Two.class"}},
			{Summary: "shared", Entries: []string{"x/One.class", "x/Two.class"}},
		}},
	}, report.Categories)
	assert.Equal(t, 3, report.FactCount())
}

func TestAggregatorFailures(t *testing.T) {
	agg := NewAggregator()
	entry := analyzetest.NewEntry("lib/B.class", nil)
	agg.AddFailure("bytecode", "ignored", analyze.NewFailure("class file", entry, errors.New("truncated")))
	agg.AddFailure("archive", "app.jar!/a.jar", errors.New("not a zip"))

	report := agg.Report("app.jar")
	require.Len(t, report.Failures, 2)
	assert.Equal(t, render.FailureReport{Entry: "app.jar!/a.jar", Analyzer: "archive", Message: "not a zip"}, report.Failures[0])
	assert.Equal(t, "lib/B.class", report.Failures[1].Entry)
	assert.Equal(t, "failed to read class file 'lib/B.class': truncated", report.Failures[1].Message)
}

func TestAggregatorConcurrentAdds(t *testing.T) {
	agg := NewAggregator()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.CountEntry()
			agg.Add(fmt.Sprintf("E%d.class", i), analyze.NewResultSet(testFact{"C", "common"}, testFact{"C", fmt.Sprint(i)}))
		}()
	}
	wg.Wait()

	report := agg.Report("a.jar")
	assert.Equal(t, 50, report.Entries)
	assert.Equal(t, 51, report.FactCount())
}
