package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/analyze/analyzetest"
	"github.com/mabhi256/migration-analyzer/internal/bytecode"
	"github.com/mabhi256/migration-analyzer/internal/classfile/classfiletest"
	"github.com/mabhi256/migration-analyzer/internal/fs"
)

// extAnalyzer reports each entry's extension and fails for names
// containing "bad".
type extAnalyzer struct{}

func (extAnalyzer) Name() string { return "ext" }

func (extAnalyzer) Analyze(entry analyze.FileSystemEntry) (analyze.ResultSet, error) {
	if strings.Contains(entry.Name(), "bad") {
		return nil, analyze.NewFailure("entry", entry, errors.New("boom"))
	}
	return analyze.NewResultSet(testFact{"Extensions", path.Ext(entry.Name())}), nil
}

func newTestExecutor(opts Options) *Executor {
	return NewExecutor([]analyze.EntryAnalyzer{extAnalyzer{}}, opts, zerolog.Nop())
}

func memoryArchive(name string, entries ...string) *fs.Archive {
	archive := &fs.Archive{Name: name}
	for _, e := range entries {
		if strings.HasSuffix(e, "/") {
			archive.Entries = append(archive.Entries, analyzetest.NewDir(e))
			continue
		}
		archive.Entries = append(archive.Entries, analyzetest.NewEntry(e, nil))
	}
	return archive
}

func TestScanArchive(t *testing.T) {
	exec := newTestExecutor(Options{Concurrency: 2})
	archive := memoryArchive("app.jar", "a/", "a/A.class", "a/B.class", "a/bad.xml", "README.txt")

	report, err := exec.ScanArchive(context.Background(), archive)
	require.NoError(t, err)

	assert.Equal(t, "app.jar", report.Name)
	assert.Equal(t, 4, report.Entries)
	require.Len(t, report.Categories, 1)
	assert.Equal(t, []string{"a/A.class", "a/B.class"}, report.Categories[0].Facts[0].Entries)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "a/bad.xml", report.Failures[0].Entry)
	assert.Equal(t, "ext", report.Failures[0].Analyzer)

	m := exec.Metrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Archives))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Entries))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Facts.WithLabelValues("Extensions")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("ext")))
}

func TestScanArchiveFailFast(t *testing.T) {
	exec := newTestExecutor(Options{Concurrency: 1, FailFast: true})
	archive := memoryArchive("app.jar", "bad.class", "A.class", "B.class")

	report, err := exec.ScanArchive(context.Background(), archive)
	var failure *analyze.AnalysisFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "bad.class", failure.EntryName)
	assert.Len(t, report.Failures, 1)
}

func TestScanArchiveExcludes(t *testing.T) {
	exec := newTestExecutor(Options{Excluder: fs.NewExcluder([]string{"test/", "*.txt"})})
	archive := memoryArchive("app.jar", "A.class", "test/bad.class", "notes.txt")

	report, err := exec.ScanArchive(context.Background(), archive)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Entries)
	assert.Empty(t, report.Failures)
}

func TestScanArchiveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExecutor(Options{}).ScanArchive(ctx, memoryArchive("app.jar", "A.class"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanArchiveNestedOpenFailure(t *testing.T) {
	broken := &fs.Archive{Name: "app.ear!/lib/x.jar", Err: errors.New("not a readable archive")}

	report, err := newTestExecutor(Options{}).ScanArchive(context.Background(), broken)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "archive", report.Failures[0].Analyzer)

	_, err = newTestExecutor(Options{FailFast: true}).ScanArchive(context.Background(), broken)
	assert.ErrorContains(t, err, "failed to open archive 'app.ear!/lib/x.jar'")
}

func writeJar(t *testing.T, path string, files map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func jobClass() []byte {
	b := classfiletest.New("com/acme/Job")
	b.Method(classfiletest.AccPublic|classfiletest.AccStatic, "execute", "()V", b.Asm().Return().Bytes())
	return b.Bytes()
}

func TestScanEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeJar(t, filepath.Join(root, "lib", "app.jar"), map[string][]byte{
		"com/acme/Job.class":   jobClass(),
		"com/acme/Bad.class":   {0xCA, 0xFE},
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0\r\nMain-Class: com.acme.Job\r\n"),
		"lib/broken.jar":       []byte("not a zip"),
	})

	exec := NewExecutor(DefaultAnalyzers(bytecode.DefaultRuleConfig(), zerolog.Nop()), Options{}, zerolog.Nop())
	report, err := exec.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, root, report.InputPath)
	require.Len(t, report.Archives, 2)

	app := report.Archives[0]
	assert.Equal(t, "lib/app.jar", app.Name)
	assert.Equal(t, 4, app.Entries)

	summaries := map[string][]string{}
	for _, c := range app.Categories {
		for _, f := range c.Facts {
			summaries[f.Summary] = f.Entries
		}
	}
	assert.Equal(t, []string{"com/acme/Job.class"}, summaries["com.acme.Job.execute()V"])
	assert.Equal(t, []string{"META-INF/MANIFEST.MF"}, summaries["Main-Class: com.acme.Job"])

	require.Len(t, app.Failures, 1)
	assert.Equal(t, "com/acme/Bad.class", app.Failures[0].Entry)
	assert.Equal(t, "bytecode", app.Failures[0].Analyzer)

	nested := report.Archives[1]
	assert.Equal(t, "lib/app.jar!/lib/broken.jar", nested.Name)
	require.Len(t, nested.Failures, 1)
	assert.Equal(t, "archive", nested.Failures[0].Analyzer)

	assert.Equal(t, 2, report.TotalFailures())
}

func TestScanExcludesNestedArchives(t *testing.T) {
	dir := t.TempDir()
	innerPath := filepath.Join(dir, "inner.jar")
	writeJar(t, innerPath, map[string][]byte{"com/acme/Job.class": jobClass()})
	inner, err := os.ReadFile(innerPath)
	require.NoError(t, err)

	war := filepath.Join(dir, "app.war")
	writeJar(t, war, map[string][]byte{
		"WEB-INF/lib/vendor.jar": inner,
		"WEB-INF/lib/own.jar":    inner,
	})

	exec := NewExecutor(DefaultAnalyzers(bytecode.DefaultRuleConfig(), zerolog.Nop()), Options{
		Excluder: fs.NewExcluder([]string{"WEB-INF/lib/vendor.jar"}),
	}, zerolog.Nop())
	report, err := exec.Scan(context.Background(), war)
	require.NoError(t, err)

	var names []string
	for _, a := range report.Archives {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"app.war", "app.war!/WEB-INF/lib/own.jar"}, names)
	assert.Equal(t, 1, report.Archives[0].Entries, "the excluded jar is not analyzed as an entry either")
}

func TestScanMissingInput(t *testing.T) {
	_, err := newTestExecutor(Options{}).Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "app.war", displayName("/srv/app.war", "/srv/app.war"))
	assert.Equal(t, "lib/a.jar", displayName("/srv", "/srv/lib/a.jar"))
}

func TestMetricsTextfile(t *testing.T) {
	exec := newTestExecutor(Options{})
	_, err := exec.ScanArchive(context.Background(), memoryArchive("a.jar", "A.class"))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "scan.prom")
	require.NoError(t, exec.Metrics().WriteTextfile(out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "migration_analysis_scan_entries_total 1")
	assert.Contains(t, string(data), `migration_analysis_scan_facts_total{category="Extensions"} 1`)
}
