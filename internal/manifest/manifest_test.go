package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
	"github.com/mabhi256/migration-analyzer/internal/analyze/analyzetest"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Header
		wantErr bool
	}{
		{
			name:  "simple",
			input: "Manifest-Version: 1.0\nMain-Class: com.acme.Main\n",
			want: []Header{
				{Name: "Manifest-Version", Value: "1.0"},
				{Name: "Main-Class", Value: "com.acme.Main"},
			},
		},
		{
			name:  "continuation lines and CRLF",
			input: "Manifest-Version: 1.0\r\nClass-Path: lib/a.jar lib/b\r\n .jar\r\n",
			want: []Header{
				{Name: "Manifest-Version", Value: "1.0"},
				{Name: "Class-Path", Value: "lib/a.jar lib/b.jar"},
			},
		},
		{
			name:  "stops at the end of the main section",
			input: "Manifest-Version: 1.0\n\nName: com/acme/\nSealed: true\n",
			want:  []Header{{Name: "Manifest-Version", Value: "1.0"}},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:    "line without colon",
			input:   "Manifest-Version: 1.0\ngarbage\n",
			wantErr: true,
		},
		{
			name:    "continuation first",
			input:   " orphan\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyze(t *testing.T) {
	analyzer := NewEntryAnalyzer(zerolog.Nop())

	entry := analyzetest.NewEntry("meta-inf/manifest.mf", []byte("Manifest-Version: 1.0\nClass-Path: lib/a.jar lib/b.jar\n"))
	results, err := analyzer.Analyze(entry)
	require.NoError(t, err)
	assert.True(t, results.Equal(analyze.NewResultSet(
		Attribute{Name: "Manifest-Version", Value: "1.0"},
		Attribute{Name: "Class-Path", Value: "lib/a.jar lib/b.jar"},
		ClassPathEntry{Entry: "lib/a.jar"},
		ClassPathEntry{Entry: "lib/b.jar"},
	)))
	assert.Equal(t, 1, entry.Closes())

	for _, skipped := range []*analyzetest.Entry{
		analyzetest.NewDir("META-INF/MANIFEST.MF"),
		analyzetest.NewEntry("lib/META-INF/MANIFEST.MF", nil),
		analyzetest.NewEntry("com/acme/A.class", nil),
	} {
		results, err := analyzer.Analyze(skipped)
		require.NoError(t, err)
		assert.Equal(t, 0, results.Len())
		assert.Equal(t, 0, skipped.Opens())
	}

	bad := analyzetest.NewEntry(Path, []byte("not a manifest\n"))
	_, err = analyzer.Analyze(bad)
	var failure *analyze.AnalysisFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, Path, failure.EntryName)
	assert.Equal(t, 1, bad.Closes())
}
