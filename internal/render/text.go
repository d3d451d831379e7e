package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/migration-analyzer/utils"
)

// maxListedEntries caps how many source entries are printed per fact.
const maxListedEntries = 3

// TextEngine prints the report as plain or styled text. Without an output
// path it writes to stdout, styled only when stdout is a terminal.
type TextEngine struct {
	w      io.Writer
	path   string
	styled bool
}

func NewTextEngine(outputPath string) (RenderEngine, error) {
	if outputPath == "" {
		return NewTextWriterEngine(os.Stdout, utils.IsTerminal(os.Stdout)), nil
	}
	return &TextEngine{path: outputPath}, nil
}

func NewTextWriterEngine(w io.Writer, styled bool) *TextEngine {
	return &TextEngine{w: w, styled: styled}
}

func (e *TextEngine) Render(report *Report) error {
	if e.path == "" {
		return writeText(e.w, report, e.styled)
	}
	path, err := prepareOutputPath(e.path, "", "")
	if err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) error {
		return writeText(f, report, false)
	})
}

type textStyles struct {
	styled bool
}

func (s textStyles) render(style lipgloss.Style, text string) string {
	if !s.styled {
		return text
	}
	return style.Render(text)
}

func writeText(w io.Writer, report *Report, styled bool) error {
	st := textStyles{styled: styled}
	var b strings.Builder

	fmt.Fprintln(&b, st.render(utils.TitleStyle, "Migration analysis "+report.ID))
	fmt.Fprintf(&b, "%s %s\n", st.render(utils.InfoStyle, "Input:    "), report.InputPath)
	fmt.Fprintf(&b, "%s %s\n", st.render(utils.InfoStyle, "Generated:"), report.GeneratedAt.Format(time.RFC3339))
	if report.Elapsed > 0 {
		fmt.Fprintf(&b, "%s %s\n", st.render(utils.InfoStyle, "Elapsed:  "), utils.FormatDuration(report.Elapsed))
	}

	failures := fmt.Sprintf("%d failures", report.TotalFailures())
	if report.TotalFailures() > 0 {
		failures = st.render(utils.CriticalStyle, failures)
	} else {
		failures = st.render(utils.GoodStyle, failures)
	}
	fmt.Fprintf(&b, "%d archives, %d entries, %d facts, %s\n",
		len(report.Archives), report.TotalEntries(), report.TotalFacts(), failures)

	for _, archive := range report.Archives {
		b.WriteString("\n")
		writeArchive(&b, st, archive)
	}

	if totals := report.CategoryTotals(); len(totals) > 0 {
		b.WriteString("\n")
		writeCategoryTotals(&b, st, totals)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeArchive(b *strings.Builder, st textStyles, archive ArchiveReport) {
	header := fmt.Sprintf("== %s (%d entries, %d facts)", archive.Name, archive.Entries, archive.FactCount())
	fmt.Fprintln(b, st.render(utils.TitleStyle, header))

	for _, category := range archive.Categories {
		style := lipgloss.NewStyle().Foreground(utils.CategoryColor(category.Name)).Bold(true)
		fmt.Fprintf(b, "  %s\n", st.render(style, fmt.Sprintf("%s (%d)", category.Name, len(category.Facts))))
		for _, fact := range category.Facts {
			fmt.Fprintf(b, "    %s  %s\n", fact.Summary, st.render(utils.MutedStyle, listEntries(fact.Entries)))
		}
	}

	if len(archive.Failures) > 0 {
		fmt.Fprintf(b, "  %s\n", st.render(utils.CriticalStyle, fmt.Sprintf("Failures (%d)", len(archive.Failures))))
		for _, f := range archive.Failures {
			fmt.Fprintf(b, "    %s [%s]: %s\n", f.Entry, f.Analyzer, f.Message)
		}
	}
}

func listEntries(entries []string) string {
	if len(entries) <= maxListedEntries {
		return "[" + strings.Join(entries, ", ") + "]"
	}
	shown := strings.Join(entries[:maxListedEntries], ", ")
	return fmt.Sprintf("[%s, +%d more]", shown, len(entries)-maxListedEntries)
}

func writeCategoryTotals(b *strings.Builder, st textStyles, totals []CategoryTotal) {
	fmt.Fprintln(b, st.render(utils.TitleStyle, "Facts by category"))

	width, most := 0, 0
	for _, t := range totals {
		width = max(width, len(t.Name))
		most = max(most, t.Facts)
	}

	for _, t := range totals {
		line := fmt.Sprintf("  %-*s %5d", width, t.Name, t.Facts)
		if st.styled && most > 0 {
			line += " " + utils.CreateProgressBar(float64(t.Facts)/float64(most), 20, utils.CategoryColor(t.Name))
		}
		fmt.Fprintln(b, line)
	}
}
