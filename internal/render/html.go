package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/mabhi256/migration-analyzer/utils"
)

//go:embed templates/report.html
var htmlTemplate string

//go:embed templates/styles.css
var cssContent string

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"duration": utils.FormatDuration,
	"rfc3339":  func(t time.Time) string { return t.Format(time.RFC3339) },
	"color":    func(category string) string { return string(utils.CategoryColor(category)) },
	"percent": func(n, total int) string {
		if total == 0 {
			return "0%"
		}
		return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
	},
}).Parse(htmlTemplate))

// HTMLEngine writes a single self-contained HTML file.
type HTMLEngine struct {
	path string
}

func NewHTMLEngine(outputPath string) (RenderEngine, error) {
	return &HTMLEngine{path: outputPath}, nil
}

type htmlReportData struct {
	*Report
	CSS    template.CSS
	Totals []CategoryTotal
}

func (e *HTMLEngine) Render(report *Report) error {
	path, err := prepareOutputPath(e.path, DefaultHTMLPath, ".html")
	if err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) error {
		return WriteHTML(f, report)
	})
}

func WriteHTML(w io.Writer, report *Report) error {
	data := htmlReportData{
		Report: report,
		CSS:    template.CSS(cssContent),
		Totals: report.CategoryTotals(),
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}
