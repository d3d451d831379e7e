package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

type XMLEngine struct {
	path string
}

func NewXMLEngine(outputPath string) (RenderEngine, error) {
	return &XMLEngine{path: outputPath}, nil
}

type xmlReport struct {
	XMLName xml.Name `xml:"migration-analysis"`
	*Report
}

func (e *XMLEngine) Render(report *Report) error {
	path, err := prepareOutputPath(e.path, DefaultXMLPath, ".xml")
	if err != nil {
		return err
	}
	return writeFile(path, func(f *os.File) error {
		return WriteXML(f, report)
	})
}

// WriteXML writes report as an indented XML document.
func WriteXML(w io.Writer, report *Report) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(xmlReport{Report: report}); err != nil {
		return fmt.Errorf("failed to encode XML report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
