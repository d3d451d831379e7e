// Package descriptor identifies Java EE deployment descriptors such as
// WEB-INF/web.xml and META-INF/ejb-jar.xml.
package descriptor

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mabhi256/migration-analyzer/internal/analyze"
)

const Category = "Deployment Descriptors"

var ErrNoRootElement = errors.New("no root element")

// Descriptor records the root element of one descriptor file.
type Descriptor struct {
	Path      string
	Root      string
	Namespace string
	Version   string
}

func (f Descriptor) Category() string { return Category }

func (f Descriptor) String() string {
	s := f.Path + ": <" + f.Root + ">"
	if f.Version != "" {
		s += " version " + f.Version
	}
	if f.Namespace != "" {
		s += " (" + f.Namespace + ")"
	}
	return s
}

// IsDescriptor reports whether name is an XML file under WEB-INF/ or
// META-INF/. Build metadata Maven leaves under META-INF/maven/ is not a
// descriptor.
func IsDescriptor(name string) bool {
	upper := strings.ToUpper(name)
	if !strings.HasPrefix(upper, "WEB-INF/") && !strings.HasPrefix(upper, "META-INF/") {
		return false
	}
	if strings.HasPrefix(upper, "META-INF/MAVEN/") {
		return false
	}
	return strings.EqualFold(path.Ext(name), ".xml")
}

// ReadRoot checks that r holds a well-formed document and returns its root.
func ReadRoot(r io.Reader) (xml.StartElement, error) {
	dec := xml.NewDecoder(r)
	var root *xml.StartElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("failed to parse XML: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok && root == nil {
			start = start.Copy()
			root = &start
		}
	}
	if root == nil {
		return xml.StartElement{}, ErrNoRootElement
	}
	return *root, nil
}

type EntryAnalyzer struct {
	logger zerolog.Logger
}

var _ analyze.EntryAnalyzer = (*EntryAnalyzer)(nil)

func NewEntryAnalyzer(logger zerolog.Logger) *EntryAnalyzer {
	return &EntryAnalyzer{logger: logger.With().Str("analyzer", "descriptor").Logger()}
}

func (a *EntryAnalyzer) Name() string {
	return "deployment descriptor"
}

func (a *EntryAnalyzer) Analyze(entry analyze.FileSystemEntry) (analyze.ResultSet, error) {
	if entry.IsDirectory() || !IsDescriptor(entry.Name()) {
		return analyze.NewResultSet(), nil
	}

	a.logger.Debug().Str("entry", entry.Name()).Msg("doing deployment descriptor analysis")

	root, err := analyze.WithInputStream(entry, ReadRoot)
	if err != nil {
		return nil, analyze.NewFailure("deployment descriptor", entry, err)
	}

	d := Descriptor{Path: entry.Name(), Root: root.Name.Local, Namespace: root.Name.Space}
	for _, attr := range root.Attr {
		if attr.Name.Local == "version" && attr.Name.Space == "" {
			d.Version = attr.Value
		}
	}
	return analyze.NewResultSet(d), nil
}
