package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/agext/levenshtein"
)

var ErrUnknownOutputType = errors.New("unknown output type")

// RenderEngine writes a report to its destination.
type RenderEngine interface {
	Render(report *Report) error
}

// Constructor builds an engine for an output path. An empty path selects
// the engine's default destination.
type Constructor func(outputPath string) (RenderEngine, error)

// Factory maps output type names to engine constructors. It is safe for
// concurrent use.
type Factory struct {
	mu      sync.RWMutex
	engines map[string]Constructor
}

func NewFactory() *Factory {
	return &Factory{engines: make(map[string]Constructor)}
}

// DefaultFactory returns a factory with every built-in engine registered.
func DefaultFactory() *Factory {
	f := NewFactory()
	f.Register(TypeText, NewTextEngine)
	f.Register(TypeHTML, NewHTMLEngine)
	f.Register(TypeXML, NewXMLEngine)
	f.Register(TypeTUI, NewTUIEngine)
	return f
}

const (
	TypeText = "text"
	TypeHTML = "html"
	TypeXML  = "xml"
	TypeTUI  = "tui"
)

// Register adds or replaces the constructor for outputType.
func (f *Factory) Register(outputType string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.engines[strings.ToLower(outputType)] = ctor
}

// Types returns the registered output types in order.
func (f *Factory) Types() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	types := make([]string, 0, len(f.engines))
	for t := range f.engines {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

func (f *Factory) Create(outputType, outputPath string) (RenderEngine, error) {
	f.mu.RLock()
	ctor, ok := f.engines[strings.ToLower(outputType)]
	f.mu.RUnlock()

	if !ok {
		types := f.Types()
		msg := fmt.Sprintf("'%s' (available: %s)", outputType, strings.Join(types, ", "))
		if s := suggest(outputType, types); s != "" {
			msg += fmt.Sprintf("; did you mean '%s'?", s)
		}
		return nil, fmt.Errorf("%w %s", ErrUnknownOutputType, msg)
	}
	return ctor(outputPath)
}

// suggest returns the closest candidate within edit distance 2.
func suggest(input string, candidates []string) string {
	input = strings.ToLower(input)
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := levenshtein.Distance(input, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
