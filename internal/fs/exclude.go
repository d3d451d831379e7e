package fs

import (
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Excluder matches paths against --exclude patterns written in .gitignore
// syntax. A nil Excluder excludes nothing.
type Excluder struct {
	matcher *ignore.GitIgnore
}

func NewExcluder(patterns []string) *Excluder {
	var lines []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			lines = append(lines, p)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return &Excluder{matcher: ignore.CompileIgnoreLines(lines...)}
}

// Excluded reports whether path (slash separated) matches a pattern.
func (e *Excluder) Excluded(path string) bool {
	if e == nil {
		return false
	}
	return e.matcher.MatchesPath(path)
}
