package analyze

import "fmt"

// AnalysisFailure reports that one entry could not be analyzed. Cause is
// either a decode error from the analyzer's parser or an I/O error from the
// entry's stream.
type AnalysisFailure struct {
	EntryName string
	Kind      string // what was being read, e.g. "class file"
	Cause     error
}

func NewFailure(kind string, entry FileSystemEntry, cause error) *AnalysisFailure {
	return &AnalysisFailure{EntryName: entry.Name(), Kind: kind, Cause: cause}
}

func (f *AnalysisFailure) Error() string {
	kind := f.Kind
	if kind == "" {
		kind = "entry"
	}
	return fmt.Sprintf("failed to read %s '%s': %v", kind, f.EntryName, f.Cause)
}

func (f *AnalysisFailure) Unwrap() error {
	return f.Cause
}
