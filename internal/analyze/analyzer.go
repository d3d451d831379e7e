package analyze

// EntryAnalyzer extracts facts from entries of the kind it understands and
// returns an empty set for everything else, so a driver can apply every
// analyzer to every entry.
//
// Analyze returns either a set (possibly empty) and a nil error, or a nil
// set and an *AnalysisFailure. Implementations hold no per-call state and
// are safe for concurrent use.
type EntryAnalyzer interface {
	Analyze(entry FileSystemEntry) (ResultSet, error)
	Name() string
}
