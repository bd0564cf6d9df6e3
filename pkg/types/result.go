package types

// SkippedSpan is a non-fatal diagnostic for a token run that matched
// none of the supported declaration patterns. The pass records the
// span and continues.
type SkippedSpan struct {
	Start   Position
	End     Position
	Snippet string
}

// AnalysisResult represents the output of one analysis pass over a
// single source unit. Declarations appear in recognition order.
type AnalysisResult struct {
	// Label identifies the source unit, used only for error reporting
	Label string

	// Extracted data
	Declarations []Declaration
	ScopeTree    *Scope

	// Skipped holds non-fatal diagnostics collected during the pass
	Skipped []SkippedSpan
}

// HasSkipped returns true if any token runs were skipped
func (ar *AnalysisResult) HasSkipped() bool {
	return len(ar.Skipped) > 0
}

// AddSkipped records a skipped span diagnostic
func (ar *AnalysisResult) AddSkipped(start, end Position, snippet string) {
	ar.Skipped = append(ar.Skipped, SkippedSpan{
		Start:   start,
		End:     end,
		Snippet: snippet,
	})
}
