// Package changefmt renders rename plans for people (Pretty) and tools (JSON).
package changefmt

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color bool
	// MaxLines caps the preview lines per file, 0 - без ограничения.
	MaxLines int
	// NoPreview prints only the summary and the file list.
	NoPreview bool
}

// JSONOpts configures JSON.
type JSONOpts struct {
	IncludePositions bool // add line/col to locations
	IncludePreviews  bool // add before/after lines to edits
}
