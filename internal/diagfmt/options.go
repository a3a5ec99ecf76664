// Package diagfmt renders sorted diagnostics for humans (pretty, with source
// context and caret underlines) and machines (JSON).
package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeFull prints the path exactly as the file set stores it.
	PathModeFull PathMode = iota
	// PathModeBasename prints only the last path element.
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color      bool
	PathMode   PathMode
	ShowSource bool // print the offending line with a caret underline
	ShowNotes  bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // add line/col alongside byte offsets
	PathMode         PathMode
	Max              int // truncate output, not the bag
	IncludeNotes     bool
}
