package diag

import (
	"fmt"
	"strings"

	"tern/internal/source"
)

// FormatDiagnostics renders diagnostics into a stable, one-line-per-entry
// representation: "path:line:col: SEVERITY CODE: message". Lines and columns
// are printed 1-based for humans; the order is the order of the slice, so
// callers normally pass bag.Sort()-ed items. The result is suitable for
// golden comparisons and CLI short output.
func FormatDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	var sb strings.Builder
	for i := range diags {
		d := &diags[i]
		writeLine(&sb, fs, d.Primary, d.Severity.String(), d.Code.String(), d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				writeLine(&sb, fs, n.Span, "NOTE", "", n.Msg)
			}
		}
	}
	return sb.String()
}

func writeLine(sb *strings.Builder, fs *source.FileSet, span source.Span, sev, code, msg string) {
	file := fs.Get(span.File)
	path := "<unknown>"
	if file != nil {
		path = file.Path
	}
	pos := fs.Resolve(span).Start
	if code != "" {
		fmt.Fprintf(sb, "%s:%d:%d: %s %s: %s\n", path, pos.Line+1, pos.Column+1, sev, code, msg)
		return
	}
	fmt.Fprintf(sb, "%s:%d:%d: %s: %s\n", path, pos.Line+1, pos.Column+1, sev, msg)
}
