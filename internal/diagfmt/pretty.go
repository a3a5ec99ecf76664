package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tern/internal/diag"
	"tern/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	noteColor    = color.New(color.FgBlue)
	caretColor   = color.New(color.FgGreen, color.Bold)
)

// Pretty renders diagnostics in human-readable form. The caller is expected
// to have sorted the bag; items are printed in the order they appear.
// Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a ^~~~ underline when ShowSource is set,
// then notes in the same layout when ShowNotes is set. Positions print
// 1-based; the underline counts display cells, so wide runes stay aligned.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeader(w, fs, d.Primary, d.Severity.String(), d.Code.String(), d.Message, opts, severityPainter(d.Severity))
		if opts.ShowSource {
			writeSourceContext(w, fs, d.Primary, opts)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				writeHeader(w, fs, n.Span, "NOTE", "", n.Msg, opts, noteColor)
				if opts.ShowSource {
					writeSourceContext(w, fs, n.Span, opts)
				}
			}
		}
	}
}

func severityPainter(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

func writeHeader(w io.Writer, fs *source.FileSet, span source.Span, sev, code, msg string, opts PrettyOpts, painter *color.Color) {
	r := fs.Resolve(span)
	label := sev
	if code != "" {
		label = sev + " " + code
	}
	if opts.Color {
		label = painter.Sprint(label)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
		displayPath(fs, span.File, opts.PathMode),
		r.Start.Line+1, r.Start.Column+1,
		label, msg)
}

func displayPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	if f == nil {
		return "<unknown>"
	}
	if mode == PathModeBasename {
		return filepath.Base(f.Path)
	}
	return f.Path
}

func writeSourceContext(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts) {
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	r := fs.Resolve(span)
	line := f.Line(r.Start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "    %s\n", line)

	start := int(r.Start.Column)
	if start > len(line) {
		start = len(line)
	}
	end := int(r.End.Column)
	if r.End.Line != r.Start.Line || end > len(line) {
		end = len(line)
	}
	if end <= start {
		end = start + 1
	}

	// Underline width in display cells, not bytes.
	pad := runewidth.StringWidth(line[:start])
	width := runewidth.StringWidth(line[start:min(end, len(line))])
	if width < 1 {
		width = 1
	}
	underline := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		underline = caretColor.Sprint(underline)
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pad), underline)
}
