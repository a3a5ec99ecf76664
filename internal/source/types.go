package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// Position is a 0-based line/column pair, matching the syntax tree's
// range encoding (columns count bytes within the line).
type Position struct {
	Line   uint32
	Column uint32
}

// Range is a pair of positions; End is exclusive.
type Range struct {
	Start Position
	End   Position
}
