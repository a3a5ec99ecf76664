package ast

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"tern/internal/source"
)

// Current schema version - increment when the artifact format changes.
const codecSchemaVersion uint16 = 1

// artifact is the on-disk form of a parsed compilation unit. The producing
// frontend and the analyzer do not share a process, so the payload carries
// the file content (for position resolution and rendering) and the string
// table the node handles refer to.
type artifact struct {
	Schema  uint16
	Path    string
	Content []byte
	Strings []string
	Span    source.Span
	Roots   []DeclID
	Decls   []Decl
	Exprs   []Expr
}

// EncodeTree serializes a tree together with its file content and the
// strings it references.
func EncodeTree(tree *Tree, fs *source.FileSet, strings *source.Interner) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("encode tree: nil tree")
	}
	file := fs.Get(tree.File)
	if file == nil {
		return nil, fmt.Errorf("encode tree: unknown file %d", tree.File)
	}
	payload := artifact{
		Schema:  codecSchemaVersion,
		Path:    file.Path,
		Content: file.Content,
		Strings: strings.All(),
		Span:    tree.Span,
		Roots:   tree.Roots,
		Decls:   tree.Decls,
		Exprs:   tree.Exprs,
	}
	return msgpack.Marshal(&payload)
}

// DecodeTree reads an artifact into the receiving session: the carried file
// content is registered in fs under a fresh FileID, carried strings are
// re-interned, and every span and string handle in the tree is rewritten to
// the receiving session's IDs.
func DecodeTree(data []byte, fs *source.FileSet, strings *source.Interner) (*Tree, error) {
	var payload artifact
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if payload.Schema != codecSchemaVersion {
		return nil, fmt.Errorf("decode tree: unsupported schema version %d", payload.Schema)
	}

	fileID := fs.Add(payload.Path, payload.Content, 0)

	// Таблица соответствия StringID артефакта -> StringID сессии.
	remap := make([]source.StringID, len(payload.Strings))
	for i, s := range payload.Strings {
		remap[i] = strings.Intern(s)
	}
	str := func(id source.StringID) (source.StringID, error) {
		if id == source.NoStringID {
			return source.NoStringID, nil
		}
		if int(id) >= len(remap) {
			return source.NoStringID, fmt.Errorf("decode tree: string handle %d out of range", id)
		}
		return remap[id], nil
	}
	span := func(sp source.Span) source.Span {
		sp.File = fileID
		return sp
	}

	tree := &Tree{
		File:  fileID,
		Span:  span(payload.Span),
		Roots: payload.Roots,
		Decls: payload.Decls,
		Exprs: payload.Exprs,
	}
	if len(tree.Decls) == 0 {
		tree.Decls = make([]Decl, 1)
	}
	if len(tree.Exprs) == 0 {
		tree.Exprs = make([]Expr, 1)
	}

	var err error
	for i := range tree.Decls {
		d := &tree.Decls[i]
		d.Span = span(d.Span)
		d.NameSpan = span(d.NameSpan)
		d.TypeSpan = span(d.TypeSpan)
		d.Res.Span = span(d.Res.Span)
		if d.Name, err = str(d.Name); err != nil {
			return nil, err
		}
		if d.Type, err = str(d.Type); err != nil {
			return nil, err
		}
		if d.Path, err = str(d.Path); err != nil {
			return nil, err
		}
		if d.Alias, err = str(d.Alias); err != nil {
			return nil, err
		}
		if d.Res.Namespace, err = str(d.Res.Namespace); err != nil {
			return nil, err
		}
		if d.Res.Name, err = str(d.Res.Name); err != nil {
			return nil, err
		}
		if d.Res.Version, err = str(d.Res.Version); err != nil {
			return nil, err
		}
	}
	for i := range tree.Exprs {
		e := &tree.Exprs[i]
		e.Span = span(e.Span)
		e.NameSpan = span(e.NameSpan)
		e.ForVarSpan = span(e.ForVarSpan)
		if e.Str, err = str(e.Str); err != nil {
			return nil, err
		}
		if e.Name, err = str(e.Name); err != nil {
			return nil, err
		}
		if e.ForVar, err = str(e.ForVar); err != nil {
			return nil, err
		}
		for j := range e.Fields {
			f := &e.Fields[j]
			f.NameSpan = span(f.NameSpan)
			if f.Name, err = str(f.Name); err != nil {
				return nil, err
			}
		}
	}
	return tree, nil
}
