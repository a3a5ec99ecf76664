// Package ast models the immutable syntax tree consumed by the semantic
// core. The tree is produced by an out-of-scope parser frontend and arrives
// either as in-memory values (tests, embedding) or as a msgpack artifact
// (codec.go). Nodes live in compact arenas addressed by uint32 handles with
// index 0 reserved as the null handle; semantic passes store handles, never
// pointers into the tree, and never mutate it.
package ast
