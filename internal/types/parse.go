package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSyntax converts declared type syntax into an interned type. The
// grammar is shared by parameter/output annotations and schema property
// declarations:
//
//	union  := atom { "|" atom }
//	atom   := core { "[]" }
//	core   := "string" | "int" | "bool" | "null" | "any"
//	        | "'" text "'" (string literal)
//	        | integer | "true" | "false"
//
// A syntax or unknown-name failure returns an error; callers surface it as a
// diagnostic and fall back to the error type.
func ParseSyntax(in *Interner, syntax string) (TypeID, error) {
	parts := strings.Split(syntax, "|")
	members := make([]TypeID, 0, len(parts))
	for _, part := range parts {
		id, err := parseAtom(in, strings.TrimSpace(part))
		if err != nil {
			return NoTypeID, err
		}
		members = append(members, id)
	}
	return in.Union(members), nil
}

func parseAtom(in *Interner, s string) (TypeID, error) {
	if s == "" {
		return NoTypeID, fmt.Errorf("empty type")
	}
	dims := 0
	for strings.HasSuffix(s, "[]") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "[]"))
		dims++
	}

	var id TypeID
	switch {
	case s == "string":
		id = in.StringType()
	case s == "int":
		id = in.Int()
	case s == "bool":
		id = in.Bool()
	case s == "null":
		id = in.Null()
	case s == "any":
		id = in.Any()
	case s == "true":
		id = in.BoolLit(true)
	case s == "false":
		id = in.BoolLit(false)
	case len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'':
		id = in.StringLit(in.strings.Intern(s[1 : len(s)-1]))
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return NoTypeID, fmt.Errorf("unknown type %q", s)
		}
		id = in.IntLit(n)
	}

	for i := 0; i < dims; i++ {
		id = in.Array(id)
	}
	return id, nil
}
