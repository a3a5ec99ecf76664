package types

import (
	"fmt"
	"strings"
)

// Format renders a human-readable name for the type, used in diagnostics.
func (in *Interner) Format(id TypeID) string {
	t := in.Get(id)
	switch t.Kind {
	case KindError, KindAny, KindNull, KindBool, KindInt, KindString:
		return t.Kind.String()
	case KindStringLit:
		info, _ := in.Literal(id)
		s, _ := in.strings.Lookup(info.Str)
		return fmt.Sprintf("'%s'", s)
	case KindIntLit:
		info, _ := in.Literal(id)
		return fmt.Sprintf("%d", info.Int)
	case KindBoolLit:
		info, _ := in.Literal(id)
		return fmt.Sprintf("%t", info.Bool)
	case KindArray:
		return in.Format(t.Elem) + "[]"
	case KindObject:
		return "object"
	case KindUnion:
		members, _ := in.UnionMembers(id)
		parts := make([]string, len(members))
		for i, m := range members {
			parts[i] = in.Format(m)
		}
		return strings.Join(parts, " | ")
	case KindResource:
		info, ok := in.Resource(id)
		if !ok {
			return "resource"
		}
		ns, _ := in.strings.Lookup(info.Namespace)
		name, _ := in.strings.Lookup(info.Name)
		ver, _ := in.strings.Lookup(info.Version)
		return fmt.Sprintf("%s/%s@%s", ns, name, ver)
	default:
		return "invalid"
	}
}
