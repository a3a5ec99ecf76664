package types

// AssignableTo reports whether a value of type src may be used where dst is
// expected. The relation is reflexive, accepts literal-to-primitive
// narrowing, is covariant for arrays and object fields, and treats the error
// type as compatible in both directions so diagnostic cascades stay
// suppressed.
func (in *Interner) AssignableTo(src, dst TypeID) bool {
	if src == dst {
		return src != NoTypeID
	}
	s, d := in.Get(src), in.Get(dst)
	if s.Kind == KindInvalid || d.Kind == KindInvalid {
		return false
	}
	if s.Kind == KindError || d.Kind == KindError {
		return true
	}
	if s.Kind == KindAny || d.Kind == KindAny {
		return true
	}

	// Union source: every member must fit the destination.
	if s.Kind == KindUnion {
		members, _ := in.UnionMembers(src)
		for _, m := range members {
			if !in.AssignableTo(m, dst) {
				return false
			}
		}
		return true
	}
	// Union destination: some member must accept the source.
	if d.Kind == KindUnion {
		members, _ := in.UnionMembers(dst)
		for _, m := range members {
			if in.AssignableTo(src, m) {
				return true
			}
		}
		return false
	}

	// Literal narrowing: 'dev' -> string, 42 -> int, true -> bool.
	if s.Kind.IsLiteral() && s.Kind.LiteralBase() == d.Kind {
		return true
	}

	switch d.Kind {
	case KindArray:
		if s.Kind != KindArray {
			return false
		}
		return in.AssignableTo(s.Elem, d.Elem)
	case KindObject:
		if s.Kind != KindObject {
			return false
		}
		return in.objectAssignable(src, dst)
	case KindResource:
		// Resource types are nominal: same namespace/name/version.
		if s.Kind != KindResource {
			return false
		}
		si, _ := in.Resource(src)
		di, _ := in.Resource(dst)
		return si != nil && di != nil &&
			si.Namespace == di.Namespace && si.Name == di.Name && si.Version == di.Version
	default:
		return false
	}
}

func (in *Interner) objectAssignable(src, dst TypeID) bool {
	so, _ := in.Object(src)
	do, _ := in.Object(dst)
	if so == nil || do == nil {
		return false
	}
	for _, want := range do.Fields {
		found := false
		for _, have := range so.Fields {
			if have.Name != want.Name {
				continue
			}
			found = true
			if !in.AssignableTo(have.Type, want.Type) {
				return false
			}
			break
		}
		if !found && !want.Optional {
			return false
		}
	}
	if !do.Open {
		for _, have := range so.Fields {
			known := false
			for _, want := range do.Fields {
				if have.Name == want.Name {
					known = true
					break
				}
			}
			if !known {
				return false
			}
		}
	}
	return true
}
