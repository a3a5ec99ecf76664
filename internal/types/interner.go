package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"tern/internal/source"
)

// LiteralInfo stores the constant value of a literal type. Only the field
// matching the literal kind is meaningful.
type LiteralInfo struct {
	Str  source.StringID
	Int  int64
	Bool bool
}

// Field describes a single property of an object type.
type Field struct {
	Name     source.StringID
	Type     TypeID
	Optional bool
	ReadOnly bool
}

// ObjectInfo stores the shape of an object type. Open objects tolerate
// properties beyond the declared fields (typed as any).
type ObjectInfo struct {
	Fields []Field
	Open   bool
}

// UnionInfo stores the member set of a union type.
type UnionInfo struct {
	Members []TypeID
}

// ResourceInfo stores the identity and body shape of a schema-backed
// resource type.
type ResourceInfo struct {
	Namespace source.StringID
	Name      source.StringID
	Version   source.StringID
	Body      TypeID
}

// Interner owns every type descriptor of one analysis session. TypeIDs are
// the unit of comparison; scalar and array types are structurally deduped,
// object/union/resource types are registered once by their producer.
type Interner struct {
	data      []Type // index 0 reserved for NoTypeID
	index     map[Type]TypeID
	litIdx    map[litKey]TypeID
	literals  []LiteralInfo
	objects   []ObjectInfo
	unions    []UnionInfo
	unionKeys map[string]uint32
	resources []ResourceInfo
	strings   *source.Interner
}

type litKey struct {
	kind Kind
	info LiteralInfo
}

// NewInterner creates an interner bound to the session string table.
func NewInterner(strings *source.Interner) *Interner {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Interner{
		data:    make([]Type, 1, 64),
		index:   make(map[Type]TypeID),
		litIdx:  make(map[litKey]TypeID),
		strings: strings,
	}
}

// Strings returns the session string table the interner is bound to.
func (in *Interner) Strings() *source.Interner {
	return in.strings
}

func (in *Interner) internRaw(t Type) TypeID {
	if id, ok := in.index[t]; ok {
		return id
	}
	value, err := safecast.Conv[uint32](len(in.data))
	if err != nil {
		panic(fmt.Errorf("type arena overflow: %w", err))
	}
	id := TypeID(value)
	in.data = append(in.data, t)
	in.index[t] = id
	return id
}

func (in *Interner) appendRaw(t Type) TypeID {
	value, err := safecast.Conv[uint32](len(in.data))
	if err != nil {
		panic(fmt.Errorf("type arena overflow: %w", err))
	}
	id := TypeID(value)
	in.data = append(in.data, t)
	return id
}

// Get returns the descriptor for a TypeID, or the invalid type for NoTypeID.
func (in *Interner) Get(id TypeID) Type {
	if id == NoTypeID || int(id) >= len(in.data) {
		return Type{}
	}
	return in.data[id]
}

// Kind is a shortcut for Get(id).Kind.
func (in *Interner) Kind(id TypeID) Kind {
	return in.Get(id).Kind
}

// Primitive returns the interned primitive of the given kind.
func (in *Interner) Primitive(k Kind) TypeID {
	switch k {
	case KindError, KindAny, KindNull, KindBool, KindInt, KindString:
		return in.internRaw(Type{Kind: k})
	default:
		panic(fmt.Errorf("not a primitive kind: %v", k))
	}
}

// Error returns the poisoned error type.
func (in *Interner) Error() TypeID { return in.Primitive(KindError) }

// Any returns the dynamic any type.
func (in *Interner) Any() TypeID { return in.Primitive(KindAny) }

// Null returns the null type.
func (in *Interner) Null() TypeID { return in.Primitive(KindNull) }

// Bool returns the bool primitive.
func (in *Interner) Bool() TypeID { return in.Primitive(KindBool) }

// Int returns the int primitive.
func (in *Interner) Int() TypeID { return in.Primitive(KindInt) }

// StringType returns the string primitive.
func (in *Interner) StringType() TypeID { return in.Primitive(KindString) }

// Array returns the interned array type with the given element.
func (in *Interner) Array(elem TypeID) TypeID {
	return in.internRaw(Type{Kind: KindArray, Elem: elem})
}

func (in *Interner) literal(kind Kind, info LiteralInfo) TypeID {
	key := litKey{kind: kind, info: info}
	if id, ok := in.litIdx[key]; ok {
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.literals))
	if err != nil {
		panic(fmt.Errorf("literal table overflow: %w", err))
	}
	in.literals = append(in.literals, info)
	id := in.appendRaw(Type{Kind: kind, Payload: slot})
	in.litIdx[key] = id
	return id
}

// StringLit returns the literal type for a specific string value.
func (in *Interner) StringLit(value source.StringID) TypeID {
	return in.literal(KindStringLit, LiteralInfo{Str: value})
}

// IntLit returns the literal type for a specific integer value.
func (in *Interner) IntLit(value int64) TypeID {
	return in.literal(KindIntLit, LiteralInfo{Int: value})
}

// BoolLit returns the literal type for true or false.
func (in *Interner) BoolLit(value bool) TypeID {
	return in.literal(KindBoolLit, LiteralInfo{Bool: value})
}

// Literal returns the constant value of a literal type.
func (in *Interner) Literal(id TypeID) (LiteralInfo, bool) {
	t := in.Get(id)
	if !t.Kind.IsLiteral() || int(t.Payload) >= len(in.literals) {
		return LiteralInfo{}, false
	}
	return in.literals[t.Payload], true
}

// RegisterObject allocates an object type with the given shape.
func (in *Interner) RegisterObject(info ObjectInfo) TypeID {
	slot, err := safecast.Conv[uint32](len(in.objects))
	if err != nil {
		panic(fmt.Errorf("object table overflow: %w", err))
	}
	in.objects = append(in.objects, info)
	return in.appendRaw(Type{Kind: KindObject, Payload: slot})
}

// Object returns the shape of an object type.
func (in *Interner) Object(id TypeID) (*ObjectInfo, bool) {
	t := in.Get(id)
	if t.Kind != KindObject || int(t.Payload) >= len(in.objects) {
		return nil, false
	}
	return &in.objects[t.Payload], true
}

// Union returns the interned union of the given members. Duplicates are
// dropped; a single member collapses to that member.
func (in *Interner) Union(members []TypeID) TypeID {
	uniq := make([]TypeID, 0, len(members))
	for _, m := range members {
		seen := false
		for _, u := range uniq {
			if u == m {
				seen = true
				break
			}
		}
		if !seen {
			uniq = append(uniq, m)
		}
	}
	switch len(uniq) {
	case 0:
		return in.Error()
	case 1:
		return uniq[0]
	}
	// Canonical key over member IDs keeps identical unions identical.
	var key strings.Builder
	for _, m := range uniq {
		fmt.Fprintf(&key, "%d|", m)
	}
	probe := Type{Kind: KindUnion, Elem: uniq[0], Payload: in.unionSlotFor(key.String(), uniq)}
	return in.internRaw(probe)
}

func (in *Interner) unionSlotFor(key string, members []TypeID) uint32 {
	if in.unionKeys == nil {
		in.unionKeys = make(map[string]uint32)
	}
	if slot, ok := in.unionKeys[key]; ok {
		return slot
	}
	slot, err := safecast.Conv[uint32](len(in.unions))
	if err != nil {
		panic(fmt.Errorf("union table overflow: %w", err))
	}
	in.unions = append(in.unions, UnionInfo{Members: append([]TypeID(nil), members...)})
	in.unionKeys[key] = slot
	return slot
}

// UnionMembers returns the member set of a union type.
func (in *Interner) UnionMembers(id TypeID) ([]TypeID, bool) {
	t := in.Get(id)
	if t.Kind != KindUnion || int(t.Payload) >= len(in.unions) {
		return nil, false
	}
	return in.unions[t.Payload].Members, true
}

// RegisterResource allocates a resource type backed by a schema body.
func (in *Interner) RegisterResource(info ResourceInfo) TypeID {
	slot, err := safecast.Conv[uint32](len(in.resources))
	if err != nil {
		panic(fmt.Errorf("resource table overflow: %w", err))
	}
	in.resources = append(in.resources, info)
	return in.appendRaw(Type{Kind: KindResource, Payload: slot})
}

// Resource returns the identity and body of a resource type.
func (in *Interner) Resource(id TypeID) (*ResourceInfo, bool) {
	t := in.Get(id)
	if t.Kind != KindResource || int(t.Payload) >= len(in.resources) {
		return nil, false
	}
	return &in.resources[t.Payload], true
}

// Len reports the number of interned types excluding the sentinel.
func (in *Interner) Len() int { return len(in.data) - 1 }
