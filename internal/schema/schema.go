// Package schema implements the resource-type schema provider: a read-only
// lookup service mapping (namespace, type, apiVersion) to the property
// schema the type checker validates resource bodies against. Registries are
// immutable after construction and safe for concurrent readers.
package schema

import (
	"fmt"
	"sort"
)

// Property declares one property of a resource type. Type uses the shared
// declared-type syntax (see types.ParseSyntax): primitive names, literal
// values, unions and T[] arrays.
type Property struct {
	Name     string
	Type     string
	Required bool
	ReadOnly bool
}

// ResourceSchema describes one resource type exposed by a provider.
type ResourceSchema struct {
	Namespace  string
	Type       string
	APIVersion string
	Properties []Property
}

// ID renders the canonical namespace/type@version form.
func (s *ResourceSchema) ID() string {
	return fmt.Sprintf("%s/%s@%s", s.Namespace, s.Type, s.APIVersion)
}

// Provider is the lookup contract the type checker depends on.
// Implementations must be safe for concurrent use.
type Provider interface {
	Lookup(namespace, typeName, apiVersion string) (*ResourceSchema, bool)
}

type registryKey struct {
	namespace string
	typeName  string
	version   string
}

// Registry is an immutable in-memory Provider.
type Registry struct {
	byKey map[registryKey]*ResourceSchema
}

// NewRegistry builds a registry from schemas. A duplicate
// (namespace, type, apiVersion) triple is an error.
func NewRegistry(schemas []ResourceSchema) (*Registry, error) {
	byKey := make(map[registryKey]*ResourceSchema, len(schemas))
	for i := range schemas {
		s := &schemas[i]
		key := registryKey{namespace: s.Namespace, typeName: s.Type, version: s.APIVersion}
		if _, exists := byKey[key]; exists {
			return nil, fmt.Errorf("duplicate resource schema %s", s.ID())
		}
		byKey[key] = s
	}
	return &Registry{byKey: byKey}, nil
}

// Lookup implements Provider.
func (r *Registry) Lookup(namespace, typeName, apiVersion string) (*ResourceSchema, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.byKey[registryKey{namespace: namespace, typeName: typeName, version: apiVersion}]
	return s, ok
}

// All returns every registered schema sorted by canonical ID, for listings.
func (r *Registry) All() []*ResourceSchema {
	out := make([]*ResourceSchema, 0, len(r.byKey))
	for _, s := range r.byKey {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
