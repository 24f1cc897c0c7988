package schema

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/value"
)

var (
	// ErrInvalidType is returned for a malformed type definition.
	ErrInvalidType = errors.New("schema: invalid type definition")
	// ErrTypeExists is returned when a type name is defined twice.
	ErrTypeExists = errors.New("schema: type already defined")
	// ErrUnknownType is returned when a referenced type is not defined.
	ErrUnknownType = errors.New("schema: unknown type")
	// ErrBucketInUse is returned when a bucket is already assigned to another type.
	ErrBucketInUse = errors.New("schema: bucket already assigned")
)

// Type describes a document, vertex or edge type.
type Type struct {
	Name string
	// Record is the record kind stored for this type.
	Record model.RecordType
	// Supertypes lists the direct parents. They must be defined first and
	// share the same record kind.
	Supertypes []string
	// Buckets are the storage buckets holding records of this type.
	Buckets []int32
	// Properties maps property names to their expected kind.
	Properties map[string]value.Kind
}

func (t Type) clone() Type {
	t.Supertypes = slices.Clone(t.Supertypes)
	t.Buckets = slices.Clone(t.Buckets)
	t.Properties = maps.Clone(t.Properties)
	return t
}

// Violation reports a property whose kind does not match the schema.
type Violation struct {
	Type     string
	Property string
	Expected value.Kind
	Actual   value.Kind
}

func (v Violation) String() string {
	return fmt.Sprintf("%s.%s has kind %s, expected %s", v.Type, v.Property, v.Actual, v.Expected)
}

// Registry holds type definitions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	types    map[string]Type
	byBucket map[int32]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:    make(map[string]Type),
		byBucket: make(map[int32]string),
	}
}

// Define registers a type.
func (r *Registry) Define(t Type) error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidType)
	}
	if t.Record != model.RecordDocument && t.Record != model.RecordVertex && t.Record != model.RecordEdge {
		return fmt.Errorf("%w: %q has record kind %s", ErrInvalidType, t.Name, t.Record)
	}
	for name, k := range t.Properties {
		if !k.Valid() {
			return fmt.Errorf("%w: %q.%s has kind %s", ErrInvalidType, t.Name, name, k)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[t.Name]; ok {
		return fmt.Errorf("%w: %q", ErrTypeExists, t.Name)
	}
	for _, super := range t.Supertypes {
		st, ok := r.types[super]
		if !ok {
			return fmt.Errorf("%w: supertype %q of %q", ErrUnknownType, super, t.Name)
		}
		if st.Record != t.Record {
			return fmt.Errorf("%w: %q is a %s but supertype %q is a %s", ErrInvalidType, t.Name, t.Record, super, st.Record)
		}
	}
	for _, b := range t.Buckets {
		if owner, ok := r.byBucket[b]; ok {
			return fmt.Errorf("%w: bucket %d belongs to %q", ErrBucketInUse, b, owner)
		}
	}

	t = t.clone()
	r.types[t.Name] = t
	for _, b := range t.Buckets {
		r.byBucket[b] = t.Name
	}
	return nil
}

// Type returns the definition of name.
func (r *Registry) Type(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]
	if !ok {
		return Type{}, false
	}
	return t.clone(), true
}

// TypeOfBucket returns the type owning bucket.
func (r *Registry) TypeOfBucket(bucket int32) (Type, bool) {
	r.mu.RLock()
	name, ok := r.byBucket[bucket]
	r.mu.RUnlock()
	if !ok {
		return Type{}, false
	}
	return r.Type(name)
}

// IsSubtypeOf reports whether name equals super or inherits from it.
func (r *Registry) IsSubtypeOf(name, super string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := false
	r.walk(name, func(t Type) bool {
		found = t.Name == super
		return !found
	})
	return found
}

// ExpectedKind returns the declared kind of prop on typeName or its supertypes.
func (r *Registry) ExpectedKind(typeName, prop string) (value.Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		kind  value.Kind
		found bool
	)
	r.walk(typeName, func(t Type) bool {
		kind, found = t.Properties[prop]
		return !found
	})
	return kind, found
}

// Validate checks props against typeName. Unknown types and undeclared
// properties pass; null always passes.
func (r *Registry) Validate(typeName string, props value.Properties) []Violation {
	var violations []Violation
	for _, p := range props {
		expected, ok := r.ExpectedKind(typeName, p.Name)
		if !ok || compatible(p.Value.Kind, expected) {
			continue
		}
		violations = append(violations, Violation{
			Type:     typeName,
			Property: p.Name,
			Expected: expected,
			Actual:   p.Value.Kind,
		})
	}
	return violations
}

// walk visits name and its supertypes breadth first until fn returns false.
// Callers hold r.mu.
func (r *Registry) walk(name string, fn func(Type) bool) {
	queue := []string{name}
	seen := make(map[string]struct{})
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}

		t, ok := r.types[cur]
		if !ok {
			continue
		}
		if !fn(t) {
			return
		}
		queue = append(queue, t.Supertypes...)
	}
}

func compatible(actual, expected value.Kind) bool {
	if actual == expected || actual == value.KindNull {
		return true
	}
	// Integer kinds widen to a larger integer kind, float widens to double.
	switch expected {
	case value.KindShort:
		return actual == value.KindByte
	case value.KindInt:
		return actual == value.KindByte || actual == value.KindShort
	case value.KindLong:
		return actual == value.KindByte || actual == value.KindShort || actual == value.KindInt
	case value.KindDouble:
		return actual == value.KindFloat
	}
	return false
}
