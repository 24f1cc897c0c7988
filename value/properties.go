package value

import "slices"

// Property is one named value of a record.
type Property struct {
	Name  string
	Value Value
}

// Properties is an insertion-ordered list of record properties.
// Names are unique; Set replaces an existing entry in place.
type Properties []Property

// Get returns the value stored under name.
func (p Properties) Get(name string) (Value, bool) {
	for i := range p {
		if p[i].Name == name {
			return p[i].Value, true
		}
	}
	return Value{}, false
}

// Set stores v under name, keeping the original position of an existing entry.
func (p *Properties) Set(name string, v Value) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = v
			return
		}
	}
	*p = append(*p, Property{Name: name, Value: v})
}

// Delete removes name and reports whether it was present.
func (p *Properties) Delete(name string) bool {
	for i := range *p {
		if (*p)[i].Name == name {
			*p = slices.Delete(*p, i, i+1)
			return true
		}
	}
	return false
}

// Names returns the property names in order.
func (p Properties) Names() []string {
	names := make([]string, len(p))
	for i := range p {
		names[i] = p[i].Name
	}
	return names
}

// Map returns the properties as an unordered map.
func (p Properties) Map() map[string]Value {
	m := make(map[string]Value, len(p))
	for _, prop := range p {
		m[prop.Name] = prop.Value
	}
	return m
}

// Filter returns the subset of p whose names are listed, as a map.
func (p Properties) Filter(names ...string) map[string]Value {
	m := make(map[string]Value, len(names))
	for _, prop := range p {
		if slices.Contains(names, prop.Name) {
			m[prop.Name] = prop.Value
		}
	}
	return m
}

// Clone returns a shallow copy of p. Values are immutable so this is a full copy.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Equal reports whether p and o hold the same names, in the same order, with equal values.
func (p Properties) Equal(o Properties) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i].Name != o[i].Name || !p[i].Value.Equal(o[i].Value) {
			return false
		}
	}
	return true
}

// EqualMaps reports whether two property maps hold equal values under the same names.
func EqualMaps(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}
