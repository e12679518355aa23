package schema

import "strings"

// FlattenedProperties returns every property of the template in group order.
// This is the canonical property order used for import mapping and list
// columns.
func (t Template) FlattenedProperties() []Property {
	var out []Property
	for _, group := range t.Groups {
		out = append(out, group.Properties...)
	}
	return out
}

// LinkProperties returns the flattened subset of properties typed as Link.
func (t Template) LinkProperties() []Property {
	var out []Property
	for _, prop := range t.FlattenedProperties() {
		if prop.DataType == TypeLink {
			out = append(out, prop)
		}
	}
	return out
}

// DuplicatePropertyNames reports property names that occur more than once in
// the template, compared case-insensitively. The result preserves first
// occurrence order.
func (t Template) DuplicatePropertyNames() []string {
	seen := make(map[string]int)
	var out []string
	for _, prop := range t.FlattenedProperties() {
		key := strings.ToLower(strings.TrimSpace(prop.Name))
		if key == "" {
			continue
		}
		seen[key]++
		if seen[key] == 2 {
			out = append(out, prop.Name)
		}
	}
	return out
}

// Clone returns a deep copy of the template. Mutating the copy never touches
// the original's groups, properties, entities or value maps.
func (t Template) Clone() Template {
	out := t
	if t.Groups != nil {
		out.Groups = make([]Group, len(t.Groups))
		for i, group := range t.Groups {
			out.Groups[i] = group.Clone()
		}
	}
	if t.Entities != nil {
		out.Entities = make([]Entity, len(t.Entities))
		for i, entity := range t.Entities {
			out.Entities[i] = entity.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	out := g
	if g.Properties != nil {
		out.Properties = append([]Property(nil), g.Properties...)
	}
	return out
}

// Clone returns a deep copy of the entity, including its value map.
func (e Entity) Clone() Entity {
	out := e
	if e.Values != nil {
		out.Values = make(map[string]string, len(e.Values))
		for key, value := range e.Values {
			out.Values[key] = value
		}
	}
	return out
}

// Equal reports deep, order-sensitive structural equality between two
// templates. Group and property order matter; entity value maps are compared
// key by key.
func (t Template) Equal(other Template) bool {
	if t.ID != other.ID || t.Name != other.Name || t.IsStandard != other.IsStandard {
		return false
	}
	if len(t.Groups) != len(other.Groups) {
		return false
	}
	for i := range t.Groups {
		if !t.Groups[i].Equal(other.Groups[i]) {
			return false
		}
	}
	if len(t.Entities) != len(other.Entities) {
		return false
	}
	for i := range t.Entities {
		if !t.Entities[i].Equal(other.Entities[i]) {
			return false
		}
	}
	return true
}

// Equal reports order-sensitive equality of two groups.
func (g Group) Equal(other Group) bool {
	if g.ID != other.ID || g.Name != other.Name {
		return false
	}
	if len(g.Properties) != len(other.Properties) {
		return false
	}
	for i := range g.Properties {
		if g.Properties[i] != other.Properties[i] {
			return false
		}
	}
	return true
}

// Equal reports equality of two entities including their value maps.
func (e Entity) Equal(other Entity) bool {
	if e.ID != other.ID || e.TemplateID != other.TemplateID {
		return false
	}
	if len(e.Values) != len(other.Values) {
		return false
	}
	for key, value := range e.Values {
		got, ok := other.Values[key]
		if !ok || got != value {
			return false
		}
	}
	return true
}
