package schema

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the dd.mm.yyyy format date values are stored in.
const DateLayout = "02.01.2006"

// Value is the typed interpretation of one raw entity value against its
// declared property. Raw always holds the stored string unchanged; the typed
// fields are populated only when the raw value parses for the property's
// data type.
type Value struct {
	Property Property
	Raw      string

	// Date is set for TypeDate values that parse as dd.mm.yyyy.
	Date time.Time
	// LinkID is set for TypeLink values holding a numeric entity reference.
	LinkID int64
	// Valid reports whether Raw conforms to the property's data type. Text
	// and Selection values are always valid; unset values are not.
	Valid bool
}

// ParseValue interprets a raw stored string against the property's data type.
func (p Property) ParseValue(raw string) Value {
	v := Value{Property: p, Raw: raw}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return v
	}
	switch p.DataType {
	case TypeDate:
		parsed, err := time.Parse(DateLayout, trimmed)
		if err != nil {
			return v
		}
		v.Date = parsed
		v.Valid = true
	case TypeLink:
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil || id <= 0 {
			return v
		}
		v.LinkID = id
		v.Valid = true
	default:
		v.Valid = true
	}
	return v
}

// TypedValues interprets an entity's value map against the template's
// declared properties, in flattened group order. Keys the template no longer
// declares are returned separately as orphans, sorted by key, so historical
// data survives schema edits losslessly.
func (t Template) TypedValues(e Entity) (declared []Value, orphans map[string]string) {
	props := t.FlattenedProperties()
	known := make(map[string]bool, len(props))
	for _, prop := range props {
		known[prop.Name] = true
		declared = append(declared, prop.ParseValue(e.Value(prop.Name)))
	}

	for key, raw := range e.Values {
		if known[key] {
			continue
		}
		if orphans == nil {
			orphans = make(map[string]string)
		}
		orphans[key] = raw
	}
	return declared, orphans
}

// OrphanedKeys lists the entity value keys the template no longer declares,
// sorted for stable output.
func (t Template) OrphanedKeys(e Entity) []string {
	_, orphans := t.TypedValues(e)
	out := make([]string, 0, len(orphans))
	for key := range orphans {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
