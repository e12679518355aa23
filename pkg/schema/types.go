package schema

import (
	"strconv"
	"strings"
)

// DataType enumerates the property kinds a template can declare. The wire
// values are the German names used by the remote store.
type DataType string

const (
	TypeText      DataType = "Text"
	TypeDate      DataType = "Datum"
	TypeSelection DataType = "Auswahl"
	TypeLink      DataType = "Verknüpfung"
)

// Link option prefixes. The canonical prefix is "template_id:"; the legacy
// prefix is still produced by older stores and remains accepted.
const (
	linkPrefix       = "template_id:"
	legacyLinkPrefix = "vorlage_id:"
)

// Property is one typed field definition inside a template group. Name doubles
// as the storage key inside Entity.Values: renaming a property does not
// migrate values already stored under the old name.
type Property struct {
	ID       int64    `json:"id,omitempty"`
	Name     string   `json:"name"`
	DataType DataType `json:"datentyp"`
	// Options carries type-specific configuration: the value-list name for
	// Selection properties, "template_id:<id>" for Link properties.
	Options string `json:"optionen"`
}

// LinkTarget parses the target template id out of a Link property's options.
// Unparsable or dangling options report ok=false; callers treat that as an
// empty candidate list, never as an error.
func (p Property) LinkTarget() (int64, bool) {
	raw := strings.TrimSpace(p.Options)
	switch {
	case strings.HasPrefix(raw, linkPrefix):
		raw = strings.TrimPrefix(raw, linkPrefix)
	case strings.HasPrefix(raw, legacyLinkPrefix):
		raw = strings.TrimPrefix(raw, legacyLinkPrefix)
	default:
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// LinkOptions formats the options string for a Link property targeting the
// given template.
func LinkOptions(templateID int64) string {
	return linkPrefix + strconv.FormatInt(templateID, 10)
}

// Group is an ordered, user-reorderable collection of properties. Order drives
// form and list layout.
type Group struct {
	ID         int64      `json:"id,omitempty"`
	Name       string     `json:"name"`
	Properties []Property `json:"eigenschaften"`
}

// Template is a user-editable schema instantiated by entities. Standard
// templates are read-only; edits fork a copy instead of mutating in place.
type Template struct {
	ID         int64    `json:"id,omitempty"`
	Name       string   `json:"name"`
	IsStandard bool     `json:"is_standard,omitempty"`
	Groups     []Group  `json:"gruppen"`
	Entities   []Entity `json:"kontakte,omitempty"`
}

// DefaultGroupName is the group a freshly created template starts with.
const DefaultGroupName = "Allgemein"

// New returns an empty template seeded with the default group.
func New(name string) Template {
	return Template{
		Name:   name,
		Groups: []Group{{Name: DefaultGroupName}},
	}
}

// Entity is one record instantiated from a template. Values may contain keys
// the current template no longer declares (orphaned historical data) and may
// lack keys it does declare (unset); both states are preserved losslessly.
type Entity struct {
	ID         int64             `json:"id"`
	TemplateID int64             `json:"vorlage_id,omitempty"`
	Values     map[string]string `json:"daten"`
}

// Value returns the stored value for a property name, or the empty string
// when unset.
func (e Entity) Value(name string) string {
	if e.Values == nil {
		return ""
	}
	return e.Values[name]
}

// DisplayName derives a human-readable label for an entity: the "Name" value,
// else first and last name, else the company name, else a generic id label.
func (e Entity) DisplayName() string {
	if name := strings.TrimSpace(e.Value("Name")); name != "" {
		return name
	}
	full := strings.TrimSpace(e.Value("Vorname") + " " + e.Value("Nachname"))
	if full != "" {
		return full
	}
	if firma := strings.TrimSpace(e.Value("Firmenname")); firma != "" {
		return firma
	}
	return "Kontakt ID: " + strconv.FormatInt(e.ID, 10)
}

// ValueList is a globally defined, comma-separated set of allowed values
// referenced by Selection properties by name.
type ValueList struct {
	Name   string `json:"name"`
	Values string `json:"values"`
}

// Items splits the comma-separated values, trimming whitespace and dropping
// empty entries.
func (l ValueList) Items() []string {
	parts := strings.Split(l.Values, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SuggestionCategory is an externally supplied naming template for a group of
// properties, consumed by the template editor.
type SuggestionCategory struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
}

// Candidate is one selectable target entity for a Link property.
type Candidate struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}
