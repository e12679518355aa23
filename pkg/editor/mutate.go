package editor

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-kontakt/pkg/schema"
)

// Placeholder names for freshly added groups and properties.
const (
	newGroupName    = "Neue Gruppe"
	newPropertyName = "Neue Eigenschaft"
)

// Rename changes the working copy's template name.
func (e *Editor) Rename(name string) {
	e.template.Name = name
}

// AddGroup appends an empty group with a placeholder name and returns its
// index.
func (e *Editor) AddGroup() int {
	e.template.Groups = append(e.template.Groups, schema.Group{Name: newGroupName})
	return len(e.template.Groups) - 1
}

// RemoveGroup deletes the group at the given index together with its
// properties.
func (e *Editor) RemoveGroup(index int) error {
	if index < 0 || index >= len(e.template.Groups) {
		return fmt.Errorf("editor: no group at index %d", index)
	}
	e.template.Groups = append(e.template.Groups[:index], e.template.Groups[index+1:]...)
	return nil
}

// RenameGroup changes the name of the group at the given index.
func (e *Editor) RenameGroup(index int, name string) error {
	if index < 0 || index >= len(e.template.Groups) {
		return fmt.Errorf("editor: no group at index %d", index)
	}
	e.template.Groups[index].Name = name
	return nil
}

// AddProperty appends a text property with a placeholder name to the given
// group and returns its index within the group.
func (e *Editor) AddProperty(groupIndex int) (int, error) {
	if groupIndex < 0 || groupIndex >= len(e.template.Groups) {
		return 0, fmt.Errorf("editor: no group at index %d", groupIndex)
	}
	group := &e.template.Groups[groupIndex]
	group.Properties = append(group.Properties, schema.Property{
		Name:     newPropertyName,
		DataType: schema.TypeText,
	})
	return len(group.Properties) - 1, nil
}

// RemoveProperty deletes one property from a group.
func (e *Editor) RemoveProperty(groupIndex, propertyIndex int) error {
	group, err := e.group(groupIndex)
	if err != nil {
		return err
	}
	if propertyIndex < 0 || propertyIndex >= len(group.Properties) {
		return fmt.Errorf("editor: no property at index %d", propertyIndex)
	}
	group.Properties = append(group.Properties[:propertyIndex], group.Properties[propertyIndex+1:]...)
	return nil
}

// UpdateProperty replaces the property definition at the given position. The
// original property id is kept so the server can match it.
func (e *Editor) UpdateProperty(groupIndex, propertyIndex int, prop schema.Property) error {
	group, err := e.group(groupIndex)
	if err != nil {
		return err
	}
	if propertyIndex < 0 || propertyIndex >= len(group.Properties) {
		return fmt.Errorf("editor: no property at index %d", propertyIndex)
	}
	prop.ID = group.Properties[propertyIndex].ID
	group.Properties[propertyIndex] = prop
	return nil
}

// ReorderGroup moves the group at from to position to, shifting the groups in
// between.
func (e *Editor) ReorderGroup(from, to int) error {
	n := len(e.template.Groups)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("editor: group move %d -> %d out of range", from, to)
	}
	if from == to {
		return nil
	}
	moved := e.template.Groups[from]
	rest := append(e.template.Groups[:from], e.template.Groups[from+1:]...)
	e.template.Groups = append(rest[:to], append([]schema.Group{moved}, rest[to:]...)...)
	return nil
}

// ReorderProperty moves one property within its group from one position to
// another.
func (e *Editor) ReorderProperty(groupIndex, from, to int) error {
	group, err := e.group(groupIndex)
	if err != nil {
		return err
	}
	n := len(group.Properties)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("editor: property move %d -> %d out of range", from, to)
	}
	if from == to {
		return nil
	}
	moved := group.Properties[from]
	rest := append(group.Properties[:from], group.Properties[from+1:]...)
	group.Properties = append(rest[:to], append([]schema.Property{moved}, rest[to:]...)...)
	return nil
}

// AddGroupFromSuggestion appends a group built from a suggestion category.
// Each attribute becomes a property with a data type guessed from its name.
func (e *Editor) AddGroupFromSuggestion(category schema.SuggestionCategory) int {
	group := schema.Group{Name: category.Name}
	for _, attribute := range category.Attributes {
		prop := schema.Property{
			Name:     attribute,
			DataType: SuggestDataType(attribute),
		}
		if prop.DataType == schema.TypeSelection {
			if _, ok := e.ValueList(attribute); ok {
				prop.Options = attribute
			}
		}
		group.Properties = append(group.Properties, prop)
	}
	e.template.Groups = append(e.template.Groups, group)
	return len(e.template.Groups) - 1
}

// SuggestDataType guesses a data type from a property name: names containing
// "datum" become dates, "anrede" and "status" become selections, everything
// else is text.
func SuggestDataType(name string) schema.DataType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "datum"):
		return schema.TypeDate
	case strings.Contains(lower, "anrede"), strings.Contains(lower, "status"):
		return schema.TypeSelection
	default:
		return schema.TypeText
	}
}

func (e *Editor) group(index int) (*schema.Group, error) {
	if index < 0 || index >= len(e.template.Groups) {
		return nil, fmt.Errorf("editor: no group at index %d", index)
	}
	return &e.template.Groups[index], nil
}
