package listview

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-kontakt/pkg/schema"
)

// GroupState describes the aggregate visibility of a group's properties.
type GroupState string

const (
	GroupNone GroupState = "none"
	GroupSome GroupState = "some"
	GroupAll  GroupState = "all"
)

// IsVisible reports whether the named property is currently shown.
func (v *View) IsVisible(name string) bool {
	return v.visible[name]
}

// VisibleProperties returns the shown properties in flattened group order.
func (v *View) VisibleProperties() []schema.Property {
	var out []schema.Property
	for _, prop := range v.template.FlattenedProperties() {
		if v.visible[prop.Name] {
			out = append(out, prop)
		}
	}
	return out
}

// ToggleProperty flips one property's visibility and persists the new map.
func (v *View) ToggleProperty(name string) {
	if _, ok := v.visible[name]; !ok {
		return
	}
	v.visible[name] = !v.visible[name]
	v.persistVisibility()
}

// GroupVisibility reports whether none, some or all of a group's properties
// are visible. Empty groups report none.
func (v *View) GroupVisibility(groupIndex int) GroupState {
	if groupIndex < 0 || groupIndex >= len(v.template.Groups) {
		return GroupNone
	}
	group := v.template.Groups[groupIndex]
	shown := 0
	for _, prop := range group.Properties {
		if v.visible[prop.Name] {
			shown++
		}
	}
	switch {
	case shown == 0:
		return GroupNone
	case shown == len(group.Properties):
		return GroupAll
	default:
		return GroupSome
	}
}

// ToggleGroup sets a group's properties to a uniform state: a fully visible
// group is hidden entirely, anything less becomes fully visible. The toggle
// target is always all-or-none, never "some".
func (v *View) ToggleGroup(groupIndex int) {
	if groupIndex < 0 || groupIndex >= len(v.template.Groups) {
		return
	}
	group := v.template.Groups[groupIndex]
	if len(group.Properties) == 0 {
		return
	}

	show := v.GroupVisibility(groupIndex) != GroupAll
	for _, prop := range group.Properties {
		v.visible[prop.Name] = show
	}
	v.persistVisibility()
}

// persistVisibility writes the current visibility map on every toggle.
func (v *View) persistVisibility() {
	if v.prefs == nil {
		return
	}
	snapshot := make(map[string]bool, len(v.visible))
	for name, visible := range v.visible {
		snapshot[name] = visible
	}
	if err := v.prefs.SaveVisibility(VisibilityStorageKey, snapshot); err != nil {
		v.logger.Warn("persisting column visibility failed", zap.Error(err))
	}
}
