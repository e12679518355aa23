package listview

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-kontakt/pkg/schema"
)

// ToggleSelect adds or removes one entity id from the selection.
func (v *View) ToggleSelect(id int64) {
	if _, ok := v.selection[id]; ok {
		delete(v.selection, id)
		return
	}
	v.selection[id] = struct{}{}
}

// IsSelected reports whether the entity id is selected.
func (v *View) IsSelected(id int64) bool {
	_, ok := v.selection[id]
	return ok
}

// SelectedIDs returns the selected entity ids in ascending order.
func (v *View) SelectedIDs() []int64 {
	out := make([]int64, 0, len(v.selection))
	for id := range v.selection {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ToggleSelectAll selects every entity of the active template, regardless of
// the current sort or column filter. When every entity is already selected it
// clears the selection instead; there is no "select visible only".
func (v *View) ToggleSelectAll() {
	if len(v.entities) > 0 && len(v.selection) == len(v.entities) {
		v.selection = make(map[int64]struct{})
		return
	}
	v.selection = make(map[int64]struct{}, len(v.entities))
	for _, entity := range v.entities {
		v.selection[entity.ID] = struct{}{}
	}
}

// BulkDelete removes the selected entities from the remote store after user
// confirmation. The ids are removed locally and the selection cleared only
// when the store confirms; on failure the local list and selection stay
// untouched.
func (v *View) BulkDelete(ctx context.Context) error {
	if len(v.selection) == 0 {
		return ErrEmptySelection
	}
	if v.confirmer == nil {
		return ErrNoConfirmer
	}

	message := fmt.Sprintf("%d Kontakte wirklich löschen?", len(v.selection))
	confirmed, err := v.confirmer.Confirm(ctx, message, false)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrAborted
	}

	ids := v.SelectedIDs()
	return v.commit(ctx,
		func(ctx context.Context) error {
			return v.remote.BulkDelete(ctx, ids)
		},
		func() {
			kept := v.entities[:0]
			for _, entity := range v.entities {
				if _, selected := v.selection[entity.ID]; !selected {
					kept = append(kept, entity)
				}
			}
			v.entities = kept
			v.selection = make(map[int64]struct{})
		},
		zap.Int("count", len(ids)),
	)
}

// UpdateField writes one field of one entity. Equal values are a no-op with
// zero network calls. The update is pessimistic: the local copy changes only
// after the store confirms success.
func (v *View) UpdateField(ctx context.Context, entityID int64, field, value string) error {
	idx := v.entityIndex(entityID)
	if idx < 0 {
		return fmt.Errorf("listview: unknown entity %d", entityID)
	}
	if v.entities[idx].Value(field) == value {
		return nil
	}

	return v.commit(ctx,
		func(ctx context.Context) error {
			return v.remote.UpdateField(ctx, entityID, field, value)
		},
		func() {
			if v.entities[idx].Values == nil {
				v.entities[idx].Values = make(map[string]string)
			}
			v.entities[idx].Values[field] = value
		},
		zap.Int64("entity_id", entityID),
		zap.String("field", field),
	)
}

// CreateEntity creates a new entity from the active template and appends the
// confirmed record to the local list.
func (v *View) CreateEntity(ctx context.Context, values map[string]string) (schema.Entity, error) {
	if v.template.ID == 0 {
		return schema.Entity{}, fmt.Errorf("listview: no active template")
	}
	var entity schema.Entity
	err := v.commit(ctx,
		func(ctx context.Context) error {
			created, err := v.remote.CreateEntity(ctx, v.template.ID, values)
			if err != nil {
				return err
			}
			entity = created
			return nil
		},
		func() {
			v.entities = append(v.entities, entity)
		},
		zap.Int64("template_id", v.template.ID),
	)
	if err != nil {
		return schema.Entity{}, err
	}
	return entity, nil
}

// commit runs a remote call and applies its local effect only after the store
// confirms success. Failures are logged and leave the local model untouched,
// so no operation is ever half-applied.
func (v *View) commit(ctx context.Context, send func(context.Context) error, apply func(), fields ...zap.Field) error {
	if err := send(ctx); err != nil {
		v.logger.Warn("remote mutation failed", append(fields, zap.Error(err))...)
		return err
	}
	apply()
	return nil
}

// Export streams the active template's export download into w.
func (v *View) Export(ctx context.Context, format string, w io.Writer) error {
	if v.exporter == nil {
		return fmt.Errorf("listview: no exporter configured")
	}
	if v.template.ID == 0 {
		return fmt.Errorf("listview: no active template")
	}
	return v.exporter.Export(ctx, v.template.ID, format, w)
}

func (v *View) entityIndex(id int64) int {
	for i, entity := range v.entities {
		if entity.ID == id {
			return i
		}
	}
	return -1
}
