package listview

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/goliatone/go-kontakt/pkg/schema"
)

// VisibilityStorageKey is the fixed device-local key column visibility is
// persisted under.
const VisibilityStorageKey = "kundenkommunikation_column_visibility"

// ErrEmptySelection is returned when a bulk operation runs with nothing
// selected. No network call is attempted.
var ErrEmptySelection = errors.New("listview: selection is empty")

// ErrAborted is returned when the user declines a confirmation prompt.
var ErrAborted = errors.New("listview: aborted by user")

// ErrNoConfirmer is returned when a destructive operation runs without a
// configured confirmer.
var ErrNoConfirmer = errors.New("listview: bulk delete requires confirmation")

// EntityStore is the remote surface the list view mutates entities through.
// *store.Client satisfies this.
type EntityStore interface {
	UpdateField(ctx context.Context, entityID int64, field, value string) error
	CreateEntity(ctx context.Context, templateID int64, values map[string]string) (schema.Entity, error)
	BulkDelete(ctx context.Context, ids []int64) error
}

// Exporter streams an opaque export download. *store.Client satisfies this.
type Exporter interface {
	Export(ctx context.Context, templateID int64, format string, w io.Writer) error
}

// PrefStore persists small device-local preferences. *prefs.Store satisfies
// this.
type PrefStore interface {
	LoadVisibility(key string) (map[string]bool, error)
	SaveVisibility(key string, visibility map[string]bool) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, message string, defaultYes bool) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, message string, defaultYes bool) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	return f(ctx, message, defaultYes)
}

// AutoConfirm approves every confirmation, for headless callers that gather
// consent elsewhere.
var AutoConfirm = ConfirmerFunc(func(context.Context, string, bool) (bool, error) {
	return true, nil
})

// Option customises the view.
type Option func(*View)

// WithPrefs injects the preference store used to persist column visibility.
func WithPrefs(prefs PrefStore) Option {
	return func(v *View) {
		v.prefs = prefs
	}
}

// WithConfirmer injects the confirmation prompt used before bulk deletes.
func WithConfirmer(confirmer Confirmer) Option {
	return func(v *View) {
		v.confirmer = confirmer
	}
}

// WithExporter injects the export download source.
func WithExporter(exporter Exporter) Option {
	return func(v *View) {
		v.exporter = exporter
	}
}

// WithLogger injects a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// View is the reactive projection over one template's entities: per-property
// visibility, type-aware single-column sorting, id-set selection, confirmed
// bulk deletion and pessimistic single-field updates. One View instance owns
// its state exclusively; it is not safe for concurrent use.
type View struct {
	remote    EntityStore
	exporter  Exporter
	prefs     PrefStore
	confirmer Confirmer
	logger    *zap.Logger

	template    schema.Template
	entities    []schema.Entity
	visible     map[string]bool
	persisted   map[string]bool
	initialized bool
	sortColumn  string
	sortAsc     bool
	selection   map[int64]struct{}
}

// New constructs a view over the given entity store. Persisted column
// visibility, when a preference store is configured, is read once here and
// applied to the first active template.
func New(remote EntityStore, options ...Option) *View {
	v := &View{
		remote:    remote,
		logger:    zap.NewNop(),
		visible:   make(map[string]bool),
		selection: make(map[int64]struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	if v.prefs != nil {
		stored, err := v.prefs.LoadVisibility(VisibilityStorageKey)
		if err != nil {
			// Best effort: corrupt or missing preferences fall back to defaults.
			v.logger.Warn("loading column visibility failed", zap.Error(err))
		} else {
			v.persisted = stored
		}
	}
	return v
}

// SetActiveTemplate switches the view to a new template: the entity list is
// deep-copied in, every property defaults to visible, the selection is
// cleared and the sort is reset. Persisted visibility overrides apply only to
// the first template after construction.
func (v *View) SetActiveTemplate(tpl schema.Template) {
	v.template = tpl.Clone()
	v.entities = v.template.Entities
	v.template.Entities = nil

	v.visible = make(map[string]bool)
	for _, prop := range v.template.FlattenedProperties() {
		v.visible[prop.Name] = true
	}
	if !v.initialized {
		v.initialized = true
		for name, visible := range v.persisted {
			if _, ok := v.visible[name]; ok {
				v.visible[name] = visible
			}
		}
	}

	v.selection = make(map[int64]struct{})
	v.sortColumn = ""
	v.sortAsc = true
}

// Template returns the active template (without entities).
func (v *View) Template() schema.Template { return v.template }

// Len reports the number of entities in the active template.
func (v *View) Len() int { return len(v.entities) }
