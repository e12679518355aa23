package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-kontakt/pkg/prompt"
	"github.com/goliatone/go-kontakt/pkg/schema"
)

// ErrNoTemplate is returned when an operation runs before a template is
// loaded.
var ErrNoTemplate = errors.New("editor: no template loaded")

// TemplateStore is the remote surface the editor saves through. *store.Client
// satisfies this.
type TemplateStore interface {
	SaveTemplate(ctx context.Context, actionURL string, tpl schema.Template) (string, error)
	AttributeSuggestions(ctx context.Context) ([]schema.SuggestionCategory, error)
	SelectionOptions(ctx context.Context) ([]schema.ValueList, error)
}

// Option customises the editor.
type Option func(*Editor)

// WithPrompter injects the interactive driver used for the fork-on-save name
// prompt and informational messages.
func WithPrompter(driver prompt.Driver) Option {
	return func(e *Editor) {
		e.prompter = driver
	}
}

// WithLogger injects a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Editor holds a working copy of one template plus the snapshot it was loaded
// from. All mutations apply to the working copy only; nothing reaches the
// remote store before Save. Not safe for concurrent use.
type Editor struct {
	remote   TemplateStore
	prompter prompt.Driver
	logger   *zap.Logger

	template schema.Template
	snapshot schema.Template
	loaded   bool

	suggestions []schema.SuggestionCategory
	valueLists  []schema.ValueList
}

// New constructs an editor over the given template store.
func New(remote TemplateStore, options ...Option) *Editor {
	e := &Editor{
		remote: remote,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Load replaces the working copy and snapshot with deep copies of tpl,
// discarding any unsaved edits.
func (e *Editor) Load(tpl schema.Template) {
	e.template = tpl.Clone()
	e.template.Entities = nil
	e.snapshot = e.template.Clone()
	e.loaded = true
}

// LoadNew starts the editor on a fresh template seeded with the default
// group. Saving it creates a new template.
func (e *Editor) LoadNew(name string) {
	e.Load(schema.New(name))
}

// Bootstrap fetches the attribute suggestions and selection value-lists
// concurrently. Either fetch failing is logged and leaves that side empty; the
// editor stays usable without them.
func (e *Editor) Bootstrap(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := e.remote.AttributeSuggestions(ctx)
		if err != nil {
			e.logger.Warn("loading attribute suggestions failed", zap.Error(err))
			return nil
		}
		e.suggestions = categories
		return nil
	})
	g.Go(func() error {
		lists, err := e.remote.SelectionOptions(ctx)
		if err != nil {
			e.logger.Warn("loading selection options failed", zap.Error(err))
			return nil
		}
		e.valueLists = lists
		return nil
	})
	_ = g.Wait()
}

// Template returns the current working copy.
func (e *Editor) Template() schema.Template { return e.template }

// Dirty reports whether the working copy differs from the loaded snapshot.
func (e *Editor) Dirty() bool {
	return !e.template.Equal(e.snapshot)
}

// Suggestions returns the attribute suggestion categories fetched by
// Bootstrap.
func (e *Editor) Suggestions() []schema.SuggestionCategory { return e.suggestions }

// ValueLists returns the global selection value-lists fetched by Bootstrap.
func (e *Editor) ValueLists() []schema.ValueList { return e.valueLists }

// ValueList looks up a selection value-list by name.
func (e *Editor) ValueList(name string) (schema.ValueList, bool) {
	for _, list := range e.valueLists {
		if list.Name == name {
			return list, true
		}
	}
	return schema.ValueList{}, false
}

// Save persists the working copy. Unchanged templates are reported to the
// user without a network call. Edits to a standard template fork a fresh
// non-standard copy under a name prompted from the user; everything else posts
// to the template's own action URL. The returned string is the server's
// redirect location, empty when nothing was saved.
func (e *Editor) Save(ctx context.Context) (string, error) {
	if !e.loaded {
		return "", ErrNoTemplate
	}
	if !e.Dirty() {
		e.inform(ctx, "Keine Änderungen zu speichern.")
		return "", nil
	}
	if strings.TrimSpace(e.template.Name) == "" {
		return "", fmt.Errorf("editor: template name must not be empty")
	}

	if e.snapshot.IsStandard {
		return e.saveFork(ctx)
	}

	actionURL := "/vorlage/neu"
	if e.template.ID != 0 {
		actionURL = fmt.Sprintf("/vorlage/%d/bearbeiten", e.template.ID)
	}
	redirect, err := e.remote.SaveTemplate(ctx, actionURL, e.template)
	if err != nil {
		return "", err
	}
	e.snapshot = e.template.Clone()
	return redirect, nil
}

// saveFork creates a modified copy of a standard template instead of writing
// through. The original stays untouched on the server.
func (e *Editor) saveFork(ctx context.Context) (string, error) {
	if e.prompter == nil {
		return "", fmt.Errorf("editor: editing a standard template requires a prompter")
	}
	name, err := e.prompter.Input(ctx, prompt.InputConfig{
		Message: "Standardvorlagen können nicht geändert werden. Name für die Kopie:",
		Default: e.template.Name + " (Kopie)",
		Validator: func(value string) error {
			if strings.TrimSpace(value) == "" {
				return fmt.Errorf("Name darf nicht leer sein")
			}
			return nil
		},
	})
	if err != nil {
		return "", err
	}

	fork := e.template.Clone()
	fork.ID = 0
	fork.IsStandard = false
	fork.Name = strings.TrimSpace(name)
	for gi := range fork.Groups {
		fork.Groups[gi].ID = 0
		for pi := range fork.Groups[gi].Properties {
			fork.Groups[gi].Properties[pi].ID = 0
		}
	}

	redirect, err := e.remote.SaveTemplate(ctx, "/vorlage/neu", fork)
	if err != nil {
		return "", err
	}
	e.template = fork
	e.snapshot = fork.Clone()
	return redirect, nil
}

func (e *Editor) inform(ctx context.Context, msg string) {
	if e.prompter == nil {
		return
	}
	if err := e.prompter.Info(ctx, msg); err != nil {
		e.logger.Warn("informing user failed", zap.Error(err))
	}
}
