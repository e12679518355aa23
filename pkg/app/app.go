package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-kontakt/pkg/editor"
	"github.com/goliatone/go-kontakt/pkg/importer"
	"github.com/goliatone/go-kontakt/pkg/links"
	"github.com/goliatone/go-kontakt/pkg/listview"
	"github.com/goliatone/go-kontakt/pkg/prompt"
	"github.com/goliatone/go-kontakt/pkg/store"
)

// Option customises the application wiring.
type Option func(*App)

// WithBaseURL points the app at a remote store.
func WithBaseURL(baseURL string) Option {
	return func(a *App) {
		a.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout for the remote store client.
func WithTimeout(timeout time.Duration) Option {
	return func(a *App) {
		a.timeout = timeout
	}
}

// WithClient injects a pre-built store client, bypassing WithBaseURL.
func WithClient(client *store.Client) Option {
	return func(a *App) {
		a.client = client
	}
}

// WithPrefs injects the device-local preference store.
func WithPrefs(prefs listview.PrefStore) Option {
	return func(a *App) {
		a.prefs = prefs
	}
}

// WithPrompter injects the interactive driver. The default talks to the
// process terminal via survey.
func WithPrompter(driver prompt.Driver) Option {
	return func(a *App) {
		a.prompter = driver
	}
}

// WithLogger injects a structured logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// App wires the remote store client, preference store and interactive driver
// into ready-to-use view models. Missing dependencies are initialised with the
// built-in implementations so callers can start with a single constructor
// call.
type App struct {
	baseURL  string
	timeout  time.Duration
	client   *store.Client
	prefs    listview.PrefStore
	prompter prompt.Driver
	logger   *zap.Logger

	initialiseErr error
}

// New constructs an App applying any provided options.
func New(options ...Option) *App {
	a := &App{
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	a.applyDefaults()
	return a
}

func (a *App) applyDefaults() {
	if a.client == nil {
		if a.baseURL == "" {
			a.initialiseErr = errors.New("app: a base URL or store client is required")
			return
		}
		opts := []store.Option{store.WithLogger(a.logger)}
		if a.timeout > 0 {
			opts = append(opts, store.WithTimeout(a.timeout))
		}
		client, err := store.New(a.baseURL, opts...)
		if err != nil {
			a.initialiseErr = err
			return
		}
		a.client = client
	}
	if a.prompter == nil {
		a.prompter = prompt.NewSurveyDriver()
	}
}

// Client returns the underlying remote store client.
func (a *App) Client() (*store.Client, error) {
	if a.initialiseErr != nil {
		return nil, a.initialiseErr
	}
	return a.client, nil
}

// ListView builds the entity list view model, wired with the preference
// store, an interactive delete confirmation and export support.
func (a *App) ListView() (*listview.View, error) {
	if a.initialiseErr != nil {
		return nil, a.initialiseErr
	}
	opts := []listview.Option{
		listview.WithLogger(a.logger),
		listview.WithExporter(a.client),
		listview.WithConfirmer(promptConfirmer{driver: a.prompter}),
	}
	if a.prefs != nil {
		opts = append(opts, listview.WithPrefs(a.prefs))
	}
	return listview.New(a.client, opts...), nil
}

// Editor builds the template editor view model.
func (a *App) Editor() (*editor.Editor, error) {
	if a.initialiseErr != nil {
		return nil, a.initialiseErr
	}
	return editor.New(a.client,
		editor.WithPrompter(a.prompter),
		editor.WithLogger(a.logger),
	), nil
}

// Importer builds the spreadsheet import reconciler.
func (a *App) Importer() (*importer.Reconciler, error) {
	if a.initialiseErr != nil {
		return nil, a.initialiseErr
	}
	return importer.NewReconciler(a.client, importer.WithLogger(a.logger)), nil
}

// LinkResolver builds the candidate resolver for Link properties.
func (a *App) LinkResolver() (*links.Resolver, error) {
	if a.initialiseErr != nil {
		return nil, a.initialiseErr
	}
	return links.NewResolver(a.client, links.WithLogger(a.logger)), nil
}

// promptConfirmer adapts the interactive driver to the list view's
// confirmation hook.
type promptConfirmer struct {
	driver prompt.Driver
}

func (c promptConfirmer) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	confirmed, err := c.driver.Confirm(ctx, prompt.ConfirmConfig{
		Message: message,
		Default: defaultYes,
	})
	if errors.Is(err, prompt.ErrAborted) {
		return false, nil
	}
	return confirmed, err
}
