package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-kontakt/pkg/schema"
	"github.com/goliatone/go-kontakt/pkg/store"
)

// Stage identifies where a reconciler session is in the
// Closed → Upload → Mapping → Finalizing lifecycle.
type Stage string

const (
	StageClosed     Stage = "closed"
	StageUpload     Stage = "upload"
	StageMapping    Stage = "mapping"
	StageFinalizing Stage = "finalizing"
)

// ValidationError reports an unmet precondition. It is raised before any
// network call is attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "importer: " + e.Reason
}

// allowedExtensions mirrors the file types the remote store accepts, checked
// client-side before uploading.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".msg":  true,
	".oft":  true,
	".txt":  true,
	".vcf":  true,
	".xlsx": true,
}

// ImportStore is the remote-store surface the reconciler depends on.
// *store.Client satisfies this.
type ImportStore interface {
	UploadImport(ctx context.Context, files []store.UploadFile) (store.UploadResult, error)
	FinalizeImport(ctx context.Context, req store.FinalizeRequest) (string, error)
}

// Option customises the reconciler.
type Option func(*Reconciler)

// WithLogger injects a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reconciler stages a spreadsheet import against a target template: upload
// produces headers and opaque row data, mapping reconciles headers against
// template properties, finalize commits. The reconciler is owned by a single
// view-model instance and is not safe for concurrent use.
type Reconciler struct {
	remote ImportStore
	logger *zap.Logger

	sessionID    string
	stage        Stage
	template     schema.Template
	headers      []string
	preview      json.RawMessage
	originalData json.RawMessage
	mappings     map[string]string
	defaults     map[string]string
	lastError    string
}

// NewReconciler constructs a closed reconciler over the given store.
func NewReconciler(remote ImportStore, options ...Option) *Reconciler {
	r := &Reconciler{
		remote: remote,
		logger: zap.NewNop(),
		stage:  StageClosed,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Begin opens a new import session for the target template, discarding any
// previous session state.
func (r *Reconciler) Begin(tpl schema.Template) {
	r.sessionID = uuid.NewString()
	r.stage = StageUpload
	r.template = tpl.Clone()
	r.headers = nil
	r.preview = nil
	r.originalData = nil
	r.mappings = nil
	r.defaults = nil
	r.lastError = ""
}

// Upload sends the files to the remote store and, on success, advances to the
// mapping stage with headers auto-mapped against the template's properties.
// Precondition failures (no template, no file, disallowed extension) are
// reported before any network call.
func (r *Reconciler) Upload(ctx context.Context, files ...store.UploadFile) error {
	if r.stage != StageUpload {
		return &ValidationError{Reason: fmt.Sprintf("upload not available in stage %q", r.stage)}
	}
	if r.template.ID == 0 || len(files) == 0 {
		return &ValidationError{Reason: "no template selected or no file"}
	}
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name))
		if !allowedExtensions[ext] {
			return &ValidationError{Reason: fmt.Sprintf("file type %q not allowed", ext)}
		}
	}

	result, err := r.remote.UploadImport(ctx, files)
	if err != nil {
		r.lastError = err.Error()
		r.logger.Warn("import upload failed",
			zap.String("session_id", r.sessionID),
			zap.Error(err))
		return err
	}

	r.headers = result.Headers
	r.preview = result.Preview
	r.originalData = result.OriginalData
	r.defaults = make(map[string]string)
	r.lastError = ""
	r.autoMap()
	r.stage = StageMapping
	return nil
}

// autoMap pre-fills mappings for every template property in flattened group
// order: the first header that equals the property name case-insensitively
// wins. Matching is literal lowercase equality, no fuzzy normalization, and a
// matched header stays available for further properties.
func (r *Reconciler) autoMap() {
	r.mappings = make(map[string]string)
	for _, prop := range r.template.FlattenedProperties() {
		r.mappings[prop.Name] = ""
		for _, header := range r.headers {
			if strings.EqualFold(prop.Name, header) {
				r.mappings[prop.Name] = header
				break
			}
		}
	}
}

// SetMapping assigns a header to a template property, overriding the
// auto-mapped value. An empty header leaves the property unmapped.
func (r *Reconciler) SetMapping(property, header string) error {
	if r.stage != StageMapping {
		return &ValidationError{Reason: fmt.Sprintf("mapping not available in stage %q", r.stage)}
	}
	if _, ok := r.mappings[property]; !ok {
		return &ValidationError{Reason: fmt.Sprintf("unknown property %q", property)}
	}
	r.mappings[property] = header
	return nil
}

// SetDefault records a default value applied to a property left unmapped.
func (r *Reconciler) SetDefault(property, value string) error {
	if r.stage != StageMapping {
		return &ValidationError{Reason: fmt.Sprintf("mapping not available in stage %q", r.stage)}
	}
	if _, ok := r.mappings[property]; !ok {
		return &ValidationError{Reason: fmt.Sprintf("unknown property %q", property)}
	}
	if r.defaults == nil {
		r.defaults = make(map[string]string)
	}
	r.defaults[property] = value
	return nil
}

// Finalize commits the staged import. On success the session closes and the
// server-provided redirect location is returned. On failure the session stays
// in the mapping stage with row data, mappings and defaults retained for
// retry.
func (r *Reconciler) Finalize(ctx context.Context) (string, error) {
	if r.stage != StageMapping {
		return "", &ValidationError{Reason: fmt.Sprintf("finalize not available in stage %q", r.stage)}
	}

	r.stage = StageFinalizing
	redirect, err := r.remote.FinalizeImport(ctx, store.FinalizeRequest{
		TemplateID:    r.template.ID,
		Mappings:      r.mappings,
		DefaultValues: r.defaults,
		OriginalData:  r.originalData,
	})
	if err != nil {
		r.stage = StageMapping
		r.lastError = err.Error()
		r.logger.Warn("import finalize failed",
			zap.String("session_id", r.sessionID),
			zap.Int64("template_id", r.template.ID),
			zap.Error(err))
		return "", err
	}

	r.stage = StageClosed
	r.lastError = ""
	return redirect, nil
}

// Stage returns the current lifecycle stage.
func (r *Reconciler) Stage() Stage { return r.stage }

// SessionID returns the id of the current session, empty before Begin.
func (r *Reconciler) SessionID() string { return r.sessionID }

// Template returns the session's target template.
func (r *Reconciler) Template() schema.Template { return r.template }

// Headers returns the column headers reported by the upload.
func (r *Reconciler) Headers() []string {
	return append([]string(nil), r.headers...)
}

// Preview returns the raw preview rows reported by the upload, if any.
func (r *Reconciler) Preview() json.RawMessage { return r.preview }

// LastError returns the message of the most recent failed remote call, empty
// after a successful one.
func (r *Reconciler) LastError() string { return r.lastError }

// Mappings returns a copy of the property-to-header mapping table.
func (r *Reconciler) Mappings() map[string]string {
	out := make(map[string]string, len(r.mappings))
	for property, header := range r.mappings {
		out[property] = header
	}
	return out
}

// Defaults returns a copy of the per-property default values.
func (r *Reconciler) Defaults() map[string]string {
	out := make(map[string]string, len(r.defaults))
	for property, value := range r.defaults {
		out[property] = value
	}
	return out
}

// UnmappedProperties lists the properties without a header, in flattened
// group order.
func (r *Reconciler) UnmappedProperties() []string {
	var out []string
	for _, prop := range r.template.FlattenedProperties() {
		if r.mappings[prop.Name] == "" {
			out = append(out, prop.Name)
		}
	}
	return out
}
