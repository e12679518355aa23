package importer

import (
	"encoding/json"

	"github.com/goliatone/go-kontakt/pkg/schema"
)

// State is a serializable snapshot of a reconciler session, sufficient to
// resume an interrupted import without a live upload.
type State struct {
	SessionID    string            `json:"session_id"`
	Stage        Stage             `json:"stage"`
	Template     schema.Template   `json:"template"`
	Headers      []string          `json:"headers,omitempty"`
	Preview      json.RawMessage   `json:"preview_data,omitempty"`
	OriginalData json.RawMessage   `json:"original_data,omitempty"`
	Mappings     map[string]string `json:"mappings,omitempty"`
	Defaults     map[string]string `json:"default_values,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
}

// Snapshot captures the current session state.
func (r *Reconciler) Snapshot() State {
	return State{
		SessionID:    r.sessionID,
		Stage:        r.stage,
		Template:     r.template.Clone(),
		Headers:      append([]string(nil), r.headers...),
		Preview:      r.preview,
		OriginalData: r.originalData,
		Mappings:     r.Mappings(),
		Defaults:     r.Defaults(),
		LastError:    r.lastError,
	}
}

// Restore rebuilds a reconciler from a snapshot. A session captured while
// finalizing resumes in the mapping stage, since the in-flight call is lost.
func Restore(remote ImportStore, state State, options ...Option) *Reconciler {
	r := NewReconciler(remote, options...)
	r.sessionID = state.SessionID
	r.stage = state.Stage
	if r.stage == StageFinalizing {
		r.stage = StageMapping
	}
	if r.stage == "" {
		r.stage = StageClosed
	}
	r.template = state.Template.Clone()
	r.headers = append([]string(nil), state.Headers...)
	r.preview = state.Preview
	r.originalData = state.OriginalData
	r.mappings = make(map[string]string, len(state.Mappings))
	for property, header := range state.Mappings {
		r.mappings[property] = header
	}
	r.defaults = make(map[string]string, len(state.Defaults))
	for property, value := range state.Defaults {
		r.defaults[property] = value
	}
	r.lastError = state.LastError
	return r
}
