package importer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-kontakt/pkg/schema"
	"github.com/goliatone/go-kontakt/pkg/store"
)

func TestReconciler_Upload_PreconditionsBeforeNetwork(t *testing.T) {
	cases := []struct {
		name  string
		setup func(r *Reconciler)
		files []store.UploadFile
	}{
		{
			name:  "closed session",
			setup: func(r *Reconciler) {},
			files: []store.UploadFile{csvFile("kontakte.csv")},
		},
		{
			name:  "no template selected",
			setup: func(r *Reconciler) { r.Begin(schema.Template{}) },
			files: []store.UploadFile{csvFile("kontakte.csv")},
		},
		{
			name:  "no file",
			setup: func(r *Reconciler) { r.Begin(sampleImportTemplate()) },
		},
		{
			name:  "disallowed extension",
			setup: func(r *Reconciler) { r.Begin(sampleImportTemplate()) },
			files: []store.UploadFile{csvFile("malware.exe")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			remote := &fakeImportStore{}
			r := NewReconciler(remote)
			tc.setup(r)

			err := r.Upload(context.Background(), tc.files...)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if remote.uploads != 0 {
				t.Fatalf("no network call expected, got %d uploads", remote.uploads)
			}
		})
	}
}

func TestReconciler_Upload_AutoMapsHeaders(t *testing.T) {
	remote := &fakeImportStore{
		uploadResult: store.UploadResult{
			Headers:      []string{"vorname", "NACHNAME", "E-Mail"},
			OriginalData: json.RawMessage(`[{"vorname":"Ada"}]`),
		},
	}
	r := NewReconciler(remote)
	r.Begin(sampleImportTemplate())

	if err := r.Upload(context.Background(), csvFile("kontakte.csv")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if r.Stage() != StageMapping {
		t.Fatalf("stage = %q, want %q", r.Stage(), StageMapping)
	}

	// Matching is literal lowercase equality: "E-Mail" does not match "Email".
	want := map[string]string{
		"Vorname":  "vorname",
		"Nachname": "NACHNAME",
		"Email":    "",
	}
	if diff := cmp.Diff(want, r.Mappings()); diff != "" {
		t.Fatalf("auto-mapping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Email"}, r.UnmappedProperties()); diff != "" {
		t.Fatalf("unmapped mismatch (-want +got):\n%s", diff)
	}
}

func TestReconciler_AutoMap_FirstPropertyInGroupOrderWins(t *testing.T) {
	tpl := schema.Template{
		ID:   1,
		Name: "Kunden",
		Groups: []schema.Group{
			{Name: "A", Properties: []schema.Property{{Name: "Email", DataType: schema.TypeText}}},
			{Name: "B", Properties: []schema.Property{{Name: "EMAIL", DataType: schema.TypeText}}},
		},
	}
	remote := &fakeImportStore{
		uploadResult: store.UploadResult{Headers: []string{"email"}},
	}
	r := NewReconciler(remote)
	r.Begin(tpl)
	if err := r.Upload(context.Background(), csvFile("kontakte.csv")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// A matched header is not excluded from matching a second property.
	mappings := r.Mappings()
	if mappings["Email"] != "email" || mappings["EMAIL"] != "email" {
		t.Fatalf("duplicate-name mapping mismatch: %v", mappings)
	}
}

func TestReconciler_SetMappingAndDefault(t *testing.T) {
	r := uploadedReconciler(t, &fakeImportStore{
		uploadResult: store.UploadResult{Headers: []string{"mail"}},
	})

	if err := r.SetMapping("Email", "mail"); err != nil {
		t.Fatalf("SetMapping: %v", err)
	}
	if err := r.SetMapping("Unbekannt", "mail"); err == nil {
		t.Fatalf("expected error for unknown property")
	}
	if err := r.SetDefault("Nachname", "unbekannt"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if r.Defaults()["Nachname"] != "unbekannt" {
		t.Fatalf("default not recorded: %v", r.Defaults())
	}
}

func TestReconciler_Finalize_Success(t *testing.T) {
	remote := &fakeImportStore{
		uploadResult: store.UploadResult{
			Headers:      []string{"vorname"},
			OriginalData: json.RawMessage(`[{"vorname":"Ada"}]`),
		},
		finalizeRedirect: "/kontakte/",
	}
	r := uploadedReconciler(t, remote)

	redirect, err := r.Finalize(context.Background())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if redirect != "/kontakte/" {
		t.Fatalf("redirect = %q", redirect)
	}
	if r.Stage() != StageClosed {
		t.Fatalf("stage after success = %q, want %q", r.Stage(), StageClosed)
	}
	if string(remote.finalized.OriginalData) != `[{"vorname":"Ada"}]` {
		t.Fatalf("original_data not echoed back: %s", remote.finalized.OriginalData)
	}
}

func TestReconciler_Finalize_FailureRetainsStateForRetry(t *testing.T) {
	remote := &fakeImportStore{
		uploadResult: store.UploadResult{
			Headers:      []string{"vorname"},
			OriginalData: json.RawMessage(`[{"vorname":"Ada"}]`),
		},
		finalizeErr: errors.New("Vorlage nicht gefunden"),
	}
	r := uploadedReconciler(t, remote)
	mappingsBefore := r.Mappings()

	if _, err := r.Finalize(context.Background()); err == nil {
		t.Fatalf("expected finalize error")
	}
	if r.Stage() != StageMapping {
		t.Fatalf("stage after failure = %q, want %q", r.Stage(), StageMapping)
	}
	if r.LastError() == "" {
		t.Fatalf("last error not retained")
	}
	if diff := cmp.Diff(mappingsBefore, r.Mappings()); diff != "" {
		t.Fatalf("mappings changed on failure (-want +got):\n%s", diff)
	}
	if len(r.Preview()) != 0 && string(r.Preview()) == "" {
		t.Fatalf("preview lost")
	}

	// Retry succeeds once the store recovers.
	remote.finalizeErr = nil
	remote.finalizeRedirect = "/kontakte/"
	if _, err := r.Finalize(context.Background()); err != nil {
		t.Fatalf("retry Finalize: %v", err)
	}
}

func TestReconciler_SnapshotRestore(t *testing.T) {
	remote := &fakeImportStore{
		uploadResult: store.UploadResult{
			Headers:      []string{"vorname"},
			OriginalData: json.RawMessage(`[{"vorname":"Ada"}]`),
		},
	}
	r := uploadedReconciler(t, remote)
	if err := r.SetDefault("Nachname", "unbekannt"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}

	encoded, err := json.Marshal(r.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var state State
	if err := json.Unmarshal(encoded, &state); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}

	restored := Restore(remote, state)
	if restored.Stage() != StageMapping {
		t.Fatalf("restored stage = %q", restored.Stage())
	}
	if restored.SessionID() != r.SessionID() {
		t.Fatalf("session id lost on restore")
	}
	if diff := cmp.Diff(r.Mappings(), restored.Mappings()); diff != "" {
		t.Fatalf("mappings mismatch after restore (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(r.Defaults(), restored.Defaults()); diff != "" {
		t.Fatalf("defaults mismatch after restore (-want +got):\n%s", diff)
	}
}

func uploadedReconciler(t *testing.T, remote *fakeImportStore) *Reconciler {
	t.Helper()
	r := NewReconciler(remote)
	r.Begin(sampleImportTemplate())
	if err := r.Upload(context.Background(), csvFile("kontakte.csv")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return r
}

func csvFile(name string) store.UploadFile {
	return store.UploadFile{Name: name, Reader: strings.NewReader("vorname\nAda\n")}
}

func sampleImportTemplate() schema.Template {
	return schema.Template{
		ID:   1,
		Name: "Kunden",
		Groups: []schema.Group{
			{
				Name: "Person",
				Properties: []schema.Property{
					{ID: 1, Name: "Vorname", DataType: schema.TypeText},
					{ID: 2, Name: "Nachname", DataType: schema.TypeText},
					{ID: 3, Name: "Email", DataType: schema.TypeText},
				},
			},
		},
	}
}

type fakeImportStore struct {
	uploadResult     store.UploadResult
	uploadErr        error
	uploads          int
	finalizeRedirect string
	finalizeErr      error
	finalized        store.FinalizeRequest
}

func (f *fakeImportStore) UploadImport(_ context.Context, files []store.UploadFile) (store.UploadResult, error) {
	f.uploads++
	if f.uploadErr != nil {
		return store.UploadResult{}, f.uploadErr
	}
	return f.uploadResult, nil
}

func (f *fakeImportStore) FinalizeImport(_ context.Context, req store.FinalizeRequest) (string, error) {
	if f.finalizeErr != nil {
		return "", f.finalizeErr
	}
	f.finalized = req
	return f.finalizeRedirect, nil
}
