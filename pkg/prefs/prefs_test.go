package prefs

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStore_VisibilityRoundTrip(t *testing.T) {
	s := openTestStore(t)

	got, err := s.LoadVisibility("kundenkommunikation_column_visibility")
	if err != nil {
		t.Fatalf("LoadVisibility on empty store: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for a missing key, got %v", got)
	}

	want := map[string]bool{"Vorname": true, "Notiz": false}
	if err := s.SaveVisibility("kundenkommunikation_column_visibility", want); err != nil {
		t.Fatalf("SaveVisibility: %v", err)
	}

	got, err = s.LoadVisibility("kundenkommunikation_column_visibility")
	if err != nil {
		t.Fatalf("LoadVisibility: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visibility mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SetReplacesExistingValue(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set("theme", "light"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	var theme string
	ok, err := s.Get("theme", &theme)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if theme != "dark" {
		t.Fatalf("expected overwritten value, got %q", theme)
	}
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete("theme"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var theme string
	ok, err := s.Get("theme", &theme)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("deleted key should be gone")
	}

	if err := s.Delete("missing"); err != nil {
		t.Fatalf("deleting a missing key should be a no-op, got %v", err)
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
