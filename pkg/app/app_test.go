package app

import (
	"testing"
)

func TestApp_RequiresBaseURLOrClient(t *testing.T) {
	a := New()
	if _, err := a.Client(); err == nil {
		t.Fatalf("expected configuration error without a base URL")
	}
	if _, err := a.ListView(); err == nil {
		t.Fatalf("view construction should surface the configuration error")
	}
}

func TestApp_WiresAllViewModels(t *testing.T) {
	a := New(WithBaseURL("http://localhost:5000"))

	if _, err := a.Client(); err != nil {
		t.Fatalf("Client: %v", err)
	}
	if view, err := a.ListView(); err != nil || view == nil {
		t.Fatalf("ListView: %v", err)
	}
	if ed, err := a.Editor(); err != nil || ed == nil {
		t.Fatalf("Editor: %v", err)
	}
	if rec, err := a.Importer(); err != nil || rec == nil {
		t.Fatalf("Importer: %v", err)
	}
	if res, err := a.LinkResolver(); err != nil || res == nil {
		t.Fatalf("LinkResolver: %v", err)
	}
}
