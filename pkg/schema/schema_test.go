package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProperty_LinkTarget(t *testing.T) {
	cases := []struct {
		name    string
		options string
		want    int64
		wantOK  bool
	}{
		{name: "canonical prefix", options: "template_id:7", want: 7, wantOK: true},
		{name: "legacy prefix", options: "vorlage_id:12", want: 12, wantOK: true},
		{name: "surrounding whitespace", options: "  template_id: 3 ", want: 3, wantOK: true},
		{name: "missing prefix", options: "7"},
		{name: "non numeric id", options: "template_id:abc"},
		{name: "zero id", options: "template_id:0"},
		{name: "negative id", options: "template_id:-4"},
		{name: "empty options", options: ""},
		{name: "value list name", options: "Anreden"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prop := Property{Name: "Partner", DataType: TypeLink, Options: tc.options}
			got, ok := prop.LinkTarget()
			if ok != tc.wantOK {
				t.Fatalf("LinkTarget(%q) ok = %v, want %v", tc.options, ok, tc.wantOK)
			}
			if got != tc.want {
				t.Fatalf("LinkTarget(%q) = %d, want %d", tc.options, got, tc.want)
			}
		})
	}
}

func TestLinkOptions_RoundTrip(t *testing.T) {
	prop := Property{DataType: TypeLink, Options: LinkOptions(42)}
	id, ok := prop.LinkTarget()
	if !ok || id != 42 {
		t.Fatalf("round trip = (%d, %v), want (42, true)", id, ok)
	}
}

func TestTemplate_FlattenedProperties(t *testing.T) {
	tpl := sampleTemplate()

	var got []string
	for _, prop := range tpl.FlattenedProperties() {
		got = append(got, prop.Name)
	}

	want := []string{"Vorname", "Nachname", "Geburtsdatum", "Firma"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("flattened order mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplate_LinkProperties(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Groups[1].Properties = append(tpl.Groups[1].Properties, Property{
		Name:     "Ansprechpartner",
		DataType: TypeLink,
		Options:  "template_id:2",
	})

	links := tpl.LinkProperties()
	if len(links) != 1 || links[0].Name != "Ansprechpartner" {
		t.Fatalf("expected single link property Ansprechpartner, got %+v", links)
	}
}

func TestTemplate_DuplicatePropertyNames(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Groups[1].Properties = append(tpl.Groups[1].Properties, Property{Name: "vorname", DataType: TypeText})

	got := tpl.DuplicatePropertyNames()
	want := []string{"vorname"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("duplicates mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplate_CloneIsDeep(t *testing.T) {
	original := sampleTemplate()
	clone := original.Clone()

	clone.Groups[0].Properties[0].Name = "Changed"
	clone.Entities[0].Values["Vorname"] = "Changed"

	if original.Groups[0].Properties[0].Name != "Vorname" {
		t.Fatalf("clone mutation leaked into original property: %+v", original.Groups[0].Properties[0])
	}
	if original.Entities[0].Values["Vorname"] != "Ada" {
		t.Fatalf("clone mutation leaked into original entity values: %+v", original.Entities[0].Values)
	}
	if !original.Equal(sampleTemplate()) {
		t.Fatalf("original changed after mutating clone")
	}
}

func TestTemplate_Equal(t *testing.T) {
	base := sampleTemplate()

	if !base.Equal(base.Clone()) {
		t.Fatalf("template not equal to its clone")
	}

	reordered := base.Clone()
	reordered.Groups[0].Properties[0], reordered.Groups[0].Properties[1] =
		reordered.Groups[0].Properties[1], reordered.Groups[0].Properties[0]
	if base.Equal(reordered) {
		t.Fatalf("equality ignored property order")
	}

	renamed := base.Clone()
	renamed.Name = "Kopie"
	if base.Equal(renamed) {
		t.Fatalf("equality ignored template name")
	}

	extraValue := base.Clone()
	extraValue.Entities[0].Values["Notiz"] = "x"
	if base.Equal(extraValue) {
		t.Fatalf("equality ignored entity values")
	}
}

func TestEntity_DisplayName(t *testing.T) {
	cases := []struct {
		name   string
		entity Entity
		want   string
	}{
		{
			name:   "name value wins",
			entity: Entity{ID: 1, Values: map[string]string{"Name": "ACME", "Vorname": "Ada"}},
			want:   "ACME",
		},
		{
			name:   "first and last name",
			entity: Entity{ID: 2, Values: map[string]string{"Vorname": "Ada", "Nachname": "Lovelace"}},
			want:   "Ada Lovelace",
		},
		{
			name:   "last name only",
			entity: Entity{ID: 3, Values: map[string]string{"Nachname": "Lovelace"}},
			want:   "Lovelace",
		},
		{
			name:   "company fallback",
			entity: Entity{ID: 4, Values: map[string]string{"Firmenname": "ACME GmbH"}},
			want:   "ACME GmbH",
		},
		{
			name:   "id fallback",
			entity: Entity{ID: 5, Values: map[string]string{}},
			want:   "Kontakt ID: 5",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.entity.DisplayName(); got != tc.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValueList_Items(t *testing.T) {
	list := ValueList{Name: "Anreden", Values: "Herr, Frau,  Divers ,"}
	want := []string{"Herr", "Frau", "Divers"}
	if diff := cmp.Diff(want, list.Items()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	empty := ValueList{Name: "Leer", Values: " , "}
	if items := empty.Items(); items != nil {
		t.Fatalf("expected nil items for blank list, got %v", items)
	}
}

func TestNew_SeedsDefaultGroup(t *testing.T) {
	tpl := New("Kunden")
	if len(tpl.Groups) != 1 || tpl.Groups[0].Name != DefaultGroupName {
		t.Fatalf("expected default group %q, got %+v", DefaultGroupName, tpl.Groups)
	}
}

func sampleTemplate() Template {
	return Template{
		ID:   1,
		Name: "Kunden",
		Groups: []Group{
			{
				ID:   10,
				Name: "Person",
				Properties: []Property{
					{ID: 100, Name: "Vorname", DataType: TypeText},
					{ID: 101, Name: "Nachname", DataType: TypeText},
					{ID: 102, Name: "Geburtsdatum", DataType: TypeDate},
				},
			},
			{
				ID:   11,
				Name: "Arbeit",
				Properties: []Property{
					{ID: 103, Name: "Firma", DataType: TypeText},
				},
			},
		},
		Entities: []Entity{
			{ID: 1000, TemplateID: 1, Values: map[string]string{"Vorname": "Ada", "Nachname": "Lovelace"}},
		},
	}
}
