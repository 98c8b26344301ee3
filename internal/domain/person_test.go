package domain

import (
	"encoding/json"
	"testing"
)

func TestPersonIDDerivedFromURL(t *testing.T) {
	luke := LukeSkywalker()
	if luke.ID() != "1" {
		t.Fatalf("expected id 1, got %q", luke.ID())
	}

	luke.URL = "https://swapi.dev/api/people/77"
	if luke.ID() != "77" {
		t.Fatalf("expected id to follow URL, got %q", luke.ID())
	}
}

func TestPersonEqualIsStructural(t *testing.T) {
	a := LukeSkywalker()
	b := LukeSkywalker()
	if !a.Equal(b) {
		t.Fatalf("expected identical records to be equal")
	}

	b.Films = []string{b.Films[1], b.Films[0], b.Films[2], b.Films[3]}
	if a.Equal(b) {
		t.Fatalf("expected film order to matter")
	}

	if !PeoplesEqual([]Person{a, LeiaOrgana()}, []Person{LukeSkywalker(), LeiaOrgana()}) {
		t.Fatalf("expected sequences to be equal")
	}
	if PeoplesEqual([]Person{a}, []Person{a, a}) {
		t.Fatalf("expected length mismatch to be unequal")
	}
}

func TestPersonFormatting(t *testing.T) {
	luke := LukeSkywalker()
	if got := luke.FormattedHeight(); got != "172 cm" {
		t.Errorf("FormattedHeight = %q", got)
	}
	if got := luke.FormattedMass(); got != "77 kg" {
		t.Errorf("FormattedMass = %q", got)
	}

	jabba := JabbaDesilijicTiure()
	if got := jabba.FormattedMass(); got != "1,358" {
		t.Errorf("expected unparseable mass to pass through, got %q", got)
	}

	luke.Height = "unknown"
	if got := luke.FormattedHeight(); got != "unknown" {
		t.Errorf("expected unknown height to pass through, got %q", got)
	}
}

func TestPersonImageURL(t *testing.T) {
	want := "https://raw.githubusercontent.com/breatheco-de/swapi-images/master/public/images/people/1.jpg"
	if got := LukeSkywalker().ImageURL(); got != want {
		t.Fatalf("ImageURL = %q", got)
	}
	if got := (Person{}).ImageURL(); got != "" {
		t.Fatalf("expected empty image URL without resource URL, got %q", got)
	}
}

func TestPageResultDecoding(t *testing.T) {
	payload := `{
		"count": 82,
		"next": "https://swapi.dev/api/people/?page=2",
		"previous": null,
		"results": [{"name": "Luke Skywalker", "birth_year": "19BBY", "eye_color": "blue",
			"films": ["https://swapi.dev/api/films/1/"], "url": "https://swapi.dev/api/people/1/"}]
	}`

	var page PageResult
	if err := json.Unmarshal([]byte(payload), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !page.HasNext() {
		t.Fatalf("expected next cursor")
	}
	if len(page.Results) != 1 || page.Results[0].BirthYear != "19BBY" || page.Results[0].ID() != "1" {
		t.Fatalf("unexpected results: %+v", page.Results)
	}

	var last PageResult
	if err := json.Unmarshal([]byte(`{"next": null, "results": []}`), &last); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if last.HasNext() {
		t.Fatalf("expected null next to mean last page")
	}
}
