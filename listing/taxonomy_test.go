package listing

import "testing"

func TestTaxonomyLookups(t *testing.T) {
	tax := Taxonomy{
		{ID: 1, Path: "life", Name: "Life"},
		{ID: 2, Path: "tech", Name: "Tech"},
		{ID: 9, Path: "misc", Name: "Miscellany"},
	}

	if path, name, ok := tax.PathName(2); !ok || path != "tech" || name != "Tech" {
		t.Errorf("PathName(2) = %q, %q, %v", path, name, ok)
	}
	if id, ok := tax.ID("misc"); !ok || id != 9 {
		t.Errorf("ID(misc) = %d, %v", id, ok)
	}
	if name, ok := tax.Name("life"); !ok || name != "Life" {
		t.Errorf("Name(life) = %q, %v", name, ok)
	}

	if _, _, ok := tax.PathName(77); ok {
		t.Error("PathName of an unknown id must report !ok")
	}
	if _, ok := tax.ID("nope"); ok {
		t.Error("ID of an unknown path must report !ok")
	}
}

func TestTaxonomyRoundTrip(t *testing.T) {
	tax := Taxonomy{
		{ID: 1, Path: "life", Name: "Life"},
		{ID: 2, Path: "tech", Name: "Tech"},
		{ID: 5, Path: "travel", Name: "Travel"},
	}
	for _, e := range tax {
		path, _, ok := tax.PathName(e.ID)
		if !ok {
			t.Fatalf("PathName(%d) missing", e.ID)
		}
		id, ok := tax.ID(path)
		if !ok || id != e.ID {
			t.Errorf("round trip for id %d via %q gave %d, %v", e.ID, path, id, ok)
		}
	}
}

func TestTaxonomyEmpty(t *testing.T) {
	var tax Taxonomy
	if _, _, ok := tax.PathName(0); ok {
		t.Error("empty taxonomy resolves nothing")
	}
}
