package plasma

import "testing"

func TestFindOrCreateIdentity(t *testing.T) {
	r := NewRegistry()

	created := 0
	mk := func() Object {
		created++
		return NewLayer()
	}

	a := r.FindOrCreate(TypeLayer, "Water", "Garrison", mk)
	b := r.FindOrCreate(TypeLayer, "Water", "Garrison", mk)
	if a != b {
		t.Error("same identity returned distinct objects")
	}
	if created != 1 {
		t.Errorf("create called %d times; expected 1", created)
	}
	if a.Key() == nil || a.Key().Name != "Water" || a.Key().Location != "Garrison" {
		t.Errorf("unexpected key %v", a.Key())
	}

	// different page, name or type is a new object
	c := r.FindOrCreate(TypeLayer, "Water", "Teledahn", mk)
	d := r.FindOrCreate(TypeLayer, "Lava", "Garrison", mk)
	e := r.FindOrCreate(TypeGMaterial, "Water", "Garrison", func() Object { return &Material{} })
	if c == a || d == a || e == a {
		t.Error("distinct identities coalesced")
	}
	if created != 3 {
		t.Errorf("create called %d times; expected 3", created)
	}
}

func TestFindBeforeCreate(t *testing.T) {
	r := NewRegistry()
	if r.Find(TypeLayer, "x", "p") != nil {
		t.Error("Find returned an object before allocation")
	}
	if r.FindKey(TypeLayer, "x", "p") != nil {
		t.Error("FindKey returned a key before allocation")
	}
}

func TestLocationsOrder(t *testing.T) {
	r := NewRegistry()
	r.FindOrCreate(TypeLayer, "a", "P1", func() Object { return NewLayer() })
	r.FindOrCreate(TypeLayer, "b", "P2", func() Object { return NewLayer() })
	r.FindOrCreate(TypeLayer, "c", "P1", func() Object { return NewLayer() })

	locs := r.Locations()
	if len(locs) != 2 || locs[0] != "P1" || locs[1] != "P2" {
		t.Errorf("unexpected locations %v", locs)
	}
	if len(r.ObjectsAt("P1")) != 2 {
		t.Errorf("expected 2 objects at P1, got %d", len(r.ObjectsAt("P1")))
	}
	if err := r.Verify(); err != nil {
		t.Error(err)
	}
}
