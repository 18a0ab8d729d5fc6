package skills

import "testing"

func TestRegistry_Ordering(t *testing.T) {
	reg := NewRegistry(
		Skill{ID: "zeta", Name: "beta", Scope: ScopeUser},
		Skill{ID: "alpha", Name: "Beta", Scope: ScopeUser},
		Skill{ID: "gamma", Name: "Alpha", Scope: ScopeSystem},
	)
	got := reg.IDs()
	want := []string{"gamma", "alpha", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("IDs = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if reg.At(0).ID != "gamma" {
		t.Errorf("At(0) = %q", reg.At(0).ID)
	}
}

func TestRegistry_PrecedenceFromNew(t *testing.T) {
	reg := NewRegistry(
		Skill{ID: "a", Name: "sys", Scope: ScopeSystem},
		Skill{ID: "a", Name: "proj", Scope: ScopeProject},
		Skill{ID: "a", Name: "user", Scope: ScopeUser},
	)
	if reg.Len() != 1 {
		t.Fatalf("Len = %d", reg.Len())
	}
	if s, _ := reg.Get("a"); s.Name != "proj" {
		t.Errorf("a = %q, want proj", s.Name)
	}
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	reg := NewRegistry(Skill{ID: "a", Name: "A", Args: []string{"x"}, Tags: []string{"t"}})

	s, _ := reg.Get("a")
	s.Args[0] = "mutated"
	s.Tags[0] = "mutated"

	all := reg.All()
	all[0].Args[0] = "mutated"

	again, _ := reg.Get("a")
	if again.Args[0] != "x" || again.Tags[0] != "t" {
		t.Errorf("registry was mutated through a returned skill: %+v", again)
	}
}

func TestRegistry_Nil(t *testing.T) {
	var reg *Registry
	if reg.Len() != 0 || reg.All() != nil || reg.IDs() != nil {
		t.Error("nil registry should behave as empty")
	}
	if _, ok := reg.Get("a"); ok {
		t.Error("nil registry Get returned ok")
	}
}
