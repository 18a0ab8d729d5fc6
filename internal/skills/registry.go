package skills

import (
	"sort"
	"strings"
)

// Registry is the read-only set of skills available to the launcher.
// It holds exactly one skill per identifier, ordered by display name.
// A Registry is never modified after construction and is safe to share.
type Registry struct {
	skills []Skill
	index  map[string]int
}

// NewRegistry builds a registry from already-validated skills, applying the
// same scope precedence as Build. Shadowed skills are silently dropped.
func NewRegistry(skills ...Skill) *Registry {
	reg, _ := resolve(skills)
	return reg
}

func newRegistry(skills []Skill) *Registry {
	sorted := make([]Skill, len(skills))
	for i, s := range skills {
		sorted[i] = s.clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := strings.ToLower(sorted[i].Name), strings.ToLower(sorted[j].Name)
		if a != b {
			return a < b
		}
		return sorted[i].ID < sorted[j].ID
	})

	index := make(map[string]int, len(sorted))
	for i, s := range sorted {
		index[s.ID] = i
	}
	return &Registry{skills: sorted, index: index}
}

// Len returns the number of skills.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.skills)
}

// At returns the skill at position i in registry order.
func (r *Registry) At(i int) Skill {
	return r.skills[i].clone()
}

// Get looks a skill up by identifier.
func (r *Registry) Get(id string) (Skill, bool) {
	if r == nil {
		return Skill{}, false
	}
	i, ok := r.index[id]
	if !ok {
		return Skill{}, false
	}
	return r.skills[i].clone(), true
}

// All returns a copy of every skill in registry order.
func (r *Registry) All() []Skill {
	if r == nil {
		return nil
	}
	out := make([]Skill, len(r.skills))
	for i, s := range r.skills {
		out[i] = s.clone()
	}
	return out
}

// IDs returns skill identifiers in registry order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, len(r.skills))
	for i, s := range r.skills {
		ids[i] = s.ID
	}
	return ids
}
