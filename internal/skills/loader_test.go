package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, root, dir, content string) string {
	t.Helper()
	full := filepath.Join(root, dir)
	if err := os.MkdirAll(full, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(full, ManifestFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func manifestYAML(id, name string) string {
	return fmt.Sprintf("id: %s\nname: %s\ndescription: test skill\nexec: %s\nui:\n  mode: inline\n", id, name, id)
}

func TestScan_MissingRoot(t *testing.T) {
	results := Scanner{Scope: ScopeProject, Root: filepath.Join(t.TempDir(), "nope")}.Scan()
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if got := (Scanner{Scope: ScopeUser}).Scan(); got != nil {
		t.Errorf("empty root returned %v", got)
	}
}

func TestScan_RootIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := (Scanner{Scope: ScopeUser, Root: f}).Scan(); len(got) != 0 {
		t.Errorf("got %d results for a file root", len(got))
	}
}

func TestScan_Recursive(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "a", manifestYAML("a", "A"))
	writeManifest(t, root, "group/nested/b", manifestYAML("b", "B"))
	writeManifest(t, root, "broken", "id: [")

	// .yml is accepted as well
	if err := os.WriteFile(filepath.Join(root, "group", "pane-skill.yml"), []byte(manifestYAML("c", "C")), 0644); err != nil {
		t.Fatal(err)
	}
	// unrelated files are ignored
	if err := os.WriteFile(filepath.Join(root, "a", "README.md"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	results := Scanner{Scope: ScopeUser, Root: root}.Scan()
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	var ok, bad int
	for _, r := range results {
		switch {
		case r.Err != nil:
			bad++
			if r.Manifest != nil {
				t.Errorf("%s: both manifest and error set", r.Path)
			}
			if !errors.Is(r.Err, ErrMalformed) {
				t.Errorf("%s: err = %v, want ErrMalformed", r.Path, r.Err)
			}
		case r.Manifest != nil:
			ok++
		}
		if !filepath.IsAbs(r.Path) {
			t.Errorf("path %q is not absolute", r.Path)
		}
	}
	if ok != 3 || bad != 1 {
		t.Errorf("ok=%d bad=%d, want 3 and 1", ok, bad)
	}
}

func TestBuild_Precedence(t *testing.T) {
	base := t.TempDir()
	roots := Roots{
		Project: filepath.Join(base, "project"),
		User:    filepath.Join(base, "user"),
		System:  filepath.Join(base, "system"),
	}
	writeManifest(t, roots.Project, "a", manifestYAML("a", "Project A"))
	sysA := writeManifest(t, roots.System, "a", manifestYAML("a", "System A"))
	writeManifest(t, roots.User, "b", manifestYAML("b", "User B"))
	writeManifest(t, roots.System, "b", manifestYAML("b", "System B"))
	writeManifest(t, roots.System, "c", manifestYAML("c", "System C"))

	reg, diags := Build(roots)

	if reg.Len() != 3 {
		t.Fatalf("Len = %d, want 3", reg.Len())
	}
	want := map[string]struct {
		name  string
		scope Scope
	}{
		"a": {"Project A", ScopeProject},
		"b": {"User B", ScopeUser},
		"c": {"System C", ScopeSystem},
	}
	for id, w := range want {
		s, ok := reg.Get(id)
		if !ok {
			t.Fatalf("missing %q", id)
		}
		if s.Name != w.name || s.Scope != w.scope {
			t.Errorf("%s = %q/%v, want %q/%v", id, s.Name, s.Scope, w.name, w.scope)
		}
	}

	if len(diags) != 2 {
		t.Fatalf("expected 2 shadowed diagnostics, got %d: %v", len(diags), diags)
	}
	for _, d := range diags {
		if d.Kind != DiagShadowed || d.Defect() {
			t.Errorf("unexpected diagnostic %v", d)
		}
		if d.SkillID == "a" && d.Path != sysA {
			t.Errorf("shadowed a path = %q, want %q", d.Path, sysA)
		}
	}
}

func TestBuild_TotalDiscovery(t *testing.T) {
	base := t.TempDir()
	roots := Roots{
		Project: filepath.Join(base, "project"),
		User:    filepath.Join(base, "user"),
		System:  filepath.Join(base, "does-not-exist"),
	}
	writeManifest(t, roots.Project, "good", manifestYAML("good", "Good"))
	writeManifest(t, roots.Project, "no-exec", "id: no-exec\nname: N\ndescription: d\nui:\n  mode: tui\n")
	writeManifest(t, roots.Project, "garbage", "{{{ not yaml")
	writeManifest(t, roots.User, "bad-id", manifestYAML("Bad_ID", "Bad"))
	writeManifest(t, roots.User, "meta", "id: meta\nname: M\ndescription: d\nexec: rm -rf / && echo\nui:\n  mode: tui\n")
	writeManifest(t, roots.User, "other", manifestYAML("other", "Other"))

	reg, diags := Build(roots)

	if got := reg.IDs(); len(got) != 2 || got[0] != "good" || got[1] != "other" {
		t.Errorf("IDs = %v, want [good other]", got)
	}
	if len(diags) != 4 {
		t.Fatalf("expected one diagnostic per bad file (4), got %d: %v", len(diags), diags)
	}
	kinds := map[DiagnosticKind]int{}
	for _, d := range diags {
		kinds[d.Kind]++
		if !d.Defect() {
			t.Errorf("%v should be a defect", d)
		}
		if d.Err == nil {
			t.Errorf("%v has no error", d)
		}
	}
	if kinds[DiagParse] != 2 || kinds[DiagInvalid] != 2 {
		t.Errorf("kinds = %v, want 2 parse and 2 invalid", kinds)
	}
}

func TestBuild_MissingExecKeepsSiblings(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "x", "id: x\nname: X\ndescription: d\nui:\n  mode: inline\n")
	writeManifest(t, root, "y", manifestYAML("y", "Y"))

	reg, diags := Build(Roots{User: root})
	if _, ok := reg.Get("x"); ok {
		t.Error("manifest without exec should be dropped")
	}
	if _, ok := reg.Get("y"); !ok {
		t.Error("valid sibling manifest missing")
	}
	if len(diags) != 1 || !errors.Is(diags[0].Err, ErrMissingField) {
		t.Errorf("diags = %v, want one missing-field diagnostic", diags)
	}
}

func TestBuild_SameScopeDuplicate(t *testing.T) {
	root := t.TempDir()
	first := writeManifest(t, root, "1-first", manifestYAML("dup", "First"))
	second := writeManifest(t, root, "2-second", manifestYAML("dup", "Second"))

	reg, diags := Build(Roots{Project: root})
	s, ok := reg.Get("dup")
	if !ok || s.ManifestPath != first {
		t.Fatalf("dup = %+v, want the manifest at %s", s, first)
	}
	if len(diags) != 1 || diags[0].Path != second || diags[0].ShadowedBy != first {
		t.Errorf("diags = %v", diags)
	}
}

func TestBuild_NoRoots(t *testing.T) {
	reg, diags := Build(Roots{})
	if reg == nil || reg.Len() != 0 || len(diags) != 0 {
		t.Errorf("empty roots: reg=%v diags=%v", reg, diags)
	}
}

func TestDefaultRoots(t *testing.T) {
	r := DefaultRoots("/work/proj", "/home/me")
	if r.Project != "/work/proj/.pane/skills" {
		t.Errorf("Project = %q", r.Project)
	}
	if r.User != "/home/me/.config/pane/skills" {
		t.Errorf("User = %q", r.User)
	}
	if r.System != SystemRoot {
		t.Errorf("System = %q", r.System)
	}
	if DefaultRoots("/w", "").User != "" {
		t.Error("empty home should leave the user root unset")
	}
}
