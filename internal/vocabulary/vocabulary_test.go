package vocabulary

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewDeduplicatesAndTrims(t *testing.T) {
	v := New("  Python ", "", "python", "SQL", "   ", "Sql", "Excel")

	want := []string{"Python", "SQL", "Excel"}
	if got := v.Labels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if !v.Contains("EXCEL") {
		t.Fatalf("expected case-insensitive contains")
	}
	if v.Contains("Java") {
		t.Fatalf("did not expect Java in vocabulary")
	}
}

func TestLabelsReturnsCopy(t *testing.T) {
	v := New("Python")
	labels := v.Labels()
	labels[0] = "mutated"

	if v.Labels()[0] != "Python" {
		t.Fatalf("vocabulary must not be mutated through Labels")
	}
}

func TestDefaultSizes(t *testing.T) {
	set := Default()
	if set.Skills.Len() != 17 || set.Education.Len() != 13 || set.Roles.Len() != 10 {
		t.Fatalf("unexpected default sizes: %d/%d/%d", set.Skills.Len(), set.Education.Len(), set.Roles.Len())
	}
	if set.IsEmpty() {
		t.Fatalf("default set must not be empty")
	}
	if !(Set{}).IsEmpty() {
		t.Fatalf("zero set must be empty")
	}
}

func TestOverrideKeepsUnsetCategories(t *testing.T) {
	set := Override(Default(), Lists{Skills: []string{"Go"}})

	if got := set.Skills.Labels(); !reflect.DeepEqual(got, []string{"Go"}) {
		t.Fatalf("expected skills override, got %v", got)
	}
	if set.Roles.Len() != 10 {
		t.Fatalf("expected default roles to be kept, got %d", set.Roles.Len())
	}
}

func TestBuild(t *testing.T) {
	lists := Build([]string{
		"senior SOFTWARE engineer with phd",
		"Data Analyst, mba",
	})

	wantSkills := []string{"Analyst,", "Data", "Engineer", "Mba", "Phd", "Senior", "Software", "With"}
	if !reflect.DeepEqual(lists.Skills, wantSkills) {
		t.Fatalf("unexpected skills: %v", lists.Skills)
	}
	if !reflect.DeepEqual(lists.Roles, []string{"Data Analyst", "Software Engineer"}) {
		t.Fatalf("unexpected roles: %v", lists.Roles)
	}
	if !reflect.DeepEqual(lists.Education, []string{"MBA", "PhD"}) {
		t.Fatalf("unexpected education: %v", lists.Education)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	in := Lists{Skills: []string{"Go", "SQL"}, Roles: []string{"Engineer"}}

	if err := WriteFile(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(out.Skills, in.Skills) || !reflect.DeepEqual(out.Roles, in.Roles) {
		t.Fatalf("unexpected lists: %+v", out)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
