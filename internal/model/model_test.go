package model

import "testing"

func TestLogTypeIDs(t *testing.T) {
	// Dimension ids follow enumeration order starting at 1 and must never
	// change between runs.
	want := map[LogType]int16{
		Access:         1,
		BlockTransfer:  2,
		BlockPlacement: 3,
	}
	for lt, id := range want {
		if got := lt.ID(); got != id {
			t.Errorf("%s.ID() = %d, want %d", lt.Name(), got, id)
		}
	}
}

func TestLogTypeFilenames(t *testing.T) {
	seen := map[string]LogType{}
	for _, lt := range AllLogTypes() {
		name := lt.Filename()
		if name == "" {
			t.Fatalf("%s has no canonical filename", lt.Name())
		}
		if prev, dup := seen[name]; dup {
			t.Fatalf("filename %q shared by %s and %s", name, prev.Name(), lt.Name())
		}
		seen[name] = lt
	}
}

func TestAllLogTypesOrder(t *testing.T) {
	all := AllLogTypes()
	if len(all) != 3 {
		t.Fatalf("AllLogTypes() returned %d types, want 3", len(all))
	}
	for i, lt := range all {
		if int(lt) != i+1 {
			t.Errorf("AllLogTypes()[%d] = %v, want id %d", i, lt, i+1)
		}
	}
}
