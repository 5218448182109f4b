package workshop

import (
	"context"
	"path/filepath"
	"testing"
)

func TestResolveSuperMod(t *testing.T) {
	root, _ := superModRoot(t)
	s := newTestScanner(root)

	report, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	result, err := s.Resolve(context.Background(), Selection{"SuperMod": true}, report.Catalog)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if !equalStrings(result.WorkshopIDs(), []string{"555"}) {
		t.Errorf("WorkshopIDs() = %v, want [555]", result.WorkshopIDs())
	}
	if !equalStrings(result.ModIDs(), []string{"555"}) {
		t.Errorf("ModIDs() = %v, want [555]", result.ModIDs())
	}
	// No maps folder: empty list, no abort.
	if len(result.MapNames()) != 0 {
		t.Errorf("MapNames() = %v, want empty", result.MapNames())
	}
	if len(result.Items) != 1 || result.Items[0].MapNames == nil || len(result.Items[0].MapNames) != 0 {
		t.Errorf("Expected one item with an empty map list, got %+v", result.Items)
	}
}

func TestResolveSkipsDisabledAndStale(t *testing.T) {
	root := t.TempDir()
	addMod(t, root, "1", "A", "id=a\nname=A\ndescription=x\n")
	addMod(t, root, "2", "B", "id=b\nname=B\ndescription=x\n")
	s := newTestScanner(root)

	report, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	sel := Selection{"A": true, "B": false, "Ghost": true}
	result, err := s.Resolve(context.Background(), sel, report.Catalog)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if !equalStrings(result.WorkshopIDs(), []string{"1"}) {
		t.Errorf("WorkshopIDs() = %v, want [1]", result.WorkshopIDs())
	}
	if result.Diagnostics.CountByCode()[CodeStaleSelection] != 1 {
		t.Errorf("Expected one stale_selection diagnostic, got %v", result.Diagnostics)
	}
}

func TestResolveCardinalityMismatch(t *testing.T) {
	root := t.TempDir()
	// Item 10 carries two mods and no maps.
	addMod(t, root, "10", "Core", "id=core\nname=Core Pack\ndescription=x\n")
	addMod(t, root, "10", "Extra", "id=core_extra\nname=Core Extra\ndescription=x\n")
	// Item 20 carries one mod and two maps.
	dir := addMod(t, root, "20", "Town", "id=town\nname=Town\ndescription=x\n")
	mkdir(t, filepath.Join(dir, "media", "maps", "Town North"))
	mkdir(t, filepath.Join(dir, "media", "maps", "Town South"))

	s := newTestScanner(root)
	report, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	result, err := s.Resolve(context.Background(), NewSelection(report.Catalog), report.Catalog)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if !equalStrings(result.WorkshopIDs(), []string{"10", "20"}) {
		t.Errorf("WorkshopIDs() = %v, want [10 20]", result.WorkshopIDs())
	}
	if !equalStrings(result.ModIDs(), []string{"core", "core_extra", "town"}) {
		t.Errorf("ModIDs() = %v, want [core core_extra town]", result.ModIDs())
	}
	if !equalStrings(result.MapNames(), []string{"Town North", "Town South"}) {
		t.Errorf("MapNames() = %v, want [Town North Town South]", result.MapNames())
	}
}

func TestResolveMissingModID(t *testing.T) {
	root := t.TempDir()
	addMod(t, root, "1", "NoID", "name=NoID\ndescription=x\n")
	s := newTestScanner(root)

	report, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	result, err := s.Resolve(context.Background(), NewSelection(report.Catalog), report.Catalog)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if !equalStrings(result.WorkshopIDs(), []string{"1"}) {
		t.Errorf("WorkshopIDs() = %v, want [1]", result.WorkshopIDs())
	}
	if len(result.ModIDs()) != 0 {
		t.Errorf("ModIDs() = %v, want empty", result.ModIDs())
	}
	if result.Diagnostics.CountByCode()[CodeMissingID] != 1 {
		t.Errorf("Expected one missing_id diagnostic, got %v", result.Diagnostics)
	}
}

func TestSelectionOperations(t *testing.T) {
	catalog := Catalog{"b": {WorkshopID: "2"}, "A": {WorkshopID: "1"}, "c": {WorkshopID: "3"}}

	sel := NewSelection(catalog)
	if !equalStrings(sel.Enabled(), []string{"A", "b", "c"}) {
		t.Errorf("Enabled() = %v, want [A b c]", sel.Enabled())
	}

	if sel.Toggle("b") {
		t.Error("Toggle should disable an enabled entry")
	}
	if !equalStrings(sel.Enabled(), []string{"A", "c"}) {
		t.Errorf("Enabled() after toggle = %v, want [A c]", sel.Enabled())
	}

	if sel.Toggle("missing") {
		t.Error("Toggle of an unknown name should report false")
	}
	if _, ok := sel["missing"]; ok {
		t.Error("Toggle should not add unknown names")
	}

	sel.SetAll(false)
	if len(sel.Enabled()) != 0 {
		t.Errorf("Enabled() after SetAll(false) = %v, want none", sel.Enabled())
	}
}

func TestSelectionReconcile(t *testing.T) {
	sel := Selection{"Kept": true, "Gone": true, "Also Gone": false}
	catalog := Catalog{"Kept": {WorkshopID: "1"}, "New": {WorkshopID: "2"}}

	stale := sel.Reconcile(catalog)

	if !equalStrings(stale, []string{"Also Gone", "Gone"}) {
		t.Errorf("Reconcile() stale = %v, want [Also Gone Gone]", stale)
	}
	if on, ok := sel["New"]; !ok || on {
		t.Errorf("New catalog entry = %v, %v; want false, true", on, ok)
	}
	if !sel["Kept"] {
		t.Error("Kept entry should stay enabled")
	}
	if len(sel) != 2 {
		t.Errorf("Selection size = %d, want 2", len(sel))
	}
}

func TestExportFormatting(t *testing.T) {
	result := &Result{Items: []ResolvedItem{
		{WorkshopID: "111", ModIDs: []string{"a", "b"}, MapNames: []string{}},
		{WorkshopID: "222", ModIDs: []string{"b", "c"}, MapNames: []string{"Muldraugh, KY"}},
	}}

	export := result.Export()
	if export.WorkshopItems != "111;222;" {
		t.Errorf("WorkshopItems = %q, want 111;222;", export.WorkshopItems)
	}
	if export.Mods != "a;b;c;" {
		t.Errorf("Mods = %q, want a;b;c;", export.Mods)
	}
	if export.Maps != "Muldraugh, KY;" {
		t.Errorf("Maps = %q, want %q", export.Maps, "Muldraugh, KY;")
	}

	expected := "WorkshopItems=111;222;\nMods=a;b;c;\nMap=Muldraugh, KY;"
	if export.String() != expected {
		t.Errorf("String() = %q, want %q", export.String(), expected)
	}
}

func TestExportEmpty(t *testing.T) {
	export := (&Result{}).Export()
	if export.WorkshopItems != "" || export.Mods != "" || export.Maps != "" {
		t.Errorf("Expected empty export, got %+v", export)
	}
}
