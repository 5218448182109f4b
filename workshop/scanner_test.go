package workshop

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func newTestScanner(root string) *Scanner {
	return NewScanner(root, 2, zap.NewNop().Sugar())
}

// superModRoot builds the single-mod workshop used by several tests.
func superModRoot(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	dir := addMod(t, root, "555", "SuperMod", "id=555\nname=SuperMod\ndescription=Adds stuff\n")
	writeFile(t, filepath.Join(dir, "preview.png"), "png")
	return root, dir
}

func TestListWorkshopIDs(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "222"))
	mkdir(t, filepath.Join(root, "111"))
	writeFile(t, filepath.Join(root, "readme.txt"), "not an item")

	ids, err := ListWorkshopIDs(root)
	if err != nil {
		t.Fatalf("ListWorkshopIDs returned error: %v", err)
	}
	if !equalStrings(sorted(ids), []string{"111", "222"}) {
		t.Errorf("ListWorkshopIDs() = %v, want [111 222]", ids)
	}
}

func TestListWorkshopIDsUnreadableRoot(t *testing.T) {
	_, err := ListWorkshopIDs(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("Expected error for missing workshop root")
	}
}

func TestBuildMetadataSuperMod(t *testing.T) {
	root, dir := superModRoot(t)

	report, err := newTestScanner(root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	expected := Catalog{
		"SuperMod": {
			WorkshopID:  "555",
			ModID:       "555",
			ImagePath:   filepath.Join(dir, "preview.png"),
			Description: "Adds stuff",
			InfoPath:    filepath.Join(dir, "mod.info"),
		},
	}
	if !reflect.DeepEqual(report.Catalog, expected) {
		t.Errorf("Catalog = %+v, want %+v", report.Catalog, expected)
	}
	if len(report.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics, got %v", report.Diagnostics)
	}
	if report.ScanID == "" {
		t.Error("Expected a scan ID")
	}
}

func TestBuildMetadataPrefersPoster(t *testing.T) {
	root := t.TempDir()
	dir := addMod(t, root, "1", "Posters", "name=Posters\ndescription=x\nposter=poster.png\n")
	writeFile(t, filepath.Join(dir, "a.png"), "")
	writeFile(t, filepath.Join(dir, "poster.png"), "")

	report, err := newTestScanner(root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if got := report.Catalog["Posters"].ImagePath; got != filepath.Join(dir, "poster.png") {
		t.Errorf("ImagePath = %q, want poster.png", got)
	}
}

func TestBuildMetadataIsIdempotent(t *testing.T) {
	root, _ := superModRoot(t)
	addMod(t, root, "777", "Other", "id=other\nname=Other\ndescription=More\n")

	s := newTestScanner(root)
	first, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("First scan failed: %v", err)
	}
	second, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Second scan failed: %v", err)
	}
	if !reflect.DeepEqual(first.Catalog, second.Catalog) {
		t.Errorf("Catalogs differ between runs:\n%+v\n%+v", first.Catalog, second.Catalog)
	}
}

func TestBuildMetadataSkipsMalformedMods(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "111"))
	mkdir(t, filepath.Join(root, "222", ModsDir, "Empty"))
	addMod(t, root, "333", "NoName", "id=noname\ndescription=x\n")
	addMod(t, root, "444", "Latin1", "name=Caf\xe9\n")
	addMod(t, root, "555", "Good", "id=good\nname=Good\ndescription=Fine\n")
	// Missing description keeps the mod with a warning.
	addMod(t, root, "666", "NoDesc", "id=nodesc\nname=NoDesc\n")

	report, err := newTestScanner(root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if !equalStrings(report.Catalog.Names(), []string{"Good", "NoDesc"}) {
		t.Errorf("Catalog names = %v, want [Good NoDesc]", report.Catalog.Names())
	}
	if got := report.Diagnostics.Skipped(); got != 4 {
		t.Errorf("Skipped() = %d, want 4", got)
	}

	counts := report.Diagnostics.CountByCode()
	for _, code := range []string{CodeNoModInfo, CodeMissingName, CodeInvalidEncoding, CodeMissingDescription} {
		if counts[code] == 0 {
			t.Errorf("Expected a %s diagnostic, got %v", code, counts)
		}
	}
	if counts[CodeNoModInfo] != 2 {
		t.Errorf("Expected 2 %s diagnostics, got %d", CodeNoModInfo, counts[CodeNoModInfo])
	}
	if !strings.Contains(report.Summary(), "2 mods loaded from 6 workshop items, 4 skipped") {
		t.Errorf("Unexpected summary: %s", report.Summary())
	}
}

func TestBuildMetadataDuplicateNames(t *testing.T) {
	root := t.TempDir()
	addMod(t, root, "100", "A", "name=Same\ndescription=first\n")
	addMod(t, root, "200", "B", "name=Same\ndescription=second\n")

	report, err := newTestScanner(root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if got := report.Catalog["Same"].WorkshopID; got != "100" {
		t.Errorf("WorkshopID = %q, want the lowest ID 100", got)
	}
	if report.Diagnostics.CountByCode()[CodeDuplicateName] != 1 {
		t.Errorf("Expected one duplicate_name diagnostic, got %v", report.Diagnostics)
	}
}

func TestBuildMetadataCanceled(t *testing.T) {
	root, _ := superModRoot(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(root).BuildMetadata(ctx, []string{"555"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestBuildMetadataProgress(t *testing.T) {
	root := t.TempDir()
	for _, id := range []string{"1", "2", "3", "4"} {
		addMod(t, root, id, "M"+id, "name=M"+id+"\ndescription=d\n")
	}

	var mu sync.Mutex
	var calls []int
	s := newTestScanner(root)
	s.OnProgress = func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
		calls = append(calls, done)
	}

	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(calls) != 4 {
		t.Fatalf("OnProgress called %d times, want 4", len(calls))
	}
	highest := 0
	for _, c := range calls {
		if c > highest {
			highest = c
		}
	}
	if highest != 4 {
		t.Errorf("Final progress = %d, want 4", highest)
	}
}
