package cmd

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"zomboid-mod-manager/workshop"
)

func testCatalog() workshop.Catalog {
	return workshop.Catalog{
		"Brita's Weapon Pack": {WorkshopID: "2200148440", ModID: "Brita", Description: "Guns."},
		"Arsenal(26)":         {WorkshopID: "2297098490", ModID: "Arsenal(26)GunFighter"},
		"Raven Creek":         {WorkshopID: "2071347", ModID: "RavenCreek", ImagePath: "/w/2071347/mods/RC/poster.png"},
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func press(t *testing.T, m SelectModel, keys ...string) (SelectModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(SelectModel)
	}
	return m, cmd
}

func TestSelectModelNavigation(t *testing.T) {
	catalog := testCatalog()
	m := newSelectModel(catalog, workshop.NewSelection(catalog), "")

	if m.names[0] != "Arsenal(26)" {
		t.Fatalf("Expected names sorted, got %v", m.names)
	}

	m, _ = press(t, m, "down", "down", "down")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2 after moving past the end", m.cursor)
	}
	m, _ = press(t, m, "up", "k")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	m, _ = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want to stay at 0", m.cursor)
	}
}

func TestSelectModelToggle(t *testing.T) {
	catalog := testCatalog()
	m := newSelectModel(catalog, workshop.NewSelection(catalog), "")

	m, _ = press(t, m, " ")
	if m.sel["Arsenal(26)"] {
		t.Error("space should disable the entry under the cursor")
	}

	m, _ = press(t, m, "n")
	if len(m.sel.Enabled()) != 0 {
		t.Errorf("Enabled() = %v after n, want none", m.sel.Enabled())
	}

	m, _ = press(t, m, "a")
	if len(m.sel.Enabled()) != 3 {
		t.Errorf("Enabled() = %v after a, want all", m.sel.Enabled())
	}

	if !strings.Contains(m.View(), "3 of 3 mods enabled") {
		t.Errorf("Header missing from view:\n%s", m.View())
	}
}

func TestSelectModelExport(t *testing.T) {
	catalog := testCatalog()
	m := newSelectModel(catalog, workshop.NewSelection(catalog), "server")

	var gotSel workshop.Selection
	var gotPreset string
	m.runExport = func(sel workshop.Selection, presetName string) (*exportOutcome, error) {
		gotSel, gotPreset = sel, presetName
		return &exportOutcome{
			Export:   workshop.Export{WorkshopItems: "2297098490;", Mods: "Arsenal(26)GunFighter;"},
			ExportID: "abc",
			Items:    1,
		}, nil
	}
	var copied string
	m.copyText = func(text string) error {
		copied = text
		return nil
	}

	m, _ = press(t, m, "down", " ", "down", " ")
	m, cmd := press(t, m, "e")
	if cmd == nil || !m.exporting {
		t.Fatal("Expected e to start an export")
	}

	next, _ := m.Update(cmd())
	m = next.(SelectModel)
	if m.mode != modeExport {
		t.Fatalf("mode = %v, want export", m.mode)
	}
	if !reflect.DeepEqual(gotSel.Enabled(), []string{"Arsenal(26)"}) {
		t.Errorf("export selection = %v, want [Arsenal(26)]", gotSel.Enabled())
	}
	if gotPreset != "server" {
		t.Errorf("export preset = %q, want server", gotPreset)
	}
	if !strings.Contains(m.View(), "WorkshopItems=2297098490;") {
		t.Errorf("Export view missing lines:\n%s", m.View())
	}

	m, _ = press(t, m, "c")
	if copied != "WorkshopItems=2297098490;\nMods=Arsenal(26)GunFighter;\nMap=" {
		t.Errorf("copied = %q", copied)
	}
	if m.message == "" {
		t.Error("Expected a confirmation message after copying")
	}

	m, _ = press(t, m, "b")
	if m.mode != modeList {
		t.Errorf("mode = %v, want list after leaving the export view", m.mode)
	}
}

func TestSelectModelExportError(t *testing.T) {
	catalog := testCatalog()
	m := newSelectModel(catalog, workshop.NewSelection(catalog), "")
	m.runExport = func(workshop.Selection, string) (*exportOutcome, error) {
		return nil, errors.New("workshop vanished")
	}

	m, cmd := press(t, m, "e")
	next, _ := m.Update(cmd())
	m = next.(SelectModel)

	if m.mode != modeList || !strings.Contains(m.error, "workshop vanished") {
		t.Errorf("Expected list mode with error, got mode %v error %q", m.mode, m.error)
	}
}

func TestSelectModelSavePreset(t *testing.T) {
	catalog := testCatalog()
	m := newSelectModel(catalog, workshop.NewSelection(catalog), "")

	var savedName string
	var savedSel workshop.Selection
	m.savePreset = func(name string, sel workshop.Selection) error {
		savedName, savedSel = name, sel
		return nil
	}

	m, _ = press(t, m, "s")
	if m.mode != modeSaving {
		t.Fatalf("mode = %v, want saving", m.mode)
	}
	m, _ = press(t, m, "s", "r", "v")
	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("Expected enter to save")
	}

	next, _ := m.Update(cmd())
	m = next.(SelectModel)
	if savedName != "srv" || len(savedSel) != 3 {
		t.Errorf("saved %q with %v", savedName, savedSel)
	}
	if m.preset != "srv" {
		t.Errorf("preset = %q, want srv", m.preset)
	}

	m, _ = press(t, m, "s", "esc")
	if m.mode != modeList {
		t.Errorf("esc should cancel saving, mode = %v", m.mode)
	}
}

func TestSelectModelEmptyCatalog(t *testing.T) {
	m := newSelectModel(workshop.Catalog{}, workshop.Selection{}, "")
	m, _ = press(t, m, " ", "down")
	if !strings.Contains(m.View(), "No mods found") {
		t.Errorf("Unexpected view: %s", m.View())
	}
}

func TestCatalogModIDs(t *testing.T) {
	catalog := testCatalog()
	sel := workshop.Selection{"Raven Creek": true, "Arsenal(26)": true, "Brita's Weapon Pack": false}

	got := catalogModIDs(sel, catalog)
	expected := []string{"Arsenal(26)GunFighter", "RavenCreek"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("catalogModIDs() = %v, want %v", got, expected)
	}
}
