package workshop

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"zomboid-mod-manager/modinfo"

	"go.uber.org/zap"
)

// Selection maps display names to whether the mod is enabled.
type Selection map[string]bool

// NewSelection enables every mod in the catalog.
func NewSelection(c Catalog) Selection {
	sel := make(Selection, len(c))
	for name := range c {
		sel[name] = true
	}
	return sel
}

// Toggle flips one entry and returns its new state. Unknown names are
// left out and report false.
func (s Selection) Toggle(name string) bool {
	on, ok := s[name]
	if !ok {
		return false
	}
	s[name] = !on
	return !on
}

// SetAll sets every entry to enabled.
func (s Selection) SetAll(enabled bool) {
	for name := range s {
		s[name] = enabled
	}
}

// Enabled returns the enabled names, sorted.
func (s Selection) Enabled() []string {
	var names []string
	for name, on := range s {
		if on {
			names = append(names, name)
		}
	}
	sortNames(names)
	return names
}

// Reconcile aligns the selection with a fresh catalog. Names missing from the
// catalog are removed and returned, sorted. Catalog names the selection does
// not know yet are added disabled.
func (s Selection) Reconcile(c Catalog) []string {
	var stale []string
	for name := range s {
		if _, ok := c[name]; !ok {
			stale = append(stale, name)
			delete(s, name)
		}
	}
	for name := range c {
		if _, ok := s[name]; !ok {
			s[name] = false
		}
	}
	sortNames(stale)
	return stale
}

// ResolvedItem is one enabled mod with everything the game needs to load it.
type ResolvedItem struct {
	Name       string
	WorkshopID string
	ModIDs     []string
	MapNames   []string
}

// Result holds the resolved items in selection order.
//
// The flattened WorkshopIDs, ModIDs and MapNames lists are consumed
// independently by the game and are not aligned by index: an item may declare
// several mods and zero or more maps.
type Result struct {
	Items       []ResolvedItem
	Diagnostics Diagnostics
}

// WorkshopIDs returns the distinct workshop IDs in item order.
func (r *Result) WorkshopIDs() []string {
	var ids []string
	for _, item := range r.Items {
		ids = append(ids, item.WorkshopID)
	}
	return dedupe(ids)
}

// ModIDs returns the distinct mod IDs in item order.
func (r *Result) ModIDs() []string {
	var ids []string
	for _, item := range r.Items {
		ids = append(ids, item.ModIDs...)
	}
	return dedupe(ids)
}

// MapNames returns the distinct map names in item order.
func (r *Result) MapNames() []string {
	var names []string
	for _, item := range r.Items {
		names = append(names, item.MapNames...)
	}
	return dedupe(names)
}

// Resolve turns the enabled entries of sel into resolved items by re-scanning
// each selected workshop item for mod IDs and map folders. Names that are not
// in the catalog produce a stale selection warning.
func (s *Scanner) Resolve(ctx context.Context, sel Selection, c Catalog) (*Result, error) {
	result := &Result{}
	seen := make(map[string]bool)

	for _, name := range sel.Enabled() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("resolve canceled: %w", err)
		}

		meta, ok := c[name]
		if !ok {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeStaleSelection,
				Message:  fmt.Sprintf("selected mod %q is not in the current workshop scan", name),
			})
			continue
		}
		if seen[meta.WorkshopID] {
			continue
		}
		seen[meta.WorkshopID] = true

		item, diags, err := s.resolveItem(ctx, name, meta.WorkshopID)
		if err != nil {
			return nil, fmt.Errorf("resolve canceled: %w", err)
		}
		result.Items = append(result.Items, item)
		result.Diagnostics = append(result.Diagnostics, diags...)
	}

	s.logger().Infow("Resolved selection",
		zap.Int("items", len(result.Items)),
		zap.Int("mod_ids", len(result.ModIDs())),
		zap.Int("maps", len(result.MapNames())),
	)
	return result, nil
}

func (s *Scanner) resolveItem(ctx context.Context, name, id string) (ResolvedItem, Diagnostics, error) {
	item := ResolvedItem{Name: name, WorkshopID: id, ModIDs: []string{}, MapNames: []string{}}
	var diags Diagnostics

	walker := Walker{OnSkip: func(dir string, err error) {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning, Code: CodeUnreadableDir, Message: "directory could not be read", WorkshopID: id, Path: dir, Cause: err,
		})
	}}
	dir := filepath.Join(s.Root, id)

	infos, err := walker.FindAll(ctx, dir, NameContains(modinfo.FileName))
	if err != nil {
		return item, diags, err
	}
	for _, infoPath := range infos {
		modID, err := modinfo.ExtractField(infoPath, modinfo.KeyID)
		if err != nil {
			code := CodeMissingID
			if errors.Is(err, modinfo.ErrInvalidEncoding) {
				code = CodeInvalidEncoding
			}
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning, Code: code, Message: "mod id could not be read", WorkshopID: id, Path: infoPath, Cause: err,
			})
			continue
		}
		item.ModIDs = append(item.ModIDs, modID)
	}

	maps, err := walker.FindMatchingDirs(ctx, dir, MapsFragment)
	if err != nil {
		return item, diags, err
	}
	for _, m := range maps {
		item.MapNames = append(item.MapNames, filepath.Base(m))
	}
	return item, diags, nil
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
