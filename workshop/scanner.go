package workshop

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"

	"go.uber.org/zap"
)

const (
	// ModsDir is the folder inside a workshop item that holds its mods.
	ModsDir = "mods"
	// MapsFragment identifies folders whose children are map names.
	MapsFragment = "maps"
	// PreviewExt is the extension used for preview images.
	PreviewExt = ".png"
)

// ModMetadata describes one mod found in the workshop, keyed in a Catalog by
// its display name. Empty ImagePath or Description means the mod has none.
type ModMetadata struct {
	WorkshopID  string
	ModID       string
	// ImagePath is the file named by poster= when it exists next to
	// mod.info, otherwise the first .png found under the item's mods/ folder.
	ImagePath   string
	Description string
	InfoPath    string
}

// Catalog maps display names to mod metadata.
type Catalog map[string]ModMetadata

// Names returns the catalog's display names sorted case-insensitively.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sortNames(names)
	return names
}

// Scanner reads mod metadata from a workshop content root.
type Scanner struct {
	Root    string
	Workers int
	Log     *zap.SugaredLogger

	// OnProgress is called after each workshop item is inspected. It may be
	// called from several goroutines at once.
	OnProgress func(done, total int)
}

// NewScanner creates a Scanner for root. A workers value below 1 selects the CPU count.
func NewScanner(root string, workers int, log *zap.SugaredLogger) *Scanner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scanner{Root: root, Workers: workers, Log: log}
}

func (s *Scanner) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.NumCPU()
}

func (s *Scanner) logger() *zap.SugaredLogger {
	if s.Log == nil {
		return zap.NewNop().Sugar()
	}
	return s.Log
}

// ListWorkshopIDs returns the names of the immediate subdirectories of root,
// sorted. An unreadable root is an error.
func ListWorkshopIDs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read workshop directory %s: %w", root, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ListWorkshopIDs lists the workshop items under the scanner's root.
func (s *Scanner) ListWorkshopIDs() ([]string, error) {
	return ListWorkshopIDs(s.Root)
}

// Scan lists the workshop items and builds their metadata catalog.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	ids, err := s.ListWorkshopIDs()
	if err != nil {
		return nil, err
	}
	s.logger().Infow("Found workshop items", zap.String("root", s.Root), zap.Int("count", len(ids)))
	return s.BuildMetadata(ctx, ids)
}
