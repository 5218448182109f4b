package workshop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"zomboid-mod-manager/modinfo"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report is the outcome of one metadata scan.
type Report struct {
	ScanID      string
	Root        string
	Total       int
	Catalog     Catalog
	Diagnostics Diagnostics
}

// Summary describes how many mods were loaded and why others were skipped.
func (r *Report) Summary() string {
	skipped := r.Diagnostics.Skipped()
	summary := fmt.Sprintf("%d mods loaded from %d workshop items, %d skipped", len(r.Catalog), r.Total, skipped)
	if len(r.Diagnostics) > 0 {
		summary += " (" + r.Diagnostics.Reasons() + ")"
	}
	return summary
}

type inspection struct {
	name        string
	meta        ModMetadata
	ok          bool
	diagnostics Diagnostics
}

// BuildMetadata inspects every workshop item on a bounded worker pool and
// assembles the catalog in workshop ID order. Problems with a single item are
// reported as diagnostics; only cancellation of ctx fails the whole call.
func (s *Scanner) BuildMetadata(ctx context.Context, ids []string) (*Report, error) {
	report := &Report{
		ScanID:  uuid.NewString(),
		Root:    s.Root,
		Total:   len(ids),
		Catalog: make(Catalog, len(ids)),
	}
	log := s.logger().With(zap.String("scan_id", report.ScanID))

	results := make([]inspection, len(ids))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, id := range ids {
		g.Go(func() error {
			res, err := s.inspect(gctx, id)
			if err != nil {
				return err
			}
			results[i] = res
			if s.OnProgress != nil {
				s.OnProgress(int(done.Add(1)), len(ids))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan canceled: %w", err)
	}

	for _, res := range results {
		report.Diagnostics = append(report.Diagnostics, res.diagnostics...)
		if !res.ok {
			continue
		}
		if existing, dup := report.Catalog[res.name]; dup {
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				Severity:   SeveritySkipped,
				Code:       CodeDuplicateName,
				Message:    fmt.Sprintf("mod name %q already provided by workshop item %s", res.name, existing.WorkshopID),
				WorkshopID: res.meta.WorkshopID,
				Path:       res.meta.InfoPath,
			})
			continue
		}
		report.Catalog[res.name] = res.meta
	}

	for _, d := range report.Diagnostics {
		log.Warnw("Scan diagnostic", zap.String("code", d.Code), zap.String("workshop_id", d.WorkshopID), zap.String("path", d.Path), zap.Error(d.Cause))
	}
	log.Infow("Metadata scan finished", zap.Int("loaded", len(report.Catalog)), zap.Int("skipped", report.Diagnostics.Skipped()))
	return report, nil
}

// inspect reads one workshop item. The error is non-nil only on cancellation.
func (s *Scanner) inspect(ctx context.Context, id string) (inspection, error) {
	res := inspection{}
	skip := func(code, msg, path string, cause error) (inspection, error) {
		res.diagnostics = append(res.diagnostics, Diagnostic{
			Severity: SeveritySkipped, Code: code, Message: msg, WorkshopID: id, Path: path, Cause: cause,
		})
		return res, nil
	}

	modsDir := filepath.Join(s.Root, id, ModsDir)
	if _, err := os.Stat(modsDir); err != nil {
		return skip(CodeNoModInfo, "workshop item has no mods folder", modsDir, err)
	}

	walker := Walker{OnSkip: func(dir string, err error) {
		res.diagnostics = append(res.diagnostics, Diagnostic{
			Severity: SeverityWarning, Code: CodeUnreadableDir, Message: "directory could not be read", WorkshopID: id, Path: dir, Cause: err,
		})
	}}

	infoPath, found, err := walker.FindFirst(ctx, modsDir, NameContains(modinfo.FileName))
	if err != nil {
		return res, err
	}
	if !found {
		return skip(CodeNoModInfo, "no mod.info found", modsDir, nil)
	}

	info, err := modinfo.ParseFile(infoPath)
	if err != nil {
		if errors.Is(err, modinfo.ErrInvalidEncoding) {
			return skip(CodeInvalidEncoding, "mod.info is not valid UTF-8", infoPath, err)
		}
		return skip(CodeUnreadableModInfo, "mod.info could not be read", infoPath, err)
	}

	name, ok := info.Name()
	if !ok || name == "" {
		return skip(CodeMissingName, "mod.info has no name", infoPath, modinfo.ErrFieldNotFound)
	}

	description, ok := info.Description()
	if !ok {
		res.diagnostics = append(res.diagnostics, Diagnostic{
			Severity: SeverityWarning, Code: CodeMissingDescription, Message: fmt.Sprintf("mod %q has no description", name), WorkshopID: id, Path: infoPath,
		})
	}

	modID, _ := info.ID()
	image, err := s.findImage(ctx, walker, modsDir, infoPath, info)
	if err != nil {
		return res, err
	}

	res.name = name
	res.ok = true
	res.meta = ModMetadata{
		WorkshopID:  id,
		ModID:       modID,
		ImagePath:   image,
		Description: description,
		InfoPath:    infoPath,
	}
	return res, nil
}

// findImage prefers the poster named in mod.info and falls back to the first
// .png below the mods folder.
func (s *Scanner) findImage(ctx context.Context, walker Walker, modsDir, infoPath string, info *modinfo.Info) (string, error) {
	if poster, ok := info.Poster(); ok && poster != "" {
		candidate := filepath.Join(filepath.Dir(infoPath), filepath.FromSlash(poster))
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	image, _, err := walker.FindFirst(ctx, modsDir, HasExt(PreviewExt))
	return image, err
}

func sortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}
