package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"zomboid-mod-manager/config"
	"zomboid-mod-manager/db"
	"zomboid-mod-manager/logger"
	"zomboid-mod-manager/preset"
	"zomboid-mod-manager/ui"
	"zomboid-mod-manager/workshop"
)

// app is the state shared by a single command invocation.
type app struct {
	cfg   config.Config
	store *preset.Store
	db    *gorm.DB
	log   *zap.SugaredLogger
}

// bootstrap handles shared initialization logic for commands.
func bootstrap(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel, cfg.Verbose); err != nil {
		return nil, err
	}
	// GOMAXPROCS follows the container CPU quota.
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Log.Debugf)); err != nil {
		logger.Log.Warnw("Failed to set GOMAXPROCS", zap.Error(err))
	}

	store, err := preset.NewStore(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(cfg.DatabasePath, logger.Log)
	if err != nil {
		return nil, err
	}
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))

	return &app{cfg: cfg, store: store, db: conn, log: logger.Log}, nil
}

func (a *app) Close() {
	if err := db.Close(a.db); err != nil {
		a.log.Warnw("Failed to close database", zap.Error(err))
	}
	logger.Sync()
}

// workshopDir returns the configured workshop directory, falling back to the
// saved location.
func (a *app) workshopDir() (string, error) {
	if a.cfg.WorkshopDir != "" {
		return a.cfg.WorkshopDir, nil
	}
	dir, err := a.store.LoadWorkshopLocation()
	if errors.Is(err, preset.ErrNoWorkshopLocation) {
		return "", fmt.Errorf("no workshop location set, run 'zsmm location <dir>' or set ZSMM_WORKSHOP_DIR")
	}
	if err != nil {
		return "", err
	}
	return dir, nil
}

func (a *app) scanner() (*workshop.Scanner, error) {
	dir, err := a.workshopDir()
	if err != nil {
		return nil, err
	}
	return workshop.NewScanner(dir, a.cfg.ScanWorkers, a.log), nil
}

// scan builds a fresh catalog and refreshes the cache. With interactive set,
// progress is shown with a spinner.
func (a *app) scan(ctx context.Context, s *workshop.Scanner, interactive bool) (*workshop.Report, error) {
	var (
		report *workshop.Report
		err    error
	)
	if interactive {
		report, err = runScanTUI(ctx, s)
	} else {
		report, err = s.Scan(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := db.ReplaceMods(a.db, report); err != nil {
		return nil, err
	}
	a.log.Infow("Catalog cached", zap.String("scan_id", report.ScanID), zap.Int("mods", len(report.Catalog)))
	return report, nil
}

// resolveAndRecord resolves the enabled mods, stores the export in the
// history and returns both.
func (a *app) resolveAndRecord(ctx context.Context, s *workshop.Scanner, sel workshop.Selection, catalog workshop.Catalog, presetName string) (*workshop.Result, *db.Export, error) {
	result, err := s.Resolve(ctx, sel, catalog)
	if err != nil {
		return nil, nil, err
	}

	export := result.Export()
	record := &db.Export{
		ExportID:      uuid.NewString(),
		Preset:        presetName,
		WorkshopDir:   s.Root,
		WorkshopItems: export.WorkshopItems,
		Mods:          export.Mods,
		Maps:          export.Maps,
		Enabled:       sel.Enabled(),
	}
	if err := db.RecordExport(a.db, record); err != nil {
		return nil, nil, err
	}
	a.log.Infow("Export recorded", zap.String("export_id", record.ExportID), zap.Int("items", len(result.Items)))
	return result, record, nil
}

// loadSelection returns the starting selection for catalog: all enabled, or
// the saved preset reconciled against the catalog.
func (a *app) loadSelection(presetName string, catalog workshop.Catalog) (workshop.Selection, error) {
	if presetName == "" {
		return workshop.NewSelection(catalog), nil
	}
	_, saved, err := a.store.Load(presetName)
	if err != nil {
		return nil, err
	}
	sel := workshop.Selection(saved)
	if stale := sel.Reconcile(catalog); len(stale) > 0 {
		a.log.Warnw("Preset entries not found in workshop", zap.String("preset", presetName), zap.Strings("names", stale))
	}
	return sel, nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// printDiagnostics writes one line per diagnostic.
func printDiagnostics(w io.Writer, ds workshop.Diagnostics) {
	for _, d := range ds {
		fmt.Fprintf(w, "  %s %s\n", ui.Severity(string(d.Severity)), strings.TrimPrefix(d.String(), string(d.Severity)+": "))
	}
}

// summarize prints the closing line every command ends with.
func summarize(w io.Writer, ds workshop.Diagnostics) {
	if len(ds) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("No mods skipped."))
		return
	}
	fmt.Fprintln(w, ui.Warning.Render(fmt.Sprintf("%d skipped, %d warnings (%s)", ds.Skipped(), len(ds)-ds.Skipped(), ds.Reasons())))
}

// printExport writes the server lines.
func printExport(w io.Writer, e workshop.Export) {
	for _, line := range e.Lines() {
		fmt.Fprintln(w, line)
	}
}

// truncate shortens s to at most maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
