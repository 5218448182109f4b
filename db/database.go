package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"zomboid-mod-manager/workshop"
)

var ErrExportNotFound = errors.New("export not found")

// zapWriter routes gorm's log output into the application log.
type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(strings.TrimSpace(format), args...)
}

// Open connects to the SQLite database at dbPath and migrates the schema.
func Open(dbPath string, log *zap.SugaredLogger) (*gorm.DB, error) {
	newLogger := gormlogger.New(
		zapWriter{log: log},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database %s: %w", dbPath, err)
	}

	if err := conn.AutoMigrate(&Mod{}, &Export{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return conn, nil
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReplaceMods swaps the cached catalog of workshopDir for the given report.
func ReplaceMods(conn *gorm.DB, report *workshop.Report) error {
	now := time.Now()
	return conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("workshop_dir = ?", report.Root).Delete(&Mod{}).Error; err != nil {
			return fmt.Errorf("failed to clear cached mods: %w", err)
		}

		names := report.Catalog.Names()
		if len(names) == 0 {
			return nil
		}
		rows := make([]Mod, 0, len(names))
		for _, name := range names {
			m := report.Catalog[name]
			rows = append(rows, Mod{
				WorkshopDir: report.Root,
				Name:        name,
				WorkshopID:  m.WorkshopID,
				ModID:       m.ModID,
				ImagePath:   m.ImagePath,
				Description: m.Description,
				InfoPath:    m.InfoPath,
				ScanID:      report.ScanID,
				ScannedAt:   now,
			})
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to cache mods: %w", err)
		}
		return nil
	})
}

// ListMods returns the cached catalog for workshopDir.
func ListMods(conn *gorm.DB, workshopDir string) (workshop.Catalog, time.Time, error) {
	var rows []Mod
	if err := conn.Where("workshop_dir = ?", workshopDir).Order("name").Find(&rows).Error; err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to list cached mods: %w", err)
	}

	catalog := make(workshop.Catalog, len(rows))
	var scannedAt time.Time
	for _, r := range rows {
		catalog[r.Name] = workshop.ModMetadata{
			WorkshopID:  r.WorkshopID,
			ModID:       r.ModID,
			ImagePath:   r.ImagePath,
			Description: r.Description,
			InfoPath:    r.InfoPath,
		}
		if r.ScannedAt.After(scannedAt) {
			scannedAt = r.ScannedAt
		}
	}
	return catalog, scannedAt, nil
}

// RecordExport stores an export in the history.
func RecordExport(conn *gorm.DB, e *Export) error {
	if err := conn.Create(e).Error; err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// ListExports returns the most recent exports first. A non-positive limit
// returns all of them.
func ListExports(conn *gorm.DB, limit int) ([]Export, error) {
	var exports []Export
	q := conn.Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&exports).Error; err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return exports, nil
}

// GetExport looks up an export by its ID or an unambiguous ID prefix.
func GetExport(conn *gorm.DB, id string) (*Export, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrExportNotFound)
	}

	var matches []Export
	if err := conn.Where(`export_id LIKE ? ESCAPE '\'`, escapeLike(id)+"%").Limit(2).Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("failed to look up export %s: %w", id, err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrExportNotFound, id)
	case 1:
		return &matches[0], nil
	default:
		for i := range matches {
			if matches[i].ExportID == id {
				return &matches[i], nil
			}
		}
		return nil, fmt.Errorf("export id prefix %q is ambiguous", id)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
