package db

import (
	"time"

	"gorm.io/gorm"
)

// Mod is a cached catalog entry from the last scan of a workshop directory.
type Mod struct {
	gorm.Model
	WorkshopDir string `gorm:"uniqueIndex:idx_dir_name"` // Workshop content directory the mod was scanned from
	Name        string `gorm:"uniqueIndex:idx_dir_name"` // Display name from mod.info
	WorkshopID  string // Steam workshop item ID
	ModID       string // id= from the first mod.info
	ImagePath   string // Preview image, may be empty
	Description string
	InfoPath    string // Path of the mod.info the entry was built from
	ScanID      string // Scan that produced this row
	ScannedAt   time.Time
}

// Export is one rendered export kept for the history and restore commands.
type Export struct {
	gorm.Model
	ExportID      string   `gorm:"uniqueIndex"` // UUID shown to the user
	Preset        string   // Preset the selection came from, if any
	WorkshopDir   string
	WorkshopItems string   // Rendered WorkshopItems= value
	Mods          string   // Rendered Mods= value
	Maps          string   // Rendered Map= value
	Enabled       []string `gorm:"serializer:json"` // Selection names that produced the export
}
