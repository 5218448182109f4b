package preset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the only preset file version this build reads and writes.
const SchemaVersion = 1

const (
	presetsDir           = "presets"
	presetExt            = ".yaml"
	workshopLocationFile = "workshop_location"
)

var (
	ErrPresetNotFound     = errors.New("preset not found")
	ErrMalformed          = errors.New("malformed preset file")
	ErrUnsupportedVersion = errors.New("unsupported preset version")
	ErrInvalidName        = errors.New("invalid preset name")
	ErrNoWorkshopLocation = errors.New("no workshop location saved")
)

// Entry is one selection line of a preset.
type Entry struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// Preset is the on-disk form of a saved selection.
type Preset struct {
	Version     int       `yaml:"version"`
	Name        string    `yaml:"name"`
	SavedAt     time.Time `yaml:"saved_at"`
	WorkshopDir string    `yaml:"workshop_dir,omitempty"`
	Selection   []Entry   `yaml:"selection"`
	ModIDs      []string  `yaml:"mod_ids,omitempty"`
}

// SelectionMap returns the preset's selection as a name to enabled map.
func (p *Preset) SelectionMap() map[string]bool {
	m := make(map[string]bool, len(p.Selection))
	for _, e := range p.Selection {
		m[e.Name] = e.Enabled
	}
	return m
}

// Store keeps presets and the last workshop location in a config directory.
type Store struct {
	Dir string
	now func() time.Time
}

// NewStore creates the store directories under dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, presetsDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create preset directory in %s: %w", dir, err)
	}
	return &Store{Dir: dir, now: time.Now}, nil
}

// ValidateName rejects names that cannot be used as a file name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\:*?"<>|`):
		return fmt.Errorf("%w: %q contains a path or reserved character", ErrInvalidName, name)
	case strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 }):
		return fmt.Errorf("%w: %q contains a control character", ErrInvalidName, name)
	}
	return nil
}

func (s *Store) presetPath(name string) string {
	return filepath.Join(s.Dir, presetsDir, name+presetExt)
}

// Save writes a preset, replacing any preset with the same name.
func (s *Store) Save(name string, selection map[string]bool, modIDs []string) error {
	return s.Put(&Preset{Name: name, Selection: entries(selection), ModIDs: modIDs})
}

// Put writes p with the current schema version and timestamp.
func (s *Store) Put(p *Preset) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	p.Version = SchemaVersion
	p.SavedAt = s.now().UTC().Truncate(time.Second)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode preset %q: %w", p.Name, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode preset %q: %w", p.Name, err)
	}
	return writeFileAtomic(s.presetPath(p.Name), buf.Bytes())
}

// Load returns the mod IDs and selection of a saved preset.
func (s *Store) Load(name string) ([]string, map[string]bool, error) {
	p, err := s.Get(name)
	if err != nil {
		return nil, nil, err
	}
	return p.ModIDs, p.SelectionMap(), nil
}

// Get reads and validates a preset file.
func (s *Store) Get(name string) (*Preset, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	path := s.presetPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
		}
		return nil, fmt.Errorf("failed to read preset %s: %w", path, err)
	}
	return decode(path, data)
}

func decode(path string, data []byte) (*Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if p.Version == 0 {
		return nil, fmt.Errorf("%w: %s: missing version", ErrMalformed, path)
	}
	if p.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %s has version %d, want %d", ErrUnsupportedVersion, path, p.Version, SchemaVersion)
	}
	seen := make(map[string]bool, len(p.Selection))
	for _, e := range p.Selection {
		if seen[e.Name] {
			return nil, fmt.Errorf("%w: %s: duplicate entry %q", ErrMalformed, path, e.Name)
		}
		seen[e.Name] = true
	}
	return &p, nil
}

// List returns the saved preset names, sorted.
func (s *Store) List() ([]string, error) {
	files, err := os.ReadDir(filepath.Join(s.Dir, presetsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	names := []string{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), presetExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(f.Name(), presetExt))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a preset.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.presetPath(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
		}
		return fmt.Errorf("failed to delete preset %s: %w", name, err)
	}
	return nil
}

// SaveWorkshopLocation persists the workshop content directory.
func (s *Store) SaveWorkshopLocation(dir string) error {
	return writeFileAtomic(filepath.Join(s.Dir, workshopLocationFile), []byte(strings.TrimSpace(dir)))
}

// LoadWorkshopLocation returns the saved workshop content directory.
func (s *Store) LoadWorkshopLocation() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, workshopLocationFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoWorkshopLocation
		}
		return "", fmt.Errorf("failed to read workshop location: %w", err)
	}
	dir := strings.TrimSpace(string(data))
	if dir == "" {
		return "", ErrNoWorkshopLocation
	}
	return dir, nil
}

func entries(selection map[string]bool) []Entry {
	out := make([]Entry, 0, len(selection))
	for name, on := range selection {
		out = append(out, Entry{Name: name, Enabled: on})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
