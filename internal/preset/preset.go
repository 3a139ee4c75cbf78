// Package preset stores named HSV ranges for reuse by downstream detectors.
package preset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"hsv-range-finder/internal/hsv"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a preset name does not exist.
var ErrNotFound = errors.New("preset not found")

// Preset is a named HSV range.
type Preset struct {
	Name         string    `toml:"name" yaml:"name"`
	HueFullRange bool      `toml:"hue_full_range" yaml:"hue_full_range"`
	Range        hsv.Range `toml:"range" yaml:"range"`
	Notes        string    `toml:"notes,omitempty" yaml:"notes,omitempty"`
	Updated      time.Time `toml:"updated" yaml:"updated"`
}

// Validate checks the name and range.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset name is required")
	}
	if !p.Range.Valid(p.HueFullRange) {
		return fmt.Errorf("preset %q: invalid range %v", p.Name, p.Range)
	}
	return nil
}

// storeFile is the top-level TOML structure.
type storeFile struct {
	Preset []Preset `toml:"preset"`
}

// Store is a file-backed collection of presets keyed by name.
type Store struct {
	mu      sync.RWMutex
	path    string
	presets map[string]Preset
}

// NewStore creates an empty store that saves to path.
func NewStore(path string) *Store {
	return &Store{path: path, presets: make(map[string]Preset)}
}

// Load reads the store at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	s := NewStore(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}

	presets, err := parseTOML(data)
	if err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	for _, p := range presets {
		s.presets[p.Name] = p
	}
	return s, nil
}

func parseTOML(data []byte) ([]Preset, error) {
	var f storeFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, err
	}
	for i, p := range f.Preset {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %d: %w", i, err)
		}
	}
	return f.Preset, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Save writes all presets to disk, sorted by name.
func (s *Store) Save() error {
	s.mu.RLock()
	f := storeFile{Preset: s.sortedLocked()}
	s.mu.RUnlock()

	var buf bytes.Buffer
	buf.WriteString("# HSV range presets\n\n")
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir presets dir: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write presets: %w", err)
	}
	return nil
}

// Put adds or replaces a preset by name.
func (s *Store) Put(p Preset) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Updated.IsZero() {
		p.Updated = time.Now().UTC().Truncate(time.Second)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets[p.Name] = p
	return nil
}

// Get returns the named preset.
func (s *Store) Get(name string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// Delete removes the named preset.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.presets[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.presets, name)
	return nil
}

// Names returns preset names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of presets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.presets)
}

func (s *Store) sortedLocked() []Preset {
	out := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExportYAML writes a single preset as YAML.
func ExportYAML(w io.Writer, p Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// ParseYAML reads a preset written by ExportYAML.
func ParseYAML(r io.Reader) (Preset, error) {
	var p Preset
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return Preset{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// ReadFile loads a single preset from a .yaml/.yml or .toml file. TOML
// files may hold several presets; the first is returned.
func ReadFile(path string) (Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preset{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f)
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			return Preset{}, err
		}
		presets, err := parseTOML(data)
		if err != nil {
			return Preset{}, err
		}
		if len(presets) == 0 {
			return Preset{}, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return presets[0], nil
	}
}
