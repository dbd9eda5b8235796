// Package manifest handles pyrecon.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/pyrecon/decompiler"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "pyrecon.toml"

// Manifest represents a pyrecon.toml configuration.
type Manifest struct {
	Decompile Decompile `toml:"decompile"`
	Log       Log       `toml:"log"`
	Cache     Cache     `toml:"cache"`

	// Dir is the directory containing the pyrecon.toml file (set at load time).
	Dir string `toml:"-"`
}

// Decompile configures the decompiler engine.
type Decompile struct {
	Trace    bool `toml:"trace"`
	MaxDepth int  `toml:"max-depth"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Cache configures the summary cache.
type Cache struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no pyrecon.toml exists.
func Default() *Manifest {
	m := preset()
	m.applyDefaults()
	return &m
}

// preset holds the values a file may override. An explicit empty cache
// path disables the cache, so it cannot be defaulted after decoding.
func preset() Manifest {
	return Manifest{
		Log:   Log{Verbosity: 1},
		Cache: Cache{Path: filepath.Join(".pyrecon", "cache.db")},
	}
}

// Load parses a pyrecon.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := preset()
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a pyrecon.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) validate() error {
	if m.Decompile.MaxDepth < 0 {
		return fmt.Errorf("decompile.max-depth must not be negative, got %d", m.Decompile.MaxDepth)
	}
	if m.Log.Verbosity < 0 || m.Log.Verbosity > 2 {
		return fmt.Errorf("log.verbosity must be 0, 1 or 2, got %d", m.Log.Verbosity)
	}
	return nil
}

func (m *Manifest) applyDefaults() {
	if m.Decompile.MaxDepth == 0 {
		m.Decompile.MaxDepth = decompiler.DefaultMaxDepth
	}
}

// Options returns the decompiler options described by the manifest.
func (m *Manifest) Options() decompiler.Options {
	return decompiler.Options{
		Trace:    m.Decompile.Trace,
		MaxDepth: m.Decompile.MaxDepth,
	}
}

// CachePath returns the absolute cache database path, or "" when the cache
// is disabled. Relative paths resolve against Dir.
func (m *Manifest) CachePath() string {
	return m.resolve(m.Cache.Path)
}

// LogFile returns the absolute log file path, or "" for stderr.
func (m *Manifest) LogFile() string {
	return m.resolve(m.Log.File)
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
