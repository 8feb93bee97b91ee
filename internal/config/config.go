// Package config loads moveflow.toml, the per-project settings for the
// moveflow CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name searched for by Find.
const FileName = "moveflow.toml"

// Config is the decoded moveflow.toml. Zero values mean "not set"; callers
// fall back to Default for those.
type Config struct {
	Check  Check  `toml:"check"`
	Output Output `toml:"output"`
	Cache  Cache  `toml:"cache"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type Check struct {
	MaxDiagnostics   int  `toml:"max_diagnostics"`
	Jobs             int  `toml:"jobs"`
	WarningsAsErrors bool `toml:"warnings_as_errors"`
}

type Output struct {
	Color  string `toml:"color"`  // auto|on|off
	Format string `toml:"format"` // pretty|json|short
	UI     string `toml:"ui"`     // auto|on|off
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

var (
	// ErrUnknownKey is wrapped when moveflow.toml carries keys moveflow does not know.
	ErrUnknownKey = errors.New("unknown key")
	// ErrBadValue is wrapped when an enumerated setting has an unsupported value.
	ErrBadValue = errors.New("bad value")
)

// Default returns the settings used when no moveflow.toml is found.
func Default() Config {
	return Config{
		Check:  Check{MaxDiagnostics: 100},
		Output: Output{Color: "auto", Format: "pretty", UI: "auto"},
	}
}

// Find walks up from startDir to locate moveflow.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

// Discover finds and loads the config for startDir. Without a file it
// returns Default.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	check := func(key, val string, allowed ...string) {
		for _, a := range allowed {
			if val == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%w for %s: %q (want %s)", ErrBadValue, key, val, strings.Join(allowed, "|")))
	}
	check("output.color", c.Output.Color, "auto", "on", "off")
	check("output.format", c.Output.Format, "pretty", "json", "short")
	check("output.ui", c.Output.UI, "auto", "on", "off")
	if c.Check.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("%w for check.max_diagnostics: %d", ErrBadValue, c.Check.MaxDiagnostics))
	}
	if c.Check.Jobs < 0 {
		errs = append(errs, fmt.Errorf("%w for check.jobs: %d", ErrBadValue, c.Check.Jobs))
	}
	return errors.Join(errs...)
}
