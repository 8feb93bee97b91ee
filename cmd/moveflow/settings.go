package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"moveflow/internal/config"
	"moveflow/internal/driver"
)

// settings is moveflow.toml with the explicitly set flags applied on top.
type settings struct {
	cfg config.Config

	maxDiagnostics   int
	jobs             int
	warningsAsErrors bool
	color            bool
	format           string
	ui               uiMode
	cacheEnabled     bool
	cacheDir         string
	quiet            bool
	timings          bool
}

// loadSettings reads the config for target and overrides it with every flag
// the user set on the command line. Flags left at their defaults never
// shadow the file.
func loadSettings(cmd *cobra.Command, target string, out io.Writer) (*settings, error) {
	flags := cmd.Flags()

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg config.Config
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, err = config.Discover(target)
	}
	if err != nil {
		return nil, err
	}

	s := &settings{
		cfg:              cfg,
		maxDiagnostics:   cfg.Check.MaxDiagnostics,
		jobs:             cfg.Check.Jobs,
		warningsAsErrors: cfg.Check.WarningsAsErrors,
		format:           cfg.Output.Format,
		cacheEnabled:     cfg.Cache.Enabled,
		cacheDir:         cfg.Cache.Dir,
	}
	colorMode := cfg.Output.Color
	uiValue := cfg.Output.UI

	if flags.Changed("max-diagnostics") {
		if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if s.jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("color") {
		if colorMode, err = flags.GetString("color"); err != nil {
			return nil, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if flags.Lookup("warnings-as-errors") != nil && flags.Changed("warnings-as-errors") {
		if s.warningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
			return nil, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
		}
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		if s.format, err = flags.GetString("format"); err != nil {
			return nil, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if flags.Lookup("ui") != nil && flags.Changed("ui") {
		if uiValue, err = flags.GetString("ui"); err != nil {
			return nil, fmt.Errorf("failed to get ui flag: %w", err)
		}
	}
	if flags.Lookup("disk-cache") != nil && flags.Changed("disk-cache") {
		if s.cacheEnabled, err = flags.GetBool("disk-cache"); err != nil {
			return nil, fmt.Errorf("failed to get disk-cache flag: %w", err)
		}
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	switch strings.ToLower(colorMode) {
	case "on":
		s.color = true
	case "off":
		s.color = false
	case "", "auto":
		s.color = isTerminal(out)
	default:
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorMode)
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return nil, err
	}
	if s.maxDiagnostics < 0 || s.jobs < 0 {
		return nil, fmt.Errorf("--max-diagnostics and --jobs must not be negative")
	}
	return s, nil
}

// driverOptions builds the driver configuration. The disk cache is opened
// here so a broken cache directory fails the command early.
func (s *settings) driverOptions() (driver.Options, error) {
	opts := driver.Options{
		MaxDiagnostics:   s.maxDiagnostics,
		Jobs:             s.jobs,
		WarningsAsErrors: s.warningsAsErrors,
		Timings:          s.timings,
	}
	if !s.cacheEnabled {
		return opts, nil
	}
	cache, err := s.openCache()
	if err != nil {
		return opts, err
	}
	opts.Cache = cache
	return opts, nil
}

// openCache opens [cache] dir, or the per-user default when it is unset.
func (s *settings) openCache() (*driver.DiskCache, error) {
	var (
		cache *driver.DiskCache
		err   error
	)
	if s.cacheDir != "" {
		cache, err = driver.OpenDiskCacheAt(s.cacheDir)
	} else {
		cache, err = driver.OpenDiskCache("moveflow")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open disk cache: %w", err)
	}
	return cache, nil
}
