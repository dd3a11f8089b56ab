package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/treehash/treehash/internal/digest"
)

// ErrNotFound is returned by LoadLocal and LoadGlobal when no file exists.
var ErrNotFound = errors.New("no config file")

// LocalNames are searched in order in the root directory.
var LocalNames = []string{".treehash.yml", ".treehash.yaml", "treehash.yml", "treehash.yaml"}

// FileConfig is the on-disk YAML configuration shape for treehash. Pointer
// fields distinguish "unset" from a zero value so a local file can override
// a global one with false or an empty list.
//
// The HMAC key is deliberately absent.
type FileConfig struct {
	Algorithm *string  `yaml:"algorithm,omitempty"`
	Include   []string `yaml:"include,omitempty"`
	Exclude   []string `yaml:"exclude,omitempty"`
	// Comma-separated doublestar globs matched against root-relative paths.
	IncludeGlobs *string `yaml:"include_globs,omitempty"`
	ExcludeGlobs *string `yaml:"exclude_globs,omitempty"`

	LogLevel  *string `yaml:"log_level,omitempty"`
	LogFormat *string `yaml:"log_format,omitempty"`
	NoColor   *bool   `yaml:"no_color,omitempty"`

	NoLinkedDirs  *bool `yaml:"no_linked_dirs,omitempty"`
	NoLinkedFiles *bool `yaml:"no_linked_files,omitempty"`
	TrackedOnly   *bool `yaml:"tracked_only,omitempty"`

	// MaxRate caps digest reads in bytes per second; 0 is unlimited.
	MaxRate     *int64  `yaml:"max_rate,omitempty"`
	AuditLog    *string `yaml:"audit_log,omitempty"`
	MetricsFile *string `yaml:"metrics_file,omitempty"`
}

// LoadFile reads a YAML config file from the provided path. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a config file in the given root.
func LoadLocal(root string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNotFound
}

// GlobalPath returns $XDG_CONFIG_HOME/treehash/config.yml, falling back to
// ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "treehash", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, ErrNotFound
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return FileConfig{}, ErrNotFound
}

var (
	logLevels  = []string{"q", "e", "w", "a"}
	logFormats = []string{"text", "json"}
)

// Validate checks enumerated fields.
func (fc FileConfig) Validate() error {
	var errs []error
	if fc.Algorithm != nil && *fc.Algorithm != "" {
		if _, err := digest.Parse(*fc.Algorithm); err != nil {
			errs = append(errs, err)
		}
	}
	if fc.LogLevel != nil && !oneOf(*fc.LogLevel, logLevels) {
		errs = append(errs, fmt.Errorf("log_level %q: want one of %s", *fc.LogLevel, strings.Join(logLevels, ", ")))
	}
	if fc.LogFormat != nil && !oneOf(*fc.LogFormat, logFormats) {
		errs = append(errs, fmt.Errorf("log_format %q: want one of %s", *fc.LogFormat, strings.Join(logFormats, ", ")))
	}
	if fc.MaxRate != nil && *fc.MaxRate < 0 {
		errs = append(errs, fmt.Errorf("max_rate must not be negative"))
	}
	return errors.Join(errs...)
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
