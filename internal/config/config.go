// Package config defines the CLI's plain Config struct, built by cobra's
// RunE from flags and optionally merged with an htmlq.yaml project file —
// the same plain-exported-fields shape as the teacher's pages.Handler.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OutputMode mirrors reliq.OutputMode without importing the core package,
// so config stays a leaf dependency cobra's flag parsing can populate
// before any query is compiled.
type OutputMode string

const (
	OutputRaw        OutputMode = "raw"
	OutputStructured OutputMode = "structured"
)

// Config is the fully-resolved set of options driving one htmlq
// invocation (spec.md §6 "CLI (external collaborator)").
type Config struct {
	QueryFile   string     `yaml:"-"`
	QueryExpr   string     `yaml:"-"`
	InputFiles  []string   `yaml:"-"`
	OutputFile  string     `yaml:"output_file,omitempty"`
	ErrorFile   string     `yaml:"error_file,omitempty"`
	Recursive   bool       `yaml:"-"`
	FollowLinks bool       `yaml:"-"`
	ListMode    bool       `yaml:"-"`
	URL         string     `yaml:"-"`
	Mode        OutputMode `yaml:"default_mode,omitempty"`
	LibraryPath string     `yaml:"library_path,omitempty"`
	Verbose     bool       `yaml:"-"`
}

// Default returns the zero-config baseline (raw mode, no recursion),
// matching spec.md §6's CLI defaults.
func Default() Config {
	return Config{Mode: OutputRaw}
}

// LoadFile merges an optional htmlq.yaml project file into cfg: fields the
// file sets take the file's value unless the CLI already set a
// non-default override. Flags always win over the file, matching the
// usual "file supplies defaults, flags override" precedent set by
// `go-pages`'s own flat Handler-struct-from-flags construction.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = fileCfg.OutputFile
	}
	if cfg.ErrorFile == "" {
		cfg.ErrorFile = fileCfg.ErrorFile
	}
	if cfg.Mode == "" || cfg.Mode == OutputRaw {
		if fileCfg.Mode != "" {
			cfg.Mode = fileCfg.Mode
		}
	}
	if cfg.LibraryPath == "" {
		cfg.LibraryPath = fileCfg.LibraryPath
	}
	return cfg, nil
}
