// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Defaults applied by Validate.
const (
	DefaultMetadataFile = "metadata.json"
	DefaultJournal      = ".syncrc/journal.db"
	DefaultDebounce     = 250 * time.Millisecond
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte, filename string) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📄 FileEntry is one manifest file of the authoritative tree
type FileEntry struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"` // relative to the source root
}

// 🔀 MergeArgs configures the folder merge
type MergeArgs struct {
	Sources []string `json:"sources" yaml:"sources"`                   // private folders, earliest wins
	Shared  string   `json:"shared" yaml:"shared"`                     // folder receiving the union
	Ignore  []string `json:"ignore,omitempty" yaml:"ignore,omitempty"` // doublestar patterns on file names
}

// 👀 WatchArgs configures the edit watcher
type WatchArgs struct {
	Debounce string   `json:"debounce,omitempty" yaml:"debounce,omitempty"`
	Ignore   []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	BasePath            string      `json:"base_path,omitempty" yaml:"base_path,omitempty"`
	Source              string      `json:"source" yaml:"source"`
	Destination         string      `json:"destination" yaml:"destination"`
	SourceMetadata      string      `json:"source_metadata,omitempty" yaml:"source_metadata,omitempty"`
	DestinationMetadata string      `json:"destination_metadata,omitempty" yaml:"destination_metadata,omitempty"`
	Files               []FileEntry `json:"files,omitempty" yaml:"files,omitempty"`
	Merge               *MergeArgs  `json:"merge,omitempty" yaml:"merge,omitempty"`
	Watch               *WatchArgs  `json:"watch,omitempty" yaml:"watch,omitempty"`
	Journal             *string     `json:"journal,omitempty" yaml:"journal,omitempty"` // "" disables

	// location is the config file path, set by Load
	location string
}

// 🎯 Load reads, parses and validates the configuration at path
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	if isRC(path) {
		cfg, err = parseRC(ctx, data, path)
	} else {
		p := GetParser(path)
		if p == nil {
			return nil, errors.Errorf("no parser found for file: %s", path)
		}
		cfg, err = p.Parse(ctx, data, path)
	}
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving config path: %w", err)
	}
	cfg.location = abs

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Str("config", cfg.String()).Msg("configuration loaded")
	return cfg, nil
}

func isRC(path string) bool {
	return filepath.Base(path) == ".syncrc" || strings.HasSuffix(path, ".syncrc")
}

// parseRC tries YAML first, then HCL.
func parseRC(ctx context.Context, data []byte, path string) (*Config, error) {
	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, data, path)
	if yamlErr == nil {
		return cfg, nil
	}
	cfg, hclErr := (&HCLParser{}).Parse(ctx, data, path)
	if hclErr == nil {
		return cfg, nil
	}
	return nil, errors.Errorf("not YAML (%v) or HCL: %w", yamlErr, hclErr)
}

// 🔍 Validate checks required fields and fills defaults
func (cfg *Config) Validate() error {
	if cfg.Source == "" {
		return errors.Errorf("source is required")
	}
	if cfg.Destination == "" {
		return errors.Errorf("destination is required")
	}

	if cfg.SourceMetadata == "" {
		cfg.SourceMetadata = DefaultMetadataFile
	}
	if cfg.DestinationMetadata == "" {
		cfg.DestinationMetadata = DefaultMetadataFile
	}

	// keys are relative to the document's directory, so documents live at the tree root
	for field, name := range map[string]string{"source_metadata": cfg.SourceMetadata, "destination_metadata": cfg.DestinationMetadata} {
		if filepath.Base(name) != name || name == "." || name == ".." {
			return errors.Errorf("%s must be a file name at the tree root, got %q", field, name)
		}
	}

	seen := make(map[string]bool, len(cfg.Files))
	for i, f := range cfg.Files {
		if f.Name == "" {
			return errors.Errorf("files[%d]: name is required", i)
		}
		if seen[f.Name] {
			return errors.Errorf("files[%d]: duplicate name %q", i, f.Name)
		}
		seen[f.Name] = true
		if !isRelative(f.Path) {
			return errors.Errorf("files[%d] %q: path must be relative to the source and stay inside it, got %q", i, f.Name, f.Path)
		}
	}

	if cfg.Merge != nil {
		if len(cfg.Merge.Sources) > 0 && cfg.Merge.Shared == "" {
			return errors.Errorf("merge.shared is required when merge.sources is set")
		}
		if err := validatePatterns("merge.ignore", cfg.Merge.Ignore); err != nil {
			return err
		}
	}

	if cfg.Watch != nil {
		if cfg.Watch.Debounce != "" {
			d, err := time.ParseDuration(cfg.Watch.Debounce)
			if err != nil {
				return errors.Errorf("watch.debounce: %w", err)
			}
			if d < 0 {
				return errors.Errorf("watch.debounce must not be negative")
			}
		}
		if err := validatePatterns("watch.ignore", cfg.Watch.Ignore); err != nil {
			return err
		}
	}

	return nil
}

func validatePatterns(field string, patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("%s: invalid pattern %q", field, p)
		}
	}
	return nil
}

func isRelative(p string) bool {
	if p == "" || filepath.IsAbs(p) || path.IsAbs(p) {
		return false
	}
	clean := path.Clean(filepath.ToSlash(p))
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

// Location returns the absolute path of the loaded file, or "" when the
// config was built in memory.
func (cfg *Config) Location() string {
	return cfg.location
}

// Dir is the anchor for relative paths: base_path when set, otherwise the
// directory of the config file, otherwise the working directory.
func (cfg *Config) Dir() string {
	anchor := "."
	if cfg.location != "" {
		anchor = filepath.Dir(cfg.location)
	}
	if cfg.BasePath != "" {
		if filepath.IsAbs(cfg.BasePath) {
			return filepath.Clean(cfg.BasePath)
		}
		return filepath.Join(anchor, cfg.BasePath)
	}
	return anchor
}

func (cfg *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cfg.Dir(), p)
}

// SourceRoot is the resolved authoritative tree.
func (cfg *Config) SourceRoot() string { return cfg.resolve(cfg.Source) }

// DestinationRoot is the resolved local working copy.
func (cfg *Config) DestinationRoot() string { return cfg.resolve(cfg.Destination) }

// SourceMetadataPath is the metadata document of the source tree.
func (cfg *Config) SourceMetadataPath() string {
	return filepath.Join(cfg.SourceRoot(), cfg.SourceMetadata)
}

// DestinationMetadataPath is the metadata document of the local copy.
func (cfg *Config) DestinationMetadataPath() string {
	return filepath.Join(cfg.DestinationRoot(), cfg.DestinationMetadata)
}

// ManifestPaths returns the absolute paths of the manifest files in the
// source tree, in manifest order.
func (cfg *Config) ManifestPaths() []string {
	out := make([]string, 0, len(cfg.Files))
	for _, f := range cfg.Files {
		out = append(out, filepath.Join(cfg.SourceRoot(), filepath.FromSlash(f.Path)))
	}
	return out
}

// MergeSources returns the resolved private folders, or nil.
func (cfg *Config) MergeSources() []string {
	if cfg.Merge == nil {
		return nil
	}
	out := make([]string, 0, len(cfg.Merge.Sources))
	for _, s := range cfg.Merge.Sources {
		out = append(out, cfg.resolve(s))
	}
	return out
}

// MergeShared returns the resolved shared folder, or "".
func (cfg *Config) MergeShared() string {
	if cfg.Merge == nil || cfg.Merge.Shared == "" {
		return ""
	}
	return cfg.resolve(cfg.Merge.Shared)
}

// MergeIgnore returns the merge ignore patterns.
func (cfg *Config) MergeIgnore() []string {
	if cfg.Merge == nil {
		return nil
	}
	return cfg.Merge.Ignore
}

// WatchDebounce returns the configured debounce, or DefaultDebounce.
func (cfg *Config) WatchDebounce() time.Duration {
	if cfg.Watch == nil || cfg.Watch.Debounce == "" {
		return DefaultDebounce
	}
	d, err := time.ParseDuration(cfg.Watch.Debounce)
	if err != nil {
		return DefaultDebounce
	}
	return d
}

// WatchIgnore returns the watcher ignore patterns.
func (cfg *Config) WatchIgnore() []string {
	if cfg.Watch == nil {
		return nil
	}
	return cfg.Watch.Ignore
}

// JournalPath returns the resolved journal database, or "" when disabled.
func (cfg *Config) JournalPath() string {
	if cfg.Journal == nil {
		return cfg.resolve(DefaultJournal)
	}
	if *cfg.Journal == "" {
		return ""
	}
	return cfg.resolve(*cfg.Journal)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (%d files)", cfg.Source, cfg.Destination, len(cfg.Files))
}
