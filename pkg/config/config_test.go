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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config, dir string)
	}{
		{
			name: "valid_yaml",
			file: ".syncrc.yaml",
			config: `
source: Internal_Drive
destination: ./local
files:
  - name: lab_cases
    path: Lab cases.xlsx
  - name: summary
    path: reports/summary.xlsx
merge:
  sources: [External_Drive, Research_Drive]
  shared: Internal_Drive
  ignore: ["~$*", "*.tmp"]
watch:
  debounce: 1s
journal: state/history.db
`,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, filepath.Join(dir, "Internal_Drive"), cfg.SourceRoot())
				assert.Equal(t, filepath.Join(dir, "local"), cfg.DestinationRoot())
				assert.Equal(t, filepath.Join(dir, "Internal_Drive", "metadata.json"), cfg.SourceMetadataPath(), "metadata defaults to metadata.json")
				assert.Equal(t, filepath.Join(dir, "local", "metadata.json"), cfg.DestinationMetadataPath())
				assert.Equal(t, []string{
					filepath.Join(dir, "Internal_Drive", "Lab cases.xlsx"),
					filepath.Join(dir, "Internal_Drive", "reports", "summary.xlsx"),
				}, cfg.ManifestPaths())
				assert.Equal(t, []string{filepath.Join(dir, "External_Drive"), filepath.Join(dir, "Research_Drive")}, cfg.MergeSources())
				assert.Equal(t, filepath.Join(dir, "Internal_Drive"), cfg.MergeShared())
				assert.Equal(t, []string{"~$*", "*.tmp"}, cfg.MergeIgnore())
				assert.Equal(t, time.Second, cfg.WatchDebounce())
				assert.Equal(t, filepath.Join(dir, "state", "history.db"), cfg.JournalPath())
			},
		},
		{
			name: "valid_json",
			file: "syncrc.json",
			config: `{
	"base_path": "/mnt/drive",
	"source": "Internal_Drive",
	"destination": "/home/me/local",
	"source_metadata": "index.json",
	"files": [{"name": "a", "path": "a.txt"}],
	"journal": ""
}`,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, "/mnt/drive/Internal_Drive", cfg.SourceRoot(), "base_path anchors relative paths")
				assert.Equal(t, "/home/me/local", cfg.DestinationRoot(), "absolute paths are kept")
				assert.Equal(t, "/mnt/drive/Internal_Drive/index.json", cfg.SourceMetadataPath())
				assert.Equal(t, "", cfg.JournalPath(), "empty journal disables it")
				assert.Equal(t, DefaultDebounce, cfg.WatchDebounce())
				assert.Nil(t, cfg.MergeSources())
				assert.Equal(t, "", cfg.MergeShared())
			},
		},
		{
			name: "valid_hcl",
			file: "syncrc.hcl",
			config: `
base_path   = "drives"
source      = "Internal_Drive"
destination = "local"

file "lab_cases" {
  path = "Lab cases.xlsx"
}

merge {
  sources = ["External_Drive"]
  shared  = "Internal_Drive"
}

watch {
  debounce = "100ms"
}
`,
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, filepath.Join(dir, "drives", "Internal_Drive"), cfg.SourceRoot(), "relative base_path hangs off the config dir")
				require.Len(t, cfg.Files, 1)
				assert.Equal(t, FileEntry{Name: "lab_cases", Path: "Lab cases.xlsx"}, cfg.Files[0])
				assert.Equal(t, []string{filepath.Join(dir, "drives", "External_Drive")}, cfg.MergeSources())
				assert.Equal(t, 100*time.Millisecond, cfg.WatchDebounce())
				assert.Equal(t, filepath.Join(dir, "drives", DefaultJournal), cfg.JournalPath(), "journal defaults on")
			},
		},
		{
			name:   "rc_file_as_yaml",
			file:   ".syncrc",
			config: "source: src\ndestination: dst\n",
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, filepath.Join(dir, "src"), cfg.SourceRoot())
			},
		},
		{
			name:   "rc_file_as_hcl",
			file:   ".syncrc",
			config: "source = \"src\"\ndestination = \"dst\"\n",
			check: func(t *testing.T, cfg *Config, dir string) {
				assert.Equal(t, filepath.Join(dir, "dst"), cfg.DestinationRoot())
			},
		},
		{
			name:        "missing_source",
			file:        "c.yaml",
			config:      "destination: dst\n",
			wantErr:     true,
			errContains: "source is required",
		},
		{
			name:        "missing_destination",
			file:        "c.yaml",
			config:      "source: src\n",
			wantErr:     true,
			errContains: "destination is required",
		},
		{
			name:        "unknown_yaml_field",
			file:        "c.yaml",
			config:      "source: src\ndestination: dst\nprovider: github\n",
			wantErr:     true,
			errContains: "provider",
		},
		{
			name:        "unknown_json_field",
			file:        "c.json",
			config:      `{"source": "s", "destination": "d", "force": true}`,
			wantErr:     true,
			errContains: "force",
		},
		{
			name:        "duplicate_manifest_name",
			file:        "c.yaml",
			config:      "source: s\ndestination: d\nfiles:\n  - {name: a, path: a.txt}\n  - {name: a, path: b.txt}\n",
			wantErr:     true,
			errContains: "duplicate name",
		},
		{
			name:        "escaping_manifest_path",
			file:        "c.yaml",
			config:      "source: s\ndestination: d\nfiles:\n  - {name: a, path: ../a.txt}\n",
			wantErr:     true,
			errContains: "must be relative",
		},
		{
			name:        "absolute_manifest_path",
			file:        "c.yaml",
			config:      "source: s\ndestination: d\nfiles:\n  - {name: a, path: /etc/a.txt}\n",
			wantErr:     true,
			errContains: "must be relative",
		},
		{
			name:        "nested_metadata_document",
			file:        "c.yaml",
			config:      "source: s\ndestination: d\nsource_metadata: meta/index.json\n",
			wantErr:     true,
			errContains: "source_metadata must be a file name",
		},
		{
			name:        "merge_without_shared",
			file:        "c.yaml",
			config:      "source: s\ndestination: d\nmerge:\n  sources: [a]\n",
			wantErr:     true,
			errContains: "merge.shared is required",
		},
		{
			name:        "bad_ignore_pattern",
			file:        "c.yaml",
			config:      "source: s\ndestination: d\nmerge:\n  sources: [a]\n  shared: s\n  ignore: ['[oops']\n",
			wantErr:     true,
			errContains: "invalid pattern",
		},
		{
			name:        "bad_debounce",
			file:        "c.yaml",
			config:      "source: s\ndestination: d\nwatch:\n  debounce: soon\n",
			wantErr:     true,
			errContains: "watch.debounce",
		},
		{
			name:        "unsupported_extension",
			file:        "c.toml",
			config:      "source = 's'",
			wantErr:     true,
			errContains: "no parser found",
		},
		{
			name:        "invalid_hcl",
			file:        "c.hcl",
			config:      "source = ",
			wantErr:     true,
			errContains: "parsing HCL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.config)

			cfg, err := Load(testContext(t), path)
			if tt.wantErr {
				require.Error(t, err, "Load should fail")
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				}
				return
			}

			require.NoError(t, err, "Load should succeed")
			require.NotNil(t, cfg)
			assert.Equal(t, path, cfg.Location())
			if tt.check != nil {
				tt.check(t, cfg, filepath.Dir(path))
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(testContext(t), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHCLReadsEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Setenv("SYNCRC_TEST_ROOT", root)

	path := writeConfig(t, "c.hcl", `
base_path   = env.SYNCRC_TEST_ROOT
source      = "src"
destination = "dst"
`)

	cfg, err := Load(testContext(t), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src"), cfg.SourceRoot())
}

func TestInMemoryConfigUsesWorkingDirectory(t *testing.T) {
	cfg := &Config{Source: "src", Destination: "/abs/dst"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "src", cfg.SourceRoot())
	assert.Equal(t, "/abs/dst", cfg.DestinationRoot())
	assert.Equal(t, "", cfg.Location())
	assert.Equal(t, "src -> /abs/dst (0 files)", cfg.String())
}

func TestGetParser(t *testing.T) {
	tests := []struct {
		file string
		want Parser
	}{
		{file: "a.yaml", want: &YAMLParser{}},
		{file: "a.YML", want: &YAMLParser{}},
		{file: "a.json", want: &JSONParser{}},
		{file: "a.hcl", want: &HCLParser{}},
		{file: "a.toml", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got := GetParser(tt.file)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tt.want, got)
		})
	}
}
