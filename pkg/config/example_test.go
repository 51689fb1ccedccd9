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

package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/walteh/syncrc/pkg/config"
)

func ExampleLoad_yaml() {
	ctx := context.Background()
	// Create a temporary YAML config file
	configYAML := `
source: remote
destination: local
files:
  - name: cases
    path: Lab cases.xlsx
  - name: notes
    path: docs/notes.txt
watch:
  debounce: 500ms
`

	tmpDir, err := os.MkdirTemp("", "syncrc-example")
	if err != nil {
		fmt.Printf("Error creating temp dir: %v\n", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, ".syncrc.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		fmt.Printf("Error writing config: %v\n", err)
		return
	}

	// Load and validate the config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	rel, _ := filepath.Rel(tmpDir, cfg.DestinationMetadataPath())
	fmt.Printf("Syncing %s\n", cfg)
	fmt.Printf("First file: %s -> %s\n", cfg.Files[0].Name, cfg.Files[0].Path)
	fmt.Printf("Local metadata: %s\n", filepath.ToSlash(rel))
	fmt.Printf("Debounce: %s\n", cfg.WatchDebounce())

	// Output:
	// Syncing remote -> local (2 files)
	// First file: cases -> Lab cases.xlsx
	// Local metadata: local/metadata.json
	// Debounce: 500ms
}

func ExampleLoad_hcl() {
	ctx := context.Background()
	// Create a temporary HCL config file
	configHCL := `
source      = "Internal_Drive"
destination = "local"

file "cases" {
  path = "Lab cases.xlsx"
}

merge {
  sources = ["External_Drive", "Research_Drive"]
  shared  = "Internal_Drive"
  ignore  = ["~$*"]
}
`

	tmpDir, err := os.MkdirTemp("", "syncrc-example")
	if err != nil {
		fmt.Printf("Error creating temp dir: %v\n", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "syncrc.hcl")
	if err := os.WriteFile(configPath, []byte(configHCL), 0644); err != nil {
		fmt.Printf("Error writing config: %v\n", err)
		return
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	fmt.Printf("Syncing %s\n", cfg)
	fmt.Printf("Merging %d folders into %s\n", len(cfg.MergeSources()), filepath.Base(cfg.MergeShared()))
	fmt.Printf("Ignoring %v\n", cfg.MergeIgnore())

	// Output:
	// Syncing Internal_Drive -> local (1 files)
	// Merging 2 folders into Internal_Drive
	// Ignoring [~$*]
}

func ExampleLoad_json() {
	ctx := context.Background()
	// Create a temporary JSON config file with the journal disabled
	configJSON := `{
		"source": "remote",
		"destination": "local",
		"journal": ""
	}`

	tmpDir, err := os.MkdirTemp("", "syncrc-example")
	if err != nil {
		fmt.Printf("Error creating temp dir: %v\n", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "syncrc.json")
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		fmt.Printf("Error writing config: %v\n", err)
		return
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	fmt.Printf("Syncing %s\n", cfg)
	fmt.Printf("Journal enabled: %t\n", cfg.JournalPath() != "")

	// Output:
	// Syncing remote -> local (0 files)
	// Journal enabled: false
}
