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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclConfig struct {
	BasePath            string  `hcl:"base_path,optional"`
	Source              string  `hcl:"source"`
	Destination         string  `hcl:"destination"`
	SourceMetadata      string  `hcl:"source_metadata,optional"`
	DestinationMetadata string  `hcl:"destination_metadata,optional"`
	Journal             *string `hcl:"journal,optional"`
	Files               []struct {
		Name string `hcl:"name,label"`
		Path string `hcl:"path"`
	} `hcl:"file,block"`
	Merge *struct {
		Sources []string `hcl:"sources"`
		Shared  string   `hcl:"shared"`
		Ignore  []string `hcl:"ignore,optional"`
	} `hcl:"merge,block"`
	Watch *struct {
		Debounce string   `hcl:"debounce,optional"`
		Ignore   []string `hcl:"ignore,optional"`
	} `hcl:"watch,block"`
}

// 📝 Parse parses the config from HCL. The process environment is
// available to expressions as the env object.
func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		BasePath:            hclCfg.BasePath,
		Source:              hclCfg.Source,
		Destination:         hclCfg.Destination,
		SourceMetadata:      hclCfg.SourceMetadata,
		DestinationMetadata: hclCfg.DestinationMetadata,
		Journal:             hclCfg.Journal,
	}

	for _, f := range hclCfg.Files {
		cfg.Files = append(cfg.Files, FileEntry{Name: f.Name, Path: f.Path})
	}

	if hclCfg.Merge != nil {
		cfg.Merge = &MergeArgs{
			Sources: hclCfg.Merge.Sources,
			Shared:  hclCfg.Merge.Shared,
			Ignore:  hclCfg.Merge.Ignore,
		}
	}

	if hclCfg.Watch != nil {
		cfg.Watch = &WatchArgs{
			Debounce: hclCfg.Watch.Debounce,
			Ignore:   hclCfg.Watch.Ignore,
		}
	}

	return cfg, nil
}

// environment exposes the process environment as a cty object.
func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vars)
}
