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

/*
Package config loads and validates syncrc configuration files.

	+-------------+     +--------+     +----------+     +-----------+
	| .syncrc.yaml| --> | Parser | --> | Validate | --> | Operation |
	| .hcl / .json|     +--------+     +----------+     +-----------+
	+-------------+

🎯 Purpose:
- Names the authoritative tree, the local copy and their metadata documents
- Lists the manifest of files the authoritative tree tracks
- Configures the folder merge, the edit watcher and the journal

🔄 Flow:
1. Picks a parser by file extension (.syncrc tries YAML, then HCL)
2. Decodes with unknown fields rejected
3. Validates and fills defaults
4. Resolves every relative path against base_path, or the config file's directory

🤝 Interfaces:
- Parser: format-specific decoding, registered at init

📝 HCL files can read the environment through the env object:

	base_path   = env.SYNC_ROOT
	source      = "Internal_Drive"
	destination = "./local"

	file "lab_cases" {
	  path = "Lab cases.xlsx"
	}

	merge {
	  sources = ["External_Drive", "Research_Drive"]
	  shared  = "Internal_Drive"
	}
*/
package config
