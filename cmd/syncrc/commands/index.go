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

package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/cmd/syncrc/opts"
	"github.com/walteh/syncrc/pkg/log"
)

// NewIndexCmd creates a new index command
func NewIndexCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Record the manifest files of the authoritative tree",
		Long: `Index fingerprints every file listed in the config manifest and records
it in the authoritative tree's metadata document. A file whose content has not
changed keeps its version.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator("index")
			if err != nil {
				return err
			}

			opts.Logger.StartRun(ctx, log.RunOperation{Name: "index", Destination: opts.Config.SourceRoot()})
			result, err := op.Index(ctx)
			opts.Logger.EndRun(ctx)
			if err != nil {
				return errors.Errorf("indexing: %w", err)
			}

			opts.Logger.Successf("recorded %d files (%d unchanged)", len(result.Recorded), len(result.Unchanged))
			return nil
		},
	}

	return cmd
}
