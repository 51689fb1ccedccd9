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

// NewSyncCmd creates a new sync command
func NewSyncCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy out-of-sync files into the local copy",
		Long: `Sync brings the local copy up to date with the authoritative tree.
It will:
1. Load both metadata documents
2. Copy every file whose fingerprint differs or is missing locally
3. Save the local metadata document

The first failed copy stops the run. Files copied before it stay recorded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator("sync")
			if err != nil {
				return err
			}

			opts.Logger.StartRun(ctx, log.RunOperation{
				Name:        "sync",
				Source:      opts.Config.SourceRoot(),
				Destination: opts.Config.DestinationRoot(),
			})
			result, err := op.Sync(ctx)
			opts.Logger.EndRun(ctx)
			if err != nil {
				return errors.Errorf("syncing files: %w", err)
			}

			if len(result.Transferred) == 0 {
				opts.Logger.Success("already in sync")
				return nil
			}
			opts.Logger.Successf("synced %d files (%d unchanged)", len(result.Transferred), len(result.Unchanged))
			return nil
		},
	}

	return cmd
}
