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

// NewTrackCmd creates a new track command
func NewTrackCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track <file>...",
		Short: "Record local edits in the local metadata document",
		Long: `Track fingerprints each file of the local copy and bumps its version
in the local metadata document. Files must live inside the local copy.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator("edit")
			if err != nil {
				return err
			}

			opts.Logger.StartRun(ctx, log.RunOperation{Name: "track", Destination: opts.Config.DestinationRoot()})
			records, err := op.Track(ctx, args...)
			opts.Logger.EndRun(ctx)
			if err != nil {
				return errors.Errorf("tracking edits: %w", err)
			}

			opts.Logger.Successf("tracked %d files", len(records))
			return nil
		},
	}

	return cmd
}
