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

// NewWatchCmd creates a new watch command
func NewWatchCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Record local edits as they happen",
		Long: `Watch follows the local copy and records every settled write in its
metadata document, until interrupted. The local copy stays locked meanwhile.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator("edit")
			if err != nil {
				return err
			}

			opts.Logger.StartRun(ctx, log.RunOperation{Name: "watch", Destination: opts.Config.DestinationRoot()})
			opts.Logger.Info("watching for edits, press ctrl-c to stop")
			err = op.Watch(ctx)
			ops := opts.Logger.EndRun(ctx)
			if err != nil {
				return errors.Errorf("watching: %w", err)
			}

			opts.Logger.Successf("recorded %d edits", len(ops))
			return nil
		},
	}

	return cmd
}
