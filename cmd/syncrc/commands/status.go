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
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/cmd/syncrc/opts"
)

// NewStatusCmd creates a new status command
func NewStatusCmd(opts *opts.RootOpts) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List files that need to be synced",
		Long: `Status compares the two metadata documents and lists every file a sync
would copy. Nothing is written. With --check, drift is reported as an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator("status")
			if err != nil {
				return err
			}

			drifts, err := op.Status(ctx)
			if err != nil {
				return errors.Errorf("checking status: %w", err)
			}

			if len(drifts) == 0 {
				opts.Logger.Success("files are up to date")
				return nil
			}

			data := pterm.TableData{{"File", "Reason", "Source", "Local"}}
			for _, d := range drifts {
				local := "-"
				if d.DestVersion > 0 {
					local = "v" + strconv.Itoa(d.DestVersion)
				}
				data = append(data, []string{d.Path, d.Reason.String(), "v" + strconv.Itoa(d.SourceVersion), local})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return errors.Errorf("rendering table: %w", err)
			}

			if check {
				return errors.Errorf("%d files out of sync", len(drifts))
			}
			opts.Logger.Warningf("%d files out of sync", len(drifts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "exit with an error when any file is out of sync")

	return cmd
}
