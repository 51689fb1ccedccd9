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
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/cmd/syncrc/opts"
	"github.com/walteh/syncrc/pkg/log"
)

// NewMergeCmd creates a new merge command
func NewMergeCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge private folders into the shared folder",
		Long: `Merge copies the top-level files of every private folder into the
shared folder, in config order. A file name already present in the shared
folder is left alone, so the earliest folder wins.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator("merge")
			if err != nil {
				return err
			}

			opts.Logger.StartRun(ctx, log.RunOperation{
				Name:        "merge",
				Source:      strings.Join(opts.Config.MergeSources(), ", "),
				Destination: opts.Config.MergeShared(),
			})
			report, err := op.Merge(ctx)
			opts.Logger.EndRun(ctx)

			if report != nil {
				for _, missing := range report.MissingSources {
					opts.Logger.Warningf("private folder %s does not exist", missing)
				}
			}
			if err != nil {
				return errors.Errorf("merging: %w", err)
			}

			opts.Logger.Successf("copied %d files, %d already shared", len(report.Copied), len(report.Skipped))
			return nil
		},
	}

	return cmd
}

// NewSharedCmd creates a new shared command
func NewSharedCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shared",
		Short: "List the files of the shared folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator("merge")
			if err != nil {
				return err
			}

			entries, err := op.Shared(ctx)
			if err != nil {
				return errors.Errorf("listing shared folder: %w", err)
			}

			if len(entries) == 0 {
				opts.Logger.Info("shared folder is empty")
				return nil
			}

			data := pterm.TableData{{"File", "Size", "Mode", "Modified"}}
			for _, e := range entries {
				data = append(data, []string{e.Name, humanize.Bytes(uint64(e.Size)), e.Mode.String(), humanize.Time(e.ModTime)})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return errors.Errorf("rendering table: %w", err)
			}
			return nil
		},
	}

	return cmd
}
