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

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/cmd/syncrc/opts"
)

// NewHistoryCmd creates a new history command
func NewHistoryCmd(opts *opts.RootOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently written files",
		Long: `History lists the journal of file writes made by sync, index, track,
watch and merge runs, newest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator("history")
			if err != nil {
				return err
			}

			entries, err := op.History(ctx, limit)
			if err != nil {
				return errors.Errorf("reading history: %w", err)
			}

			if len(entries) == 0 {
				opts.Logger.Info("journal is empty")
				return nil
			}

			data := pterm.TableData{{"When", "Kind", "File", "Version", "Run"}}
			for _, e := range entries {
				version := "-"
				if e.Version > 0 {
					version = "v" + strconv.Itoa(e.Version)
				}
				run := e.RunID
				if len(run) > 8 {
					run = run[:8]
				}
				data = append(data, []string{humanize.Time(e.Time), string(e.Kind), e.Path, version, run})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return errors.Errorf("rendering table: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show, 0 for all")

	return cmd
}
