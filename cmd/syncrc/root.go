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

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/syncrc/cmd/syncrc/commands"
	"github.com/walteh/syncrc/cmd/syncrc/opts"
	"github.com/walteh/syncrc/pkg/log"
)

// NewCommand builds the syncrc root command and its subcommands.
func NewCommand() *cobra.Command {
	root := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "syncrc",
		Short: "Keep a local working copy in step with an authoritative tree",
		Long: `syncrc mirrors the files of an authoritative tree into a local working
copy, deciding what to copy by comparing content fingerprints recorded in a
metadata document on each side. Local edits are versioned in the copy's
document, and private folders can be merged into a shared one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd, root)
			if cmd.Annotations[commands.AnnotationNoConfig] == "true" {
				return nil
			}
			return root.Load(cmd.Context())
		},
	}

	addRootFlags(cmd, root)

	cmd.AddCommand(
		commands.NewSyncCmd(root),
		commands.NewStatusCmd(root),
		commands.NewIndexCmd(root),
		commands.NewTrackCmd(root),
		commands.NewWatchCmd(root),
		commands.NewMergeCmd(root),
		commands.NewSharedCmd(root),
		commands.NewHistoryCmd(root),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, root *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&root.ConfigFile, "config", "c", ".syncrc.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&root.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging attaches the console logger to the command context
func setupLogging(cmd *cobra.Command, root *opts.RootOpts) {
	level := zerolog.WarnLevel
	if root.Debug {
		level = zerolog.DebugLevel
	}
	root.Logger = log.New(os.Stdout, level)
	cmd.SetContext(log.NewContext(cmd.Context(), root.Logger))
}
