/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package cmd implements the merkleroot command line.
package cmd

import (
	"fmt"

	"github.com/octago/sflags/gen/gpflag"
	"github.com/spf13/cobra"
)

// Root is the merkleroot command, ready to be executed by main.
var Root *cobra.Command = newRootCommand()

func newRootCommand() *cobra.Command {

	ctx := newCmdContext()

	cmd := &cobra.Command{
		Use:   "merkleroot",
		Short: "Merkle roots for batches of digests",
		Long: `merkleroot reduces lists of hex encoded digests into a single merkle root,
pairing an odd trailing node with itself, and verifies provenance hash chains.`,
		// SilenceUsage is set to true -> https://github.com/spf13/cobra/issues/340
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.load(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&ctx.configFile, "config", "c", defaultConfigFile, "Path to the config file (yaml, json or toml)")

	if err := gpflag.ParseTo(ctx.conf, f); err != nil {
		panic(fmt.Sprintf("Unable to parse anchor config: %v", err))
	}

	cmd.AddCommand(
		newRootHashCommand(ctx),
		newHashCommand(ctx),
		newChainCommand(ctx),
		newGenerateCommand(ctx),
		newVersionCommand(),
	)

	return cmd
}
