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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbva/merkleroot/crypto/hashing"
	"github.com/bbva/merkleroot/merkle"
)

func newHashCommand(ctx *cmdContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <text>",
		Short: "Hash a text into a leaf digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := hashing.New(ctx.conf.Hasher)
			if err != nil {
				return err
			}

			digest := merkle.HashData(args[0])
			if hashing.Name(hasher) != hashing.SHA256 {
				digest = hashing.Text(hasher, args[0])
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), digest)
			return err
		},
	}
}
