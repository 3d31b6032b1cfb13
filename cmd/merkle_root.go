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
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/bbva/merkleroot/anchor"
	"github.com/bbva/merkleroot/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newRootHashCommand(ctx *cmdContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "root [hash...]",
		Short: "Compute the merkle root of a list of hex encoded digests",
		Long: `Computes the merkle root of the given leaves. Leaves are taken from the
arguments or, when there are none, read from --file in the configured --format.
Giving both is an error. An odd node at the end of a level is paired with itself.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && cmd.Flags().Changed("file") {
				return fmt.Errorf("%s", errArgsAndFile)
			}

			signer, err := anchor.LoadSigner(ctx.conf)
			if err != nil {
				return fmt.Errorf("loading signing key: %w", err)
			}

			a, err := anchor.NewAnchorer(ctx.conf, signer, ctx.log)
			if err != nil {
				return err
			}

			var signed *protocol.SignedReceipt
			if len(args) > 0 {
				signed, err = a.Anchor(args)
			} else {
				signed, err = anchorFile(a, file, cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			return printReceipt(cmd.OutOrStdout(), ctx.conf.Output, signed)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Read leaves from this file, - for stdin")

	return cmd
}

func anchorFile(a *anchor.Anchorer, path string, stdin io.Reader) (*protocol.SignedReceipt, error) {
	r, closer, err := openInput(path, stdin)
	if err != nil {
		return nil, err
	}
	defer closer()
	return a.AnchorFrom(r)
}

func printReceipt(w io.Writer, output string, signed *protocol.SignedReceipt) error {
	switch strings.ToLower(output) {
	case outputJSON:
		b, err := json.MarshalIndent(signed.View(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case outputMsgpack:
		b, err := signed.Encode()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, hex.EncodeToString(b))
		return err
	default:
		_, err := fmt.Fprintln(w, signed.Receipt.Root.Hex())
		return err
	}
}
