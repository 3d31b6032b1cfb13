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
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/bbva/merkleroot/crypto/hashing"
	"github.com/bbva/merkleroot/hashchain"
	"github.com/bbva/merkleroot/merkle"
)

func newChainCommand(ctx *cmdContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Verify and anchor provenance hash chains",
		Long: `A hash chain is a JSON array of blocks with index, timestamp, data,
previousHash and hash fields. Every block hash covers the other fields.`,
		TraverseChildren: true,
	}

	cmd.PersistentFlags().StringVarP(&file, "file", "f", "-", "Read blocks from this file, - for stdin")

	load := func(cmd *cobra.Command) ([]hashchain.Block, error) {
		r, closer, err := openInput(file, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		defer closer()
		blocks, err := hashchain.Load(r)
		if err != nil {
			return nil, err
		}
		ctx.log.Debugf("Loaded %d blocks", len(blocks))
		return blocks, nil
	}

	cmd.AddCommand(
		newChainVerifyCommand(ctx, load),
		newChainRootCommand(ctx, load),
	)

	return cmd
}

type blockLoader func(cmd *cobra.Command) ([]hashchain.Block, error)

func newChainVerifyCommand(ctx *cmdContext, load blockLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the hash chain integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := load(cmd)
			if err != nil {
				return err
			}
			if err := verifyChain(cmd.OutOrStdout(), ctx, blocks); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d blocks verified\n", len(blocks))
			return err
		},
	}
}

func newChainRootCommand(ctx *cmdContext, load blockLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "root",
		Short: "Compute the merkle root of a verified hash chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := load(cmd)
			if err != nil {
				return err
			}
			if err := verifyChain(cmd.OutOrStdout(), ctx, blocks); err != nil {
				return err
			}

			hasher, err := hashing.New(ctx.conf.Hasher)
			if err != nil {
				return err
			}
			root, err := hashchain.Root(merkle.NewTree(hasher), blocks)
			if err != nil {
				return err
			}

			ctx.log.Infof("Chain of %d blocks anchored at %s", len(blocks), root.Hex())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), root.Hex())
			return err
		},
	}
}

// verifyChain prints every invalid block to w and returns a summary error.
func verifyChain(w io.Writer, ctx *cmdContext, blocks []hashchain.Block) error {
	err := hashchain.Verify(blocks)
	if err == nil {
		return nil
	}

	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return err
	}
	for _, e := range merr.Errors {
		ctx.log.Warnf("Invalid block: %v", e)
		fmt.Fprintln(w, e)
	}
	return fmt.Errorf("chain verification failed with %d errors", len(merr.Errors))
}
