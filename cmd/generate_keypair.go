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
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/bbva/merkleroot/crypto"
	"github.com/bbva/merkleroot/crypto/sign"
)

func newGenerateKeypairCommand(ctx *cmdContext, conf *GenerateConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "keypair",
		Short: "Generate a keypair to sign receipts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sign.ValidateScheme(conf.Type); err != nil {
				return err
			}

			path, err := homedir.Expand(conf.Path)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(path, 0700); err != nil {
				return err
			}

			priv, pub, err := crypto.NewSignerKeysFile(conf.Type, path)
			if err != nil {
				return err
			}
			ctx.log.Infof("%s keypair written to %s", conf.Type, path)

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", priv, pub)
			return err
		},
	}
}
