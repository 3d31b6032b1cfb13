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

	"github.com/octago/sflags/gen/gpflag"
	"github.com/spf13/cobra"

	"github.com/bbva/merkleroot/crypto/sign"
)

type GenerateConfig struct {
	// Output directory for the generated files.
	Path string `desc:"Set custom output directory"`

	// Signature scheme of the generated key pair.
	Type string `desc:"Key type: ed25519 or ecdsa"`
}

func GenerateDefaultConfig() *GenerateConfig {
	return &GenerateConfig{
		Path: "~/.merkleroot",
		Type: sign.Ed25519,
	}
}

func newGenerateCommand(ctx *cmdContext) *cobra.Command {

	conf := GenerateDefaultConfig()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generates keys for merkleroot",
		Long: `This command generates the ed25519 or ecdsa key pair used to sign
the receipts of computed roots.`,
		TraverseChildren: true,
	}

	err := gpflag.ParseTo(conf, cmd.PersistentFlags())
	if err != nil {
		panic(fmt.Sprintf("Unable to parse generate config: %v", err))
	}

	cmd.AddCommand(newGenerateKeypairCommand(ctx, conf))

	return cmd
}
