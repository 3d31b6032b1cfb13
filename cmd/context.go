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
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bbva/merkleroot/anchor"
	"github.com/bbva/merkleroot/log"
)

const (
	envPrefix         = "MERKLEROOT"
	defaultConfigFile = "~/.merkleroot/config.yml"
)

// cmdContext carries the configuration shared by every command. It is
// filled from flags, environment and config file before any command runs.
type cmdContext struct {
	configFile string
	conf       *anchor.Config
	viper      *viper.Viper
	log        log.Logger
}

func newCmdContext() *cmdContext {
	return &cmdContext{
		configFile: defaultConfigFile,
		conf:       anchor.DefaultConfig(),
		viper:      viper.New(),
		log:        log.L(),
	}
}

func (c *cmdContext) load(cmd *cobra.Command) error {
	v := c.viper
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	cmd.Root().PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return bindErr
	}

	if err := c.readConfigFile(); err != nil {
		return err
	}

	c.conf.Log = v.GetString("log")
	c.conf.Hasher = v.GetString("hasher")
	c.conf.Format = v.GetString("format")
	c.conf.Output = v.GetString("output")
	c.conf.StrictLength = v.GetBool("strict-length")
	c.conf.DigestLength = v.GetInt("digest-length")
	c.conf.Signer = v.GetString("signer")
	c.conf.KeyPath = v.GetString("key-path")
	c.conf.MetricsFile = v.GetString("metrics-file")

	c.log = log.New(&log.LoggerOptions{
		Name:   "merkleroot",
		Level:  log.LevelFromString(c.conf.Log),
		Output: cmd.ErrOrStderr(),
	})
	log.SetDefault(c.log)

	if err := c.conf.Validate(); err != nil {
		return err
	}
	if err := validateOutput(c.conf.Output); err != nil {
		return err
	}

	c.log.Debugf("Config: %+v", *c.conf)
	return nil
}

// readConfigFile loads the config file into viper. A missing default file
// is not an error; a missing file given with --config is.
func (c *cmdContext) readConfigFile() error {
	path, err := homedir.Expand(c.configFile)
	if err != nil {
		return err
	}
	c.viper.SetConfigFile(path)
	if err := c.viper.ReadInConfig(); err != nil {
		if c.configFile == defaultConfigFile && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}
