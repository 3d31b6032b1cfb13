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

package anchor

import (
	"fmt"

	"github.com/mitchellh/go-homedir"

	"github.com/bbva/merkleroot/codec"
	"github.com/bbva/merkleroot/crypto/hashing"
	"github.com/bbva/merkleroot/crypto/sign"
)

type Config struct {
	// Log level
	Log string `desc:"Set log level to silent, error, info or debug"`

	// Hash function used to combine nodes.
	Hasher string `desc:"Hash function: sha256, blake2b or blake3"`

	// Encoding of leaf lists read from files or stdin.
	Format string `desc:"Input format: text, json, cbor or msgpack"`

	// Encoding of the resulting receipt.
	Output string `desc:"Output format: text, json or msgpack"`

	// Reject leaves whose length is not DigestLength.
	StrictLength bool `flag:"strict-length" desc:"Reject leaves with unexpected length"`

	// Expected leaf length in bytes. Zero means the hasher digest size.
	DigestLength int `flag:"digest-length" desc:"Expected leaf length in bytes, 0 for the hasher length"`

	// Signature scheme of the key at KeyPath.
	Signer string `desc:"Signature scheme of the receipt key: ed25519 or ecdsa"`

	// Path to the private key file used to sign receipts.
	KeyPath string `flag:"key-path" desc:"Path to the private key used to sign receipts"`

	// Node exporter textfile to dump metrics to after each root.
	MetricsFile string `flag:"metrics-file" desc:"Write prometheus metrics to this file"`
}

func DefaultConfig() *Config {
	return &Config{
		Log:          "silent",
		Hasher:       hashing.SHA256,
		Format:       codec.Text,
		Output:       "text",
		StrictLength: false,
		DigestLength: 0,
		Signer:       sign.Ed25519,
		KeyPath:      "",
		MetricsFile:  "",
	}
}

// Validate checks that every named component exists.
func (c *Config) Validate() error {
	if _, err := hashing.New(c.Hasher); err != nil {
		return err
	}
	if _, err := codec.New(c.Format); err != nil {
		return err
	}
	if err := sign.ValidateScheme(c.Signer); err != nil {
		return err
	}
	if c.DigestLength < 0 {
		return fmt.Errorf("invalid digest length %d", c.DigestLength)
	}
	return nil
}

// LoadSigner reads the signing key at KeyPath with the configured scheme.
// It returns a nil signer when no key is configured.
func LoadSigner(c *Config) (sign.Signer, error) {
	if c.KeyPath == "" {
		return nil, nil
	}
	path, err := homedir.Expand(c.KeyPath)
	if err != nil {
		return nil, err
	}
	return sign.NewSignerFromFile(c.Signer, path)
}
