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

package crypto

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ed25519"

	"github.com/bbva/merkleroot/crypto/sign"
)

// KeyFileName is the name of the private key file written by
// NewEd25519SignerKeysFile. The public key gets the same name plus ".pub".
const KeyFileName = "merkleroot_ed25519"

// EcdsaKeyFileName is the name of the PEM private key file written by
// NewEcdsaSignerKeysFile.
const EcdsaKeyFileName = "merkleroot_ecdsa"

// NewSignerKeysFile writes a fresh key pair of the given signature scheme
// into path.
func NewSignerKeysFile(scheme, path string) (string, string, error) {
	if err := sign.ValidateScheme(scheme); err != nil {
		return "", "", err
	}
	if strings.ToLower(strings.TrimSpace(scheme)) == sign.Ecdsa {
		return NewEcdsaSignerKeysFile(path)
	}
	return NewEd25519SignerKeysFile(path)
}

// NewEd25519SignerKeysFile generates a new private/public signer key.
// Input parameter is the full path to the output directory where the keys
// will be stored. The function output is the full path to our new signer keys
// and an error. Eg: (/var/tmp/merkleroot_ed25519, /var/tmp/merkleroot_ed25519.pub, nil)
func NewEd25519SignerKeysFile(path string) (string, string, error) {
	outPriv := filepath.Join(path, KeyFileName)
	outPub := outPriv + ".pub"

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return outPriv, outPub, err
	}

	if err := os.WriteFile(outPriv, privKey, 0600); err != nil {
		return outPriv, outPub, err
	}
	if err := os.WriteFile(outPub, pubKey, 0644); err != nil {
		return outPriv, outPub, err
	}

	return outPriv, outPub, nil
}

// NewEcdsaSignerKeysFile generates a new P-256 key pair and writes it PEM
// encoded into path, as merkleroot_ecdsa and merkleroot_ecdsa.pub.
func NewEcdsaSignerKeysFile(path string) (string, string, error) {
	outPriv := filepath.Join(path, EcdsaKeyFileName)
	outPub := outPriv + ".pub"

	signer := sign.NewEcdsaSigner().(*sign.EcdsaSigner)

	privPEM, err := sign.MarshalEcdsaPrivateKey(signer)
	if err != nil {
		return outPriv, outPub, err
	}
	pubPEM, err := sign.MarshalEcdsaPublicKey(signer)
	if err != nil {
		return outPriv, outPub, err
	}

	if err := os.WriteFile(outPriv, privPEM, 0600); err != nil {
		return outPriv, outPub, err
	}
	if err := os.WriteFile(outPub, pubPEM, 0644); err != nil {
		return outPriv, outPub, err
	}

	return outPriv, outPub, nil
}
