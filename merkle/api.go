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

package merkle

import (
	"github.com/bbva/merkleroot/crypto/hashing"
)

// std is the SHA256 tree every interoperable root is computed with.
var std = NewTree(hashing.NewSha256Hasher())

// Root folds leaves into their SHA256 root digest.
func Root(leaves []hashing.Digest) (hashing.Digest, error) {
	return std.Root(leaves)
}

// CalculateRoot decodes hex encoded leaf digests and returns the hex encoded
// SHA256 root. Every leaf is decoded before any hashing takes place.
func CalculateRoot(hashes []string) (string, error) {
	return std.RootHex(hashes)
}

// HashData returns the hex encoded SHA256 digest of the UTF-8 bytes of data.
func HashData(data string) string {
	return hashing.Text(std.hasher, data)
}

// RootHex decodes hex encoded leaf digests and returns the hex encoded root.
func (t *Tree) RootHex(hashes []string) (string, error) {
	if len(hashes) == 0 {
		return "", ErrEmptyInput
	}

	leaves, err := DecodeLeaves(hashes)
	if err != nil {
		return "", err
	}

	root, err := t.Root(leaves)
	if err != nil {
		return "", err
	}
	return EncodeDigest(root), nil
}
