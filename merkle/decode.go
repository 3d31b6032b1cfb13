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
	"encoding/hex"
	"fmt"

	"github.com/bbva/merkleroot/crypto/hashing"
)

// DecodeLeaves decodes hex encoded leaves, accepting both letter cases.
// Decoding stops at the first malformed element, which is reported as an
// *InvalidEncodingError.
func DecodeLeaves(hashes []string) ([]hashing.Digest, error) {
	return decodeLeaves(hashes, 0)
}

// DecodeLeavesStrict works like DecodeLeaves but also rejects leaves that
// do not decode to exactly size bytes.
func DecodeLeavesStrict(hashes []string, size int) ([]hashing.Digest, error) {
	return decodeLeaves(hashes, size)
}

func decodeLeaves(hashes []string, size int) ([]hashing.Digest, error) {
	leaves := make([]hashing.Digest, 0, len(hashes))
	for i, h := range hashes {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, &InvalidEncodingError{Index: i, Value: h, Err: err}
		}
		if size > 0 && len(b) != size {
			return nil, &InvalidEncodingError{
				Index: i,
				Value: h,
				Err:   fmt.Errorf("%w: got %d bytes, want %d", ErrDigestLength, len(b), size),
			}
		}
		leaves = append(leaves, b)
	}
	return leaves, nil
}

// EncodeDigest returns the lowercase hex form of d.
func EncodeDigest(d hashing.Digest) string {
	return hex.EncodeToString(d)
}
