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

package hashchain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"

	"github.com/bbva/merkleroot/crypto/hashing"
	"github.com/bbva/merkleroot/merkle"
	"github.com/bbva/merkleroot/metrics"
)

var (
	// ErrHashMismatch is returned when the stored hash of a block differs
	// from the computed one.
	ErrHashMismatch = errors.New("hash mismatch")
	// ErrBrokenLink is returned when a block does not point to the hash of
	// its predecessor.
	ErrBrokenLink = errors.New("broken link")
	// ErrEmptyChain is returned when there are no blocks to work with.
	ErrEmptyChain = errors.New("empty chain")
)

// BlockError describes why a block failed verification.
type BlockError struct {
	Index    int64
	Err      error
	Expected string
	Actual   string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d: %v (expected %s, got %s)", e.Index, e.Err, short(e.Expected), short(e.Actual))
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

func short(hash string) string {
	if len(hash) > 16 {
		return hash[:16] + "..."
	}
	return hash
}

// Load reads a JSON array of blocks and returns them sorted by index.
// Index and timestamp may be given as numbers or numeric strings.
func Load(r io.Reader) ([]Block, error) {
	var raw []map[string]interface{}
	decoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding blocks: %w", err)
	}

	blocks := make([]Block, 0, len(raw))
	for i, m := range raw {
		var b Block
		var err error
		if b.Index, err = toInt64(m["index"]); err != nil {
			return nil, fmt.Errorf("block at position %d: index: %w", i, err)
		}
		if b.Timestamp, err = toInt64(m["timestamp"]); err != nil {
			return nil, fmt.Errorf("block at position %d: timestamp: %w", i, err)
		}
		if data, ok := m["data"].(map[string]interface{}); ok {
			b.Data = data
		} else {
			b.Data = make(map[string]interface{})
		}
		b.PreviousHash, _ = m["previousHash"].(string)
		b.Hash, _ = m["hash"].(string)
		blocks = append(blocks, b)
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Index < blocks[j].Index
	})
	return blocks, nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		return int64(f), err
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// Verify checks the stored hash of every block and, past the first one,
// its link to the predecessor. All failures are returned together as a
// *multierror.Error of *BlockError.
func Verify(blocks []Block) error {
	var result *multierror.Error
	for i := range blocks {
		invalid := false

		hash, err := blocks[i].ComputeHash()
		if err != nil {
			result = multierror.Append(result, &BlockError{Index: blocks[i].Index, Err: err})
			invalid = true
		} else if hash != blocks[i].Hash {
			result = multierror.Append(result, &BlockError{
				Index:    blocks[i].Index,
				Err:      ErrHashMismatch,
				Expected: hash,
				Actual:   blocks[i].Hash,
			})
			invalid = true
		}

		if i > 0 && blocks[i].PreviousHash != blocks[i-1].Hash {
			result = multierror.Append(result, &BlockError{
				Index:    blocks[i].Index,
				Err:      ErrBrokenLink,
				Expected: blocks[i-1].Hash,
				Actual:   blocks[i].PreviousHash,
			})
			invalid = true
		}

		metrics.ChainBlocksVerifiedTotal.Inc()
		if invalid {
			metrics.ChainInvalidBlocksTotal.Inc()
		}
	}
	return result.ErrorOrNil()
}

// Root returns the merkle root of the block hashes, in chain order.
func Root(tree *merkle.Tree, blocks []Block) (hashing.Digest, error) {
	if len(blocks) == 0 {
		return nil, ErrEmptyChain
	}
	hashes := make([]string, 0, len(blocks))
	for _, b := range blocks {
		hashes = append(hashes, b.Hash)
	}
	leaves, err := merkle.DecodeLeaves(hashes)
	if err != nil {
		return nil, err
	}
	return tree.Root(leaves)
}
