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
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/bbva/merkleroot/crypto/hashing"
	"github.com/bbva/merkleroot/merkle"
	"github.com/bbva/merkleroot/metrics"
)

const chainJSON = `[
	{"index": 1, "timestamp": "1700000000000", "previousHash": "a226d5a187c0f22a59bcff4b8c78065675852359a5b6761098c361d5e1e1bd60",
	 "data": {"model": "iris", "b": "", "html": "<a>", "score": 0.97, "meta": {"x": null, "tags": []}},
	 "hash": "5d0c62f810f4442f95dbb8f338fbf0f9a56eccc7aaa7b92c097f759be9dfd0c5"},
	{"index": 0, "timestamp": 1700000000000, "previousHash": "0",
	 "hash": "a226d5a187c0f22a59bcff4b8c78065675852359a5b6761098c361d5e1e1bd60"}
]`

func newChain(t *testing.T, n int) []Block {
	blocks := make([]Block, 0, n)
	prev := "0"
	for i := 0; i < n; i++ {
		b := Block{
			Index:        int64(i),
			Timestamp:    1700000000000 + int64(i),
			Data:         map[string]interface{}{"event": "inference", "seq": i},
			PreviousHash: prev,
		}
		require.NoError(t, b.Seal())
		prev = b.Hash
		blocks = append(blocks, b)
	}
	return blocks
}

func TestComputeHash(t *testing.T) {
	genesis := Block{Index: 0, Timestamp: 1700000000000, PreviousHash: "0"}
	hash, err := genesis.ComputeHash()
	require.NoError(t, err)
	require.Equal(t, "a226d5a187c0f22a59bcff4b8c78065675852359a5b6761098c361d5e1e1bd60", hash)

	blocks, err := Load(strings.NewReader(chainJSON))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, int64(0), blocks[0].Index)
	require.Equal(t, int64(1), blocks[1].Index)

	data, err := CanonicalJSON(blocks[1].Data)
	require.NoError(t, err)
	require.Equal(t, `{"html":"<a>","model":"iris","score":0.97}`, data)

	hash, err = blocks[1].ComputeHash()
	require.NoError(t, err)
	require.Equal(t, "5d0c62f810f4442f95dbb8f338fbf0f9a56eccc7aaa7b92c097f759be9dfd0c5", hash)
	require.Equal(t, blocks[1].Hash, hash)

	require.NoError(t, Verify(blocks))
}

func TestClean(t *testing.T) {

	testCases := []struct {
		input    interface{}
		expected interface{}
	}{
		{nil, nil},
		{"value", "value"},
		{
			map[string]interface{}{"a": nil, "b": "", "c": "x"},
			map[string]interface{}{"c": "x"},
		},
		{
			map[string]interface{}{"a": map[string]interface{}{"b": nil}, "c": []interface{}{}},
			map[string]interface{}{},
		},
		{
			[]interface{}{nil, "", "x", map[string]interface{}{}},
			[]interface{}{"x", map[string]interface{}{}},
		},
		{
			map[string]interface{}{"a": []interface{}{"", map[string]interface{}{"b": "c", "d": ""}}},
			map[string]interface{}{"a": []interface{}{map[string]interface{}{"b": "c"}}},
		},
	}

	for i, c := range testCases {
		require.Equalf(t, c.expected, Clean(c.input), "The cleaned value should match for test case %d", i)
	}
}

func TestCanonicalJSON(t *testing.T) {
	data, err := CanonicalJSON(nil)
	require.NoError(t, err)
	require.Equal(t, "{}", data)

	data, err = CanonicalJSON(map[string]interface{}{
		"z": 1,
		"a": map[string]interface{}{"y": true, "b": "&"},
	})
	require.NoError(t, err)
	require.Equal(t, `{"a":{"b":"&","y":true},"z":1}`, data)

	_, err = CanonicalJSON(map[string]interface{}{"f": func() {}})
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	blocks := newChain(t, 5)

	verified := testutil.ToFloat64(metrics.ChainBlocksVerifiedTotal)
	require.NoError(t, Verify(blocks))
	require.Equal(t, verified+5, testutil.ToFloat64(metrics.ChainBlocksVerifiedTotal))

	require.NoError(t, Verify(nil))
}

func TestVerifyTampered(t *testing.T) {
	blocks := newChain(t, 5)
	blocks[2].Data["event"] = "tampered"

	invalid := testutil.ToFloat64(metrics.ChainInvalidBlocksTotal)

	err := Verify(blocks)
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 1)

	var berr *BlockError
	require.True(t, errors.As(merr.Errors[0], &berr))
	require.Equal(t, int64(2), berr.Index)
	require.True(t, errors.Is(berr, ErrHashMismatch))
	require.Equal(t, invalid+1, testutil.ToFloat64(metrics.ChainInvalidBlocksTotal))
}

func TestVerifyBrokenLinks(t *testing.T) {
	blocks := newChain(t, 4)

	// resealed blocks keep a valid hash but point elsewhere
	blocks[1].PreviousHash = strings.Repeat("0", 64)
	require.NoError(t, blocks[1].Seal())
	blocks[3].Hash = strings.Repeat("f", 64)

	err := Verify(blocks)
	require.Error(t, err)

	merr := err.(*multierror.Error)

	testCases := []struct {
		index       int64
		expectedErr error
	}{
		{1, ErrBrokenLink},
		{2, ErrBrokenLink},
		{3, ErrHashMismatch},
	}

	require.Len(t, merr.Errors, len(testCases))
	for i, c := range testCases {
		berr := merr.Errors[i].(*BlockError)
		require.Equalf(t, c.index, berr.Index, "The block index should match for test case %d", i)
		require.Truef(t, errors.Is(berr, c.expectedErr), "The error should match for test case %d", i)
	}
}

func TestLoadErrors(t *testing.T) {

	testCases := []string{
		`{`,
		`{"index": 1}`,
		`[{"index": "one"}]`,
		`[{"index": true}]`,
		`[{"index": 1, "timestamp": "yesterday"}]`,
	}

	for i, c := range testCases {
		_, err := Load(strings.NewReader(c))
		require.Errorf(t, err, "An error was expected for test case %d", i)
	}
}

func TestRoot(t *testing.T) {
	blocks := newChain(t, 3)
	tree := merkle.NewTree(hashing.NewSha256Hasher())

	root, err := Root(tree, blocks)
	require.NoError(t, err)

	expected, err := merkle.CalculateRoot([]string{blocks[0].Hash, blocks[1].Hash, blocks[2].Hash})
	require.NoError(t, err)
	require.Equal(t, expected, root.Hex())

	_, err = Root(tree, nil)
	require.Equal(t, ErrEmptyChain, err)

	blocks[1].Hash = "not hex"
	_, err = Root(tree, blocks)
	require.True(t, errors.Is(err, merkle.ErrInvalidEncoding))
}
